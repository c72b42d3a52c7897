package models

import "fmt"

// DisplayItem represents a single giveaway shown in the results grid
type DisplayItem struct {
	Name           string
	ImageURL       string
	URL            string
	ExpirationDate string // pre-formatted by the scrape API, shown verbatim
}

// WireItem is one entry of the scrape API payload.
// Field names are capitalized on the wire.
type WireItem struct {
	Name           string `json:"Name"`
	ImageURL       string `json:"ImageURL"`
	URL            string `json:"URL"`
	ExpirationDate string `json:"ExpirationDate"`
}

// WireResponse is the body returned by the scrape API
type WireResponse struct {
	Items []*WireItem `json:"items"`
}

// ToDisplayItem maps a wire item onto the internal representation
func (w WireItem) ToDisplayItem() DisplayItem {
	return DisplayItem{
		Name:           w.Name,
		ImageURL:       w.ImageURL,
		URL:            w.URL,
		ExpirationDate: w.ExpirationDate,
	}
}

// GiveawayCount formats n with the noun in the right number
func GiveawayCount(n int) string {
	if n == 1 {
		return "1 giveaway"
	}
	return fmt.Sprintf("%d giveaways", n)
}
