package fetcher

import (
	"context"

	"giveaway-grid/models"
)

// Fetcher defines the contract for retrieving scraped giveaways
type Fetcher interface {
	// Fetch asks the scraping backend for the given number of pages
	// and returns the items in the order the backend produced them
	Fetch(ctx context.Context, pages int) ([]models.DisplayItem, error)
}
