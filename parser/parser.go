package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"giveaway-grid/models"
)

// ErrMalformedPayload is returned when the body is not the expected JSON shape
var ErrMalformedPayload = errors.New("malformed scrape payload")

// Parser extracts display items from scrape API responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// DecodeItems decodes a scrape API body into display items.
// A falsy body (empty, null, false, 0, "") or a missing items field yields
// an empty list without error.
func (p *Parser) DecodeItems(body []byte) ([]models.DisplayItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch v := probe.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
	case float64:
		if v == 0 {
			return nil, nil
		}
	case string:
		if v == "" {
			return nil, nil
		}
	case map[string]any:
		return p.decodeObject(body)
	}

	return nil, fmt.Errorf("%w: expected an object, got %T", ErrMalformedPayload, probe)
}

func (p *Parser) decodeObject(body []byte) ([]models.DisplayItem, error) {
	var resp models.WireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	items := make([]models.DisplayItem, 0, len(resp.Items))
	for _, w := range resp.Items {
		// null entries carry nothing to render
		if w == nil {
			continue
		}
		items = append(items, w.ToDisplayItem())
	}

	return items, nil
}
