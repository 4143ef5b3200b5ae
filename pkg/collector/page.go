package collector

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingMetadata indicates a page response without the metadata object.
	ErrMissingMetadata = errors.New("page response missing metadata")

	// ErrInvalidMetadata indicates metadata whose total/limit cannot drive the cursor.
	ErrInvalidMetadata = errors.New("page response metadata invalid")
)

// Item is a single remote record. Extra fields the gateway sends are ignored;
// only the name (key) and id (value) matter for the mapping.
type Item struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// PageMetadata carries the pagination window the gateway reports.
// Total and limit are captured once, from the first page, and stay fixed for
// the whole run even if the remote collection mutates mid-run.
type PageMetadata struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// Page is one bounded batch of items returned by a single request.
type Page struct {
	Metadata *PageMetadata `json:"metadata"`
	Data     []Item        `json:"data"`
}

// decodePage parses and validates a page response body.
// A missing metadata object is an error: the collector cannot size the run
// without total and limit. A zero limit is only valid for an empty collection.
func decodePage(body []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	if page.Metadata == nil {
		return nil, ErrMissingMetadata
	}
	if page.Metadata.Total < 0 {
		return nil, fmt.Errorf("%w: negative total %d", ErrInvalidMetadata, page.Metadata.Total)
	}
	if page.Metadata.Limit < 1 && page.Metadata.Total > 0 {
		return nil, fmt.Errorf("%w: limit %d with total %d", ErrInvalidMetadata, page.Metadata.Limit, page.Metadata.Total)
	}

	return &page, nil
}
