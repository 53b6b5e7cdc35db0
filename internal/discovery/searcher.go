// Package discovery runs search-augmented generation queries and turns their
// output into event candidates.
package discovery

import (
	"context"
	"encoding/json"
)

// Block types inspected by the extractor.
const (
	BlockTypeText    = "text"
	BlockTypeToolUse = "tool_use"
)

// ContentBlock is one block of generation output. Text blocks carry prose
// that may embed a JSON array; tool_use blocks carry structured tool input.
type ContentBlock struct {
	Type  string
	Text  string
	Name  string
	Input json.RawMessage
}

// Searcher performs one search-augmented generation call for a query.
type Searcher interface {
	// Name identifies the provider behind the searcher.
	Name() string

	// Search runs the query and returns the raw content blocks produced.
	Search(ctx context.Context, query string) ([]ContentBlock, error)
}
