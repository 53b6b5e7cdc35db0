package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// DefaultQueryInterval is the minimum spacing between two generation calls.
const DefaultQueryInterval = 2 * time.Second

// QueryError records a query whose generation call failed.
type QueryError struct {
	Query string
	Err   error
}

func (e QueryError) Error() string {
	return fmt.Sprintf("Search error for %q: %v", e.Query, e.Err)
}

func (e QueryError) Unwrap() error {
	return e.Err
}

// DispatchResult holds everything one pass over the query list produced.
type DispatchResult struct {
	Candidates []models.Candidate
	Errors     []QueryError
	// PerQuery counts the candidates each successful query contributed.
	PerQuery map[string]int
}

// Dispatcher runs every query in order, one generation call at a time.
type Dispatcher struct {
	searcher  Searcher
	extractor *Extractor
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher whose calls are paced by a token bucket
// refilled once per interval with a burst of one, so the first query runs
// immediately and each following query starts at least interval after the
// previous one. A non-positive interval disables pacing.
func NewDispatcher(searcher Searcher, interval time.Duration, logger *slog.Logger) *Dispatcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Dispatcher{
		searcher:  searcher,
		extractor: NewExtractor(logger),
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Dispatch runs the queries in order. A failing query is recorded and
// skipped; it is not retried. The only error returned is the context's, when
// it is cancelled while waiting for the limiter.
func (d *Dispatcher) Dispatch(ctx context.Context, queries []string) (DispatchResult, error) {
	result := DispatchResult{PerQuery: make(map[string]int, len(queries))}

	for _, query := range queries {
		if err := d.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("waiting for query slot: %w", err)
		}

		d.logger.Info("searching", "query", query, "provider", d.searcher.Name())

		start := time.Now()
		blocks, err := d.searcher.Search(ctx, query)
		if err != nil {
			d.logger.Error("search failed", "query", query, "error", err)
			result.Errors = append(result.Errors, QueryError{Query: query, Err: err})
			continue
		}

		candidates := d.extractor.Extract(blocks)
		result.PerQuery[query] = len(candidates)
		result.Candidates = append(result.Candidates, candidates...)

		d.logger.Info("found potential events",
			"query", query,
			"count", len(candidates),
			"duration", time.Since(start),
		)
	}

	return result, nil
}
