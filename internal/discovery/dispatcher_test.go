package discovery

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDispatcherCollectsAcrossQueries(t *testing.T) {
	searcher := NewMockSearcher()
	searcher.SetText("q1", `[{"name":"A"},{"name":"B"}]`)
	searcher.SetText("q2", `[]`)
	searcher.SetText("q3", `[{"name":"C"}]`)

	d := NewDispatcher(searcher, 0, discardLogger())

	result, err := d.Dispatch(context.Background(), []string{"q1", "q2", "q3"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if len(result.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(result.Candidates))
	}
	if result.PerQuery["q1"] != 2 || result.PerQuery["q2"] != 0 || result.PerQuery["q3"] != 1 {
		t.Errorf("unexpected per-query counts: %v", result.PerQuery)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestDispatcherContinuesAfterQueryFailure(t *testing.T) {
	searcher := NewMockSearcher()
	searcher.SetError("broken", errors.New("upstream 529 overloaded"))
	searcher.SetText("healthy", `[{"name":"Honey Fair"}]`)

	d := NewDispatcher(searcher, 0, discardLogger())

	result, err := d.Dispatch(context.Background(), []string{"broken", "healthy"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 query error, got %d", len(result.Errors))
	}
	qe := result.Errors[0]
	if qe.Query != "broken" {
		t.Errorf("expected failing query recorded, got %q", qe.Query)
	}
	if got, want := qe.Error(), `Search error for "broken": upstream 529 overloaded`; got != want {
		t.Errorf("QueryError.Error() = %q, want %q", got, want)
	}

	if len(result.Candidates) != 1 || result.Candidates[0].Name != "Honey Fair" {
		t.Errorf("expected the healthy query to contribute, got %+v", result.Candidates)
	}

	calls := searcher.Calls()
	if len(calls) != 2 || calls[0] != "broken" || calls[1] != "healthy" {
		t.Errorf("expected queries in order with no retry, got %v", calls)
	}
}

func TestDispatcherPacesQueries(t *testing.T) {
	searcher := NewMockSearcher()
	interval := 40 * time.Millisecond
	d := NewDispatcher(searcher, interval, discardLogger())

	start := time.Now()
	if _, err := d.Dispatch(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	elapsed := time.Since(start)

	// first query is immediate, the next two each wait one interval
	if elapsed < 2*interval-5*time.Millisecond {
		t.Errorf("expected at least %v between queries, run took %v", 2*interval, elapsed)
	}
}

func TestDispatcherStopsOnCancelledContext(t *testing.T) {
	searcher := NewMockSearcher()
	d := NewDispatcher(searcher, time.Hour, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Dispatch(ctx, []string{"first", "second"})
	if err == nil {
		t.Fatal("expected error when context expires while waiting")
	}

	if calls := searcher.Calls(); len(calls) != 1 {
		t.Errorf("expected only the first query to run, got %v", calls)
	}
}
