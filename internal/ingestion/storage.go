package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// ErrDuplicate is returned by Create when the store rejects the event as an
// existing one (for example a unique slug violation).
var ErrDuplicate = errors.New("event already exists")

// EventRepository is the datastore surface the discovery run needs.
type EventRepository interface {
	// ExistsBySlug reports whether an event with this slug is stored.
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// ExistsByNameAndDate reports whether an event with this name (ignoring
	// case) starts on this calendar date.
	ExistsByNameAndDate(ctx context.Context, name string, startDate time.Time) (bool, error)

	// ExistsByLink reports whether an event with exactly this link is stored.
	ExistsByLink(ctx context.Context, link string) (bool, error)

	// Create inserts a new event. It never updates an existing row.
	Create(ctx context.Context, event models.Event) error
}

// MemoryEventRepository implements an in-memory event repository for testing/development.
type MemoryEventRepository struct {
	mu      sync.RWMutex
	events  map[string]models.Event
	slugIdx map[string]string // slug -> ID
}

// NewMemoryEventRepository creates a new in-memory event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events:  make(map[string]models.Event),
		slugIdx: make(map[string]string),
	}
}

// ExistsBySlug checks the slug index.
func (r *MemoryEventRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slugIdx[slug]
	return ok, nil
}

// ExistsByNameAndDate scans for a case-insensitive name match on the same date.
func (r *MemoryEventRepository) ExistsByNameAndDate(ctx context.Context, name string, startDate time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := models.CalendarDate(startDate)
	for _, event := range r.events {
		if strings.EqualFold(event.Name, name) && models.CalendarDate(event.StartDate).Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByLink scans for an exact link match.
func (r *MemoryEventRepository) ExistsByLink(ctx context.Context, link string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range r.events {
		if event.Link != "" && event.Link == link {
			return true, nil
		}
	}
	return false, nil
}

// Create stores a new event, enforcing slug uniqueness like the events table does.
func (r *MemoryEventRepository) Create(ctx context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slugIdx[event.Slug]; ok {
		return ErrDuplicate
	}

	r.events[event.ID] = event
	r.slugIdx[event.Slug] = event.ID
	return nil
}

// GetBySlug retrieves an event by slug.
func (r *MemoryEventRepository) GetBySlug(slug string) (*models.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.slugIdx[slug]
	if !ok {
		return nil, false
	}
	event := r.events[id]
	return &event, true
}

// Size returns the number of events in the repository.
func (r *MemoryEventRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
