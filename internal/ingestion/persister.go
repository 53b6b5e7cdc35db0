package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rawhoneyguide/honeyscout/internal/discovery"
	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// Persister turns validated, non-duplicate candidates into stored events.
type Persister struct {
	repo   EventRepository
	source string
	now    func() time.Time
	newID  func() string
}

// NewPersister creates a persister that labels rows with verificationSource,
// falling back to the Anthropic provider's label.
func NewPersister(repo EventRepository, verificationSource string) *Persister {
	if verificationSource == "" {
		verificationSource = discovery.VerificationSource(discovery.ProviderAnthropic)
	}
	return &Persister{
		repo:   repo,
		source: verificationSource,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// BuildEvent maps a validated candidate onto a new, unverified event row.
// Coordinates and images are left empty for later processes.
func (p *Persister) BuildEvent(c *models.Candidate) (models.Event, error) {
	start, ok := models.ParseEventDate(c.StartDate)
	if !ok {
		return models.Event{}, fmt.Errorf("candidate %q has unparsable start date %q", c.Name, c.StartDate)
	}

	now := p.now().UTC()
	event := models.Event{
		ID:                 p.newID(),
		Name:               c.Name,
		Description:        c.Description,
		EventType:          models.EventType(c.EventType),
		StartDate:          models.CalendarDate(start),
		Address:            c.Address,
		City:               c.City,
		State:              c.State,
		Link:               c.Link,
		Slug:               models.Slugify(c.Name),
		IsActive:           true,
		IsVerified:         false,
		VerificationSource: p.source,
		LastVerifiedAt:     now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if c.EndDate != "" {
		if end, ok := models.ParseEventDate(c.EndDate); ok {
			day := models.CalendarDate(end)
			event.EndDate = &day
		}
	}

	return event, nil
}

// Persist inserts the candidate. It is insert-only; ErrDuplicate from the
// store is passed through unchanged.
func (p *Persister) Persist(ctx context.Context, c *models.Candidate) (models.Event, error) {
	event, err := p.BuildEvent(c)
	if err != nil {
		return models.Event{}, err
	}

	if err := p.repo.Create(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("insert event %q: %w", event.Slug, err)
	}

	return event, nil
}
