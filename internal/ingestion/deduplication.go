package ingestion

import (
	"context"
	"fmt"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// DuplicateReason names the rule that matched an existing event.
type DuplicateReason string

const (
	NotDuplicate       DuplicateReason = ""
	DuplicateBySlug    DuplicateReason = "slug"
	DuplicateByNameDay DuplicateReason = "name_and_date"
	DuplicateByLink    DuplicateReason = "link"
)

// DuplicateChecker decides whether a validated candidate is already stored.
type DuplicateChecker struct {
	repo EventRepository
}

// NewDuplicateChecker creates a checker backed by repo.
func NewDuplicateChecker(repo EventRepository) *DuplicateChecker {
	return &DuplicateChecker{repo: repo}
}

// Check runs the slug, name+date and link lookups in that order and stops at
// the first match. The candidate must have passed validation, so its start
// date parses. There is no fuzzy matching: similar names on different dates
// are distinct events.
func (d *DuplicateChecker) Check(ctx context.Context, c *models.Candidate) (DuplicateReason, error) {
	exists, err := d.repo.ExistsBySlug(ctx, models.Slugify(c.Name))
	if err != nil {
		return NotDuplicate, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return DuplicateBySlug, nil
	}

	start, ok := models.ParseEventDate(c.StartDate)
	if !ok {
		return NotDuplicate, fmt.Errorf("candidate %q has unparsable start date %q", c.Name, c.StartDate)
	}

	exists, err = d.repo.ExistsByNameAndDate(ctx, c.Name, models.CalendarDate(start))
	if err != nil {
		return NotDuplicate, fmt.Errorf("check name and date: %w", err)
	}
	if exists {
		return DuplicateByNameDay, nil
	}

	if c.Link != "" {
		exists, err = d.repo.ExistsByLink(ctx, c.Link)
		if err != nil {
			return NotDuplicate, fmt.Errorf("check link: %w", err)
		}
		if exists {
			return DuplicateByLink, nil
		}
	}

	return NotDuplicate, nil
}
