// Package validation enforces field constraints on discovered event
// candidates before they are checked for duplicates or stored.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// Field length caps, counted in characters.
const (
	MaxNameLength        = 255
	MaxAddressLength     = 255
	MaxCityLength        = 100
	MaxDescriptionLength = 2000
)

const ellipsis = "..."

// Result is the outcome of validating one candidate. Event points at the same
// candidate that was passed in; recoverable fixes are visible there whatever
// the verdict.
type Result struct {
	Valid  bool
	Errors []string
	Event  *models.Candidate
}

// Validator checks candidates against the event constraints.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a validator that judges start dates against the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorWithClock returns a validator using the given clock.
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate checks c and repairs what can be repaired in place: overlong text
// is truncated with a trailing ellipsis, a fuzzy state is normalized and an
// unparsable end date is cleared. Everything else that is wrong is collected
// into Errors; validation never stops at the first problem.
func (v *Validator) Validate(c *models.Candidate) Result {
	var errs []string

	if c.Name == "" {
		errs = append(errs, "Missing or invalid name")
	} else {
		c.Name = truncate(c.Name, MaxNameLength)
	}

	if !models.EventType(c.EventType).IsValid() {
		errs = append(errs, fmt.Sprintf("Invalid eventType: %s", orMissing(c.EventType)))
	}

	if c.StartDate == "" {
		errs = append(errs, "Missing startDate")
	} else if start, ok := models.ParseEventDate(c.StartDate); !ok {
		errs = append(errs, "Invalid startDate format")
	} else if !start.After(v.now()) {
		errs = append(errs, "Event has already started")
	}

	if c.EndDate != "" {
		if _, ok := models.ParseEventDate(c.EndDate); !ok {
			c.EndDate = ""
		}
	}

	if c.Address == "" {
		errs = append(errs, "Missing address")
	} else {
		c.Address = truncate(c.Address, MaxAddressLength)
	}

	if c.City != "" {
		c.City = truncate(c.City, MaxCityLength)
	}

	if c.State != "" {
		if state, ok := ResolveState(c.State); ok {
			c.State = state
		} else {
			errs = append(errs, fmt.Sprintf("Invalid state: %s", c.State))
		}
	}

	if c.Link != "" {
		if msg := checkLink(c.Link); msg != "" {
			errs = append(errs, msg)
		}
	}

	if c.Description != "" {
		c.Description = truncate(c.Description, MaxDescriptionLength)
	}

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
		Event:  c,
	}
}

func checkLink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || !u.IsAbs() {
		return "Invalid link URL"
	}
	if (u.Scheme == "https" || u.Scheme == "http") && u.Host == "" {
		return "Invalid link URL"
	}
	if u.Scheme != "https" {
		return "Link must be HTTPS"
	}
	return ""
}

// truncate cuts s to max characters, the last three being an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

func orMissing(s string) string {
	if s == "" {
		return "missing"
	}
	return s
}

// FormatErrors renders a rejected candidate as one report line:
// "<name or Unknown>: err1, err2".
func FormatErrors(c *models.Candidate, errs []string) string {
	return c.DisplayName() + ": " + strings.Join(errs, ", ")
}
