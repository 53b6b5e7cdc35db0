// Package report renders and delivers the per-run discovery summary email.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

const subjectPrefix = "[Raw Honey Guide] Event Discovery: "

// Summary is everything a run reports: the four outcome buckets plus the
// moment the report was produced.
type Summary struct {
	NewEvents        []models.Candidate
	Duplicates       int
	ValidationErrors []string
	SystemErrors     []string
	GeneratedAt      time.Time
	// Fatal marks a failure report; its subject counts system errors only.
	Fatal bool
}

// ErrorCount is the number of validation and system errors combined.
func (s Summary) ErrorCount() int {
	return len(s.ValidationErrors) + len(s.SystemErrors)
}

// Subject picks the subject line for this summary.
func (s Summary) Subject() string {
	if s.Fatal {
		return Subject(0, len(s.SystemErrors))
	}
	return Subject(len(s.NewEvents), s.ErrorCount())
}

// Subject selects one of the three report subjects. Errors take precedence
// over new events.
func Subject(newCount, errorCount int) string {
	switch {
	case errorCount > 0:
		return fmt.Sprintf("%s%d new, %d errors", subjectPrefix, newCount, errorCount)
	case newCount > 0:
		return fmt.Sprintf("%s%d new events found", subjectPrefix, newCount)
	default:
		return subjectPrefix + "No new events this week"
	}
}

// FailureSummary builds the report sent after a fatal error: no new events,
// no duplicates, and whatever errors were collected before the failure.
func FailureSummary(validationErrors, systemErrors []string, now time.Time) Summary {
	return Summary{
		ValidationErrors: validationErrors,
		SystemErrors:     systemErrors,
		GeneratedAt:      now,
		Fatal:            true,
	}
}

// Sender delivers a rendered report.
type Sender interface {
	Send(ctx context.Context, summary Summary) error
}
