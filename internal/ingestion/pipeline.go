package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/discovery"
	"github.com/rawhoneyguide/honeyscout/internal/metrics"
	"github.com/rawhoneyguide/honeyscout/internal/models"
	"github.com/rawhoneyguide/honeyscout/internal/report"
	"github.com/rawhoneyguide/honeyscout/internal/validation"
)

// Candidate outcome labels used in logs and metrics.
const (
	OutcomeNew       = "new"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Outcome holds the four buckets a run reports on. Every candidate lands in
// exactly one of NewEvents, Duplicates, ValidationErrors or (for per-event
// processing failures) SystemErrors.
type Outcome struct {
	NewEvents        []models.Candidate
	Duplicates       int
	ValidationErrors []string
	SystemErrors     []string
	Discovered       int
}

// Summary converts the outcome into a report summary stamped at now.
func (o Outcome) Summary(now time.Time) report.Summary {
	return report.Summary{
		NewEvents:        o.NewEvents,
		Duplicates:       o.Duplicates,
		ValidationErrors: o.ValidationErrors,
		SystemErrors:     o.SystemErrors,
		GeneratedAt:      now,
	}
}

// Pipeline orchestrates one discovery run: dispatch, extract, validate,
// dedupe, persist and report.
type Pipeline struct {
	dispatcher *discovery.Dispatcher
	validator  *validation.Validator
	dedup      *DuplicateChecker
	persister  *Persister
	sender     report.Sender
	metrics    *metrics.Collector
	logger     *slog.Logger
	config     PipelineConfig
	now        func() time.Time
}

// PipelineConfig holds configuration for a discovery run.
type PipelineConfig struct {
	Queries []string
	// DryRun skips inserts. Candidates that would be inserted are still
	// reported as new.
	DryRun        bool
	DeliveryRetry RetryPolicy
}

// DefaultPipelineConfig returns sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Queries:       discovery.DefaultQueries,
		DeliveryRetry: DefaultRetryPolicy(),
	}
}

// NewPipeline creates a new discovery pipeline. collector may be nil.
func NewPipeline(
	dispatcher *discovery.Dispatcher,
	validator *validation.Validator,
	repo EventRepository,
	persister *Persister,
	sender report.Sender,
	collector *metrics.Collector,
	logger *slog.Logger,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		dispatcher: dispatcher,
		validator:  validator,
		dedup:      NewDuplicateChecker(repo),
		persister:  persister,
		sender:     sender,
		metrics:    collector,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// Run executes one full discovery run and sends the report. A non-nil error
// is fatal; the returned Outcome then holds whatever was collected so far and
// the caller is expected to send a failure report via ReportFailure.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	var outcome Outcome

	p.logger.Info("starting event discovery",
		"queries", len(p.config.Queries),
		"dry_run", p.config.DryRun,
	)

	result, err := p.dispatcher.Dispatch(ctx, p.config.Queries)
	for _, qerr := range result.Errors {
		outcome.SystemErrors = append(outcome.SystemErrors, qerr.Error())
	}
	p.observeQueries(result)
	if err != nil {
		return outcome, fmt.Errorf("dispatch queries: %w", err)
	}

	outcome.Discovered = len(result.Candidates)
	p.metrics.ObserveCandidates(len(result.Candidates))
	p.logger.Info("candidates discovered", "count", outcome.Discovered)

	for i := range result.Candidates {
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("run cancelled: %w", err)
		}
		p.processCandidate(ctx, &result.Candidates[i], &outcome)
	}

	p.logger.Info("discovery complete",
		"new", len(outcome.NewEvents),
		"duplicates", outcome.Duplicates,
		"validation_errors", len(outcome.ValidationErrors),
		"system_errors", len(outcome.SystemErrors),
	)

	if err := p.deliver(ctx, outcome.Summary(p.now())); err != nil {
		return outcome, err
	}

	return outcome, nil
}

// processCandidate routes one candidate into exactly one outcome bucket.
func (p *Pipeline) processCandidate(ctx context.Context, c *models.Candidate, outcome *Outcome) {
	res := p.validator.Validate(c)
	if !res.Valid {
		entry := validation.FormatErrors(c, res.Errors)
		outcome.ValidationErrors = append(outcome.ValidationErrors, entry)
		p.metrics.ObserveOutcome(OutcomeInvalid)
		p.logger.Warn("candidate failed validation", "event", c.DisplayName(), "errors", res.Errors)
		return
	}

	reason, err := p.dedup.Check(ctx, c)
	if err != nil {
		p.recordProcessingError(c, err, outcome)
		return
	}
	if reason != NotDuplicate {
		outcome.Duplicates++
		p.metrics.ObserveOutcome(OutcomeDuplicate)
		p.logger.Info("skipping duplicate", "event", c.Name, "matched_on", string(reason))
		return
	}

	if p.config.DryRun {
		outcome.NewEvents = append(outcome.NewEvents, *c)
		p.metrics.ObserveOutcome(OutcomeNew)
		p.logger.Info("would add event", "event", c.Name)
		return
	}

	event, err := p.persister.Persist(ctx, c)
	if errors.Is(err, ErrDuplicate) {
		outcome.Duplicates++
		p.metrics.ObserveOutcome(OutcomeDuplicate)
		p.logger.Info("skipping duplicate", "event", c.Name, "matched_on", "insert")
		return
	}
	if err != nil {
		p.recordProcessingError(c, err, outcome)
		return
	}

	outcome.NewEvents = append(outcome.NewEvents, *c)
	p.metrics.ObserveOutcome(OutcomeNew)
	p.logger.Info("added event", "event", event.Name, "id", event.ID, "slug", event.Slug)
}

func (p *Pipeline) recordProcessingError(c *models.Candidate, err error, outcome *Outcome) {
	outcome.SystemErrors = append(outcome.SystemErrors, "Processing error: "+err.Error())
	p.metrics.ObserveOutcome(OutcomeError)
	p.logger.Error("failed to process candidate", "event", c.DisplayName(), "error", err)
}

func (p *Pipeline) observeQueries(result discovery.DispatchResult) {
	for range result.PerQuery {
		p.metrics.ObserveQuery(true)
	}
	for range result.Errors {
		p.metrics.ObserveQuery(false)
	}
}

// deliver sends the report, retrying transient delivery failures.
func (p *Pipeline) deliver(ctx context.Context, summary report.Summary) error {
	err := Retry(ctx, p.config.DeliveryRetry, func() error {
		if err := p.sender.Send(ctx, summary); err != nil {
			p.logger.Warn("report delivery attempt failed", "error", err)
			return deliveryError(err, p.config.DeliveryRetry)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// deliveryError marks a failed send as retryable. A relay that answered with
// a temporary rejection (greylisting, rate limits) is given the longest
// backoff the policy allows before the next attempt.
func deliveryError(err error, policy RetryPolicy) error {
	if errors.Is(err, report.ErrTemporary) {
		return NewRetryableErrorWithDelay(err, policy.MaxBackoff)
	}
	return NewRetryableError(err)
}

// ReportFailure sends the best-effort failure report after a fatal error:
// no new events, zero duplicates, the validation errors collected so far, and
// the system errors plus "Fatal error: <msg>". A delivery failure is only
// logged.
func ReportFailure(ctx context.Context, sender report.Sender, logger *slog.Logger, outcome Outcome, fatal error) Outcome {
	outcome.SystemErrors = append(outcome.SystemErrors, "Fatal error: "+fatal.Error())
	logger.Error("discovery run failed", "error", fatal)

	summary := report.FailureSummary(outcome.ValidationErrors, outcome.SystemErrors, time.Now())
	if sender == nil {
		return outcome
	}
	if err := sender.Send(ctx, summary); err != nil {
		logger.Error("failed to send error report", "error", err)
	}
	return outcome
}
