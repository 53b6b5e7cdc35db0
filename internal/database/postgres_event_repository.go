package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/rawhoneyguide/honeyscout/internal/ingestion"
	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var eventColumns = []string{
	"id", "name", "description", "event_type", "start_date", "end_date",
	"address", "city", "state", "latitude", "longitude", "image_url",
	"thumbnail_url", "link", "slug", "is_active", "created_at", "updated_at",
	"last_verified_at", "verification_source", "is_verified",
}

// PostgresEventRepository implements ingestion.EventRepository on the events table.
type PostgresEventRepository struct {
	db *sql.DB
}

var _ ingestion.EventRepository = (*PostgresEventRepository)(nil)

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// ExistsBySlug reports whether a row with this slug exists.
func (r *PostgresEventRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, sq.Eq{"slug": slug})
}

// ExistsByNameAndDate matches the name case-insensitively on the same start date.
func (r *PostgresEventRepository) ExistsByNameAndDate(ctx context.Context, name string, startDate time.Time) (bool, error) {
	return r.exists(ctx, nameAndDate(name, startDate))
}

// ExistsByLink matches the link exactly.
func (r *PostgresEventRepository) ExistsByLink(ctx context.Context, link string) (bool, error) {
	if link == "" {
		return false, nil
	}
	return r.exists(ctx, sq.Eq{"link": link})
}

func (r *PostgresEventRepository) exists(ctx context.Context, where sq.Sqlizer) (bool, error) {
	query, args, err := existsQuery(where)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var id string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query events: %w", err)
	}
	return true, nil
}

// Create inserts one event row. A unique violation (the slug) is reported as
// ingestion.ErrDuplicate.
func (r *PostgresEventRepository) Create(ctx context.Context, event models.Event) error {
	query, args, err := insertQuery(event)
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ingestion.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func existsQuery(where sq.Sqlizer) (string, []interface{}, error) {
	return psql.Select("id").From("events").Where(where).Limit(1).ToSql()
}

func nameAndDate(name string, startDate time.Time) sq.Sqlizer {
	return sq.And{
		sq.Expr("LOWER(name) = LOWER(?)", name),
		sq.Eq{"start_date": models.CalendarDate(startDate).Format(models.DateLayout)},
	}
}

func insertQuery(event models.Event) (string, []interface{}, error) {
	var endDate interface{}
	if event.EndDate != nil {
		endDate = models.CalendarDate(*event.EndDate).Format(models.DateLayout)
	}

	return psql.Insert("events").
		Columns(eventColumns...).
		Values(
			event.ID,
			event.Name,
			nullString(event.Description),
			string(event.EventType),
			models.CalendarDate(event.StartDate).Format(models.DateLayout),
			endDate,
			event.Address,
			nullString(event.City),
			nullString(event.State),
			event.Latitude,
			event.Longitude,
			event.ImageURL,
			event.ThumbnailURL,
			nullString(event.Link),
			event.Slug,
			event.IsActive,
			event.CreatedAt,
			event.UpdatedAt,
			event.LastVerifiedAt,
			event.VerificationSource,
			event.IsVerified,
		).
		ToSql()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
