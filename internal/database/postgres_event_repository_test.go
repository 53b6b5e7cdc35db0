package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawhoneyguide/honeyscout/internal/ingestion"
	"github.com/rawhoneyguide/honeyscout/internal/models"
)

func TestExistsQueries(t *testing.T) {
	start := time.Date(2026, 11, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		where    sq.Sqlizer
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "slug",
			where:    sq.Eq{"slug": "austin-honey-fest"},
			wantSQL:  "SELECT id FROM events WHERE slug = $1 LIMIT 1",
			wantArgs: []interface{}{"austin-honey-fest"},
		},
		{
			name:     "name and date",
			where:    nameAndDate("Austin Honey Fest", start),
			wantSQL:  "SELECT id FROM events WHERE (LOWER(name) = LOWER($1) AND start_date = $2) LIMIT 1",
			wantArgs: []interface{}{"Austin Honey Fest", "2026-11-14"},
		},
		{
			name:     "link",
			where:    sq.Eq{"link": "https://example.com/fest"},
			wantSQL:  "SELECT id FROM events WHERE link = $1 LIMIT 1",
			wantArgs: []interface{}{"https://example.com/fest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := existsQuery(tt.where)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestInsertQuery(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	event := models.Event{
		ID:                 "3f7c1a52-8d0e-4a7b-9b1e-2f4d6c8a0e11",
		Name:               "Austin Honey Fest",
		EventType:          models.EventTypeFestival,
		StartDate:          time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC),
		Address:            "1 Main St",
		State:              "Texas",
		Slug:               "austin-honey-fest",
		IsActive:           true,
		VerificationSource: "AI Discovery (Claude)",
		LastVerifiedAt:     now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	query, args, err := insertQuery(event)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO events (id,name,description,event_type,start_date,end_date,address,city,state,latitude,longitude,image_url,thumbnail_url,link,slug,is_active,created_at,updated_at,last_verified_at,verification_source,is_verified)")
	assert.Contains(t, query, "$21")
	require.Len(t, args, len(eventColumns))

	assert.Equal(t, "2026-11-14", args[4])
	assert.Nil(t, args[5], "end date")
	assert.Equal(t, "FESTIVAL", args[3])
	assert.Equal(t, false, args[20], "is_verified")
	assert.Equal(t, "AI Discovery (Claude)", args[19])
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505", Constraint: "events_slug_key"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23502"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

// TestPostgresEventRepository runs against a real database when
// TEST_DATABASE_URL is set.
func TestPostgresEventRepository(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.URL = dbURL

	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, HealthCheck(ctx, db))

	repo := NewPostgresEventRepository(db)
	suffix := uuid.NewString()[:8]
	now := time.Now().UTC()
	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	event := models.Event{
		ID:                 uuid.NewString(),
		Name:               "Integration Honey Fair " + suffix,
		EventType:          models.EventTypeFair,
		StartDate:          start,
		Address:            "1 Test Rd",
		Link:               "https://example.com/" + suffix,
		Slug:               "integration-honey-fair-" + suffix,
		IsActive:           true,
		VerificationSource: "AI Discovery (Claude)",
		LastVerifiedAt:     now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DELETE FROM events WHERE id = $1", event.ID)
	})

	require.NoError(t, repo.Create(ctx, event))

	found, err := repo.ExistsBySlug(ctx, event.Slug)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.ExistsByNameAndDate(ctx, "INTEGRATION honey fair "+suffix, start)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.ExistsByNameAndDate(ctx, event.Name, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.ExistsByLink(ctx, event.Link)
	require.NoError(t, err)
	assert.True(t, found)

	dup := event
	dup.ID = uuid.NewString()
	err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ingestion.ErrDuplicate)
}
