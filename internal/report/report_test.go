package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

var reportDate = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func parse(t *testing.T, summary Summary) *goquery.Document {
	t.Helper()
	html, err := Render(summary)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name       string
		newCount   int
		errorCount int
		want       string
	}{
		{"errors win", 3, 2, "[Raw Honey Guide] Event Discovery: 3 new, 2 errors"},
		{"errors without events", 0, 1, "[Raw Honey Guide] Event Discovery: 0 new, 1 errors"},
		{"new events only", 4, 0, "[Raw Honey Guide] Event Discovery: 4 new events found"},
		{"quiet week", 0, 0, "[Raw Honey Guide] Event Discovery: No new events this week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.newCount, tt.errorCount))
		})
	}
}

func TestSummarySubjectCountsBothErrorKinds(t *testing.T) {
	s := Summary{
		NewEvents:        []models.Candidate{{Name: "A"}},
		ValidationErrors: []string{"x: bad"},
		SystemErrors:     []string{"boom"},
	}
	assert.Equal(t, 2, s.ErrorCount())
	assert.Equal(t, "[Raw Honey Guide] Event Discovery: 1 new, 2 errors", s.Subject())
}

func TestRenderEmptyRun(t *testing.T) {
	doc := parse(t, Summary{GeneratedAt: reportDate})

	assert.Equal(t, "Raw Honey Guide Event Discovery", doc.Find("h1").Text())
	assert.Equal(t, "Weekly Report - Friday, October 16, 2026", doc.Find(".subtitle").Text())
	assert.Equal(t, "No new events discovered this week.", doc.Find(".no-events").Text())
	assert.Equal(t, 0, doc.Find(".event-card").Length())
	assert.Equal(t, 3, doc.Find(".stat-row").Length(), "system error row only appears when non-zero")
	assert.Equal(t, 0, doc.Find(".error-item").Length())
}

func TestRenderEventsAndErrors(t *testing.T) {
	summary := Summary{
		NewEvents: []models.Candidate{
			{
				Name:        "Austin Honey Fest",
				EventType:   "FESTIVAL",
				StartDate:   "2026-11-14",
				EndDate:     "2026-11-15",
				City:        "Austin",
				State:       "Texas",
				Description: "Local honey and bees",
				Link:        "https://example.com/fest",
			},
			{
				Name:      "Beekeeping 101",
				EventType: "CLASS",
				StartDate: "2026-12-01",
				State:     "Ohio",
			},
		},
		Duplicates:       2,
		ValidationErrors: []string{"Unknown: Missing event name"},
		SystemErrors:     []string{`Search error for "honey festivals": timeout`},
		GeneratedAt:      reportDate,
	}
	doc := parse(t, summary)

	cards := doc.Find(".event-card")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, 0, doc.Find(".no-events").Length())

	first := cards.First()
	assert.Equal(t, "Austin Honey Fest", first.Find(".event-name").Text())
	assert.Equal(t, "FESTIVAL", first.Find(".event-type").Text())
	assert.Equal(t, "Austin, Texas", first.Find(".event-meta strong").Text())
	assert.Contains(t, first.Find(".event-meta").Text(), "2026-11-14 - 2026-11-15")
	href, ok := first.Find("a.event-link").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/fest", href)

	second := cards.Eq(1)
	assert.Equal(t, "Ohio", second.Find(".event-meta strong").Text())
	assert.Contains(t, second.Text(), "No description available.")
	assert.Equal(t, 0, second.Find("a.event-link").Length())

	assert.Equal(t, 4, doc.Find(".stat-row").Length())
	assert.Equal(t, 2, doc.Find(".error-item").Length())
	assert.Equal(t, "2", doc.Find(".stat-value.warning").Text())

	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"New Events", "Validation Errors", "System Errors"}, headings)
}

func TestRenderEscapesUntrustedText(t *testing.T) {
	summary := Summary{
		NewEvents: []models.Candidate{{
			Name:        `<script>alert("x")</script>`,
			EventType:   "FAIR",
			StartDate:   "2026-11-14",
			Description: `Bees & "honey" <b>bold</b> it's`,
		}},
		ValidationErrors: []string{"<img src=x onerror=alert(1)>: Invalid state"},
		GeneratedAt:      reportDate,
	}

	html, err := Render(summary)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Bees &amp; ")

	// Parsed text round-trips to the original values.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, summary.NewEvents[0].Name, doc.Find(".event-name").Text())
	assert.Equal(t, 0, doc.Find(".event-card script").Length())
}

func TestFailureSummary(t *testing.T) {
	s := FailureSummary([]string{"a: bad"}, []string{"Fatal error: db down"}, reportDate)
	assert.Empty(t, s.NewEvents)
	assert.Zero(t, s.Duplicates)
	assert.Equal(t, 2, s.ErrorCount())
	assert.Equal(t, "[Raw Honey Guide] Event Discovery: 0 new, 1 errors", s.Subject())
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewWriterSender(&buf)

	err := sender.Send(context.Background(), Summary{GeneratedAt: reportDate})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Subject: [Raw Honey Guide] Event Discovery: No new events this week\n\n"))
	assert.Contains(t, out, "<!DOCTYPE html>")
}

func TestMailerBuildMessage(t *testing.T) {
	mailer := NewMailer(MailerConfig{Password: "app-password"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "smtp.gmail.com", mailer.config.Host)
	assert.Equal(t, 587, mailer.config.Port)

	msg, err := mailer.BuildMessage(Summary{
		NewEvents:   []models.Candidate{{Name: "A", EventType: "FAIR", StartDate: "2026-11-14"}},
		GeneratedAt: reportDate,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"[Raw Honey Guide] Event Discovery: 1 new events found"}, msg.GetGenHeader(mail.HeaderSubject))

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{Recipient}, recipients)

	from := msg.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], SenderAddress)
	assert.Contains(t, from[0], SenderName)
}

func TestClassifySendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"plain dial error", errors.New("dial tcp: connection refused")},
		{"permanent smtp rejection", &mail.SendError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifySendError(tt.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, ErrTemporary)
			assert.Contains(t, err.Error(), "failed to send report")
		})
	}
}
