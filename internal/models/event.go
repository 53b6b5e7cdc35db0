package models

import (
	"time"
)

// Event is a persisted honey or beekeeping event row.
type Event struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	EventType          EventType  `json:"event_type"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Address            string     `json:"address"`
	City               string     `json:"city,omitempty"`
	State              string     `json:"state,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`  // filled by geocoding, never at discovery
	Longitude          *float64   `json:"longitude,omitempty"` // filled by geocoding, never at discovery
	ImageURL           *string    `json:"image_url,omitempty"`
	ThumbnailURL       *string    `json:"thumbnail_url,omitempty"`
	Link               string     `json:"link,omitempty"`
	Slug               string     `json:"slug"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	VerificationSource string     `json:"verification_source"`
	LastVerifiedAt     time.Time  `json:"last_verified_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// EventType is the closed set of event categories accepted by the backend.
type EventType string

const (
	EventTypeFestival   EventType = "FESTIVAL"
	EventTypeMarket     EventType = "MARKET"
	EventTypeClass      EventType = "CLASS"
	EventTypeTasting    EventType = "TASTING"
	EventTypeTour       EventType = "TOUR"
	EventTypeFair       EventType = "FAIR"
	EventTypeExpo       EventType = "EXPO"
	EventTypeConference EventType = "CONFERENCE"
)

// EventTypes lists every accepted event type in backend enum order.
var EventTypes = []EventType{
	EventTypeFestival,
	EventTypeMarket,
	EventTypeClass,
	EventTypeTasting,
	EventTypeTour,
	EventTypeFair,
	EventTypeExpo,
	EventTypeConference,
}

// IsValid reports whether t is one of the accepted event types. Matching is exact.
func (t EventType) IsValid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DateLayout is the calendar-date layout used for start/end dates in storage,
// prompts and duplicate checks.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// ParseEventDate parses the date formats generation output is known to use.
// Layouts without a zone are interpreted as UTC.
func ParseEventDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalendarDate returns the calendar date of t as written, in its own
// location, as midnight UTC. An offset never moves the day.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
