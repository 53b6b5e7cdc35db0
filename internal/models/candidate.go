package models

import (
	"encoding/json"
)

// Candidate is an unvalidated event extracted from generation output.
// Validation mutates it in place (truncation, state normalization, clearing a
// bad end date).
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	EventType   string `json:"eventType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Link        string `json:"link,omitempty"`
}

// UnmarshalJSON decodes a candidate leniently: any field whose value is not a
// JSON string (null, number, object...) is treated as absent, and a non-object
// document yields an empty candidate instead of an error.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = Candidate{}
		return nil
	}

	str := func(key string) string {
		if s, ok := raw[key].(string); ok {
			return s
		}
		return ""
	}

	*c = Candidate{
		Name:        str("name"),
		Description: str("description"),
		EventType:   str("eventType"),
		StartDate:   str("startDate"),
		EndDate:     str("endDate"),
		Address:     str("address"),
		City:        str("city"),
		State:       str("state"),
		Link:        str("link"),
	}
	return nil
}

// DisplayName returns the candidate name, or "Unknown" when it has none.
func (c *Candidate) DisplayName() string {
	if c.Name == "" {
		return "Unknown"
	}
	return c.Name
}
