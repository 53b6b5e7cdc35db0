package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// ReportToolName is the client tool the model calls to hand back events as
// structured input instead of prose.
const ReportToolName = "report_events"

// BuildSearchPrompt renders the user prompt for one search query.
func BuildSearchPrompt(query string, today time.Time, maxEvents int) string {
	types := make([]string, 0, len(models.EventTypes))
	for _, t := range models.EventTypes {
		types = append(types, string(t))
	}

	return fmt.Sprintf(`Search for honey and beekeeping events matching: "%s"

Report the events you find by calling the %s tool. If you cannot call the tool,
return ONLY a JSON array of events instead. Each event must have these exact fields:
{
  "name": "Event Name",
  "description": "Brief description (max 500 chars)",
  "eventType": "%s",
  "startDate": "YYYY-MM-DD",
  "endDate": "YYYY-MM-DD or null if single day",
  "address": "Full street address or venue name",
  "city": "City name",
  "state": "Full US state name (e.g., 'California' not 'CA')",
  "link": "https://event-official-website.com"
}

Only include events that:
- Are in the United States
- Start after today (%s)
- Are specifically about honey, beekeeping, or apiaries
- Have verifiable information from official sources

Return up to %d events maximum. If no events found, return an empty array [].
Only return the JSON array, no other text.`,
		query,
		ReportToolName,
		strings.Join(types, "|"),
		today.UTC().Format(models.DateLayout),
		maxEvents,
	)
}

// reportToolSchema is the JSON schema of the report_events tool input.
func reportToolSchema() map[string]any {
	types := make([]string, 0, len(models.EventTypes))
	for _, t := range models.EventTypes {
		types = append(types, string(t))
	}

	str := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}

	return map[string]any{
		"events": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        str("Event name"),
					"description": str("Brief description, max 500 characters"),
					"eventType":   map[string]any{"type": "string", "enum": types},
					"startDate":   str("Start date, YYYY-MM-DD"),
					"endDate":     str("End date, YYYY-MM-DD, omitted for single-day events"),
					"address":     str("Full street address or venue name"),
					"city":        str("City name"),
					"state":       str("Full U.S. state name"),
					"link":        str("Official https URL"),
				},
				"required": []string{"name", "eventType", "startDate", "address"},
			},
		},
	}
}
