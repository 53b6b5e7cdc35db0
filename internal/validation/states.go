package validation

import "strings"

// USStates is the enumerated list of U.S. state and territory names accepted
// for an event's state. Order matters: fuzzy matching returns the first hit.
var USStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut",
	"Delaware", "Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
	"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan",
	"Minnesota", "Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire",
	"New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
	"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina", "South Dakota",
	"Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington", "West Virginia",
	"Wisconsin", "Wyoming", "District of Columbia",
}

// ResolveState maps a state value onto an enumerated name. An exact match wins;
// otherwise the first name (in list order) that equals the value ignoring case
// or contains it as a case-insensitive substring is returned.
//
// Substring matching is ambiguous ("kansas" resolves to "Arkansas"); callers
// rely on the list order as the tie-break.
func ResolveState(value string) (string, bool) {
	for _, s := range USStates {
		if s == value {
			return s, true
		}
	}

	needle := strings.ToLower(value)
	for _, s := range USStates {
		lower := strings.ToLower(s)
		if lower == needle || strings.Contains(lower, needle) {
			return s, true
		}
	}
	return "", false
}
