package core

import (
	"slices"
	"strings"
)

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Organizer       string `json:"organizer,omitempty"`
	SubjectContains string `json:"subject,omitempty"`
}

func (f Filter) Match(m Meeting) bool {
	if f.Organizer != "" && !strings.EqualFold(strings.TrimSpace(f.Organizer), m.Organizer) {
		return false
	}
	if f.SubjectContains != "" &&
		!strings.Contains(strings.ToLower(m.Subject), strings.ToLower(f.SubjectContains)) {
		return false
	}
	return true
}

// FilterMeetings keeps the matching meetings and orders them by start time.
// Meetings without a start keep their relative order after all timed ones.
func FilterMeetings(meetings []Meeting, f Filter) []Meeting {
	filtered := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if f.Match(m) {
			filtered = append(filtered, m)
		}
	}

	slices.SortStableFunc(filtered, func(a, b Meeting) int {
		switch {
		case a.Start == nil && b.Start == nil:
			return 0
		case a.Start == nil:
			return 1
		case b.Start == nil:
			return -1
		}
		return a.Start.Compare(*b.Start)
	})
	return filtered
}
