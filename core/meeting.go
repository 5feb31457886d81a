package core

import (
	"context"
	"time"
)

const (
	LabelRecurring = "Recurring Meeting"
	LabelSingle    = "Single Event"
	timeNA         = "Time N/A"
	clockLayout    = "3:04PM"
)

// Meeting is a provider-neutral calendar entry. DeleteID is the series
// master id for an occurrence of a recurring series, so deleting removes the
// whole series.
type Meeting struct {
	ID        string     `json:"id"`
	DeleteID  string     `json:"deleteId"`
	Subject   string     `json:"subject"`
	Organizer string     `json:"organizer"`
	Recurring bool       `json:"recurring"`
	AllDay    bool       `json:"allDay,omitempty"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}

// Provider is a calendar backend that can list a mailbox's events in a window
// and delete one of them.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context) error
	ListEvents(ctx context.Context, mailbox string, w Window) ([]Meeting, error)
	DeleteEvent(ctx context.Context, mailbox, eventID string) (int, error)
}

func (m Meeting) Label() string {
	if m.Recurring {
		return LabelRecurring
	}
	return LabelSingle
}

// TimeRange renders e.g. "2025-03-04 9:00AM-10:30AM UTC". All-day events
// show their days only; their end is exclusive.
func (m Meeting) TimeRange() string {
	if m.Start == nil || m.End == nil {
		return timeNA
	}
	if m.AllDay {
		first := m.Start.UTC()
		last := m.End.UTC().AddDate(0, 0, -1)
		if !last.After(first) {
			return first.Format(dateLayout) + " (all day)"
		}
		return first.Format(dateLayout) + " to " + last.Format(dateLayout) + " (all day)"
	}
	return m.Start.UTC().Format(dateLayout) + " " +
		m.Start.UTC().Format(clockLayout) + "-" + m.End.UTC().Format(clockLayout) + " UTC"
}

func (m Meeting) Sender() string {
	if m.Organizer == "" {
		return "N/A"
	}
	return m.Organizer
}
