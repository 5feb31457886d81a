package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date, expected yyyy-mm-dd")
	ErrDateOrder   = errors.New("end date is before start date")
)

// Graph returns up to seven fractional digits and no zone; Google returns
// RFC3339 with an offset, or a bare date for all-day events.
var acceptedLayouts = []string{
	"2006-01-02T15:04:05.9999999",
	time.RFC3339Nano,
	time.RFC3339,
	dateLayout,
}

// ParseEventTime reads an API timestamp. Zone-less values are taken as UTC.
func ParseEventTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Window is an inclusive range of whole UTC days.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, err
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("%w: %s < %s", ErrDateOrder, end, start)
	}
	return Window{Start: s, End: e}, nil
}

// StartParam is midnight of the first day.
func (w Window) StartParam() string {
	return w.Start.Format(dateLayout) + "T00:00:00"
}

// EndParam is the last second of the final day.
func (w Window) EndParam() string {
	return w.End.Format(dateLayout) + "T23:59:59"
}

// TimeMin and TimeMax bound the same range for RFC3339 APIs.
func (w Window) TimeMin() time.Time {
	return w.Start
}

func (w Window) TimeMax() time.Time {
	return w.End.Add(24*time.Hour - time.Second)
}
