package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-04T09:05:00.0000000", time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC)},
		{"2025-03-04T09:05:00", time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC)},
		{"2025-03-04T09:05:00Z", time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC)},
		{"2025-03-04T10:05:00+01:00", time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC)},
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseEventTime(tt.in)
		if err != nil {
			t.Fatalf("ParseEventTime(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Errorf("ParseEventTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseEventTime("not-a-date"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow("2025-03-04", " 2025-03-06 ")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if got := w.StartParam(); got != "2025-03-04T00:00:00" {
		t.Errorf("StartParam = %q", got)
	}
	if got := w.EndParam(); got != "2025-03-06T23:59:59" {
		t.Errorf("EndParam = %q", got)
	}
	if got := w.TimeMax(); !got.Equal(time.Date(2025, 3, 6, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("TimeMax = %v", got)
	}

	if _, err := NewWindow("2025-03-04", "2025-03-04"); err != nil {
		t.Errorf("single-day window: %v", err)
	}
	if _, err := NewWindow("2025-13-01", "2025-03-04"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := NewWindow("2025-03-04", "03/05/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := NewWindow("2025-03-05", "2025-03-04"); !errors.Is(err, ErrDateOrder) {
		t.Errorf("expected ErrDateOrder, got %v", err)
	}
}
