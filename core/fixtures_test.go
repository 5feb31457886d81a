package core

import (
	"context"
	"net/http"
	"time"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func mkMeeting(id, subject, organizer, start, end string) Meeting {
	m := Meeting{ID: id, DeleteID: id, Subject: subject, Organizer: organizer}
	if start != "" {
		m.Start = ts(start)
	}
	if end != "" {
		m.End = ts(end)
	}
	return m
}

func mkAllDay(id, start, end string) Meeting {
	m := mkMeeting(id, "", "", start, end)
	m.AllDay = true
	return m
}

func mkRecurring(id, master, subject, organizer, start, end string) Meeting {
	m := mkMeeting(id, subject, organizer, start, end)
	m.Recurring = true
	m.DeleteID = master
	return m
}

func fixtureMeetings() []Meeting {
	return []Meeting{
		mkMeeting("ev-3", "Quarterly review", "boss@contoso.com", "2025-03-05T15:00:00Z", "2025-03-05T16:00:00Z"),
		mkMeeting("ev-na", "Floating", "spam@evil.test", "", ""),
		mkRecurring("ev-1", "series-1", "Daily Standup", "lead@contoso.com", "2025-03-04T09:00:00Z", "2025-03-04T09:15:00Z"),
		mkMeeting("ev-2", "WIN A PRIZE", "spam@evil.test", "2025-03-04T12:30:00Z", "2025-03-04T13:00:00Z"),
	}
}

// fakeProvider records calls and answers from canned data.
type fakeProvider struct {
	meetings     []Meeting
	authErr      error
	listErr      error
	deleteStatus int
	deleteErr    error

	authCalls  int
	listedFor  string
	listedWin  Window
	deletedIDs []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Authenticate(context.Context) error {
	f.authCalls++
	return f.authErr
}

func (f *fakeProvider) ListEvents(_ context.Context, mailbox string, w Window) ([]Meeting, error) {
	f.listedFor, f.listedWin = mailbox, w
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Meeting(nil), f.meetings...), nil
}

func (f *fakeProvider) DeleteEvent(_ context.Context, _ string, id string) (int, error) {
	f.deletedIDs = append(f.deletedIDs, id)
	status := f.deleteStatus
	if status == 0 {
		status = http.StatusNoContent
	}
	return status, f.deleteErr
}

const graphCalendarViewJSON = `{
  "@odata.context": "https://graph.microsoft.com/v1.0/$metadata#users('alice%40contoso.com')/calendarView",
  "value": [
    {
      "id": "AAMk-single",
      "subject": "Claim your gift card",
      "seriesMasterId": null,
      "organizer": {"emailAddress": {"name": "Spammer", "address": "spam@evil.test"}},
      "start": {"dateTime": "2025-03-04T14:00:00.0000000", "timeZone": "UTC"},
      "end": {"dateTime": "2025-03-04T14:30:00.0000000", "timeZone": "UTC"}
    },
    {
      "id": "AAMk-occurrence",
      "subject": "Weekly sync",
      "seriesMasterId": "AAMk-master",
      "organizer": {"emailAddress": {"name": "Lead", "address": "lead@contoso.com"}},
      "start": {"dateTime": "2025-03-04T09:00:00.0000000", "timeZone": "UTC"},
      "end": {"dateTime": "2025-03-04T09:30:00.0000000", "timeZone": "UTC"}
    },
    {
      "id": "AAMk-notime",
      "subject": "Broken",
      "organizer": {"emailAddress": {"address": "x@contoso.com"}}
    }
  ]
}`
