package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corbaltcode/calendar-remediation/logging"
)

var ErrNotListed = errors.New("event is not in the filtered listing")

// RemediationRequest is the non-interactive form of a session. Without
// DeleteID it only lists.
type RemediationRequest struct {
	Query
	DeleteID string `json:"deleteId,omitempty"`
}

type RemediationResult struct {
	Meetings []Meeting `json:"meetings"`
	Deleted  string    `json:"deleted,omitempty"`
	Status   int       `json:"status,omitempty"`
}

// Remediate lists the request's window and, when DeleteID names one of the
// listed meetings by its DeleteID or occurrence ID, deletes that meeting's
// DeleteID. An id outside the listing is refused; the listing check stands in
// for the interactive confirmation.
func Remediate(ctx context.Context, p Provider, req RemediationRequest, logger *slog.Logger) (RemediationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if req.Mailbox == "" {
		return RemediationResult{}, errors.New("missing required parameter: mailbox")
	}

	meetings, err := Fetch(ctx, p, req.Query, logger)
	if err != nil {
		return RemediationResult{}, err
	}
	res := RemediationResult{Meetings: meetings}
	if req.DeleteID == "" {
		return res, nil
	}

	var target *Meeting
	for i := range meetings {
		if meetings[i].DeleteID == req.DeleteID || meetings[i].ID == req.DeleteID {
			target = &meetings[i]
			break
		}
	}
	if target == nil {
		return res, fmt.Errorf("%w: %s", ErrNotListed, req.DeleteID)
	}

	status, err := p.DeleteEvent(ctx, req.Mailbox, target.DeleteID)
	res.Status = status
	if err != nil {
		return res, fmt.Errorf("delete event: %w", err)
	}
	res.Deleted = target.DeleteID
	logger.Info("deleted calendar event", logging.Operation("delete"),
		logging.EventID(target.DeleteID), logging.Status(status), logging.Mailbox(req.Mailbox))
	return res, nil
}
