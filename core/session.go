package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/corbaltcode/calendar-remediation/logging"
)

// Query is what the operator asked for. Empty fields are prompted for by a
// Session; Organizer and SubjectContains are optional.
type Query struct {
	Mailbox string `json:"mailbox"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Filter
}

// Outcome records how an interactive run ended.
type Outcome int

const (
	OutcomeNoEvents Outcome = iota
	OutcomeQuit
	OutcomeCanceled
	OutcomeInvalidChoice
	OutcomeDeleted
	OutcomeUnexpectedStatus
	OutcomeDeleteFailed
)

// Session drives the read-filter-print-confirm dialogue over in/out.
type Session struct {
	provider Provider
	in       *bufio.Reader
	out      io.Writer
	logger   *slog.Logger

	// askDates is set once the window came from prompts, so a bad date is
	// re-asked instead of aborting.
	askDates bool
}

func NewSession(p Provider, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		provider: p,
		in:       bufio.NewReader(in),
		out:      out,
		logger:   logging.WithProvider(logger, p.Name()),
	}
}

// ask prints prompt and returns the trimmed answer. A final line without a
// newline is still returned; io.EOF only comes back when nothing was read.
func (s *Session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askOptional treats end of input as an empty answer.
func (s *Session) askOptional(prompt string) (string, error) {
	v, err := s.ask(prompt)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return v, err
}

func (s *Session) askRequired(prompt string) (string, error) {
	for {
		v, err := s.ask(prompt)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
}

func (s *Session) askDate(prompt string) (string, error) {
	for {
		v, err := s.askRequired(prompt)
		if err != nil {
			return "", err
		}
		if _, err := ParseDate(v); err != nil {
			fmt.Fprintln(s.out, "Invalid date. Please use yyyy-mm-dd.")
			continue
		}
		return v, nil
	}
}

// Complete prompts for whatever q is missing. Optional filters are only
// asked for when the mailbox had to be asked for too.
func (s *Session) Complete(q Query) (Query, error) {
	interactive := q.Mailbox == ""
	var err error

	if q.Mailbox == "" {
		if q.Mailbox, err = s.askRequired("Enter mailbox (user@domain.com): "); err != nil {
			return q, fmt.Errorf("read mailbox: %w", err)
		}
	}
	for {
		if q.Start == "" {
			s.askDates = true
			if q.Start, err = s.askDate("Enter start date (yyyy-mm-dd): "); err != nil {
				return q, fmt.Errorf("read start date: %w", err)
			}
		}
		if q.End == "" {
			s.askDates = true
			if q.End, err = s.askDate("Enter end date (yyyy-mm-dd): "); err != nil {
				return q, fmt.Errorf("read end date: %w", err)
			}
		}
		_, werr := NewWindow(q.Start, q.End)
		if werr == nil || !s.askDates {
			break
		}
		// Prompted dates are already valid, so a bad one came from a flag.
		if errors.Is(werr, ErrInvalidDate) {
			fmt.Fprintln(s.out, "Invalid date. Please use yyyy-mm-dd.")
			if _, err := ParseDate(q.Start); err != nil {
				q.Start = ""
			}
			if _, err := ParseDate(q.End); err != nil {
				q.End = ""
			}
			continue
		}
		fmt.Fprintln(s.out, "End date must not be before start date.")
		q.Start, q.End = "", ""
	}
	if interactive {
		if q.Organizer == "" {
			if q.Organizer, err = s.askOptional("Enter Sender (user@domain.com) [optional]: "); err != nil {
				return q, fmt.Errorf("read sender: %w", err)
			}
		}
		if q.SubjectContains == "" {
			if q.SubjectContains, err = s.askOptional("Enter text to search in subject [optional]: "); err != nil {
				return q, fmt.Errorf("read subject: %w", err)
			}
		}
	}
	return q, nil
}

// Fetch authenticates, lists the window and applies the filter.
func Fetch(ctx context.Context, p Provider, q Query, logger *slog.Logger) ([]Meeting, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := NewWindow(q.Start, q.End)
	if err != nil {
		return nil, err
	}
	if err := p.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	all, err := p.ListEvents(ctx, q.Mailbox, w)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	meetings := FilterMeetings(all, q.Filter)
	logger.Info("listed calendar events",
		logging.Operation("list"), logging.Mailbox(q.Mailbox),
		logging.Count(len(meetings)), slog.Int("unfiltered", len(all)))
	return meetings, nil
}

// PrintMeetings writes the numbered listing the selection prompt refers to.
func PrintMeetings(w io.Writer, meetings []Meeting) {
	fmt.Fprintln(w, "\nCalendar Events:")
	for i, m := range meetings {
		fmt.Fprintf(w, "%d. [%s] %s | Sender: %s | Subject: %s\n",
			i+1, m.Label(), m.TimeRange(), m.Sender(), m.Subject)
	}
}

// Select loops until the operator picks a meeting or quits. ok is false on
// quit, including end of input.
func (s *Session) Select(meetings []Meeting) (Meeting, bool, error) {
	for {
		sel, err := s.ask("\nEnter the number of the event you want to delete (or 'q' to quit): ")
		if errors.Is(err, io.EOF) {
			return Meeting{}, false, nil
		}
		if err != nil {
			return Meeting{}, false, err
		}
		if strings.EqualFold(sel, "q") {
			return Meeting{}, false, nil
		}

		n, err := strconv.Atoi(sel)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid input. Please enter a number.")
			continue
		}
		if n < 1 || n > len(meetings) {
			fmt.Fprintln(s.out, "Invalid selection. Please try again.")
			continue
		}
		return meetings[n-1], true, nil
	}
}

// Confirm shows the selected meeting, asks y/n and performs the delete.
func (s *Session) Confirm(ctx context.Context, mailbox string, m Meeting) (Outcome, error) {
	fmt.Fprintln(s.out, "\nYou are about to delete this calendar invite:")
	fmt.Fprintf(s.out, "Type: %s\n", m.Label())
	fmt.Fprintf(s.out, "Time: %s\n", m.TimeRange())
	fmt.Fprintf(s.out, "Sender: %s\n", m.Sender())
	fmt.Fprintf(s.out, "Subject: %s\n", m.Subject)

	choice, err := s.ask("Do you want to continue? (y/n): ")
	if err != nil && !errors.Is(err, io.EOF) {
		return OutcomeInvalidChoice, err
	}

	switch strings.ToLower(choice) {
	case "y":
		return s.delete(ctx, mailbox, m), nil
	case "n":
		fmt.Fprintln(s.out, "Canceling Request")
		return OutcomeCanceled, nil
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
		return OutcomeInvalidChoice, nil
	}
}

func (s *Session) delete(ctx context.Context, mailbox string, m Meeting) Outcome {
	log := logging.WithOperation(s.logger, "delete")
	status, err := s.provider.DeleteEvent(ctx, mailbox, m.DeleteID)
	if err != nil {
		log.Error("delete failed", logging.EventID(m.DeleteID), logging.Err(err))
		fmt.Fprintf(s.out, "Error deleting event: %v\n", err)
		return OutcomeDeleteFailed
	}
	log.Info("delete returned", logging.EventID(m.DeleteID), logging.Status(status),
		slog.Bool("recurring", m.Recurring))
	if status == http.StatusNoContent {
		fmt.Fprintln(s.out, "Successfully deleted the calendar event!")
		return OutcomeDeleted
	}
	fmt.Fprintf(s.out, "Event deletion returned unexpected status code: %d\n", status)
	return OutcomeUnexpectedStatus
}

// Run is the whole dialogue: gather inputs, list, pick, confirm, delete.
func (s *Session) Run(ctx context.Context, q Query) (Outcome, error) {
	q, err := s.Complete(q)
	if err != nil {
		return OutcomeQuit, err
	}

	meetings, err := Fetch(ctx, s.provider, q, s.logger)
	if err != nil {
		return OutcomeQuit, err
	}
	if len(meetings) == 0 {
		fmt.Fprintln(s.out, "No calendar events found matching your criteria.")
		return OutcomeNoEvents, nil
	}

	PrintMeetings(s.out, meetings)

	m, ok, err := s.Select(meetings)
	if err != nil {
		return OutcomeQuit, err
	}
	if !ok {
		fmt.Fprintln(s.out, "Ok")
		return OutcomeQuit, nil
	}
	return s.Confirm(ctx, q.Mailbox, m)
}
