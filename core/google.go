package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/corbaltcode/calendar-remediation/logging"
)

// GoogleClient reaches a Workspace user's primary calendar through a
// service account with domain-wide delegation, impersonating the mailbox.
type GoogleClient struct {
	jwtCfg   *jwt.Config
	pageSize int64
	logger   *slog.Logger
	// Test hooks: when set, the service is built against this client and
	// endpoint instead of the impersonated JWT client.
	httpClient *http.Client
	endpoint   string

	srv     *calendar.Service
	subject string
}

// LoadServiceAccount returns the service account JSON from the configured
// file or base64 blob.
func LoadServiceAccount(s GoogleSettings) ([]byte, error) {
	if s.ServiceAccountJSONB64 != "" {
		b, err := base64.StdEncoding.DecodeString(s.ServiceAccountJSONB64)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 service account: %w", err)
		}
		return b, nil
	}
	if s.ServiceAccountFile == "" {
		return nil, errors.New("no service account configured")
	}
	b, err := os.ReadFile(s.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ServiceAccountFile, err)
	}
	return b, nil
}

func NewGoogleClient(serviceAccountJSON []byte, opts ...func(*GoogleClient)) (*GoogleClient, error) {
	jwtCfg, err := google.JWTConfigFromJSON(serviceAccountJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("JWT config: %w", err)
	}
	c := &GoogleClient{
		jwtCfg:   jwtCfg,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func WithGooglePageSize(n int) func(*GoogleClient) {
	return func(c *GoogleClient) {
		if n > 0 {
			c.pageSize = int64(n)
		}
	}
}

func WithGoogleLogger(l *slog.Logger) func(*GoogleClient) {
	return func(c *GoogleClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// For testing
func WithGoogleEndpoint(endpoint string, h *http.Client) func(*GoogleClient) {
	return func(c *GoogleClient) {
		c.endpoint = endpoint
		c.httpClient = h
	}
}

func (c *GoogleClient) Name() string { return ProviderGoogle }

// Authenticate checks the service account can mint a token at all. The
// per-mailbox token is obtained when the impersonated service is built.
func (c *GoogleClient) Authenticate(ctx context.Context) error {
	if c.httpClient != nil {
		return nil
	}
	tok, err := c.jwtCfg.TokenSource(ctx).Token()
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	c.logger.Debug("acquired access token",
		logging.Operation("authenticate"),
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	return nil
}

func (c *GoogleClient) service(ctx context.Context, mailbox string) (*calendar.Service, error) {
	if c.srv != nil && c.subject == mailbox {
		return c.srv, nil
	}

	var opts []option.ClientOption
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient), option.WithEndpoint(c.endpoint))
	} else {
		cfg := *c.jwtCfg
		cfg.Subject = mailbox
		tok, err := cfg.TokenSource(ctx).Token()
		if err != nil {
			return nil, fmt.Errorf("acquire token for mailbox: %w", err)
		}
		client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
		opts = append(opts, option.WithHTTPClient(client))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	c.srv, c.subject = srv, mailbox
	return srv, nil
}

func (c *GoogleClient) ListEvents(ctx context.Context, mailbox string, w Window) ([]Meeting, error) {
	srv, err := c.service(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(mailbox).
		Context(ctx).
		TimeMin(w.TimeMin().Format(time.RFC3339)).
		TimeMax(w.TimeMax().Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(false).
		MaxResults(c.pageSize).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events.NextPageToken != "" {
		c.logger.Warn("more events exist than one page holds; results are truncated",
			logging.Count(len(events.Items)), logging.Mailbox(mailbox))
	}

	meetings := make([]Meeting, 0, len(events.Items))
	for _, ev := range events.Items {
		meetings = append(meetings, meetingFromGoogle(ev))
	}
	return meetings, nil
}

// DeleteEvent reports 204 on success, which is what the API sends back.
func (c *GoogleClient) DeleteEvent(ctx context.Context, mailbox, eventID string) (int, error) {
	srv, err := c.service(ctx, mailbox)
	if err != nil {
		return 0, err
	}
	if err := srv.Events.Delete(mailbox, eventID).Context(ctx).Do(); err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return gErr.Code, fmt.Errorf("delete event: %w", err)
		}
		return 0, fmt.Errorf("delete event: %w", err)
	}
	return http.StatusNoContent, nil
}

func meetingFromGoogle(ev *calendar.Event) Meeting {
	if ev == nil {
		return Meeting{}
	}
	m := Meeting{
		ID:       ev.Id,
		DeleteID: ev.Id,
		Subject:  ev.Summary,
	}
	if ev.Organizer != nil {
		m.Organizer = ev.Organizer.Email
	}
	if ev.RecurringEventId != "" {
		m.Recurring = true
		m.DeleteID = ev.RecurringEventId
	}
	m.AllDay = ev.Start != nil && ev.Start.DateTime == "" && ev.Start.Date != ""
	start, okS := googleTime(ev.Start)
	end, okE := googleTime(ev.End)
	if okS && okE {
		m.Start, m.End = &start, &end
	}
	return m
}

func googleTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	s := dt.DateTime
	if s == "" {
		s = dt.Date
	}
	if s == "" {
		return time.Time{}, false
	}
	t, err := ParseEventTime(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
