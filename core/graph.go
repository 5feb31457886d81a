package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/corbaltcode/calendar-remediation/logging"
)

const (
	defaultAuthorityURL = "https://login.microsoftonline.com"
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope          = "https://graph.microsoft.com/.default"
)

type graphEmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type GraphEvent struct {
	ID             string  `json:"id"`
	Subject        string  `json:"subject"`
	SeriesMasterID *string `json:"seriesMasterId"`
	IsAllDay       bool    `json:"isAllDay"`
	Organizer      *struct {
		EmailAddress graphEmailAddress `json:"emailAddress"`
	} `json:"organizer"`
	Start *graphDateTime `json:"start"`
	End   *graphDateTime `json:"end"`
}

type graphEventPage struct {
	Value    []GraphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// GraphClient talks to Microsoft Graph with an app-only token obtained via
// the client-credentials grant.
type GraphClient struct {
	baseURL      string
	authorityURL string
	creds        Credentials
	pageSize     int
	http         *http.Client
	logger       *slog.Logger

	authed *http.Client
}

func NewGraphClient(creds Credentials, opts ...func(*GraphClient)) *GraphClient {
	client := &GraphClient{
		baseURL:      defaultGraphBaseURL,
		authorityURL: defaultAuthorityURL,
		creds:        creds,
		pageSize:     DefaultPageSize,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// For testing and national clouds.
func WithGraphBaseURL(baseURL string) func(*GraphClient) {
	return func(c *GraphClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithAuthorityURL(authorityURL string) func(*GraphClient) {
	return func(c *GraphClient) {
		if authorityURL != "" {
			c.authorityURL = strings.TrimRight(authorityURL, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) func(*GraphClient) {
	return func(c *GraphClient) {
		c.http = h
	}
}

func WithPageSize(n int) func(*GraphClient) {
	return func(c *GraphClient) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) func(*GraphClient) {
	return func(c *GraphClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func (c *GraphClient) Name() string { return ProviderGraph }

func (c *GraphClient) tokenURL() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.authorityURL, url.PathEscape(c.creds.TenantID))
}

// Authenticate acquires one access token. It is used as-is for the rest of
// the run; there is no refresh.
func (c *GraphClient) Authenticate(ctx context.Context) error {
	cc := clientcredentials.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		TokenURL:     c.tokenURL(),
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := cc.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("acquire token: empty access_token in response")
	}
	c.logger.Debug("acquired access token",
		logging.Operation("authenticate"),
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))

	c.authed = oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	return nil
}

func (c *GraphClient) do(ctx context.Context, method, endpoint string) (*http.Response, error) {
	if c.authed == nil {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

// ListCalendarView reads one page of the mailbox's calendarView, which
// expands recurring series into their instances.
func (c *GraphClient) ListCalendarView(ctx context.Context, mailbox string, w Window) ([]GraphEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", w.StartParam())
	q.Set("endDateTime", w.EndParam())
	q.Set("$top", strconv.Itoa(c.pageSize))
	endpoint := fmt.Sprintf("%s/users/%s/calendarView?%s", c.baseURL, url.PathEscape(mailbox), q.Encode())

	resp, err := c.do(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, respBytes)
	}

	var page graphEventPage
	if err := json.Unmarshal(respBytes, &page); err != nil {
		return nil, fmt.Errorf("decode calendarView: %w", err)
	}
	if page.NextLink != "" {
		c.logger.Warn("more events exist than one page holds; results are truncated",
			logging.Count(len(page.Value)), logging.Mailbox(mailbox))
	}
	return page.Value, nil
}

func (c *GraphClient) ListEvents(ctx context.Context, mailbox string, w Window) ([]Meeting, error) {
	events, err := c.ListCalendarView(ctx, mailbox, w)
	if err != nil {
		return nil, err
	}
	meetings := make([]Meeting, 0, len(events))
	for _, ev := range events {
		meetings = append(meetings, meetingFromGraph(ev))
	}
	return meetings, nil
}

// DeleteEvent removes an event or, given a series master id, the whole series.
// A 2xx other than 204 is returned with a nil error.
func (c *GraphClient) DeleteEvent(ctx context.Context, mailbox, eventID string) (int, error) {
	endpoint := fmt.Sprintf("%s/users/%s/calendar/events/%s",
		c.baseURL, url.PathEscape(mailbox), url.PathEscape(eventID))

	resp, err := c.do(ctx, http.MethodDelete, endpoint)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("read body: %w", err)
		}
		return resp.StatusCode, newAPIError(resp, respBytes)
	}
	return resp.StatusCode, nil
}

func meetingFromGraph(ev GraphEvent) Meeting {
	m := Meeting{
		ID:       ev.ID,
		DeleteID: ev.ID,
		Subject:  ev.Subject,
		AllDay:   ev.IsAllDay,
	}
	if ev.Organizer != nil {
		m.Organizer = ev.Organizer.EmailAddress.Address
	}
	if ev.SeriesMasterID != nil && *ev.SeriesMasterID != "" {
		m.Recurring = true
		m.DeleteID = *ev.SeriesMasterID
	}
	if ev.Start != nil && ev.End != nil && ev.Start.DateTime != "" && ev.End.DateTime != "" {
		start, errS := ParseEventTime(ev.Start.DateTime)
		end, errE := ParseEventTime(ev.End.DateTime)
		if errS == nil && errE == nil {
			m.Start, m.End = &start, &end
		}
	}
	return m
}
