// Package targetprocess is a client for the TargetProcess REST API (v1 and v2).
package targetprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
)

// Environment variables overriding the configured instance.
const (
	BaseURLEnv = "TARGET_PROCESS_API_BASE_URL"
	TokenEnv   = "TARGET_PROCESS_ACCESS_TOKEN"
)

// developerRoleID is the TargetProcess role id of "Developer".
const developerRoleID = 1

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	Body       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// DecodeError is returned when a response body is not the expected JSON.
type DecodeError struct {
	Err error
	URL string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client talks to a TargetProcess instance.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	baseURL string
	token   string
}

// Ensure Client implements domain.TicketService interface.
var _ domain.TicketService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the instance at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the web URL of the instance.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTicket fetches /v1/Assignables/{id}.
func (c *Client) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	var a assignableV1
	if err := c.do(ctx, http.MethodGet, "/v1/Assignables/"+strconv.Itoa(id), nil, nil, &a); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", domain.ErrTicketNotFound, err)
		}
		return nil, err
	}
	if a.ID == 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrTicketNotFound, id)
	}
	return a.toDomain(), nil
}

// CurrentUser fetches /v1/Users/loggeduser.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var u userV1
	if err := c.do(ctx, http.MethodGet, "/v1/Users/loggeduser", nil, nil, &u); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return u.toDomain(), nil
}

// CurrentSprintTickets lists initial-state tickets of the current and
// previous iteration of a project, plus all of its initial-state bugs.
func (c *Client) CurrentSprintTickets(ctx context.Context, project string) ([]domain.Ticket, error) {
	params := url.Values{}
	params.Set("where", fmt.Sprintf(
		"(EntityState.IsInitial = true) and ( EntityType.Name = 'Bug' or (TeamIteration.IsCurrent=true or TeamIteration.IsPrevious = true))and(Project.Name='%s')",
		strings.ReplaceAll(project, "'", "''"),
	))
	params.Set("select", "{id,name,description,resourceType,entityState,entityType,project}")

	var resp listV2[assignableV2]
	if err := c.do(ctx, http.MethodGet, "/v2/assignables", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("list sprint tickets: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(resp.Items))
	for _, a := range resp.Items {
		tickets = append(tickets, a.toDomain())
	}
	return tickets, nil
}

// Projects lists projects page by page.
func (c *Client) Projects(ctx context.Context, skip, take int) ([]domain.ProjectRef, error) {
	params := url.Values{}
	params.Set("select", "{id,name,abbreviation}")
	params.Set("where", "(IsActive = true)")
	params.Set("skip", strconv.Itoa(skip))
	params.Set("take", strconv.Itoa(take))

	var resp listV2[projectV2]
	if err := c.do(ctx, http.MethodGet, "/v2/projects", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]domain.ProjectRef, 0, len(resp.Items))
	for _, p := range resp.Items {
		projects = append(projects, p.toDomain())
	}
	return projects, nil
}

// Assign assigns the ticket to a user with the developer role.
func (c *Client) Assign(ctx context.Context, ticketID, userID int) error {
	payload := assignPayload{
		Assignments: []assignment{{
			GeneralUser: idRef{ID: userID},
			Role:        idRef{ID: developerRoleID},
		}},
	}
	if err := c.do(ctx, http.MethodPost, "/v1/Assignables/"+strconv.Itoa(ticketID), nil, payload, nil); err != nil {
		return fmt.Errorf("assign ticket %d: %w", ticketID, err)
	}
	return nil
}

// UpdateState moves the ticket to another workflow state.
func (c *Client) UpdateState(ctx context.Context, ticketID int, state domain.EntityState) error {
	payload := statePayload{ID: ticketID, EntityState: idRef{ID: state.Code()}}
	if err := c.do(ctx, http.MethodPost, "/v1/Assignables/"+strconv.Itoa(ticketID), nil, payload, nil); err != nil {
		return fmt.Errorf("update ticket %d state: %w", ticketID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if params == nil {
		params = url.Values{}
	}
	c.logger.Debug("targetprocess request", "method", method, "path", path, "query", params.Encode())
	params.Set("access_token", c.token)

	endpoint := c.baseURL + "/api" + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, redactToken(err, c.token))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Method:     method,
			URL:        c.baseURL + "/api" + path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{URL: c.baseURL + "/api" + path, Err: err}
	}
	return nil
}

// redactToken removes the access token from transport errors, which embed
// the full request URL.
func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	msg := err.Error()
	redacted := strings.ReplaceAll(msg, url.QueryEscape(token), "***")
	redacted = strings.ReplaceAll(redacted, token, "***")
	if redacted == msg {
		return err
	}
	return errors.New(redacted)
}
