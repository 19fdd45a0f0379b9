package console

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

// Backend is everything the grid controller needs from the server.
type Backend interface {
	Login(ctx context.Context, username, password string) (User, error)
	FetchPage(ctx context.Context, q Query) (Page, error)
	Create(ctx context.Context, u NewUser) (Outcome, error)
	Edit(ctx context.Context, id string, e UserEdit) (Outcome, error)
	Delete(ctx context.Context, id string) (Outcome, error)
	SetActive(ctx context.Context, id string, active bool) error
	FindCase(ctx context.Context, id string) (Case, error)
}

// HTTPBackend is the resty implementation of Backend.
type HTTPBackend struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPBackend returns a Backend speaking to the /v1 API at addr. A bare
// host:port gets an http:// scheme.
func NewHTTPBackend(addr string, timeout time.Duration, log *logger.Logger) (*HTTPBackend, error) {
	baseURL, err := normalizeBaseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid console address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL+"/v1").
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPBackend{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken stores the bearer token used by every authenticated request.
func (h *HTTPBackend) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *HTTPBackend) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *HTTPBackend) authedRequest(ctx context.Context) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetAuthToken(h.Token())
}

// Login posts the credentials and keeps the returned access token.
func (h *HTTPBackend) Login(ctx context.Context, username, password string) (User, error) {
	var result struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&result).
		Post("/auth/login")
	if err != nil {
		return User{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return User{}, err
	}

	h.SetToken(result.AccessToken)
	h.logger.Debug().Str("username", result.User.Username).Msg("console logged in")
	return result.User, nil
}

// FetchPage asks for one page of users. Empty query fields are left to the
// server's defaults.
func (h *HTTPBackend) FetchPage(ctx context.Context, q Query) (Page, error) {
	var page Page

	params := map[string]string{
		"page_size": strconv.Itoa(q.PageSize),
		"page":      strconv.Itoa(q.Page),
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	if q.SortField != "" {
		params["sort_field"] = q.SortField
	}
	if q.SortDirection != "" {
		params["sort_direction"] = q.SortDirection
	}

	resp, err := h.authedRequest(ctx).
		SetQueryParams(params).
		SetResult(&page).
		Get("/users")
	if err != nil {
		return Page{}, fmt.Errorf("fetch page request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return Page{}, err
	}
	if page.Data == nil {
		page.Data = []User{}
	}

	return page, nil
}

func (h *HTTPBackend) Create(ctx context.Context, u NewUser) (Outcome, error) {
	var out Outcome

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(u).
		SetResult(&out).
		Post("/users")
	if err != nil {
		return Outcome{}, fmt.Errorf("create request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return Outcome{}, err
	}

	return out, nil
}

func (h *HTTPBackend) Edit(ctx context.Context, id string, e UserEdit) (Outcome, error) {
	var out Outcome

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(e).
		SetResult(&out).
		Patch("/users/{id}")
	if err != nil {
		return Outcome{}, fmt.Errorf("edit request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return Outcome{}, err
	}

	return out, nil
}

func (h *HTTPBackend) Delete(ctx context.Context, id string) (Outcome, error) {
	var out Outcome

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Delete("/users/{id}")
	if err != nil {
		return Outcome{}, fmt.Errorf("delete request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return Outcome{}, err
	}

	return out, nil
}

func (h *HTTPBackend) SetActive(ctx context.Context, id string, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Post("/users/{id}/" + action)
	if err != nil {
		return fmt.Errorf("%s request: %w", action, err)
	}
	return mapHTTPError(resp)
}

func (h *HTTPBackend) FindCase(ctx context.Context, id string) (Case, error) {
	var result struct {
		Case Case `json:"case"`
	}

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		SetResult(&result).
		Get("/cases/{id}")
	if err != nil {
		return Case{}, fmt.Errorf("find case request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return Case{}, err
	}

	return result.Case, nil
}
