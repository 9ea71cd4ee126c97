// Package backend implements a thin client for the job management backend REST API.
// Every method maps to exactly one endpoint; no retries are made and error bodies are not interpreted.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobdash/app/enums"
)

// endpoint paths
const (
	pathSSOLogin = "/api/auth/sso-login"
	pathMe       = "/api/auth/me"
	pathStats    = "/api/dashboard/stats"
)

// maxErrBody limits how much of an error response body is kept for logging
const maxErrBody = 512

var (
	// ErrUnauthorized returned when the backend rejects the token (401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden returned when the backend denies access for a valid identity (403)
	ErrForbidden = errors.New("access denied")
)

// StatusError is returned for any non-2xx backend response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

// Error implements error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Unwrap maps auth related status codes to sentinel errors
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// Params defines client parameters
type Params struct {
	BaseURL    string        // backend base URL, e.g. http://localhost:8000
	Timeout    time.Duration // per request timeout, ignored if HTTPClient is set
	HTTPClient *http.Client  // optional custom client
}

// Client talks to the backend over HTTP with JSON bodies
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New makes a backend client
func New(p Params) *Client {
	httpClient := p.HTTPClient
	if httpClient == nil {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimSuffix(p.BaseURL, "/"), httpClient: httpClient}
}

// BaseURL returns configured backend URL
func (c *Client) BaseURL() string { return c.baseURL }

// Login exchanges an SSO token for a backend token and the identity
func (c *Client) Login(ctx context.Context, ssoToken string) (LoginResponse, error) {
	var res LoginResponse
	body := struct {
		Token string `json:"token"`
	}{Token: ssoToken}
	if err := c.do(ctx, http.MethodPost, pathSSOLogin, "", body, &res); err != nil {
		return LoginResponse{}, fmt.Errorf("sso login: %w", err)
	}
	if res.Token == "" {
		return LoginResponse{}, fmt.Errorf("sso login: empty token in response")
	}
	return res, nil
}

// Me resolves the identity for a previously issued token
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var res struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, pathMe, token, nil, &res); err != nil {
		return User{}, fmt.Errorf("resolve identity: %w", err)
	}
	return res.User, nil
}

// Stats returns aggregate job counts for the dashboard
func (c *Client) Stats(ctx context.Context, token string) (Stats, error) {
	var res Stats
	if err := c.do(ctx, http.MethodGet, pathStats, token, nil, &res); err != nil {
		return Stats{}, fmt.Errorf("get dashboard stats: %w", err)
	}
	return res, nil
}

// ListJobs returns jobs of the category in the order sent by the backend
func (c *Client) ListJobs(ctx context.Context, token string, cat enums.Category) ([]Job, error) {
	res := []Job{}
	if err := c.do(ctx, http.MethodGet, jobsPath(cat), token, nil, &res); err != nil {
		return nil, fmt.Errorf("list %s jobs: %w", cat, err)
	}
	return res, nil
}

// CreateJob creates a job and returns it with the backend assigned id and status
func (c *Client) CreateJob(ctx context.Context, token string, cat enums.Category, req CreateJobRequest) (Job, error) {
	var res Job
	if err := c.do(ctx, http.MethodPost, jobsPath(cat), token, req, &res); err != nil {
		return Job{}, fmt.Errorf("create %s job: %w", cat, err)
	}
	return res, nil
}

// ToggleJob asks the backend to pause or resume the job, the backend decides the new status
func (c *Client) ToggleJob(ctx context.Context, token string, cat enums.Category, id int) (Job, error) {
	var res Job
	path := jobsPath(cat) + "/" + strconv.Itoa(id) + "/toggle"
	if err := c.do(ctx, http.MethodPost, path, token, nil, &res); err != nil {
		return Job{}, fmt.Errorf("toggle %s job %d: %w", cat, id, err)
	}
	return res, nil
}

func jobsPath(cat enums.Category) string {
	return "/api/" + cat.String() + "/jobs"
}

// do makes a request with optional JSON body and decodes JSON response into result
func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[WARN] failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		log.Printf("[DEBUG] backend %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(errBody)))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(errBody)}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10*1024*1024)).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
