// Package apiclient talks to the FormCraft REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shubham-ralli/form-b/internal/models"
)

// APIError is a non-2xx response, or a 2xx response whose body is
// error-shaped. Message is the server's text when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// ConnError means the server could not be reached at all.
type ConnError struct {
	BaseURL string
	Err     error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.BaseURL, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type LoginResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ListForms fetches the caller's forms in canonical shape.
func (c *Client) ListForms(ctx context.Context) ([]models.Form, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/forms", nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeForms(raw, c.now())
}

// CreateForm posts a form definition and returns the created record.
func (c *Client) CreateForm(ctx context.Context, form any) (*models.Form, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/forms", form, &raw); err != nil {
		return nil, err
	}
	f, err := NormalizeForm(raw, c.now())
	if err != nil {
		return nil, err
	}
	if f.ID == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "created form has no id"}
	}
	return &f, nil
}

func (c *Client) SetStatus(ctx context.Context, id string, active bool) error {
	return c.do(ctx, http.MethodPatch, "/api/forms/"+url.PathEscape(id)+"/status",
		map[string]bool{"isActive": active}, nil)
}

func (c *Client) DeleteForm(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/forms/"+url.PathEscape(id), nil, nil)
}

// PublicForm reads a form without authentication.
func (c *Client) PublicForm(ctx context.Context, id string) (*models.PublicForm, error) {
	var f models.PublicForm
	if err := c.do(ctx, http.MethodGet, "/api/forms/public?id="+url.QueryEscape(id), nil, &f); err != nil {
		return nil, err
	}
	if f.ID == "" {
		f.ID = id
	}
	return &f, nil
}

func (c *Client) Submit(ctx context.Context, formID string, data map[string]any) error {
	body := map[string]any{"formId": formID, "data": data}
	return c.do(ctx, http.MethodPost, "/api/submissions", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &ConnError{BaseURL: c.baseURL, Err: err}
	}
	msg := errorMessage(data)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if msg != "" && isErrorShaped(data) {
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

// errorMessage pulls "error" or "message" out of a JSON object body.
func errorMessage(data []byte) string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok && s != "" {
		return s
	}
	return body.Message
}

// isErrorShaped is true for objects carrying an "error" key.
func isErrorShaped(data []byte) bool {
	var body map[string]json.RawMessage
	if json.Unmarshal(data, &body) != nil {
		return false
	}
	_, ok := body["error"]
	return ok
}
