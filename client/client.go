package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrAuthRequired is returned whenever the backend answers 401; the session
// has already been logged out by the time the caller sees it.
var ErrAuthRequired = errors.New("authentication required")

// Feedback mirrors the wire format of one guest submission. CreatedAt is
// kept as the raw string the backend sent; formats vary by deployment and
// are normalized by ParseCreatedAt before any date arithmetic.
type Feedback struct {
	ID         uint    `json:"id"`
	Type       string  `json:"type"`
	Rating     int     `json:"rating"`
	Text       string  `json:"text"`
	Name       string  `json:"name"`
	Contact    string  `json:"contact"`
	CreatedAt  string  `json:"created_at"`
	Source     *string `json:"source"`
	IsApproved bool    `json:"is_approved"`
}

// Submission is the payload for a new guest feedback entry.
type Submission struct {
	Type    string `json:"type"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Client decorates outgoing requests with the session's bearer token and a
// default content type. A 401 response forces logout and surfaces as
// ErrAuthRequired; every other status is the caller's problem. No retries.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a client for the given API origin. Session may be nil for
// purely public endpoints. An empty baseURL means same-origin.
func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

// Do issues a request against a relative path. The response body is the
// caller's to close.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if c.session != nil {
			c.session.Logout()
		}
		return nil, ErrAuthRequired
	}

	return resp, nil
}

// getJSON fetches a path and decodes a 2xx JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AdminFeedback fetches the full moderator-visible feedback set.
func (c *Client) AdminFeedback(ctx context.Context) ([]Feedback, error) {
	var items []Feedback
	if err := c.getJSON(ctx, "/api/v1/feedback/admin", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PublicFeedback fetches the approved-only public list.
func (c *Client) PublicFeedback(ctx context.Context) ([]Feedback, error) {
	var items []Feedback
	if err := c.getJSON(ctx, "/api/v1/feedback/", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Submit posts a new guest feedback entry and returns the created item.
func (c *Client) Submit(ctx context.Context, sub Submission) (Feedback, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return Feedback{}, err
	}

	resp, err := c.Do(ctx, http.MethodPost, "/api/v1/feedback/create", bytes.NewReader(payload))
	if err != nil {
		return Feedback{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Feedback{}, fmt.Errorf("submission rejected with status %d", resp.StatusCode)
	}

	var created Feedback
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Feedback{}, err
	}
	return created, nil
}
