package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrAuthFailed is returned by Login for bad credentials and for transport
// failures alike; the caller cannot tell them apart.
var ErrAuthFailed = errors.New("invalid username or password")

// TokenStore persists the bearer token across restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file, the client-side
// equivalent of one durable storage key.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryTokenStore holds the token in memory only; used by tests and by
// short-lived tools that have no business persisting a session.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save("")
}

// Session owns the bearer token lifecycle: it loads the persisted token at
// construction, issues login requests, and clears state on logout. One
// session is active per application instance; components receive it by
// reference rather than through globals.
type Session struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	mu       sync.Mutex
	token    string
	onLogout []func()
}

// NewSession creates a session bound to the given API origin. An empty
// baseURL means same-origin relative requests. The persisted token, if any,
// becomes the active session.
func NewSession(baseURL string, store TokenStore, httpClient *http.Client) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
	}
	if store != nil {
		if token, err := store.Load(); err == nil {
			s.token = token
		}
	}
	return s
}

// Token returns the active bearer token; empty means unauthenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// OnLogout registers a hook fired whenever the session ends, whether by an
// explicit Logout or a 401 forcing one. Used by the store to tear down its
// polling loop.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Login submits credentials as a form-encoded request and stores the
// returned access token. On any failure the session is left unchanged and
// ErrAuthFailed is returned. No retry is attempted.
func (s *Session) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {strings.TrimSpace(username)},
		"password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/v1/admin/login", strings.NewReader(form.Encode()))
	if err != nil {
		return ErrAuthFailed
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return ErrAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrAuthFailed
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.AccessToken == "" {
		return ErrAuthFailed
	}

	s.setToken(payload.AccessToken)
	return nil
}

// Logout clears the active session and its persisted copy. Idempotent.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Clear()
	}
	for _, fn := range hooks {
		fn()
	}
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Save(token)
	}
}
