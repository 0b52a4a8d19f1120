package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Status describes the user-visible load state of the store.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

// DefaultPollInterval is how often the dashboard refreshes in the background.
const DefaultPollInterval = 30 * time.Second

// Store owns the canonical in-memory feedback set. All mutation goes through
// its methods; readers get copies. Mutations are applied locally only after
// the server confirms them, so a failed action never needs a rollback.
//
// Overlapping refreshes are not sequenced: whichever response completes last
// wins, even if it was requested first. Duplicate approve/remove calls on the
// same id issue duplicate requests.
type Store struct {
	client *Client

	mu        sync.Mutex
	items     []Feedback
	status    Status
	err       string
	actionErr string

	cancel  context.CancelFunc
	visible chan struct{}
}

// NewStore creates a store for the given client. If the client carries a
// session, the polling loop is torn down automatically on logout.
func NewStore(c *Client) *Store {
	s := &Store{
		client:  c,
		visible: make(chan struct{}, 1),
	}
	if c.session != nil {
		c.session.OnLogout(s.Stop)
	}
	return s
}

// Items returns a snapshot copy of the current feedback set.
func (s *Store) Items() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Feedback, len(s.items))
	copy(out, s.items)
	return out
}

// Status returns the load state and, when it is StatusError, the message.
func (s *Store) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

// ActionError returns the last approve/delete failure message, if any.
func (s *Store) ActionError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionErr
}

// ClearActionError resets the transient action failure message.
func (s *Store) ClearActionError() {
	s.mu.Lock()
	s.actionErr = ""
	s.mu.Unlock()
}

// Refresh replaces the in-memory set wholesale. It drives the loading and
// error states, so it is the right call for user-initiated and first loads.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.err = ""
	s.mu.Unlock()

	items, err := s.client.AdminFeedback(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		s.err = "failed to load feedback"
		return err
	}
	s.items = items
	s.status = StatusIdle
	return nil
}

// RefreshSilent runs the same fetch but swallows failures and never touches
// the visible status, so a transient background error cannot flash over a
// working view. A successful fetch still replaces the set and clears any
// stale error.
func (s *Store) RefreshSilent(ctx context.Context) {
	items, err := s.client.AdminFeedback(ctx)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.items = items
	s.status = StatusIdle
	s.err = ""
	s.mu.Unlock()
}

// Approve marks one item approved on the server, then flips the local copy.
// No refetch is needed; on failure local state is left untouched.
func (s *Store) Approve(ctx context.Context, id uint) error {
	s.ClearActionError()

	path := fmt.Sprintf("/api/v1/feedback/admin/%d/approve", id)
	resp, err := s.client.Do(ctx, http.MethodPatch, path, nil)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err = fmt.Errorf("approve rejected with status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.mu.Lock()
		s.actionErr = "failed to approve feedback"
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsApproved = true
		}
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes one item on the server, then drops the local copy. The item
// is retained on failure.
func (s *Store) Remove(ctx context.Context, id uint) error {
	s.ClearActionError()

	path := fmt.Sprintf("/api/v1/feedback/delete/%d", id)
	resp, err := s.client.Do(ctx, http.MethodDelete, path, nil)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err = fmt.Errorf("delete rejected with status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.mu.Lock()
		s.actionErr = "failed to delete feedback"
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// StartPolling launches the background refresh loop: a silent refresh every
// interval, plus one whenever NotifyVisible signals that the view regained
// focus. Calling it while a loop is running is a no-op.
func (s *Store) StartPolling(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.poll(ctx, interval)
}

func (s *Store) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RefreshSilent(ctx)
		case <-s.visible:
			s.RefreshSilent(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// NotifyVisible requests an immediate silent refresh, the equivalent of a
// hidden tab becoming visible again. Signals are coalesced.
func (s *Store) NotifyVisible() {
	select {
	case s.visible <- struct{}{}:
	default:
	}
}

// Stop cancels the polling loop. Idempotent; also invoked on logout.
func (s *Store) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
