package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jnavarro/taskboard/internal/domain"
)

// Session is the client-held authentication state. A session is valid iff a
// token is present and the expiry instant is still in the future.
type Session struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user,omitempty"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (s Session) Valid() bool {
	return s.Token != "" && time.Now().Before(s.ExpiresAt)
}

// SessionStore is a single-writer, multi-observer state cell persisted to a
// JSON file so sessions survive process restarts. All writes replace the
// whole state and notify every subscriber.
type SessionStore struct {
	mu          sync.Mutex
	path        string
	session     Session
	subscribers []func(Session)
}

// NewSessionStore loads any persisted session from path. An expired or
// malformed persisted session is discarded rather than trusted.
func NewSessionStore(path string) (*SessionStore, error) {
	store := &SessionStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil || !session.Valid() {
		_ = os.Remove(path)
		return store, nil
	}

	store.session = session
	return store, nil
}

// Set records a fresh login or registration. expiresIn is the server-declared
// token lifetime in seconds.
func (s *SessionStore) Set(token string, user *domain.User, expiresIn int) error {
	s.mu.Lock()
	s.session = Session{
		Token:     token,
		User:      user,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	session := s.session
	err := s.persistLocked()
	subs := append([]func(Session){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, session)
	return err
}

// SetUser replaces the cached profile without touching token or expiry.
func (s *SessionStore) SetUser(user *domain.User) error {
	s.mu.Lock()
	if s.session.Token == "" {
		s.mu.Unlock()
		return nil
	}
	s.session.User = user
	session := s.session
	err := s.persistLocked()
	subs := append([]func(Session){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, session)
	return err
}

// Clear drops the session unconditionally.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	s.session = Session{}
	err := os.Remove(s.path)
	subs := append([]func(Session){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, Session{})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Invalidate drops the session and reports whether a transition actually
// happened. Concurrent callers see true exactly once, which keeps forced
// logouts (overlapping 401s) idempotent.
func (s *SessionStore) Invalidate() bool {
	s.mu.Lock()
	if s.session.Token == "" {
		s.mu.Unlock()
		return false
	}
	s.session = Session{}
	_ = os.Remove(s.path)
	subs := append([]func(Session){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, Session{})
	return true
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

func (s *SessionStore) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.User
}

// IsValid answers from local state only; it never touches the network.
func (s *SessionStore) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Valid()
}

// Subscribe registers an observer called after every state change.
func (s *SessionStore) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *SessionStore) persistLocked() error {
	data, err := json.Marshal(s.session)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

func notify(subs []func(Session), session Session) {
	for _, fn := range subs {
		fn(session)
	}
}
