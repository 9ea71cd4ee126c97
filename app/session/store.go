// Package session implements the process-wide store of authenticated browser sessions.
//
// A session is created by exchanging an SSO token with the backend, cached in memory and recorded in
// a durable slot (see persistence package) keyed by a random session id. The session id is the only
// thing the browser keeps, in a cookie. On process start Restore re-resolves every durable token
// against the backend identity endpoint; until a durable session is resolved it is reported as Pending.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/session/persistence"
)

//go:generate moq -out mocks/api.go -pkg mocks -skip-ensure -fmt goimports . API

// restore limits for startup resolution of durable sessions
const (
	restoreConcurrency = 8
	restoreTimeout     = 30 * time.Second
)

// ErrNoSession returned when the session id is unknown, expired or rejected by the backend
var ErrNoSession = errors.New("no session")

// API is the subset of backend client used for identity resolution
type API interface {
	Login(ctx context.Context, ssoToken string) (backend.LoginResponse, error)
	Me(ctx context.Context, token string) (backend.User, error)
}

// Slots is the durable storage of session tokens
type Slots interface {
	Save(slot persistence.Slot) error
	Load(id string) (persistence.Slot, error)
	List() ([]persistence.Slot, error)
	Delete(id string) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// Session is an authenticated identity bound to a browser
type Session struct {
	ID        string
	Token     string // opaque backend token
	User      backend.User
	CreatedAt time.Time
}

// HasAccess reports whether the identity may use job management views
func (s Session) HasAccess() bool { return s.User.HasAccess }

// Store keeps sessions in memory with a durable backup
type Store struct {
	api     API
	slots   Slots
	ttl     time.Duration
	cache   *cache.Cache
	loading atomic.Bool

	mu      sync.Mutex
	listed  bool                // durable slots listed, pending is populated
	pending map[string]struct{} // durable sessions not yet resolved by Restore
}

// New makes a session store. The store starts in loading state, call Restore to finish it.
func New(api API, slots Slots, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	res := &Store{api: api, slots: slots, ttl: ttl, cache: cache.New(ttl, 10*time.Minute)}
	res.loading.Store(true)
	return res
}

// TTL returns session lifetime
func (s *Store) TTL() time.Duration { return s.ttl }

// Loading reports whether startup resolution of durable sessions is still in progress
func (s *Store) Loading() bool { return s.loading.Load() }

// Pending reports whether the session sid is still waiting for startup resolution.
// Cached sessions, including ones created by Login during Restore, are never pending.
func (s *Store) Pending(sid string) bool {
	if sid == "" || !s.loading.Load() {
		return false
	}
	if _, ok := s.cache.Get(sid); ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listed {
		return true
	}
	_, ok := s.pending[sid]
	return ok
}

// Restore re-resolves all durable sessions against the backend and clears the loading state.
// Sessions are resolved concurrently under an overall deadline. Tokens rejected by the backend are
// removed, tokens failing for other reasons are kept and resolved lazily on the next request.
func (s *Store) Restore(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.listed, s.pending = true, nil
		s.mu.Unlock()
		s.loading.Store(false)
	}()

	if n, err := s.slots.DeleteOlderThan(time.Now().Add(-s.ttl)); err != nil {
		log.Printf("[WARN] failed to cleanup expired sessions: %v", err)
	} else if n > 0 {
		log.Printf("[DEBUG] removed %d expired sessions", n)
	}

	slots, err := s.slots.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	s.mu.Lock()
	s.pending = make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		s.pending[slot.ID] = struct{}{}
	}
	s.listed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, restoreTimeout)
	defer cancel()

	var restored atomic.Int32
	wg := syncs.NewErrSizedGroup(restoreConcurrency)
	for _, slot := range slots {
		wg.Go(func() error {
			defer s.settle(slot.ID)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if _, err := s.resolve(ctx, slot); err != nil {
				log.Printf("[DEBUG] session %s not restored: %v", shortID(slot.ID), err)
				return nil
			}
			restored.Add(1)
			return nil
		})
	}
	_ = wg.Wait() // per-session failures are logged, only interruption is reported
	log.Printf("[INFO] restored %d of %d sessions", restored.Load(), len(slots))
	return ctx.Err()
}

// settle marks the durable session as resolved by Restore
func (s *Store) settle(sid string) {
	s.mu.Lock()
	delete(s.pending, sid)
	s.mu.Unlock()
}

// Login exchanges the SSO token for a backend session, stores and returns it.
// On failure nothing is stored.
func (s *Store) Login(ctx context.Context, ssoToken string) (Session, error) {
	if ssoToken == "" {
		return Session{}, errors.New("empty sso token")
	}

	resp, err := s.api.Login(ctx, ssoToken)
	if err != nil {
		return Session{}, fmt.Errorf("login failed: %w", err)
	}

	sess := Session{ID: uuid.NewString(), Token: resp.Token, User: resp.User, CreatedAt: time.Now()}
	if err := s.slots.Save(persistence.Slot{ID: sess.ID, Token: sess.Token, CreatedAt: sess.CreatedAt}); err != nil {
		return Session{}, fmt.Errorf("failed to persist session: %w", err)
	}
	s.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	log.Printf("[INFO] login %s (%s), access=%v", sess.User.Email, shortID(sess.ID), sess.User.HasAccess)
	return sess, nil
}

// Logout removes the session from memory and the durable slot. No backend call is made.
func (s *Store) Logout(sid string) error {
	if sid == "" {
		return nil
	}
	s.cache.Delete(sid)
	if err := s.slots.Delete(sid); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	log.Printf("[INFO] logout %s", shortID(sid))
	return nil
}

// Current returns the session for id. On cache miss the durable token is re-resolved with the backend.
// Returns ErrNoSession if the session is unknown, expired or rejected.
func (s *Store) Current(ctx context.Context, sid string) (Session, error) {
	if sid == "" {
		return Session{}, ErrNoSession
	}
	if v, ok := s.cache.Get(sid); ok {
		if sess, ok := v.(Session); ok {
			return sess, nil
		}
	}

	slot, err := s.slots.Load(sid)
	if errors.Is(err, persistence.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return s.resolve(ctx, slot)
}

// resolve validates the durable slot with the backend and caches the result
func (s *Store) resolve(ctx context.Context, slot persistence.Slot) (Session, error) {
	remaining := s.ttl - time.Since(slot.CreatedAt)
	if remaining <= 0 {
		s.drop(slot.ID)
		return Session{}, fmt.Errorf("session expired: %w", ErrNoSession)
	}

	user, err := s.api.Me(ctx, slot.Token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			s.drop(slot.ID)
			return Session{}, fmt.Errorf("token rejected: %w", ErrNoSession)
		}
		return Session{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	sess := Session{ID: slot.ID, Token: slot.Token, User: user, CreatedAt: slot.CreatedAt}
	s.cache.Set(sess.ID, sess, remaining)
	return sess, nil
}

func (s *Store) drop(sid string) {
	s.cache.Delete(sid)
	if err := s.slots.Delete(sid); err != nil {
		log.Printf("[WARN] failed to remove session %s: %v", shortID(sid), err)
	}
}

// shortID truncates session id for logs
func shortID(sid string) string {
	if len(sid) <= 8 {
		return sid
	}
	return sid[:8]
}
