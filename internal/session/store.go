// Package session owns the authentication state of the application:
// the login state machine, the bearer token handed to the HTTP client,
// and the durable session fields restored on startup.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nhle/todoboard/internal/api"
	"github.com/nhle/todoboard/internal/credential"
	"github.com/nhle/todoboard/internal/model"
	"github.com/nhle/todoboard/internal/storage"
)

const (
	// tokenKey is the keyring entry holding the access token.
	tokenKey = "access-token"

	// stateKey is the storage key for the persisted session fields.
	stateKey = "session"
)

// State is the session lifecycle state.
type State int

const (
	// StateAnonymous means no session is active.
	StateAnonymous State = iota

	// StateAuthenticating means a login call is in flight.
	StateAuthenticating

	// StateIdentityPending means a token is held but the user identity
	// has not been confirmed against the server yet.
	StateIdentityPending

	// StateAuthenticated means the token is held and the identity is
	// confirmed.
	StateAuthenticated
)

// ErrNotAuthenticated is returned by operations that require a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// persistedState holds the session fields that survive restarts.
// The token itself lives in the keyring, not here.
type persistedState struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsAdmin         bool `json:"isAdmin"`
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	State           State
	IsAuthenticated bool
	IsAdmin         bool
	User            *model.User
	Err             error
}

// Store is the session state container. It implements api.TokenSource,
// and it registers itself as the client's unauthenticated handler so a
// 401 on any call clears the session without an explicit logout.
type Store struct {
	client *api.Client
	vault  credential.Vault
	kv     *storage.Store
	log    *slog.Logger

	mu      sync.Mutex
	state   State
	isAdmin bool
	token   string
	user    *model.User
	err     error

	// epoch increments on every logout. Login and identity resolutions
	// carrying an older epoch are discarded so a slow response can never
	// resurrect a session that was ended while it was in flight.
	epoch uint64
}

// New creates a session store bound to the given HTTP client, keyring
// vault, and durable storage.
func New(client *api.Client, vault credential.Vault, kv *storage.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		client: client,
		vault:  vault,
		kv:     kv,
		log:    log,
		state:  StateAnonymous,
	}
	client.SetTokenSource(s)
	client.SetUnauthenticatedHandler(s.ForceLogout)
	return s
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *model.User
	if s.user != nil {
		u := *s.user
		user = &u
	}

	return Snapshot{
		State:           s.state,
		IsAuthenticated: s.state == StateIdentityPending || s.state == StateAuthenticated,
		IsAdmin:         s.isAdmin,
		User:            user,
		Err:             s.err,
	}
}

// IsAuthenticated reports whether a token is currently held.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated
}

// Restore loads the persisted session fields. When a token is present
// the store enters identity-pending: callers must run ConfirmIdentity
// before rendering protected views, otherwise a stale token would be
// treated as valid until the first failing call.
func (s *Store) Restore(ctx context.Context) {
	var persisted persistedState
	ok, err := s.kv.GetJSON(ctx, stateKey, &persisted)
	if err != nil {
		s.log.Warn("reading persisted session", slog.String("error", err.Error()))
		return
	}
	if !ok || !persisted.IsAuthenticated {
		return
	}

	token, err := s.vault.Get(tokenKey)
	if err != nil {
		if !credential.IsNotFound(err) {
			s.log.Warn("reading stored token", slog.String("error", err.Error()))
		}
		return
	}
	if token == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.isAdmin = persisted.IsAdmin
	s.state = StateIdentityPending
}

// Login exchanges credentials for a token. On success the token is
// visible to the HTTP client before Login returns, so a follow-up
// ConfirmIdentity is already authenticated. On failure the session
// returns to anonymous with the classified error recorded.
//
// A login resolving after a newer logout is discarded: the logout wins.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.err = nil
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.client.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// A failure always reaches the caller. It is recorded on the
		// session only when no newer logout intervened; a 401 may have
		// already run ForceLogout and reset the state.
		if s.epoch == epoch {
			s.state = StateAnonymous
			s.err = err
		}
		return err
	}

	if s.epoch != epoch {
		s.log.Debug("discarding stale login resolution")
		return nil
	}

	s.token = resp.AccessToken
	s.isAdmin = true
	s.state = StateIdentityPending
	s.persistLocked(ctx)
	return nil
}

// ConfirmIdentity fetches the current user record. Failure records the
// error but does not clear authentication; a 401 is handled separately
// by the client's unauthenticated signal, which forces a logout.
func (s *Store) ConfirmIdentity(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdentityPending && s.state != StateAuthenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	epoch := s.epoch
	s.mu.Unlock()

	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// On a 401 ForceLogout already ran and reset the state; keep
		// the session otherwise. The error always reaches the caller.
		if !api.IsUnauthorized(err) && s.epoch == epoch {
			s.err = err
		}
		return err
	}

	if s.epoch != epoch {
		return nil
	}

	s.user = &user
	s.state = StateAuthenticated
	return nil
}

// Logout ends the session. Local state clears immediately and
// irreversibly; the server is then notified best-effort, and its answer
// is never allowed to re-authenticate the session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.clearLocked(ctx)
	s.mu.Unlock()

	if token == "" {
		return
	}

	// The captured token rides along explicitly; the token source already
	// reads empty.
	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Warn("server logout failed", slog.String("error", err.Error()))
	}
}

// ForceLogout clears the session without notifying the server. It is
// installed as the HTTP client's unauthenticated handler; skipping the
// outbound call avoids a 401 loop.
func (s *Store) ForceLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A 401 on a request that carried no session token (a failed login
	// attempt) has nothing to clear.
	if s.token == "" {
		return
	}
	s.clearLocked(context.Background())
}

// ClearError resets the recorded authentication error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

// clearLocked resets all session state and removes the persisted
// fields. Callers must hold s.mu.
func (s *Store) clearLocked(ctx context.Context) {
	s.state = StateAnonymous
	s.token = ""
	s.isAdmin = false
	s.user = nil
	s.err = nil
	s.epoch++

	if err := s.kv.Remove(ctx, stateKey); err != nil {
		s.log.Warn("clearing persisted session", slog.String("error", err.Error()))
	}
	if err := s.vault.Delete(tokenKey); err != nil {
		s.log.Warn("clearing stored token", slog.String("error", err.Error()))
	}
}

// persistLocked writes the durable session fields. Callers must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	persisted := persistedState{
		IsAuthenticated: true,
		IsAdmin:         s.isAdmin,
	}
	if err := s.kv.SetJSON(ctx, stateKey, persisted); err != nil {
		s.log.Warn("persisting session", slog.String("error", err.Error()))
	}
	if err := s.vault.Set(tokenKey, s.token); err != nil {
		s.log.Warn("persisting token", slog.String("error", err.Error()))
	}
}
