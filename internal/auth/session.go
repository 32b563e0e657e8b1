// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/ptutor-tui/internal/model"
)

// RefreshWindow is how close to expiry an ID token may get before
// IDToken refreshes it.
const RefreshWindow = 5 * time.Minute

// Registrar creates the backend user record during sign-up.
type Registrar interface {
	Register(ctx context.Context, p model.RegisterPayload) error
}

// Session holds the signed-in user and keeps the ID token fresh. It is
// safe for concurrent use; concurrent IDToken calls share one refresh.
type Session struct {
	fb    *Firebase
	store *Store

	// refreshMu serializes token refreshes. mu only guards rec and is
	// never held across a network call.
	refreshMu sync.Mutex

	mu  sync.Mutex
	rec *Record
	now func() time.Time
}

// NewSession creates a session. store may be nil to keep it in memory only.
func NewSession(fb *Firebase, store *Store) *Session {
	return &Session{fb: fb, store: store, now: time.Now}
}

// Restore loads a persisted session, if any. It reports whether a user
// is now signed in. A corrupt file is discarded.
func (s *Session) Restore() (bool, error) {
	if s.store == nil {
		return false, nil
	}
	rec, err := s.store.Load()
	if err != nil {
		_ = s.store.Clear()
		return false, err
	}
	if rec == nil || rec.RefreshToken == "" {
		return false, nil
	}

	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	return true, nil
}

// SignIn authenticates with email and password.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	user, tokens, err := s.fb.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.set(*user, *tokens); err != nil {
		return nil, err
	}
	return user, nil
}

// SignUp registers the user with the backend and signs them in. When the
// backend only stored its own record and the identity account does not
// exist yet, it is created here and given the display name.
func (s *Session) SignUp(ctx context.Context, p model.RegisterPayload, reg Registrar) (*User, error) {
	if err := reg.Register(ctx, p); err != nil {
		return nil, err
	}

	user, err := s.SignIn(ctx, p.Email, p.Password)
	var ferr *Error
	if err == nil || !errors.As(err, &ferr) || !notFound(ferr.Code) {
		return user, err
	}

	u, tokens, err := s.fb.SignUp(ctx, p.Email, p.Password)
	if err != nil {
		return nil, err
	}
	if name := p.DisplayName(); name != "" {
		updated, err := s.fb.UpdateProfile(ctx, tokens.IDToken, name)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			tokens = updated
		}
		u.DisplayName = name
	}
	if err := s.set(*u, *tokens); err != nil {
		return nil, err
	}
	return u, nil
}

func notFound(code string) bool {
	return code == "EMAIL_NOT_FOUND" || code == "INVALID_LOGIN_CREDENTIALS"
}

// SignOut drops the tokens and deletes the persisted session.
func (s *Session) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.rec = nil
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil
	}
	u := s.rec.User
	return &u
}

// SignedIn reports whether a user is signed in.
func (s *Session) SignedIn() bool {
	return s.CurrentUser() != nil
}

// IDToken returns a valid ID token, refreshing it when it expires within
// RefreshWindow. If the refresh token was revoked the session is cleared
// and the error matches ErrSessionExpired.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	if tok, refresh, err := s.cached(); err != nil || refresh == "" {
		return tok, err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	tok, refresh, err := s.cached()
	if err != nil || refresh == "" {
		return tok, err
	}

	tokens, err := s.fb.Refresh(ctx, refresh)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.rec.RefreshToken != refresh {
		// signed out or signed in again during the refresh
		return "", ErrNotSignedIn
	}
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			s.rec = nil
			if s.store != nil {
				_ = s.store.Clear()
			}
		}
		return "", err
	}

	s.rec.IDToken = tokens.IDToken
	if tokens.RefreshToken != "" {
		s.rec.RefreshToken = tokens.RefreshToken
	}
	s.rec.ExpiresAt = tokens.ExpiresAt
	s.persist()
	return s.rec.IDToken, nil
}

// cached returns the current ID token when it is still fresh. Otherwise
// it returns the refresh token to exchange.
func (s *Session) cached() (token, refresh string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return "", "", ErrNotSignedIn
	}
	if s.rec.IDToken != "" && s.now().Add(RefreshWindow).Before(s.rec.ExpiresAt) {
		return s.rec.IDToken, "", nil
	}
	return "", s.rec.RefreshToken, nil
}

func (s *Session) set(user User, tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &Record{
		User:         user,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}
	if s.store == nil {
		return nil
	}
	return errors.Wrap(s.store.Save(*s.rec), "save session")
}

// persist saves the current record. Callers hold s.mu. A failed write
// only costs a sign-in on the next start.
func (s *Session) persist() {
	if s.store == nil || s.rec == nil {
		return
	}
	_ = s.store.Save(*s.rec)
}
