// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

// Package memory implements the session repository in process memory.
// Sessions stored here do not survive a restart; the panel uses it when
// durable sessions are not configured, and the service tests use it to
// exercise real store semantics without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
)

// SessionRepository implements auth.SessionRepository with a mutex-guarded
// map keyed by token hash.
type SessionRepository struct {
	mu       sync.RWMutex
	byToken  map[string]*auth.Session
	byID     map[ulid.ULID]string // session id -> token hash
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		byToken: make(map[string]*auth.Session),
		byID:    make(map[ulid.ULID]string),
	}
}

// Create stores a new session.
func (r *SessionRepository) Create(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[session.TokenHash]; exists {
		return auth.ErrDuplicateToken
	}

	copied := *session
	r.byToken[session.TokenHash] = &copied
	r.byID[session.ID] = session.TokenHash
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.byToken[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

// UpdateLastSeen records activity on a session without touching expiry.
func (r *SessionRepository) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokenHash, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	r.byToken[tokenHash].LastSeenAt = lastSeen
	return nil
}

// DeleteByTokenHash removes a session by token hash.
func (r *SessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byToken[tokenHash]
	if !ok {
		return auth.ErrNotFound
	}
	delete(r.byToken, tokenHash)
	delete(r.byID, session.ID)
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepository) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tokenHash, session := range r.byToken {
		if session.UserID == userID {
			delete(r.byToken, tokenHash)
			delete(r.byID, session.ID)
		}
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns the count deleted.
func (r *SessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var deleted int64
	for tokenHash, session := range r.byToken {
		if session.IsExpiredAt(now) {
			delete(r.byToken, tokenHash)
			delete(r.byID, session.ID)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of live sessions. Test helper.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
