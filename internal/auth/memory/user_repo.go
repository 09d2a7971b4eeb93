// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
)

// UserRepository implements auth.UserRepository with a mutex-guarded map.
// Uniqueness is enforced on the normalized (lowercased) email, the same
// policy the Postgres repository gets from its unique index.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]*auth.User
	byEmail map[string]ulid.ULID // normalized email -> id
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[ulid.ULID]*auth.User),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create stores a new user.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := auth.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return auth.ErrDuplicateEmail
	}

	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[key] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// UpdateDigest replaces the password digest for a user.
func (r *UserRepository) UpdateDigest(_ context.Context, id ulid.ULID, passwordDigest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordDigest = passwordDigest
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(r.byEmail, auth.NormalizeEmail(user.Email))
	delete(r.byID, id)
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
