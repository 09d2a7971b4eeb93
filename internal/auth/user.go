// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultRole is assigned to accounts created without an explicit role.
const DefaultRole = "employee"

// MaxEmailLength bounds the login handle; RFC 5321 path limit.
const MaxEmailLength = 254

// User represents an account that can sign in to the panel.
//
// PasswordDigest is write-only outside this package: repositories persist
// it and the Service verifies against it, but it is never projected into
// an Identity or serialized to a client.
type User struct {
	ID             ulid.ULID
	Email          string
	PasswordDigest string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a validated User with a fresh ID.
// The digest must already be produced by a PasswordHasher; NewUser never
// sees a plaintext password.
func NewUser(email, passwordDigest, role string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordDigest == "" {
		return nil, oops.Code("USER_EMPTY_DIGEST").Errorf("password digest cannot be empty")
	}
	if role == "" {
		role = DefaultRole
	}

	now := time.Now().UTC()
	return &User{
		ID:             ulid.Make(),
		Email:          email,
		PasswordDigest: passwordDigest,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ValidateEmail validates a login email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("USER_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email is not a valid address")
	}
	return nil
}

// NormalizeEmail returns the canonical form used for comparisons.
// Storage keeps the submitted spelling; lookups and uniqueness use this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepository manages user persistence.
//
// Implementations are the sole writers of PasswordDigest. Lookups must use
// the same case policy as Create (case-insensitive email).
type UserRepository interface {
	// Create stores a new user. Returns an error wrapping ErrDuplicateEmail
	// if the email is already taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns an error wrapping ErrNotFound
	// if no such user exists.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive). Returns an
	// error wrapping ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateDigest replaces the password digest for a user.
	UpdateDigest(ctx context.Context, id ulid.ULID, passwordDigest string) error

	// Delete removes a user. Sessions referencing the user are not
	// cascaded here; resolution treats dangling references as anonymous.
	Delete(ctx context.Context, id ulid.ULID) error
}
