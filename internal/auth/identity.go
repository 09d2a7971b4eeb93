// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth

import "github.com/oklog/ulid/v2"

// Identity is the request-scoped projection of an authenticated user.
// It never carries the password digest. A nil *Identity means anonymous.
type Identity struct {
	ID    ulid.ULID
	Email string
	Role  string
}

// identityOf projects a user into an Identity.
func identityOf(u *User) *Identity {
	return &Identity{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}
