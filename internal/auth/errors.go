// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email that
// already exists (compared case-insensitively).
var ErrDuplicateEmail = errors.New("duplicate email")

// ErrDuplicateToken is returned when a generated session token hash collides
// with a live session.
var ErrDuplicateToken = errors.New("duplicate session token")

// IsInvalidCredentials reports whether err is the uniform login rejection.
// Callers use it to distinguish "retry your password" from infrastructure
// failure without inspecting messages.
func IsInvalidCredentials(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == "AUTH_INVALID_CREDENTIALS"
}
