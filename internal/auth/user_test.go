// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/pkg/errutil"
)

func TestNewUser(t *testing.T) {
	user, err := auth.NewUser("alice@company.com", "$argon2id$v=19$m=65536,t=1,p=4$salt$hash", "admin")
	require.NoError(t, err)
	assert.NotEqual(t, ulid.ULID{}, user.ID)
	assert.Equal(t, "alice@company.com", user.Email)
	assert.Equal(t, "admin", user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUser_DefaultRole(t *testing.T) {
	user, err := auth.NewUser("alice@company.com", "digest", "")
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultRole, user.Role)
}

func TestNewUser_EmptyDigest(t *testing.T) {
	user, err := auth.NewUser("alice@company.com", "", "")
	require.Error(t, err)
	assert.Nil(t, user)
	errutil.AssertErrorCode(t, err, "USER_EMPTY_DIGEST")
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@company.com",
		"a@b.co",
		"first.last+tag@sub.example.org",
	}
	for _, email := range valid {
		t.Run(email, func(t *testing.T) {
			assert.NoError(t, auth.ValidateEmail(email))
		})
	}

	invalid := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no at sign", "alicecompany.com"},
		{"no domain", "alice@"},
		{"spaces", "alice @company.com"},
		{"display name form", "Alice <alice@company.com>"},
		{"too long", strings.Repeat("a", 250) + "@b.co"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "USER_INVALID_EMAIL")
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@company.com", auth.NormalizeEmail("Alice@Company.COM"))
	assert.Equal(t, "alice@company.com", auth.NormalizeEmail("  alice@company.com "))
}
