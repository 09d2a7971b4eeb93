// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/pkg/errutil"
)

func TestNewSession(t *testing.T) {
	userID := ulid.Make()
	expires := time.Now().Add(auth.DefaultSessionTTL)

	session, err := auth.NewSession(userID, "somehash", expires)
	require.NoError(t, err)
	assert.NotEqual(t, ulid.ULID{}, session.ID)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "somehash", session.TokenHash)
	assert.Equal(t, expires, session.ExpiresAt)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, session.CreatedAt, session.LastSeenAt)
}

func TestNewSession_Validation(t *testing.T) {
	userID := ulid.Make()
	expires := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		userID     ulid.ULID
		tokenHash  string
		expiresAt  time.Time
		expectCode string
	}{
		{"zero user ID", ulid.ULID{}, "somehash", expires, "SESSION_INVALID_USER"},
		{"empty token hash", userID, "", expires, "SESSION_INVALID_HASH"},
		{"zero expiry", userID, "somehash", time.Time{}, "SESSION_INVALID_EXPIRY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := auth.NewSession(tt.userID, tt.tokenHash, tt.expiresAt)
			require.Error(t, err)
			assert.Nil(t, session)
			errutil.AssertErrorCode(t, err, tt.expectCode)
		})
	}
}

func TestSession_IsExpiredAt(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	session, err := auth.NewSession(ulid.Make(), "somehash", expires)
	require.NoError(t, err)

	assert.False(t, session.IsExpiredAt(expires.Add(-time.Second)))
	// Expiry is inclusive: at the boundary the session is already dead.
	assert.True(t, session.IsExpiredAt(expires))
	assert.True(t, session.IsExpiredAt(expires.Add(time.Second)))
}

func TestGenerateSessionToken(t *testing.T) {
	token, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, token, auth.SessionTokenBytes*2) // hex-encoded
	assert.Len(t, hash, 64)                        // sha256 hex
	assert.Equal(t, auth.HashSessionToken(token), hash)
	assert.NotEqual(t, token, hash)
}

func TestGenerateSessionToken_Unique(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		token, _, err := auth.GenerateSessionToken()
		require.NoError(t, err)
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[token] = struct{}{}
	}
}

func TestVerifySessionToken(t *testing.T) {
	token, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	ok, err := auth.VerifySessionToken(token, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifySessionToken("sometoken", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySessionToken_EmptyInputs(t *testing.T) {
	_, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	ok, err := auth.VerifySessionToken("", hash)
	require.Error(t, err)
	assert.False(t, ok)

	ok, err = auth.VerifySessionToken("sometoken", "")
	require.Error(t, err)
	assert.False(t, ok)
}
