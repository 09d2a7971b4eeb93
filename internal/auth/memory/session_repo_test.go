// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/internal/auth/memory"
)

func newTestSession(t *testing.T, userID ulid.ULID, expiresAt time.Time) *auth.Session {
	t.Helper()
	_, hash, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	session, err := auth.NewSession(userID, hash, expiresAt)
	require.NoError(t, err)
	return session
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	session := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))

	require.NoError(t, repo.Create(ctx, session))

	stored, err := repo.GetByTokenHash(ctx, session.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
	assert.Equal(t, session.UserID, stored.UserID)

	// The returned session is a copy; mutating it must not affect the store.
	stored.TokenHash = "mutated"
	again, err := repo.GetByTokenHash(ctx, session.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, session.TokenHash, again.TokenHash)
}

func TestSessionRepository_CreateDuplicateToken(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	session := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))

	require.NoError(t, repo.Create(ctx, session))

	dup, err := auth.NewSession(ulid.Make(), session.TokenHash, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), auth.ErrDuplicateToken)
}

func TestSessionRepository_GetUnknownToken(t *testing.T) {
	repo := memory.NewSessionRepository()
	session, err := repo.GetByTokenHash(context.Background(), "neverissued")
	assert.Nil(t, session)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	session := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	seen := time.Now().Add(10 * time.Minute).UTC()
	require.NoError(t, repo.UpdateLastSeen(ctx, session.ID, seen))

	stored, err := repo.GetByTokenHash(ctx, session.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, seen, stored.LastSeenAt)
	// Expiry never moves.
	assert.Equal(t, session.ExpiresAt, stored.ExpiresAt)

	assert.ErrorIs(t, repo.UpdateLastSeen(ctx, ulid.Make(), seen), auth.ErrNotFound)
}

func TestSessionRepository_DeleteByTokenHash(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	session := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.DeleteByTokenHash(ctx, session.TokenHash))
	assert.Equal(t, 0, repo.Len())

	assert.ErrorIs(t, repo.DeleteByTokenHash(ctx, session.TokenHash), auth.ErrNotFound)
}

func TestSessionRepository_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	userID := ulid.Make()
	otherID := ulid.Make()

	require.NoError(t, repo.Create(ctx, newTestSession(t, userID, time.Now().Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestSession(t, userID, time.Now().Add(time.Hour))))
	kept := newTestSession(t, otherID, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, kept))

	require.NoError(t, repo.DeleteByUser(ctx, userID))
	assert.Equal(t, 1, repo.Len())

	stored, err := repo.GetByTokenHash(ctx, kept.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, otherID, stored.UserID)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()

	require.NoError(t, repo.Create(ctx, newTestSession(t, ulid.Make(), time.Now().Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newTestSession(t, ulid.Make(), time.Now().Add(-time.Hour))))
	live := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, live))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 1, repo.Len())
}

func TestSessionRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := newTestSession(t, ulid.Make(), time.Now().Add(time.Hour))
			if err := repo.Create(ctx, session); err != nil {
				t.Error(err)
				return
			}
			if _, err := repo.GetByTokenHash(ctx, session.TokenHash); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, repo.Len())
}
