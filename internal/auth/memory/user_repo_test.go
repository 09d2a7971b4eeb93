// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package memory_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/internal/auth/memory"
)

func newTestUser(t *testing.T, email string) *auth.User {
	t.Helper()
	user, err := auth.NewUser(email, "digest", "employee")
	require.NoError(t, err)
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	user := newTestUser(t, "alice@company.com")

	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "alice@company.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_EmailLookupIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	user := newTestUser(t, "Alice@Company.com")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByEmail(ctx, "alice@COMPANY.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	// The stored spelling is preserved.
	assert.Equal(t, "Alice@Company.com", found.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	require.NoError(t, repo.Create(ctx, newTestUser(t, "alice@company.com")))

	// Uniqueness is case-insensitive too.
	err := repo.Create(ctx, newTestUser(t, "ALICE@company.com"))
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestUserRepository_GetUnknown(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	user, err := repo.GetByID(ctx, ulid.Make())
	assert.Nil(t, user)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	user, err = repo.GetByEmail(ctx, "nobody@company.com")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestUserRepository_UpdateDigest(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	user := newTestUser(t, "alice@company.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdateDigest(ctx, user.ID, "newdigest"))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newdigest", stored.PasswordDigest)
	assert.True(t, stored.UpdatedAt.After(user.UpdatedAt) || stored.UpdatedAt.Equal(user.UpdatedAt))

	assert.ErrorIs(t, repo.UpdateDigest(ctx, ulid.Make(), "x"), auth.ErrNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	user := newTestUser(t, "alice@company.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	// The email is free for reuse after deletion.
	require.NoError(t, repo.Create(ctx, newTestUser(t, "alice@company.com")))

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), auth.ErrNotFound)
}
