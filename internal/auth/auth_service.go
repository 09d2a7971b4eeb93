// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// tokenCollisionRetries bounds regeneration when a generated token hash
// collides with a live session. Collisions are astronomically rare but the
// repository reports them, so they are handled rather than assumed away.
const tokenCollisionRetries = 3

// Service provides authentication, session and account operations.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates a Service with the default session TTL.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithOptions(users, sessions, hasher, DefaultSessionTTL, slog.Default())
}

// NewServiceWithOptions creates a Service with an explicit session TTL and
// logger. A zero ttl falls back to DefaultSessionTTL.
func NewServiceWithOptions(users UserRepository, sessions SessionRepository, hasher PasswordHasher, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// SessionTTL returns the fixed session lifetime used for new logins.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// dummyPasswordDigest is used when a user doesn't exist to prevent timing
// attacks. We still run password verification to make response time
// consistent. This is NOT a real credential - it's a fake digest that will
// never match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing attack prevention, not a credential.
const dummyPasswordDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login authenticates a user by email and password and creates a session.
// Returns the session and the plaintext token; the token is never stored
// and cannot be recovered later.
//
// Unknown emails and wrong passwords produce the identical
// AUTH_INVALID_CREDENTIALS failure, and both paths pay the digest
// verification cost, so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, string, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	var targetDigest string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			targetDigest = dummyPasswordDigest
			userExists = false
		} else {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetDigest = user.PasswordDigest
		userExists = true
	}

	// Always verify, against the dummy digest if necessary.
	valid, verifyErr := s.hasher.Verify(password, targetDigest)
	if verifyErr != nil {
		if !userExists {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
	}

	// Transparently re-digest legacy (bcrypt) credentials on success.
	if s.hasher.NeedsUpgrade(user.PasswordDigest) {
		if newDigest, hashErr := s.hasher.Hash(password); hashErr == nil {
			if updErr := s.users.UpdateDigest(ctx, user.ID, newDigest); updErr != nil {
				s.logger.Warn("password digest upgrade failed",
					"user_id", user.ID.String(), "error", updErr)
			}
		}
	}

	session, token, err := s.createSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("login succeeded", "user_id", user.ID.String(), "session_id", session.ID.String())
	return session, token, nil
}

// createSession issues a fresh session, regenerating the token on the rare
// hash collision.
func (s *Service) createSession(ctx context.Context, user *User) (*Session, string, error) {
	for attempt := 0; attempt < tokenCollisionRetries; attempt++ {
		token, tokenHash, err := GenerateSessionToken()
		if err != nil {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "generate session token").
				Wrap(err)
		}

		session, err := NewSession(user.ID, tokenHash, time.Now().UTC().Add(s.ttl))
		if err != nil {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "create session").
				Wrap(err)
		}

		createErr := s.sessions.Create(ctx, session)
		if createErr == nil {
			return session, token, nil
		}
		if errors.Is(createErr, ErrDuplicateToken) {
			continue
		}
		return nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(createErr)
	}
	return nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
		With("attempts", tokenCollisionRetries).
		Errorf("could not create a unique session token")
}

// Logout destroys the session for the given token. Destroying an unknown or
// already-destroyed token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// Resolve maps a session token to the identity of its user.
//
// A missing, unknown or expired token resolves to (nil, nil) - anonymous,
// not an error. A session whose user has since been deleted is destroyed
// lazily and also resolves to anonymous. Store failures propagate so a
// broken store never fails open.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	tokenHash := HashSessionToken(token)

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		// Expired rows are also reaped by the background sweeper.
		_ = s.sessions.DeleteByTokenHash(ctx, tokenHash) //nolint:errcheck // Best effort
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling reference: the user was deleted after issuance.
			_ = s.sessions.DeleteByTokenHash(ctx, tokenHash) //nolint:errcheck // Best effort
			s.logger.Info("destroyed orphaned session",
				"session_id", session.ID.String(), "user_id", session.UserID.String())
			return nil, nil
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	// Record activity without extending expiry (fixed-duration policy).
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now().UTC()) //nolint:errcheck // Best effort

	return identityOf(user), nil
}

// CreateAccount creates a user with a freshly digested password. An empty
// role defaults to DefaultRole. Returns an error wrapping ErrDuplicateEmail
// when the email is already taken.
func (s *Service) CreateAccount(ctx context.Context, email, password, role string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, digest, role)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code("USER_DUPLICATE_EMAIL").
				With("email", NormalizeEmail(email)).
				Wrap(err)
		}
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.Info("account created", "user_id", user.ID.String(), "role", user.Role)
	return user, nil
}

// PurgeExpiredSessions removes expired sessions and returns how many were
// deleted. Called by the serve command's background sweeper.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	if n > 0 {
		s.logger.Debug("purged expired sessions", "count", n)
	}
	return n, nil
}
