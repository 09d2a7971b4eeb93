// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

// Package auth provides the credential and session core of the admin panel.
//
// # Domain Types
//
// Domain types (User, Session, Identity) should be created using their
// respective constructors:
//   - NewUser - creates a User with a validated email and password digest
//   - NewSession - creates a Session with a validated user and expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Service
//
// Service coordinates the domain operations: Login, Logout, Resolve and
// account creation. It is created with NewService, which validates its
// dependencies.
//
// Emails are stored as submitted but compared case-insensitively; the
// repositories enforce uniqueness on the lowercased email.
package auth
