// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth provides user identity abstractions for the protocol server.
// It implements user interfaces and types that represent authenticated and
// unauthenticated callers in request contexts.
package auth

import (
	"context"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// User represents an authenticated or unauthenticated caller.
// This interface provides the minimal contract for authentication status
// and identity information.
type User interface {
	// IsAuthenticated returns true if the user is authenticated, false otherwise.
	IsAuthenticated() bool

	// UserName returns the username of the user. For unauthenticated users,
	// this returns an empty string.
	UserName() string
}

// UnauthenticatedUser represents an unauthenticated caller.
// This implements the Null Object pattern, providing safe defaults for
// authentication operations without requiring nil checks.
//
// UnauthenticatedUser is safe to use as a zero value and is immutable.
type UnauthenticatedUser struct{}

var _ User = UnauthenticatedUser{}

// IsAuthenticated always returns false for unauthenticated users.
func (u UnauthenticatedUser) IsAuthenticated() bool {
	return false
}

// UserName always returns an empty string for unauthenticated users.
func (u UnauthenticatedUser) UserName() string {
	return ""
}

// TokenUser is a caller identified by the subject claim of a bearer token.
type TokenUser struct {
	subject string
}

var _ User = TokenUser{}

// IsAuthenticated always returns true for token users.
func (u TokenUser) IsAuthenticated() bool {
	return true
}

// UserName returns the token's subject claim.
func (u TokenUser) UserName() string {
	return u.subject
}

// FromAuthorizationHeader resolves a caller identity from an Authorization
// header value. Signature verification is expected to have happened at the
// edge (gateway or middleware); this only extracts the identity claims, so
// an unverifiable or non-bearer header yields an [UnauthenticatedUser], not
// an error.
func FromAuthorizationHeader(header string) User {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return UnauthenticatedUser{}
	}

	token, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return UnauthenticatedUser{}
	}
	subject, ok := token.Subject()
	if !ok || subject == "" {
		return UnauthenticatedUser{}
	}

	return TokenUser{subject: subject}
}

type userContextKey struct{}

// NewContext returns a context carrying the caller identity.
func NewContext(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// FromContext returns the caller identity stored in ctx, or an
// [UnauthenticatedUser] if none was stored.
func FromContext(ctx context.Context) User {
	if user, ok := ctx.Value(userContextKey{}).(User); ok {
		return user
	}
	return UnauthenticatedUser{}
}
