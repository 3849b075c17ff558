// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	builder := jwt.NewBuilder()
	if subject != "" {
		builder = builder.Subject(subject)
	}
	token, err := builder.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), []byte("test-secret")))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestFromAuthorizationHeader(t *testing.T) {
	tests := map[string]struct {
		header            string
		wantAuthenticated bool
		wantUserName      string
	}{
		"bearer token with subject": {
			header:            "Bearer " + signedToken(t, "alice"),
			wantAuthenticated: true,
			wantUserName:      "alice",
		},
		"bearer token without subject": {
			header: "Bearer " + signedToken(t, ""),
		},
		"garbage bearer token": {
			header: "Bearer not-a-token",
		},
		"basic auth": {
			header: "Basic dXNlcjpwYXNz",
		},
		"empty header": {
			header: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			user := FromAuthorizationHeader(tt.header)
			if got := user.IsAuthenticated(); got != tt.wantAuthenticated {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.wantAuthenticated)
			}
			if got := user.UserName(); got != tt.wantUserName {
				t.Errorf("UserName() = %q, want %q", got, tt.wantUserName)
			}
		})
	}
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	if user := FromContext(ctx); user.IsAuthenticated() {
		t.Error("empty context yields an authenticated user")
	}

	ctx = NewContext(ctx, TokenUser{subject: "bob"})
	user := FromContext(ctx)
	if !user.IsAuthenticated() || user.UserName() != "bob" {
		t.Errorf("FromContext() = %+v, want authenticated bob", user)
	}
}
