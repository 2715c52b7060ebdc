package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/orderdesk/internal/principal"
)

// LoginResult carries the session handed to the cookie layer plus the
// resolved principal.
type LoginResult struct {
	Session   Session
	Principal principal.Principal
}

type Service interface {
	// Login resolves the username against admin accounts first, then
	// customer accounts, and opens a session on a password match.
	Login(ctx context.Context, username, password string) (LoginResult, error)

	// Authenticate resolves a session token to its principal. Expired
	// sessions are deleted on sight.
	Authenticate(ctx context.Context, token string) (principal.Principal, error)

	Logout(ctx context.Context, token string) error

	ChangePassword(ctx context.Context, p principal.Principal, currentPassword, newPassword string) error

	// DeleteExpiredSessions is the sweep hook for session hygiene.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionExpired     = errors.New("session_expired")
	ErrWeakPassword       = errors.New("weak_password")
)
