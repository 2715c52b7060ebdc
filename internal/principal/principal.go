package principal

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Role is the portal-wide account role. There are exactly two.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ErrAccessDenied is returned when the principal's role does not grant
// the requested operation.
var ErrAccessDenied = errors.New("access_denied")

// Principal is the resolved caller identity injected by the auth
// middleware. Identity resolution itself (passwords, sessions) lives
// in the auth package; everything downstream only sees this.
type Principal struct {
	ID   snowflake.ID
	Role Role
}

type contextKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal from context, if set.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// RequireCustomer returns ErrAccessDenied unless the principal carries
// the customer role. Capability checks happen once at the coordinator
// entry points, not per storage operation.
func RequireCustomer(p Principal) error {
	return require(p, RoleCustomer)
}

// RequireAdmin returns ErrAccessDenied unless the principal carries
// the admin role.
func RequireAdmin(p Principal) error {
	return require(p, RoleAdmin)
}

func require(p Principal, role Role) error {
	if p.ID == 0 || p.Role != role {
		return ErrAccessDenied
	}
	return nil
}
