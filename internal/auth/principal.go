// Package auth resolves the caller identity passed into every core
// operation. Authorization enforcement sits in front of the core; the core
// itself only carries the principal.
package auth

import "context"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller identity.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// CanAuthor reports whether the principal may create or modify assessments.
func (p *Principal) CanAuthor() bool {
	return p.Role == RoleTeacher || p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom extracts the principal set by the middleware.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*Principal)
	return principal, ok
}
