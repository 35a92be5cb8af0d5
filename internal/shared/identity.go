package shared

import "context"

// Role names recognised by the access layer.
const (
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

// Identity describes the authenticated caller of a request.
type Identity struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the identity bypasses owner scoping.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
// The second return is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
