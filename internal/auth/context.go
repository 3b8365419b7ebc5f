package auth

import "context"

type userContextKey struct{}

// ContextWithUser attaches the authenticated identity to the context so that
// audit records can name the acting user.
func ContextWithUser(ctx context.Context, user *UserInfo) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userContextKey{}, user.Clone())
}

// UserFromContext extracts the identity attached by ContextWithUser.
func UserFromContext(ctx context.Context) (*UserInfo, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(userContextKey{}).(*UserInfo)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
