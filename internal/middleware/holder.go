package middleware

import "context"

type holderKey struct{}

type userHolder struct {
	userID string
}

func withHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// recordUser stores the authenticated user in the request's holder, if any.
func recordUser(ctx context.Context, userID string) {
	if h, ok := ctx.Value(holderKey{}).(*userHolder); ok {
		h.userID = userID
	}
}
