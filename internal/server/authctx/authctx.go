package authctx

import (
	"context"

	"uleaf-admin/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the authenticated caller. Token is the credential the
// caller presented; Forward says whether it may be relayed to the backend.
type CurrentUser struct {
	UID     string          `json:"uid"`
	Email   string          `json:"email"`
	Role    domain.UserRole `json:"role"`
	Token   string          `json:"-"`
	Forward bool            `json:"-"`
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}

// Actor names the caller for audit entries.
func Actor(ctx context.Context) string {
	u := FromContext(ctx)
	if u == nil {
		return "system"
	}
	if u.Email != "" {
		return u.Email
	}
	return u.UID
}
