package api

import (
	"context"

	"github.com/terra-clan/manrura/internal/models"
)

type contextKey string

const userContextKey contextKey = "acting_user"

// UserFromContext extracts the acting user from context
func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// ContextWithUser adds the acting user to context
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
