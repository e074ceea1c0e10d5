package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
)

// UserIDHeader carries the acting user id
const UserIDHeader = "X-User-ID"

// UserFinder resolves a user id against the directory
type UserFinder interface {
	FindUser(ctx context.Context, id string) (models.User, error)
}

// UserMiddleware identifies the acting user. There are no passwords: the
// id picked on the login screen is the whole credential.
type UserMiddleware struct {
	users UserFinder
}

// NewUserMiddleware creates the middleware
func NewUserMiddleware(users UserFinder) *UserMiddleware {
	return &UserMiddleware{users: users}
}

// Authenticate resolves the user from the X-User-ID header, or from
// "Authorization: Bearer <user id>"
func (m *UserMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := extractUserID(r)
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "provide the X-User-ID header or a Bearer token")
			return
		}

		user, err := m.users.FindUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, directory.ErrUserNotFound) {
				slog.Warn("unknown user", "user_id", userID, "remote_addr", r.RemoteAddr)
				respondError(w, http.StatusUnauthorized, "unknown_user", "the provided user id is not known")
				return
			}
			slog.Error("failed to look up user", "error", err, "user_id", userID)
			respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			return
		}

		slog.Debug("authenticated request", "user_id", user.ID, "role", user.Role)

		ctx := ContextWithUser(r.Context(), &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware that admits only the given roles
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.Warn("permission denied", "user_id", user.ID, "role", user.Role, "path", r.URL.Path)
			respondError(w, http.StatusForbidden, "forbidden", "this action is not available to the "+string(user.Role)+" role")
		})
	}
}

// extractUserID reads the acting user id from the request headers
func extractUserID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return id
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Browsers cannot set headers on a WebSocket handshake
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}
