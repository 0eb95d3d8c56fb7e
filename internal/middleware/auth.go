// Package middleware provides the HTTP middleware chain for the storefront
// service.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopcore/storefront/internal/auth"
	"github.com/shopcore/storefront/internal/domain/user"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/pkg/logger"
)

type contextKey int

const userKey contextKey = iota

// UserResolver turns a bearer token into the current user on the request
// context. It fails open: a missing, malformed, expired or orphaned token
// leaves the request anonymous, and route-level authorization decides whether
// anonymous is acceptable.
type UserResolver struct {
	tokens *auth.TokenIssuer
	users  storage.UserStore
	log    *logger.Logger
}

// NewUserResolver creates the resolver middleware.
func NewUserResolver(tokens *auth.TokenIssuer, users storage.UserStore, log *logger.Logger) *UserResolver {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &UserResolver{tokens: tokens, users: users, log: log}
}

// Handler returns the middleware handler.
func (m *UserResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.log.Warn("malformed authorization header; proceeding anonymous")
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			// Distinct reason in the log so operators can tell
			// "invalid" from "missing", but the request itself
			// stays anonymous.
			m.log.WithError(err).Warn("token rejected; proceeding anonymous")
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			m.log.WithError(err).Warn("user lookup failed; proceeding anonymous")
			next.ServeHTTP(w, r)
			return
		}
		if u == nil {
			m.log.WithField("user_id", claims.UserID).Warn("token references missing user; proceeding anonymous")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// UserFrom extracts the resolved user from the request context.
func UserFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok
}

// WithUser attaches a user to a context. Test support.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// RequireUser rejects anonymous requests with 401. This is the only place
// that raises Unauthenticated; the resolver never does.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
