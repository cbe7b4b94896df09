package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

type contextKey string

const UserContextKey contextKey = "user"

// CookieName is the cookie set on login and cleared on logout.
const CookieName = "token"

// TokenFromRequest looks for a token in the Authorization bearer header,
// then the x-auth-token header, then the token or auth-token cookies.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if t := r.Header.Get("x-auth-token"); t != "" {
		return t
	}
	for _, name := range []string{CookieName, "auth-token"} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				deny(w, r, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				deny(w, r, http.StatusUnauthorized, "Token is not valid")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleSource reports the current role of a user. Roles are looked up on
// every admin request so that demotions apply before the token expires.
type RoleSource interface {
	Role(ctx context.Context, userID string) (string, error)
}

// RequireAdmin must run after Middleware.
func RequireAdmin(roles RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUser(r.Context())
			if claims == nil {
				deny(w, r, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			role, err := roles.Role(r.Context(), claims.UserID)
			if err != nil || role != "admin" {
				deny(w, r, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUser(ctx context.Context) *Claims {
	claims, _ := ctx.Value(UserContextKey).(*Claims)
	return claims
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
