package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clubhub-dev/clubhub/internal/auth"
	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/utils"
)

type key int

const authContextKey key = 0

// NeedAuth decodes the access token (cookie or bearer header) and stores the
// resulting AuthContext in the request context. Requests without a valid
// token are rejected.
func NeedAuth(decoder auth.Decoder) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}
			actor, err := decoder.Decode(token)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), authContextKey, actor)
			next(w, r.WithContext(ctx))
		}
	}
}

// AdminOnly additionally requires the super-admin flag.
func AdminOnly(decoder auth.Decoder) func(http.HandlerFunc) http.HandlerFunc {
	needAuth := NeedAuth(decoder)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return needAuth(func(w http.ResponseWriter, r *http.Request) {
			actor := GetAuthContext(r)
			if actor == nil || !actor.IsSuperAdmin {
				http.Error(w, "Admin only", http.StatusForbidden)
				return
			}
			next(w, r)
		})
	}
}

// GetAuthContext returns the AuthContext placed by NeedAuth, or nil.
func GetAuthContext(r *http.Request) *domain.AuthContext {
	actor, _ := r.Context().Value(authContextKey).(*domain.AuthContext)
	return actor
}

// WithAuthContext injects an AuthContext directly. Test helper.
func WithAuthContext(r *http.Request, actor *domain.AuthContext) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authContextKey, actor))
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
