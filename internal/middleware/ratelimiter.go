package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/clubhub-dev/clubhub/internal/middleware/ratelimiter"
	"github.com/clubhub-dev/clubhub/internal/utils"
)

func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor := GetAuthContext(r); actor != nil && actor.IsSuperAdmin { // disable for admin
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.Limiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetUserIdFromContext keys rate limits by the authenticated user.
func GetUserIdFromContext(r *http.Request) (string, error) {
	actor := GetAuthContext(r)
	if actor == nil {
		return "", fmt.Errorf("no authenticated user on request")
	}
	return fmt.Sprintf("user_%d", actor.UserId), nil
}

// GetIP extracts the client IP from RemoteAddr only; forwarded-for headers
// are not trusted here.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
