// Package auth decodes caller identity tokens into an explicit AuthContext.
// Issuing tokens (login, registration) is owned by the platform's user
// service; this package only verifies and reads them.
package auth

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

type Decoder interface {
	Decode(jwtStr string) (*domain.AuthContext, error)
}

type Jwt struct {
	secretKey string
}

func New(secretKey string) *Jwt {
	return &Jwt{secretKey}
}

// Decode verifies the token and maps its claims onto an AuthContext.
// Capability claims are flat maps of id -> bool, mirroring the permission
// flags the user service issues per club and per board.
func (j *Jwt) Decode(jwtStr string) (*domain.AuthContext, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}
	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Token missing uid", StatusCode: http.StatusUnauthorized}
	}

	ctx := &domain.AuthContext{
		UserId:     domain.UserId(uid),
		ClubPerms:  parsePerms(claims["club_perms"]),
		BoardPerms: parsePerms(claims["board_perms"]),
	}
	if admin, ok := claims["admin"].(bool); ok {
		ctx.IsSuperAdmin = admin
	}
	return ctx, nil
}

func parsePerms(claim any) map[int64]bool {
	perms := make(map[int64]bool)
	raw, ok := claim.(map[string]any)
	if !ok {
		return perms
	}
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		if allowed, ok := value.(bool); ok && allowed {
			perms[id] = true
		}
	}
	return perms
}

// NewToken mints a token for the given context. Used by tests and local
// tooling; production tokens come from the platform's user service.
func (j *Jwt) NewToken(ctx *domain.AuthContext) (string, error) {
	claims := jwt.MapClaims{
		"uid":   ctx.UserId,
		"admin": ctx.IsSuperAdmin,
	}
	if len(ctx.ClubPerms) > 0 {
		claims["club_perms"] = permsClaim(ctx.ClubPerms)
	}
	if len(ctx.BoardPerms) > 0 {
		claims["board_perms"] = permsClaim(ctx.BoardPerms)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func permsClaim(perms map[int64]bool) map[string]bool {
	claim := make(map[string]bool, len(perms))
	for id, allowed := range perms {
		claim[strconv.FormatInt(id, 10)] = allowed
	}
	return claim
}
