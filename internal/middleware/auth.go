package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/djtrip/backend/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// MemberIDKey is the context key for the authenticated member's ID.
const MemberIDKey contextKey = "memberID"

// MemberNicknameKey is the context key for the authenticated member's nickname.
const MemberNicknameKey contextKey = "memberNickname"

var (
	errNoHeader     = errors.New("authorization header required")
	errHeaderFormat = errors.New("invalid authorization header format")
	errToken        = errors.New("invalid or expired token")
	errClaims       = errors.New("invalid token claims")
)

// RequireAuth returns middleware that validates a Bearer JWT and injects
// member claims into the request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, jwtSecret)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects member claims when a valid Bearer JWT is present and
// lets anonymous requests through otherwise. A malformed token is still rejected.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r, jwtSecret)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MemberID returns the authenticated member's ID, or "" for anonymous requests.
func MemberID(ctx context.Context) string {
	id, _ := ctx.Value(MemberIDKey).(string)
	return id
}

// MemberNickname returns the nickname claim of the authenticated member.
func MemberNickname(ctx context.Context) string {
	n, _ := ctx.Value(MemberNicknameKey).(string)
	return n
}

func authenticate(r *http.Request, jwtSecret string) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errHeaderFormat
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errClaims
	}

	memberID, _ := claims["sub"].(string)
	if memberID == "" {
		return nil, errClaims
	}
	nickname, _ := claims["nickname"].(string)

	ctx := context.WithValue(r.Context(), MemberIDKey, memberID)
	ctx = context.WithValue(ctx, MemberNicknameKey, nickname)
	return ctx, nil
}
