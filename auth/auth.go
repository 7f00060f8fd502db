package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ale3590/fares/httpx"
)

type ctxKey string

const claimsCtxKey = ctxKey("claims")

// Claims is the payload of a bearer token.
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"rol"`
	jwt.RegisteredClaims
}

// UserVerifier is an optional callback to validate that a token's user still exists and is active.
// Set it during app bootstrap via SetUserVerifier. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// Secret returns JWT_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "devjwtsecret"
}

// IssueToken signs an HS256 token for the user valid for ttl.
func IssueToken(userID uint, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(Secret()))
}

// ParseToken validates signature and expiry.
func ParseToken(token string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return []byte(Secret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c.UserID == 0 {
		return nil, errors.New("token without user id")
	}
	return &c, nil
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// WithClaims stores claims in context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// ClaimsFromContext extracts claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok && c != nil
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return c.UserID, true
}

// Middleware attaches the claims of a valid bearer token to the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := BearerToken(r); tok != "" {
			if c, err := ParseToken(tok); err == nil {
				r = r.WithContext(WithClaims(r.Context(), c))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns 401 JSON unless the request carries a valid token of an active user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			msg := "Token inválido."
			if BearerToken(r) == "" {
				msg = "Acceso denegado. No hay token."
			}
			httpx.JSONMessage(w, http.StatusUnauthorized, "unauthorized", msg)
			return
		}
		if verifier != nil && !verifier(r.Context(), uid) {
			httpx.JSONMessage(w, http.StatusUnauthorized, "unauthorized", "Token inválido o usuario inactivo.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
