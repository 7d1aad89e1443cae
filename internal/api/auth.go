package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sellerscope/sellerscope/internal/log"
	"github.com/sellerscope/sellerscope/internal/tenant"
)

// authClaims is the token payload: the caller's identity and the tenant
// database their data lives in.
type authClaims struct {
	UserID   string `json:"userId"`
	Database string `json:"databaseName"`
	jwt.RegisteredClaims
}

// authMiddleware validates the Authorization bearer token and injects the
// user id and tenant database into the request context. Tokens are HS256;
// any other signing method is rejected.
func authMiddleware(secret []byte, logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", logger)
				return
			}

			claims := &authClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !parsed.Valid {
				logger.Warn("token validation failed", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token", logger)
				return
			}

			if claims.UserID == "" || claims.Database == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "token missing identity claims", logger)
				return
			}

			ctx := context.WithValue(r.Context(), userIDCtxKey{}, claims.UserID)
			ctx = tenant.WithDatabase(ctx, claims.Database)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
