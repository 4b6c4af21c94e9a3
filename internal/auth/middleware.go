package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// VersionChecker returns the current token version of a user.
type VersionChecker interface {
	GetTokenVersion(ctx context.Context, id string) (int, error)
}

// verify resolves the bearer token of c. present is false when no bearer
// header was sent at all.
func verify(c *gin.Context, tokens TokenService, versions VersionChecker) (claims *Claims, present bool, err error) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil, false, nil
	}

	claims, err = tokens.Parse(strings.TrimSpace(h[len("Bearer "):]))
	if err != nil {
		return nil, true, err
	}
	if versions != nil {
		current, err := versions.GetTokenVersion(c.Request.Context(), claims.UserID)
		if err != nil || current != claims.TokenVersion {
			return nil, true, ErrInvalidToken
		}
	}
	return claims, true, nil
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens TokenService, versions VersionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := verify(c, tokens, versions)
		if !present {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is sent. A request without
// a token passes through; one with a bad token is rejected.
func OptionalAuth(tokens TokenService, versions VersionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := verify(c, tokens, versions)
		if present && err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims != nil {
			c.Set(CtxClaimsKey, claims)
		}
		c.Next()
	}
}

// MustGetClaims returns the claims set by one of the middlewares, or nil.
func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
