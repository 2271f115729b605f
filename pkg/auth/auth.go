// Package auth verifies the bearer tokens the storefront app sends.
//
// Tokens are HS256 JWTs carrying the user id in "sub" and an "admin" flag.
// Issuing tokens belongs to the login service; IssueToken exists for tests
// and local tooling.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pooja-supplies/pkg/errors"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Admin  bool
}

// Claims are the JWT claims understood by the services
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for a user
func IssueToken(secret []byte, userID string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a token and returns its principal
func ParseToken(secret []byte, tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return Principal{}, fmt.Errorf("invalid token: missing subject")
	}
	return Principal{UserID: claims.Subject, Admin: claims.Admin}, nil
}

// Middleware rejects requests without a valid bearer token
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.Error(errors.NewUnauthorized("missing bearer token"))
			c.Abort()
			return
		}

		principal, err := ParseToken(secret, tokenString)
		if err != nil {
			c.Error(errors.NewUnauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers that are not admins
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.Error(errors.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if !principal.Admin {
			c.Error(errors.NewForbidden("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Middleware
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
