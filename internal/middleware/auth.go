package middleware

import (
	"context"
	"strings" // String manipulation

	"order_system/internal/apperr"  // Error taxonomy
	"order_system/internal/domain"  // Importing domain models
	"order_system/internal/respond" // JSON error responses

	"github.com/gin-gonic/gin" // Gin web framework
)

const accountKey = "account" // Context key for the authenticated account

// TokenResolver turns a bearer token into the account it belongs to
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Account, error)
}

// TokenAuthMiddleware resolves the Authorization header into the calling account.
// Requests without the header pass through anonymously; the permission check decides what they may do.
// A header that is present but wrong is rejected outright.
func TokenAuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" {
			c.Next() // Anonymous request
			return
		}
		token, ok := extractToken(authHeader)
		if !ok {
			respond.Error(c, apperr.Unauthenticated("invalid authorization header"))
			return
		}
		account, err := resolver.Resolve(c.Request.Context(), token) // Look up the token owner
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.Set(accountKey, account) // Store account in context
		c.Next()                   // Proceed to the next handler
	}
}

// extractToken accepts "Token <key>" and "Bearer <key>"
func extractToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentAccount returns the authenticated account, or nil for anonymous requests
func CurrentAccount(c *gin.Context) *domain.Account {
	v, exists := c.Get(accountKey)
	if !exists {
		return nil
	}
	account, _ := v.(*domain.Account)
	return account
}
