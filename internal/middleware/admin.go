package middleware

import (
	"order_system/internal/policy"  // Access policy
	"order_system/internal/respond" // JSON error responses

	"github.com/gin-gonic/gin" // Gin web framework
)

// PermissionMiddleware checks the caller against the access policy for op.
// Anonymous callers get 401, authenticated callers without the privilege get 403.
func PermissionMiddleware(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(CurrentAccount(c), op); err != nil {
			respond.Error(c, err) // Abort with the policy's verdict
			return
		}
		c.Next() // Allowed, proceed to the next handler
	}
}
