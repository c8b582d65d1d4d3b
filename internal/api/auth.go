package api

import (
	"net/http" // HTTP status codes

	"order_system/internal/apperr"  // Error taxonomy
	"order_system/internal/auth"    // Auth gate
	"order_system/internal/respond" // JSON error responses
	"order_system/internal/service" // Account service
	"order_system/internal/store"   // Store input types

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for login. Username is accepted as an alias of identifier.
type LoginRequest struct {
	Identifier string `json:"identifier"` // Username or email
	Username   string `json:"username"`   // Alias for identifier
	Password   string `json:"password"`   // Plain password, compared against the stored hash
}

// Response struct for login
type LoginResponse struct {
	Token     string `json:"token"`     // Opaque bearer token
	AccountID uint   `json:"accountId"` // Account the token belongs to
	Email     string `json:"email"`     // Account email
}

// Request struct for self-service signup; there is no admin flag to set
type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// LoginHandler checks credentials and returns the account's token, issuing it on first login
func LoginHandler(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err) // If binding fails, return bad request
			return
		}
		if req.Identifier == "" {
			req.Identifier = req.Username
		}
		// Missing fields are a malformed request, not a failed login
		fields := map[string]string{}
		if req.Identifier == "" {
			fields["identifier"] = "this field is required"
		}
		if req.Password == "" {
			fields["password"] = "this field is required"
		}
		if len(fields) > 0 {
			respond.Error(c, apperr.Validation("invalid input", fields))
			return
		}
		result, err := gate.Login(c.Request.Context(), req.Identifier, req.Password)
		if err != nil {
			respond.Error(c, err) // 401 on bad credentials
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, LoginResponse{Token: result.Token, AccountID: result.AccountID, Email: result.Email})
	}
}

// SignupHandler registers a regular, non-admin account
func SignupHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		account, err := accounts.Create(c.Request.Context(), store.AccountInput{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			IsAdmin:   false, // Signup never grants admin
		})
		if err != nil {
			respond.Error(c, err) // Validation or duplicate errors
			return
		}
		c.JSON(http.StatusCreated, account) // Return the created account
	}
}
