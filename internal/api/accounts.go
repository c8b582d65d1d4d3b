package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"order_system/internal/respond" // JSON error responses
	"order_system/internal/service" // Account service
	"order_system/internal/store"   // Store input types

	"github.com/gin-gonic/gin" // Gin web framework
)

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ListAccountsHandler returns every account
func ListAccountsHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := accounts.List(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetAccountHandler returns one account
func GetAccountHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		account, err := accounts.Get(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// CreateAccountHandler creates an account, admin flag included
func CreateAccountHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req store.AccountInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		account, err := accounts.Create(c.Request.Context(), req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}

// UpdateAccountHandler applies a partial update; a password is re-hashed before it is stored
func UpdateAccountHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		var req store.AccountPatch // Only fields present in the body are set
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		account, err := accounts.Update(c.Request.Context(), id, req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// DeleteAccountHandler removes an account with all of its orders
func DeleteAccountHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		if err := accounts.Delete(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
