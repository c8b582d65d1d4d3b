// Package respond writes JSON error responses for the HTTP layer.
package respond

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes

	"order_system/internal/apperr" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated, apperr.KindInvalidCredentials:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the JSON error body matching err
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		// Log the cause, hide it from the client
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err.Error(),
		}).Error("Request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["error"] = messageOf(err)
		body["fields"] = fields // Offending input fields
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Token")
	}
	c.AbortWithStatusJSON(status, body)
}

// messageOf returns the bare message of an application error
func messageOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// BadRequest reports an unreadable request body
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
}
