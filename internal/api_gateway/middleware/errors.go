package middleware

import (
	"github.com/gin-gonic/gin"
)

// Error codes shared with the handler envelope
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeTrialExpired  = "TRIAL_EXPIRED"
	CodeInternalError = "INTERNAL_SERVER_ERROR"
)

// abortWithError stops the chain with the same envelope the handlers use
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if id := GetCorrelationID(c); id != "" {
		body["correlation_id"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
