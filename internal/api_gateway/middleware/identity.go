package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// UserIDHeader carries the id of the caller, set by the authentication gateway
	UserIDHeader = "X-User-ID"

	// UserKey is the gin context key of the resolved *user.User
	UserKey = "current_user"
)

// UserResolver loads the caller of a request
type UserResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Identity resolves X-User-ID into an active user whose trial has not ended
func Identity(logger *slog.Logger, resolver UserResolver) gin.HandlerFunc {
	return identity(logger, resolver, time.Now)
}

func identity(logger *slog.Logger, resolver UserResolver, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Missing "+UserIDHeader+" header")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid "+UserIDHeader+" header")
			return
		}

		u, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			var notFound user.ErrUserNotFound
			if errors.As(err, &notFound) {
				abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Unknown user")
				return
			}
			logger.Error("Failed to resolve user", "user_id", raw, "correlation_id", GetCorrelationID(c), "error", err)
			abortWithError(c, http.StatusInternalServerError, CodeInternalError, "An internal server error occurred")
			return
		}
		if !u.IsActive {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "User is inactive")
			return
		}
		if u.TrialExpired(now().UTC()) {
			abortWithError(c, http.StatusForbidden, CodeTrialExpired, "Trial period has expired")
			return
		}

		c.Set(UserKey, u)
		c.Next()
	}
}

// RequireCapability rejects callers whose role does not hold capability. It
// must run after Identity.
func RequireCapability(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := GetUser(c)
		if u == nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
			return
		}
		if !access.Allowed(u.Role, capability) {
			abortWithError(c, http.StatusForbidden, CodeForbidden, forbiddenMessage(u.Role, capability))
			return
		}
		c.Next()
	}
}

func forbiddenMessage(role access.Role, capability access.Capability) string {
	msg := "Role " + string(role) + " may not perform " + string(capability)
	allowed := access.RolesFor(capability)
	if len(allowed) == 0 {
		return msg
	}
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return msg + "; allowed roles: " + strings.Join(names, ", ")
}

// GetUser returns the user stored by Identity, or nil
func GetUser(c *gin.Context) *user.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}
