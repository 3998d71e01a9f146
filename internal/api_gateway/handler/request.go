package handler

import (
	"errors"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/middleware"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errInvalidDate = errors.New("dates must be ISO-8601 (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS with optional zone)")

// dateLayouts are tried in order. Layouts without a zone parse as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// parseDate accepts ISO-8601 timestamps with or without a zone, and plain
// dates as midnight UTC
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidDate
}

// optionalDate parses a query parameter that may be absent
func optionalDate(c *gin.Context, name string) (*time.Time, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// idParam reads the :id path parameter
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the audit identity of the request. Identity must have run.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{
		IPAddress:     c.ClientIP(),
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if u := middleware.GetUser(c); u != nil {
		actor.UserID = u.ID
		actor.Username = u.Username
		actor.Role = u.Role
	}
	return actor
}
