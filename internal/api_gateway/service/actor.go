package service

import (
	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/google/uuid"
)

// Actor is the resolved caller of a request. It is attached to every
// activity event the request produces.
type Actor struct {
	UserID        uuid.UUID
	Username      string
	Role          access.Role
	IPAddress     string
	CorrelationID string
}
