package user

import (
	"errors"
	"strings"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/google/uuid"
)

// DefaultTrialPeriod is how long a non-admin account stays usable after creation
const DefaultTrialPeriod = 30 * 24 * time.Hour

// Common errors
var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyFullName = errors.New("full name cannot be empty")
	ErrInvalidRole   = errors.New("unknown role")
)

// User is an operator of the bookkeeping system
type User struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FullName       string      `json:"full_name"`
	Role           access.Role `json:"role"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	LastLogin      *time.Time  `json:"last_login,omitempty"`
	TrialExpiresAt *time.Time  `json:"trial_expires_at,omitempty"`
}

// NewUser creates an active user. Every role except admin receives a trial
// that ends after trialPeriod.
func NewUser(username, email, fullName string, role access.Role, trialPeriod time.Duration) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrEmptyFullName
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	u := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     strings.ToLower(email),
		FullName:  fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
	}
	if role != access.RoleAdmin {
		expires := now.Add(trialPeriod)
		u.TrialExpiresAt = &expires
	}
	return u, nil
}

// TrialExpired reports whether the user's trial ended before now. Users
// without a trial never expire.
func (u *User) TrialExpired(now time.Time) bool {
	return u.TrialExpiresAt != nil && u.TrialExpiresAt.Before(now)
}
