package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable marks a failure of a backing store or broker. It is
	// never retried here.
	ErrStoreUnavailable = errors.New("data store unavailable")

	ErrSelfDeletion      = errors.New("cannot delete your own account")
	ErrUnsupportedFormat = errors.New("format must be one of json, csv, xlsx")
)

// storeError wraps a collaborator failure so callers can match both
// ErrStoreUnavailable and the underlying cause
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
