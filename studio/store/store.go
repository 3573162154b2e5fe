// Package store is the data-access layer. All reads and writes to persisted
// entities go through a Store, which enforces per-user ownership and keeps
// the derived aggregate counters on user_stats consistent. Errors are typed
// sentinels; nothing in this package knows about HTTP.
package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrForbidden indicates an ownership check failed on a nested resource
	// where hiding existence is not required, e.g. a collaborator whose
	// parent project belongs to someone else.
	ErrForbidden = errors.New("requester does not own the parent resource")

	// ErrInsufficientCredits indicates the user's AI credit balance is
	// exhausted. The balance never goes below zero.
	ErrInsufficientCredits = errors.New("insufficient ai credits")
)

// ValidationError reports malformed or missing input fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v", strings.Join(e.Fields, ", "))
}

func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}

func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

type Store struct {
	db *gorm.DB
}

// NewStore wraps an already opened gorm connection. The store is constructed
// once at process start and injected into the route layer.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
