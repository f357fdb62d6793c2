package service

import (
	"errors"
	"fmt"

	"github.com/kicklink/social-backend/internal/repository"
)

// Error kinds. Every service error wraps exactly one of these so handlers
// can map with errors.Is without knowing the specific failure.
var (
	ErrNotFound          = errors.New("not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid_argument")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrConflict          = errors.New("conflict")
	// ErrTransient marks storage/network failures that are safe to retry;
	// the idempotent operations (markRead, like/unlike, react/unreact)
	// document that a retry after an ambiguous failure cannot double-apply.
	ErrTransient = errors.New("transient")
)

// Specific failures, each carrying its kind.
var (
	ErrInvalidParticipants = fmt.Errorf("%w: invalid participants", ErrInvalidArgument)
	ErrNotAParticipant     = fmt.Errorf("%w: not a participant", ErrForbidden)
	ErrInvalidMessageRef   = fmt.Errorf("%w: invalid message reference", ErrInvalidArgument)
	ErrInvalidParent       = fmt.Errorf("%w: invalid parent comment", ErrInvalidArgument)
)

// storageErr normalizes a repository error into the taxonomy: not-found maps
// to ErrNotFound, anything else is a transient storage failure.
func storageErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
