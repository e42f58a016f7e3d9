package service

import (
	"errors"
	"fmt"

	"backoffice/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrUnauthorizedTier    = errors.New("approver job level below tier")
	ErrDuplicateDecision   = errors.New("tier already decided")
	ErrConfiguration       = errors.New("approval configuration error")
	ErrConcurrencyConflict = errors.New("concurrent modification")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
)

// ErrorKind classifies an engine error for callers that map it to a transport status.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindState         ErrorKind = "STATE"
	KindAuthorization ErrorKind = "AUTHORIZATION"
	KindDuplicate     ErrorKind = "DUPLICATE_DECISION"
	KindConfiguration ErrorKind = "CONFIGURATION"
	KindConflict      ErrorKind = "CONCURRENCY_CONFLICT"
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindValidation    ErrorKind = "VALIDATION"
	KindInternal      ErrorKind = "INTERNAL"
)

var kindBySentinel = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidState, KindState},
	{ErrUnauthorizedTier, KindAuthorization},
	{ErrDuplicateDecision, KindDuplicate},
	{ErrConfiguration, KindConfiguration},
	{ErrConcurrencyConflict, KindConflict},
	{ErrNotFound, KindNotFound},
	{ErrValidation, KindValidation},
}

// KindOf reports which kind err belongs to. Unclassified errors are KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindBySentinel {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsRetryable reports whether the caller may repeat the same call unchanged.
func IsRetryable(err error) bool {
	return KindOf(err) == KindConflict
}

// translateRepoErr maps storage-level errors onto engine sentinels.
func translateRepoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrVersionConflict):
		return fmt.Errorf("%w: %s was modified concurrently", ErrConcurrencyConflict, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: %v", ErrConcurrencyConflict, what, err)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}
