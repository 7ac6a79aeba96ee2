package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrJobNotFound   = errors.New("generation job not found")
	ErrDuplicateName = errors.New("set name already in use")

	ErrJobAlreadyLinked         = errors.New("generation job already linked to a set")
	ErrJobNotSuccessful         = errors.New("generation job did not succeed")
	ErrAcceptedExceedsGenerated = errors.New("accepted count exceeds generated count")
	ErrEditedExceedsAccepted    = errors.New("edited count exceeds accepted count")
	ErrNegativeCount            = errors.New("counts must not be negative")
)

// ValidationError reports a rejected input with the offending field so the
// transport layer can surface field-level detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
