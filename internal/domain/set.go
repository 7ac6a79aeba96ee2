package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	SetNameMinLen = 1
	SetNameMaxLen = 100
)

// Set is a named, user-owned collection of flashcards. Sets are soft-deleted
// so a deleted name can be reused.
type Set struct {
	ID        string
	UserID    string
	Name      string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSet validates the name and returns a new set owned by userID.
func NewSet(userID, name string) (*Set, error) {
	name, err := ValidateSetName(name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Set{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename validates and applies a new name.
func (s *Set) Rename(name string) error {
	name, err := ValidateSetName(name)
	if err != nil {
		return err
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateSetName trims and bounds-checks a set name, returning the
// normalized value.
func ValidateSetName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < SetNameMinLen {
		return "", &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if n > SetNameMaxLen {
		return "", &ValidationError{
			Field:  "name",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", SetNameMaxLen, n),
		}
	}
	return name, nil
}
