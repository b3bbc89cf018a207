package models

import (
	"fmt"
	"unicode/utf8"
)

// Name is a value object for item and category names: 1..255 characters.
type Name string

const (
	minNameLength = 1
	maxNameLength = 255
)

// NewName constructs a valid Name or returns an error if constraints are violated.
func NewName(s string) (Name, error) {
	n := utf8.RuneCountInString(s)
	if n < minNameLength {
		return "", fmt.Errorf("name must be at least %d character", minNameLength)
	}
	if n > maxNameLength {
		return "", fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	return Name(s), nil
}

// String returns the underlying string value.
func (n Name) String() string {
	return string(n)
}
