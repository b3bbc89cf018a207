package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Username is a value object for a login name: 1..30 characters, no whitespace.
type Username string

const maxUsernameLength = 30

// NewUsername constructs a valid Username or returns an error if constraints are violated.
func NewUsername(s string) (Username, error) {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", fmt.Errorf("username is required")
	}
	if n > maxUsernameLength {
		return "", fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("username must not contain whitespace")
	}
	return Username(s), nil
}

// String returns the underlying string value.
func (u Username) String() string {
	return string(u)
}
