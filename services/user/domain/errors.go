package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidUsername indicates the username violates domain constraints.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword indicates the password violates length rules.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCredentials is returned by login for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidMenu indicates a menu entry with a non-positive serves, a nil
	// recipe id, or a recipe listed twice.
	ErrInvalidMenu = errors.New("invalid recipe menu")

	// ErrInvalidQuantity indicates a quantity that is not a positive finite number.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidUnit indicates an empty unit.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrMissingItemID indicates a line, ingredient or item entry without an item id.
	ErrMissingItemID = errors.New("item id is required")

	// ErrLineNotFound indicates no shopping-list line matches the (item_id, unit) key.
	ErrLineNotFound = errors.New("shopping list line not found")

	// ErrVersionConflict indicates the stored user changed since it was read.
	ErrVersionConflict = errors.New("user was modified concurrently")
)
