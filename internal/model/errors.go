package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Hashing errors cover internal KDF failures, distinct from a password
	// that simply does not match.
	ErrHashing = errors.New("password hashing failed")
)
