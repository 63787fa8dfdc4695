package services

import "errors"

var (
	// auth errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrIncorrectPassword = errors.New("incorrect password")

	// access errors
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")

	// user errors
	ErrUsernameTaken = errors.New("username is already taken")
	ErrUserNotFound  = errors.New("user does not exist")

	// validation errors
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidID     = errors.New("invalid id")
)
