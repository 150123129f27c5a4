package services

import "errors"

// Service-level error taxonomy. Handlers map these 1:1 onto status codes;
// anything else is an unexpected failure and surfaces as a generic 500.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	// ErrInvalidCredentials covers unknown username and wrong password
	// uniformly; callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrExpenseNotFound    = errors.New("expense not found")
)
