package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeUsernameTaken      = "USR002"
	ErrCodeEmailTaken         = "USR003"
	ErrCodeInvalidCredentials = "USR004"
	ErrCodeTooManyAttempts    = "USR005"
	ErrCodeInvalidToken       = "USR006"
	ErrCodeValidation         = "USR007"
)

// Errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many login attempts, please try again later")
	ErrInvalidToken       = errors.New("invalid or revoked token")
)

// UserError custom error type
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewUserNotFoundError() *UserError {
	return &UserError{Code: ErrCodeUserNotFound, Message: "User not found", Err: ErrUserNotFound}
}

func NewUsernameTakenError() *UserError {
	return &UserError{Code: ErrCodeUsernameTaken, Message: "A user with that username already exists", Err: ErrUsernameTaken}
}

func NewEmailTakenError() *UserError {
	return &UserError{Code: ErrCodeEmailTaken, Message: "A user with that email already exists", Err: ErrEmailTaken}
}

func NewInvalidCredentialsError() *UserError {
	return &UserError{Code: ErrCodeInvalidCredentials, Message: "Invalid username or password", Err: ErrInvalidCredentials}
}

func NewTooManyAttemptsError() *UserError {
	return &UserError{Code: ErrCodeTooManyAttempts, Message: "Too many login attempts, please try again later", Err: ErrTooManyAttempts}
}

func NewInvalidTokenError() *UserError {
	return &UserError{Code: ErrCodeInvalidToken, Message: "Invalid or revoked token", Err: ErrInvalidToken}
}

func NewValidationError(err error) *UserError {
	return &UserError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}
