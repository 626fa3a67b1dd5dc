package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodePostNotFound   = "PST001"
	ErrCodeAuthorNotFound = "PST002"
	ErrCodeGroupNotFound  = "PST003"
	ErrCodeNotAuthor      = "PST004"
	ErrCodeValidation     = "PST005"
	ErrCodeStorage        = "PST006"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotAuthor      = errors.New("only the author can edit this post")
	ErrStorage        = errors.New("image storage unavailable")
)

// PostError custom error type
type PostError struct {
	Code    string
	Message string
	Err     error
}

func (e *PostError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PostError) Unwrap() error {
	return e.Err
}

func NewPostNotFoundError() *PostError {
	return &PostError{Code: ErrCodePostNotFound, Message: "Post not found", Err: ErrPostNotFound}
}

func NewAuthorNotFoundError(username string) *PostError {
	return &PostError{
		Code:    ErrCodeAuthorNotFound,
		Message: fmt.Sprintf("Author %q not found", username),
		Err:     ErrAuthorNotFound,
	}
}

func NewGroupNotFoundError(slug string) *PostError {
	return &PostError{
		Code:    ErrCodeGroupNotFound,
		Message: fmt.Sprintf("Group %q not found", slug),
		Err:     ErrGroupNotFound,
	}
}

func NewNotAuthorError() *PostError {
	return &PostError{Code: ErrCodeNotAuthor, Message: "Only the author can edit this post", Err: ErrNotAuthor}
}

// ValidationError bọc FormErrors để handler re-render form
type ValidationError struct {
	Errors FormErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Errors.Error()
}

func NewValidationError(errs FormErrors) *ValidationError {
	return &ValidationError{Errors: errs}
}
