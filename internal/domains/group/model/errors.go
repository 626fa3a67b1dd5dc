package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeGroupNotFound = "GRP001"
	ErrCodeSlugTaken     = "GRP002"
	ErrCodeValidation    = "GRP003"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrSlugTaken     = errors.New("group slug already exists")
)

// GroupError custom error type
type GroupError struct {
	Code    string
	Message string
	Err     error
}

func (e *GroupError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

func NewGroupNotFoundError(slug string) *GroupError {
	return &GroupError{
		Code:    ErrCodeGroupNotFound,
		Message: fmt.Sprintf("Group %q not found", slug),
		Err:     ErrGroupNotFound,
	}
}

func NewSlugTakenError(slug string) *GroupError {
	return &GroupError{
		Code:    ErrCodeSlugTaken,
		Message: fmt.Sprintf("Group with slug %q already exists", slug),
		Err:     ErrSlugTaken,
	}
}

func NewValidationError(err error) *GroupError {
	return &GroupError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}
