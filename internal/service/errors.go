package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a user mutates a recipe they do not own.
var ErrForbidden = errors.New("you do not have permission to perform this action")

// ErrSelfFollow is returned when a user tries to subscribe to themselves.
var ErrSelfFollow = errors.New("subscribing to yourself is not allowed")

// NotFoundError means a referenced entity id does not resolve.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a duplicate toggle-add or a remove of an
// absent link. Surfaced to clients as 400, not 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
