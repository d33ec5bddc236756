// Package apperrors defines the error taxonomy shared by the store, the
// services and the HTTP boundary. Handlers map these types to status codes;
// everything else just wraps and returns them.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports bad input: a missing required field, a negative
// quantity, an unknown enum value. Fields lists the offending field names.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (fields: %s)", e.Message, strings.Join(e.Fields, ", "))
}

func NewValidation(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError reports a lookup by id that matched nothing.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness or relational-rule violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// AuthError reports a missing or invalid token. Missing distinguishes the
// no-token case (401) from the bad-token case (403).
type AuthError struct {
	Message string
	Missing bool
}

func (e *AuthError) Error() string { return e.Message }

func NewAuth(message string, missing bool) *AuthError {
	return &AuthError{Message: message, Missing: missing}
}

// UpstreamError reports a failure from the external catalog API. Detail
// carries the upstream response body for diagnostics.
type UpstreamError struct {
	Message string
	Detail  string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

func NewUpstream(message, detail string) *UpstreamError {
	return &UpstreamError{Message: message, Detail: detail}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
