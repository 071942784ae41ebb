package apperr

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Code classifies a domain failure. The HTTP boundary maps codes to statuses;
// services only ever reason about codes.
type Code string

const (
	CodeValidation Code = "validation"

	CodeMetahubNotFound      Code = "metahub_not_found"
	CodeBranchNotFound       Code = "branch_not_found"
	CodeSourceBranchNotFound Code = "source_branch_not_found"
	CodeMembershipNotFound   Code = "membership_not_found"

	CodeCodenameExists            Code = "codename_exists"
	CodeNumberConflict            Code = "number_conflict"
	CodeCreationInProgress        Code = "creation_in_progress"
	CodeDeletionInProgress        Code = "deletion_in_progress"
	CodeBranchActiveForOtherUsers Code = "branch_active_for_other_users"
	CodeDefaultBranchDelete       Code = "default_branch_cannot_be_deleted"
	CodeDefaultBranchExists       Code = "default_branch_already_configured"
	CodeOptimisticLockMismatch    Code = "optimistic_lock_mismatch"

	CodeInternal Code = "internal"
)

// Error is a coded domain error with structured details for the boundary layer
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

// New creates a coded error
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a coded error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a structured detail and returns the error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithInternal records the underlying cause and returns the error
func (e *Error) WithInternal(err error) *Error {
	e.cause = err
	return e
}

// VersionConflict reports an optimistic-lock mismatch with the context the
// caller needs to present a merge-or-overwrite choice
func VersionConflict(entityType string, entityID uuid.UUID, expected, actual int64, updatedAt time.Time, updatedBy *uuid.UUID) *Error {
	e := New(CodeOptimisticLockMismatch, fmt.Sprintf("%s was modified concurrently", entityType)).
		WithDetail("entity_type", entityType).
		WithDetail("entity_id", entityID.String()).
		WithDetail("expected_version", expected).
		WithDetail("actual_version", actual).
		WithDetail("updated_at", updatedAt)
	if updatedBy != nil {
		e = e.WithDetail("updated_by", updatedBy.String())
	}
	return e
}

// CodeOf extracts the code from an error chain; unknown errors are CodeInternal
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// DetailsOf extracts structured details from an error chain, or nil
func DetailsOf(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// Retryable reports whether the caller can safely retry the same request
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeCreationInProgress, CodeDeletionInProgress, CodeNumberConflict:
		return true
	default:
		return false
	}
}
