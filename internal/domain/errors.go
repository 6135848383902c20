package domain

import (
	"errors"
	"fmt"
)

// Error codes for every business-rule violation. Handlers map these onto
// user-facing output; none of them are retryable.
const (
	CodeInvalidTimeRange        = "InvalidTimeRange"
	CodeDurationTooLong         = "DurationTooLong"
	CodeDurationTooShort        = "DurationTooShort"
	CodeOutsideBusinessHours    = "OutsideBusinessHours"
	CodeTimeEntryOverlap        = "TimeEntryOverlap"
	CodeDuplicateClientName     = "DuplicateClientName"
	CodeDuplicateProjectName    = "DuplicateProjectName"
	CodeFieldRequired           = "FieldRequired"
	CodeFieldTooLong            = "FieldTooLong"
	CodeTimeEntryLocked         = "TimeEntryLocked"
	CodeInvalidStatusTransition = "InvalidStatusTransition"
	CodeInvoiceNotEditable      = "InvoiceNotEditable"
	CodeInvoiceNotDeletable     = "InvoiceNotDeletable"
	CodeNoTimeEntries           = "NoTimeEntries"
	CodeInvalidDateRange        = "InvalidDateRange"
	CodeEntityNotFound          = "EntityNotFound"
)

// Error is a business-rule violation with a machine-readable code and a
// human message. Detail carries context for display (e.g. the conflicting
// entry's timestamps).
type Error struct {
	Code    string
	Message string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Is reports equality by code, so errors.Is works against taxonomy sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewError creates a rule violation with the given code and message
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a rule violation with a formatted detail string
func NewErrorf(code, message, detailFormat string, args ...interface{}) *Error {
	return &Error{Code: code, Message: message, Detail: fmt.Sprintf(detailFormat, args...)}
}

// CodeOf extracts the rule-violation code from an error chain,
// or "" if the error is not a rule violation.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given rule-violation code
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// ErrNotFound creates an EntityNotFound error naming the entity kind
func ErrNotFound(kind string, id int64) *Error {
	return NewErrorf(CodeEntityNotFound, kind+" not found", "%s #%d does not exist or is not yours", kind, id)
}
