package model

import (
	"errors"
	"fmt"
)

// ValidationError reports inputs that cannot be analyzed: an empty required
// collection or a broken cross-reference between records. Surfaced straight
// to the caller; never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation returns true if the error (or any error in its chain) is a
// ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DivisionError reports a weighted average whose weighting basis sums to
// zero. Callers are expected to supply at least one positive weight; when
// they do not, the computation fails fast instead of defining 0/0.
type DivisionError struct {
	Msg string
}

func (e *DivisionError) Error() string {
	return e.Msg
}

// NewDivisionError builds a DivisionError from a format string.
func NewDivisionError(format string, args ...any) *DivisionError {
	return &DivisionError{Msg: fmt.Sprintf(format, args...)}
}

// IsDivision returns true if the error (or any error in its chain) is a
// DivisionError.
func IsDivision(err error) bool {
	var de *DivisionError
	return errors.As(err, &de)
}
