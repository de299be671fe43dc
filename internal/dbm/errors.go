package dbm

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes precondition violations.
type ErrorCode string

const (
	// CodeEmptyZone: the operation needs a non-empty zone.
	CodeEmptyZone ErrorCode = "EMPTY_ZONE"

	// CodeDimensionMismatch: two operands have different dimensions.
	CodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"

	// CodeClockIndex: a clock index is outside the zone.
	CodeClockIndex ErrorCode = "CLOCK_INDEX"

	// CodeInvalidDimension: a dimension below 1 or above MaxDimension.
	CodeInvalidDimension ErrorCode = "INVALID_DIMENSION"

	// CodeInvalidValue: a clock value is negative or not representable.
	CodeInvalidValue ErrorCode = "INVALID_VALUE"

	// CodeInvalidPoint: a point has the wrong length or a non-zero reference.
	CodeInvalidPoint ErrorCode = "INVALID_POINT"

	// CodeInvalidMatrix: a raw matrix is not square or has a bad diagonal.
	CodeInvalidMatrix ErrorCode = "INVALID_MATRIX"

	// CodeInvalidZone: the zero Zone value, or a zone returned alongside an error.
	CodeInvalidZone ErrorCode = "INVALID_ZONE"
)

// PreconditionError reports a violated precondition of a zone operation.
type PreconditionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed, e.g. "Intersect".
	Op string

	// Message is a human-readable description.
	Message string
}

// Sentinels for errors.Is. They match any PreconditionError with the same code.
var (
	ErrEmptyZone         = &PreconditionError{Code: CodeEmptyZone}
	ErrDimensionMismatch = &PreconditionError{Code: CodeDimensionMismatch}
	ErrClockIndex        = &PreconditionError{Code: CodeClockIndex}
	ErrInvalidDimension  = &PreconditionError{Code: CodeInvalidDimension}
	ErrInvalidValue      = &PreconditionError{Code: CodeInvalidValue}
	ErrInvalidPoint      = &PreconditionError{Code: CodeInvalidPoint}
	ErrInvalidMatrix     = &PreconditionError{Code: CodeInvalidMatrix}
	ErrInvalidZone       = &PreconditionError{Code: CodeInvalidZone}
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("dbm.%s: %s: %s", e.Op, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("dbm: %s: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("dbm: %s", e.Code)
	}
}

// Is matches another PreconditionError with the same code.
func (e *PreconditionError) Is(target error) bool {
	var pe *PreconditionError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func newError(code ErrorCode, op, format string, args ...any) *PreconditionError {
	return &PreconditionError{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

func errDimensionMismatch(op string, a, b int) error {
	return newError(CodeDimensionMismatch, op, "dimensions %d and %d differ", a, b)
}

func errClockIndex(op string, k, dim int) error {
	return newError(CodeClockIndex, op, "clock %d not in [1, %d)", k, dim)
}
