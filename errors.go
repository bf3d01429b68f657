package kdnn

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/index/kdtree"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("malformed input")

	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidArgument is matched by every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMemoryLimit is returned when an index does not fit the resource
	// controller's memory budget.
	ErrMemoryLimit = errors.New("memory limit exceeded")
)

// FormatError reports a malformed input record.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type FormatError struct {
	// Line is the 1-based line in the decoded input.
	Line int
	// Column is the 1-based field number, or the byte column for CSV syntax errors.
	Column int
	// Value is the offending field, empty for syntax errors.
	Value string
	cause error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	if e.Value != "" {
		msg += fmt.Sprintf(": invalid value %q", e.Value)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.cause }

// IndexError reports a point index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// InvalidArgumentError reports a rejected argument.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidArgumentError struct {
	Name  string
	Value string
	cause error
}

func (e *InvalidArgumentError) Error() string {
	msg := "invalid argument " + e.Name
	if e.Value != "" {
		msg += " = " + e.Value
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *InvalidArgumentError) Unwrap() error { return e.cause }

// BatchError identifies the query that failed in a batch call.
type BatchError struct {
	// Query is the position of the failing query in the input slice.
	Query int
	cause error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("query %d: %v", e.Query, e.cause)
}

func (e *BatchError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ae *index.ArgumentError
	if errors.As(err, &ae) {
		return &InvalidArgumentError{Name: ae.Arg, Value: ae.Value, cause: ae.Err}
	}
	if errors.Is(err, kdtree.ErrInvalidLeafSize) {
		return &InvalidArgumentError{Name: "leaf size", cause: err}
	}
	if errors.Is(err, kdtree.ErrNonFiniteCoord) {
		return &InvalidArgumentError{Name: "coordinate", cause: err}
	}
	if errors.Is(err, kdtree.ErrTooManyPoints) {
		return &InvalidArgumentError{Name: "point count", cause: err}
	}

	return err
}
