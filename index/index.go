package index

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrInvalidRadius is returned when the radius is negative or NaN.
	ErrInvalidRadius = errors.New("radius must be a non-negative number")

	// ErrNonFiniteQuery is returned when a query coordinate is NaN or infinite.
	ErrNonFiniteQuery = errors.New("query coordinate must be finite")
)

// Coord is a 2-D coordinate.
type Coord struct {
	X float64
	Y float64
}

// IsFinite reports whether both components are finite.
func (c Coord) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// Axis returns the component along axis 0 (x) or 1 (y).
func (c Coord) Axis(axis int) float64 {
	if axis == 0 {
		return c.X
	}
	return c.Y
}

// Neighbor is a single query result.
type Neighbor struct {
	// Index is the position of the point in the indexed point set.
	Index int

	// Distance is the Euclidean distance between the query and the point.
	Distance float64
}

// Filter reports whether the point at index i may appear in results.
// A nil Filter admits every point.
type Filter func(i int) bool

// Searcher is implemented by every spatial index.
type Searcher interface {
	// Len returns the number of indexed points.
	Len() int

	// KNearest returns the min(k, Len()) nearest admitted points ordered by
	// ascending distance, ties broken by ascending index.
	KNearest(q Coord, k int, filter Filter) ([]Neighbor, error)

	// Radius returns every admitted point within distance r of q in unspecified order.
	Radius(q Coord, r float64, filter Filter) ([]Neighbor, error)
}

// ArgumentError records the query argument that failed validation.
// It unwraps to one of the package sentinels.
type ArgumentError struct {
	Arg   string
	Value string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s = %s: %v", e.Arg, e.Value, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (c Coord) String() string {
	return "(" + formatFloat(c.X) + ", " + formatFloat(c.Y) + ")"
}

// ValidateKNearest checks the arguments of a k-nearest query.
func ValidateKNearest(q Coord, k int) error {
	if k < 0 {
		return &ArgumentError{Arg: "k", Value: strconv.Itoa(k), Err: ErrInvalidK}
	}
	if !q.IsFinite() {
		return &ArgumentError{Arg: "query", Value: q.String(), Err: ErrNonFiniteQuery}
	}
	return nil
}

// ValidateRadius checks the arguments of a radius query.
// +Inf is accepted and matches every point.
func ValidateRadius(q Coord, r float64) error {
	if math.IsNaN(r) || r < 0 {
		return &ArgumentError{Arg: "radius", Value: formatFloat(r), Err: ErrInvalidRadius}
	}
	if !q.IsFinite() {
		return &ArgumentError{Arg: "query", Value: q.String(), Err: ErrNonFiniteQuery}
	}
	return nil
}
