package floorplan

import (
	"errors"
	"fmt"
)

// ErrMissingColumn indicates the header lacks one of the required columns.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyKey indicates a row with an empty Project or Floor.
var ErrEmptyKey = errors.New("empty project or floor")

// ErrNotRegular indicates an image path that exists but is not a file.
var ErrNotRegular = errors.New("not a regular file")

// LoadError is returned when the input table cannot be read. Line is the
// 1-based line (or sheet row) at fault, 0 when it applies to the whole
// source.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ResolveError is a filesystem failure other than absence while looking
// up a floor-plan image.
type ResolveError struct {
	Key string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve image %s: %v", e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// AggregationError reports a row whose area cannot be summed.
type AggregationError struct {
	Row     int
	Project string
	Value   string
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate row %d (project %q): %v", e.Row, e.Project, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
