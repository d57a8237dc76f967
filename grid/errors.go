package grid

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DegenerateGridError is returned when constructing a grid with
// non-positive dimensions or cell sizes.
type DegenerateGridError struct {
	Reason string
}

func (e *DegenerateGridError) Error() string {
	return fmt.Sprintf("degenerate grid: %s", e.Reason)
}

// InvalidRegionError is returned when a requested region does not intersect
// the source grid, or cannot be used as a region at all.
type InvalidRegionError struct {
	Region orb.Bound
	Grid   orb.Bound
	Reason string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region %v for grid bounds %v: %s", e.Region, e.Grid, e.Reason)
}

// TransformError wraps a failure to reproject a geometry or to invert an
// affine transform.
type TransformError struct {
	Op  string
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
