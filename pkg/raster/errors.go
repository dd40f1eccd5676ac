package raster

import "errors"

var (
	// ErrShapeMismatch is returned when elementwise operands differ in shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidParameter is returned for out-of-range or unknown parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
)
