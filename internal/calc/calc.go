// Package calc has closed-form helpers used while sizing parts by hand.
package calc

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSideTooLarge is returned when the known side cannot fit inside
	// the circle.
	ErrSideTooLarge = errors.New("known side is too large to fit within the circle")
	// ErrInvalidRadius is returned for a non-positive radius.
	ErrInvalidRadius = errors.New("radius must be positive")
	// ErrNegativeSide is returned for a negative side length.
	ErrNegativeSide = errors.New("side length must not be negative")
)

// InscribedRectangleSide returns the missing side of a rectangle
// inscribed in a circle of the given radius when one side is known.
// The diagonal of such a rectangle is the circle's diameter.
func InscribedRectangleSide(radius, knownSide float64) (float64, error) {
	if radius <= 0 {
		return 0, fmt.Errorf("%w: %g", ErrInvalidRadius, radius)
	}
	if knownSide < 0 {
		return 0, fmt.Errorf("%w: %g", ErrNegativeSide, knownSide)
	}
	diameterSquared := (2 * radius) * (2 * radius)
	if knownSide*knownSide >= diameterSquared {
		return 0, fmt.Errorf("%w: side %g, radius %g", ErrSideTooLarge, knownSide, radius)
	}
	return math.Sqrt(diameterSquared - knownSide*knownSide), nil
}
