package obstacle

import (
	"errors"
	"fmt"
)

var ErrNilShape = errors.New("obstacle: nil shape")

// UnsupportedShapeError is returned for every shape kind that has no
// footprint projection.
type UnsupportedShapeError struct {
	Kind ShapeKind
	// Permanent is set for kinds that can never act as obstacles.
	Permanent bool
}

func (e *UnsupportedShapeError) Error() string {
	if e.Permanent {
		return fmt.Sprintf("obstacle: %s cannot be used as a navmesh obstacle", e.Kind)
	}
	return fmt.Sprintf("obstacle: no footprint projection for %s", e.Kind)
}

func unsupported(k ShapeKind) *UnsupportedShapeError {
	return &UnsupportedShapeError{Kind: k, Permanent: k.Permanent()}
}
