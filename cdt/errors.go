package cdt

import (
	"fmt"
	"strings"

	"github.com/gorustyt/polynavmesh/common"
)

// GeometryInsertionError reports degenerate input to the triangulation: a
// non-finite coordinate, a zero-length constraint, an unknown handle or a
// ring that cannot be inserted as a polygon.
type GeometryInsertionError struct {
	Op     string
	Reason string
	Points []common.Vec2
}

func (e *GeometryInsertionError) Error() string {
	var sb strings.Builder
	sb.WriteString("cdt: ")
	sb.WriteString(e.Op)
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if len(e.Points) > 0 {
		sb.WriteString(" at")
		for _, p := range e.Points {
			fmt.Fprintf(&sb, " (%g, %g)", p[0], p[1])
		}
	}
	return sb.String()
}

func insertionError(op, reason string, pts ...common.Vec2) *GeometryInsertionError {
	return &GeometryInsertionError{Op: op, Reason: reason, Points: pts}
}
