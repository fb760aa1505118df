package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/polynavmesh/common"
)

var ErrInvalidHeightfield = errors.New("navmesh: invalid heightfield")

// Heightfield describes the terrain the mesh covers. Scale holds the full
// width, the height scale and the depth; only x and z are used.
type Heightfield struct {
	Scale common.Vec3
}

func (h Heightfield) HalfExtents() common.Vec3 {
	return h.Scale.Mul(0.5)
}

func (h Heightfield) Validate() error {
	x, z := h.Scale.X(), h.Scale.Z()
	if !common.IsFinite(x) || !common.IsFinite(z) || x <= 0 || z <= 0 {
		return fmt.Errorf("%w: scale %v", ErrInvalidHeightfield, h.Scale)
	}
	return nil
}

// Corners returns the terrain boundary on the ground plane:
// (-hx,-hz), (-hx,+hz), (+hx,+hz), (+hx,-hz).
func (h Heightfield) Corners() [4]common.Vec2 {
	he := h.HalfExtents()
	hx, hz := he.X(), he.Z()
	return [4]common.Vec2{
		{-hx, -hz},
		{-hx, hz},
		{hx, hz},
		{hx, -hz},
	}
}
