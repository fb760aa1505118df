package obstacle

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorustyt/polynavmesh/common"
)

// Transform is a world placement: scale first, then rotation, then translation.
type Transform struct {
	Translation common.Vec3
	Rotation    common.Quat
	Scale       common.Vec3
}

func Identity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    common.Vec3{1, 1, 1},
	}
}

func FromTranslation(x, y, z float32) Transform {
	t := Identity()
	t.Translation = common.Vec3{x, y, z}
	return t
}

// Mat4 returns the affine matrix T * R * S.
func (t Transform) Mat4() common.Mat4 {
	tr := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rot := t.Rotation.Normalize().Mat4()
	sc := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(rot).Mul4(sc)
}

func (t Transform) TransformPoint(p common.Vec3) common.Vec3 {
	return mgl32.TransformCoordinate(p, t.Mat4())
}

// Mul composes t with a child placement expressed in t's frame.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.TransformPoint(child.Translation),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale: common.Vec3{
			t.Scale.X() * child.Scale.X(),
			t.Scale.Y() * child.Scale.Y(),
			t.Scale.Z() * child.Scale.Z(),
		},
	}
}
