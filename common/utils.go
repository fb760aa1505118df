package common

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3
type Vec2 = mgl32.Vec2
type Quat = mgl32.Quat
type Mat4 = mgl32.Mat4

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func Next[T IT](i, n T) T {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// XZ drops the height component of a world-space point.
func XZ(v Vec3) Vec2 {
	return Vec2{v.X(), v.Z()}
}

func Reverse[T any](s []T) []T {
	res := make([]T, len(s))
	for i, v := range s {
		res[len(s)-1-i] = v
	}
	return res
}
