package shadow

import (
	"github.com/spaghettifunk/cascades/engine/math"
)

// Slopes holds the x/z and y/z ratios of a perspective frustum's side
// planes at unit depth.
type Slopes struct {
	Right, Left, Top, Bottom float32
}

// FrustumSlopes recovers the side-plane slopes of a perspective projection
// by un-projecting the clip-space side points on the far plane.
func FrustumSlopes(projection math.Mat4) Slopes {
	inverse := projection.Inverse()

	unproject := func(x, y float32) math.Vec4 {
		return math.Vec4{X: x, Y: y, Z: 1, W: 1}.Transform(inverse)
	}
	right := unproject(1, 0)
	left := unproject(-1, 0)
	top := unproject(0, 1)
	bottom := unproject(0, -1)

	return Slopes{
		Right:  right.X / right.Z,
		Left:   left.X / left.Z,
		Top:    top.Y / top.Z,
		Bottom: bottom.Y / bottom.Z,
	}
}

// ComputeFrustumCorners returns the eight view-space corners of the slice of
// the projection's frustum between depths begin and end. Corners 0..3 lie at
// begin and 4..7 at end, each quad ordered right-top, left-top, left-bottom,
// right-bottom. Callers rely on this order positionally.
func ComputeFrustumCorners(projection math.Mat4, begin, end float32) [8]math.Vec3 {
	return frustumCornersFromSlopes(FrustumSlopes(projection), begin, end)
}

func frustumCornersFromSlopes(s Slopes, begin, end float32) [8]math.Vec3 {
	rightTop := math.NewVec3(s.Right, s.Top, 1)
	leftBottom := math.NewVec3(s.Left, s.Bottom, 1)

	var corners [8]math.Vec3
	for i, depth := range [2]float32{begin, end} {
		rt := rightTop.MulScalar(depth)
		lb := leftBottom.MulScalar(depth)

		base := i * 4
		corners[base+0] = rt
		corners[base+1] = math.NewVec3(lb.X, rt.Y, rt.Z)
		corners[base+2] = lb
		corners[base+3] = math.NewVec3(rt.X, lb.Y, lb.Z)
	}
	return corners
}
