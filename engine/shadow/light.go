package shadow

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cascades/engine/math"
)

// NewDirectionalLightView builds a light view matrix for a directional light
// shining along direction. The eye sits outside the scene bounds, looking at
// their center.
func NewDirectionalLightView(direction math.Vec3, scene math.Extents3D) math.Mat4 {
	dir := direction.Normalized()
	center := scene.Center()
	radius := scene.Radius()

	eye := center.Sub(dir.MulScalar(radius * 2))

	// avoid an up vector parallel to the light
	up := math.NewVec3(0, 1, 0)
	if math32.Abs(dir.Y) > 0.99 {
		up = math.NewVec3(0, 0, 1)
	}
	return math.NewMat4LookAtLH(eye, center, up)
}
