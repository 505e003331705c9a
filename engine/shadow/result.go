package shadow

import (
	"github.com/spaghettifunk/cascades/engine/math"
)

// OrthoBox is the light-space orthographic volume of one cascade.
type OrthoBox struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32
}

// Projection returns the left-handed orthographic projection of the box.
func (b OrthoBox) Projection() math.Mat4 {
	return math.NewMat4OrthographicLH(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
}

// CascadeResult is the fitted projection of a single cascade.
type CascadeResult struct {
	// Interval is the camera view-space depth range the cascade covers.
	Interval Interval
	// Box is the light-space orthographic volume to render the cascade with.
	Box OrthoBox
	// Breakpoint is the cumulative depth at which the next cascade takes
	// over; it equals Interval.End.
	Breakpoint float32
	// HasCasters is false when no scene geometry could cast into the
	// cascade, or when the box has no usable area (a zero-width slice).
	// Box.Near and Box.Far are then left at whatever the near/far policy
	// produced, including the clipper's sentinels.
	HasCasters bool
}

// TextureScaleOffset returns the scale and offset that take a light-space
// position into the cascade's shadow texture space (u, v in [0,1], depth).
func (r CascadeResult) TextureScaleOffset() (scale, offset math.Vec3) {
	texture := r.Box.Projection().
		Mul(math.NewMat4Scale(math.NewVec3(0.5, -0.5, 1))).
		Mul(math.NewMat4Translation(math.NewVec3(0.5, 0.5, 0)))

	scale = math.NewVec3(texture.Data[0], texture.Data[5], texture.Data[10])
	offset = math.NewVec3(texture.Data[12], texture.Data[13], texture.Data[14])
	return scale, offset
}

// Cascades is the output of one partitioning pass. It is owned by the
// caller and rebuilt from scratch every frame.
type Cascades struct {
	Results     []CascadeResult
	Breakpoints []float32
}

// Select returns the cascade a view-space depth falls into: the number of
// breakpoints strictly below depth, clamped to the last cascade. An empty
// set yields -1.
func (c *Cascades) Select(depth float32) int {
	index := 0
	for _, breakpoint := range c.Breakpoints {
		if depth > breakpoint {
			index++
		}
	}
	return math.Clamp(index, 0, len(c.Breakpoints)-1)
}
