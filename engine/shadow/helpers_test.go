package shadow

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/cascades/engine/math"
)

type frameSpec struct {
	eye, target math.Vec3
	fovDegrees  float32
	aspect      float32
	near, far   float32
	scene       math.Extents3D
	lightDir    math.Vec3
}

func (s frameSpec) build() Frame {
	return Frame{
		CameraProjection: math.NewMat4PerspectiveLH(math.DegToRad(s.fovDegrees), s.aspect, s.near, s.far),
		CameraView:       math.NewMat4LookAtLH(s.eye, s.target, math.NewVec3(0, 1, 0)),
		LightView:        NewDirectionalLightView(s.lightDir, s.scene),
		NearClip:         s.near,
		FarClip:          s.far,
		Scene:            s.scene,
	}
}

func unitCube() math.Extents3D {
	return math.NewExtents3D(math.NewVec3(-0.5, -0.5, -0.5), math.NewVec3(0.5, 0.5, 0.5))
}

// overheadFrame is a camera looking at a unit cube at the origin, lit
// straight down -Y.
func overheadFrame() Frame {
	return frameSpec{
		eye:        math.NewVec3(0, 2, -5),
		target:     math.NewVec3Zero(),
		fovDegrees: 60,
		aspect:     1,
		near:       1,
		far:        100,
		scene:      unitCube(),
		lightDir:   math.NewVec3(0, -1, 0),
	}.build()
}

func quietPartitioner(opts ...Option) *Partitioner {
	l := log.New(io.Discard)
	return NewPartitioner(append([]Option{WithLogger(l)}, opts...)...)
}

func sceneLightZRange(frame Frame) (float32, float32) {
	minZ, maxZ := math.K_FLOAT_MAX, -math.K_FLOAT_MAX
	for _, c := range frame.Scene.Corners() {
		z := c.Transform(frame.LightView).Z
		if z < minZ {
			minZ = z
		}
		if z > maxZ {
			maxZ = z
		}
	}
	return minZ, maxZ
}
