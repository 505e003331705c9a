package shadow

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/math"
	"github.com/spaghettifunk/cascades/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCascadeConfig(fit FitProjection, nearFar FitNearFar) Config {
	cfg := DefaultConfig()
	cfg.CascadeCount = 2
	cfg.Partitions = [MaxCascades]float32{30, 100, 100, 100, 100, 100, 100, 100}
	cfg.FitProjection = fit
	cfg.FitNearFar = nearFar
	return cfg
}

func TestComputeCascadesOverheadCube(t *testing.T) {
	frame := overheadFrame()
	cfg := twoCascadeConfig(FitToScene, FitNearFarSceneAABB)

	out, err := quietPartitioner().ComputeCascades(frame, cfg)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	require.Len(t, out.Breakpoints, 2)

	assert.InDelta(t, 1, out.Results[0].Interval.Begin, 1e-5)
	assert.InDelta(t, 30.7, out.Results[0].Interval.End, 1e-4)
	assert.InDelta(t, 1, out.Results[1].Interval.Begin, 1e-5)
	assert.InDelta(t, 100, out.Results[1].Interval.End, 1e-4)
	assert.Equal(t, out.Results[0].Interval.End, out.Breakpoints[0])
	assert.Equal(t, out.Results[1].Interval.End, out.Breakpoints[1])

	minZ, maxZ := sceneLightZRange(frame)
	inverseView := frame.CameraView.Inverse()
	for i, r := range out.Results {
		assert.True(t, r.HasCasters, "cascade %d", i)
		assert.LessOrEqual(t, r.Box.Near, r.Box.Far)
		assert.GreaterOrEqual(t, r.Box.Near, minZ-1e-4)
		assert.LessOrEqual(t, r.Box.Far, maxZ+1e-4)

		// the box encloses the light-space slice, up to one snapped texel
		corners := ComputeFrustumCorners(frame.CameraProjection, r.Interval.Begin, r.Interval.End)
		texel := (r.Box.Right - r.Box.Left) / float32(cfg.BufferSize)
		for _, c := range corners {
			p := c.Transform(inverseView).Transform(frame.LightView)
			assert.GreaterOrEqual(t, p.X, r.Box.Left-texel)
			assert.LessOrEqual(t, p.X, r.Box.Right+texel)
			assert.GreaterOrEqual(t, p.Y, r.Box.Bottom-texel)
			assert.LessOrEqual(t, p.Y, r.Box.Top+texel)
		}
	}
}

func TestComputeCascadesIdempotent(t *testing.T) {
	frame := overheadFrame()
	p := quietPartitioner()

	for _, fit := range []FitProjection{FitToScene, FitToCascades} {
		for _, nearFar := range []FitNearFar{FitNearFarZeroOne, FitNearFarAABB, FitNearFarSceneAABB, FitNearFarPancaking} {
			cfg := twoCascadeConfig(fit, nearFar)
			first, err := p.ComputeCascades(frame, cfg)
			require.NoError(t, err)
			second, err := p.ComputeCascades(frame, cfg)
			require.NoError(t, err)
			assert.Equal(t, first, second, "%s/%s", fit, nearFar)
		}
	}
}

func TestComputeCascadesParallelMatchesSequential(t *testing.T) {
	frame := overheadFrame()
	cfg := DefaultConfig()
	cfg.CascadeCount = 8
	cfg.Partitions = [MaxCascades]float32{2, 5, 10, 20, 35, 50, 75, 100}

	sequential, err := quietPartitioner().ComputeCascades(frame, cfg)
	require.NoError(t, err)
	js, err := systems.NewJobSystem(4, cfg.CascadeCount)
	require.NoError(t, err)
	p := quietPartitioner(WithJobSystem(js))

	for i := 0; i < 3; i++ {
		parallel, err := p.ComputeCascades(frame, cfg)
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel)
	}

	require.NoError(t, js.Shutdown())
	_, err = p.ComputeCascades(frame, cfg)
	assert.ErrorIs(t, err, systems.ErrJobSystemShutdown)
}

func TestComputeCascadesFitToCascadesChains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadeCount = 4
	cfg.Partitions = [MaxCascades]float32{5, 15, 60, 100}
	cfg.FitProjection = FitToCascades

	out, err := quietPartitioner().ComputeCascades(overheadFrame(), cfg)
	require.NoError(t, err)

	assert.Equal(t, float32(1), out.Results[0].Interval.Begin)
	for i := 0; i+1 < len(out.Results); i++ {
		assert.Equal(t, out.Results[i].Interval.End, out.Results[i+1].Interval.Begin)
		assert.LessOrEqual(t, out.Breakpoints[i], out.Breakpoints[i+1])
	}
}

func TestFitToScenePaddingCoversDiagonal(t *testing.T) {
	frame := frameSpec{
		eye:        math.NewVec3(0, 2, -5),
		target:     math.NewVec3(0, 2, 5),
		fovDegrees: 30,
		aspect:     1,
		near:       1,
		far:        100,
		scene:      unitCube(),
		lightDir:   math.NewVec3(0, -1, 0),
	}.build()
	cfg := twoCascadeConfig(FitToScene, FitNearFarSceneAABB)
	cfg.MoveLightTexelSize = false

	out, err := quietPartitioner().ComputeCascades(frame, cfg)
	require.NoError(t, err)

	inverseView := frame.CameraView.Inverse()
	for i, r := range out.Results {
		corners := ComputeFrustumCorners(frame.CameraProjection, r.Interval.Begin, r.Interval.End)
		diagonal := corners[0].Transform(inverseView).Distance(corners[6].Transform(inverseView))

		assert.GreaterOrEqual(t, r.Box.Right-r.Box.Left, diagonal*(1-1e-5), "cascade %d width", i)
		assert.GreaterOrEqual(t, r.Box.Top-r.Box.Bottom, diagonal*(1-1e-5), "cascade %d height", i)
	}
}

func TestSnapToTexelFloors(t *testing.T) {
	units := math.NewVec3(2, 2, 0)

	assert.Equal(t, math.NewVec3(2, -2, 7), snapToTexel(math.NewVec3(3.1, -1.9, 7), units))
	assert.Equal(t, math.NewVec3(-4, 4, 0), snapToTexel(math.NewVec3(-2.5, 5.9, 0), units))

	// an axis without a texel size is left alone
	assert.Equal(t, math.NewVec3(2, -1.9, 7), snapToTexel(math.NewVec3(3.1, -1.9, 7), math.NewVec3(2, 0, 0)))
}

func assertFiniteBox(t *testing.T, b OrthoBox) {
	t.Helper()
	for _, f := range []float32{b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far} {
		assert.False(t, math32.IsNaN(f) || math32.IsInf(f, 0), "box %+v", b)
	}
}

func TestComputeCascadesZeroWidthSlice(t *testing.T) {
	// a level camera: the slice at a single depth is a vertical quad, flat
	// along the light's Y axis
	frame := frameSpec{
		eye:        math.NewVec3(0, 2, -5),
		target:     math.NewVec3(0, 2, 5),
		fovDegrees: 60,
		aspect:     1,
		near:       1,
		far:        100,
		scene:      unitCube(),
		lightDir:   math.NewVec3(0, -1, 0),
	}.build()
	cfg := twoCascadeConfig(FitToCascades, FitNearFarAABB)
	cfg.Partitions[0] = 50
	cfg.Partitions[1] = 50
	require.NoError(t, cfg.Validate())

	out, err := quietPartitioner().ComputeCascades(frame, cfg)
	require.NoError(t, err)

	assert.True(t, out.Results[0].HasCasters)
	assertFiniteBox(t, out.Results[0].Box)

	empty := out.Results[1]
	assert.Equal(t, empty.Interval.Begin, empty.Interval.End)
	assert.False(t, empty.HasCasters)
	assertFiniteBox(t, empty.Box)
}

func TestComputeCascadesZeroDepthFitToScene(t *testing.T) {
	frame := overheadFrame()
	frame.NearClip = 0
	cfg := twoCascadeConfig(FitToScene, FitNearFarSceneAABB)
	cfg.Partitions[0] = 0

	out, err := quietPartitioner().ComputeCascades(frame, cfg)
	require.NoError(t, err)

	assert.False(t, out.Results[0].HasCasters)
	assertFiniteBox(t, out.Results[0].Box)
	assert.True(t, out.Results[1].HasCasters)
	assertFiniteBox(t, out.Results[1].Box)
}

func TestComputeCascadesNearFarPolicies(t *testing.T) {
	frame := overheadFrame()
	minZ, maxZ := sceneLightZRange(frame)
	p := quietPartitioner()

	out, err := p.ComputeCascades(frame, twoCascadeConfig(FitToCascades, FitNearFarZeroOne))
	require.NoError(t, err)
	for _, r := range out.Results {
		assert.Equal(t, float32(0), r.Box.Near)
		assert.Equal(t, float32(10000), r.Box.Far)
	}

	out, err = p.ComputeCascades(frame, twoCascadeConfig(FitToCascades, FitNearFarAABB))
	require.NoError(t, err)
	for _, r := range out.Results {
		assert.Equal(t, minZ, r.Box.Near)
		assert.Equal(t, maxZ, r.Box.Far)
	}
}

func TestComputeCascadesPancaking(t *testing.T) {
	// a tall scene the camera sits inside: the light box starts well below
	// the top of the scene
	frame := frameSpec{
		eye:        math.NewVec3(0, 1, -5),
		target:     math.NewVec3(0, 1, 0),
		fovDegrees: 30,
		aspect:     1,
		near:       1,
		far:        100,
		scene:      math.NewExtents3D(math.NewVec3(-50, -1000, -50), math.NewVec3(50, 1000, 50)),
		lightDir:   math.NewVec3(0, -1, 0),
	}.build()
	cfg := twoCascadeConfig(FitToCascades, FitNearFarSceneAABB)
	cfg.Partitions[0] = 10
	cfg.MoveLightTexelSize = false

	p := quietPartitioner()
	clipped, err := p.ComputeCascades(frame, cfg)
	require.NoError(t, err)

	cfg.FitNearFar = FitNearFarPancaking
	pancaked, err := p.ComputeCascades(frame, cfg)
	require.NoError(t, err)

	for i := range clipped.Results {
		assert.Greater(t, pancaked.Results[i].Box.Near, clipped.Results[i].Box.Near, "cascade %d", i)
		assert.Equal(t, clipped.Results[i].Box.Far, pancaked.Results[i].Box.Far)
		assert.Equal(t, clipped.Results[i].Box.Left, pancaked.Results[i].Box.Left)
	}
}

func TestComputeCascadesNoCasters(t *testing.T) {
	// the scene lies far outside the camera's reach
	frame := overheadFrame()
	frame.Scene = math.NewExtents3D(math.NewVec3(5000, -1, 5000), math.NewVec3(5001, 1, 5001))
	frame.LightView = NewDirectionalLightView(math.NewVec3(0, -1, 0), frame.Scene)

	out, err := quietPartitioner().ComputeCascades(frame, twoCascadeConfig(FitToScene, FitNearFarSceneAABB))
	require.NoError(t, err)

	for _, r := range out.Results {
		assert.False(t, r.HasCasters)
		assert.Equal(t, math.K_FLOAT_MAX, r.Box.Near)
		assert.Equal(t, -math.K_FLOAT_MAX, r.Box.Far)
	}
}

func TestComputeCascadesInvertedScene(t *testing.T) {
	frame := overheadFrame()
	frame.Scene = math.NewExtents3D(math.NewVec3(1, 1, 1), math.NewVec3(-1, -1, -1))

	out, err := quietPartitioner().ComputeCascades(frame, twoCascadeConfig(FitToScene, FitNearFarZeroOne))
	require.NoError(t, err)
	for _, r := range out.Results {
		assert.False(t, r.HasCasters)
	}
}

func TestComputeCascadesErrors(t *testing.T) {
	p := quietPartitioner()

	cfg := DefaultConfig()
	cfg.CascadeCount = 9
	_, err := p.ComputeCascades(overheadFrame(), cfg)
	assert.ErrorIs(t, err, core.ErrInvalidCascadeCount)

	frame := overheadFrame()
	frame.NearClip, frame.FarClip = 10, 5
	_, err = p.ComputeCascades(frame, DefaultConfig())
	assert.ErrorIs(t, err, core.ErrInvalidCameraRange)
}

func TestPartitionerID(t *testing.T) {
	a := quietPartitioner()
	b := quietPartitioner(WithID(a.ID()))
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), quietPartitioner().ID())
}
