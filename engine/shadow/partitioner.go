package shadow

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/math"
	"github.com/spaghettifunk/cascades/engine/systems"
)

const (
	// These are the unconfigured near and far planes. They are purposely
	// awful to show how much accurate near/far fitting matters.
	unfittedNear float32 = 0
	unfittedFar  float32 = 10000
)

// Partitioner splits the camera frustum into cascades and fits a light-space
// orthographic box to each. It holds no per-frame state, so one instance can
// serve any number of frames and callers.
type Partitioner struct {
	id     uuid.UUID
	logger *log.Logger
	jobs   *systems.JobSystem
}

type Option func(*Partitioner)

// WithLogger sets the logger degenerate cascades are reported to.
func WithLogger(l *log.Logger) Option {
	return func(p *Partitioner) {
		p.logger = l
	}
}

// WithJobSystem computes the cascades of a frame concurrently on js. The
// caller owns js and shuts it down.
func WithJobSystem(js *systems.JobSystem) Option {
	return func(p *Partitioner) {
		p.jobs = js
	}
}

func WithID(id uuid.UUID) Option {
	return func(p *Partitioner) {
		p.id = id
	}
}

func NewPartitioner(opts ...Option) *Partitioner {
	p := &Partitioner{}
	for _, o := range opts {
		o(p)
	}
	if p.id == uuid.Nil {
		p.id = uuid.New()
	}
	if p.logger == nil {
		p.logger = core.Logger()
	}
	return p
}

func (p *Partitioner) ID() uuid.UUID {
	return p.id
}

// frameInputs are the values shared read-only by every cascade of a frame.
type frameInputs struct {
	cameraProjection math.Mat4
	inverseView      math.Mat4
	lightView        math.Mat4
	nearClip         float32
	farClip          float32
	sceneLight       [8]math.Vec3
	sceneInverted    bool
}

// ComputeCascades runs one partitioning pass. Configuration and camera range
// errors fail the whole pass; degenerate geometry only marks the affected
// cascades with HasCasters == false.
func (p *Partitioner) ComputeCascades(frame Frame, cfg Config) (*Cascades, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	in := frameInputs{
		cameraProjection: frame.CameraProjection,
		inverseView:      frame.CameraView.Inverse(),
		lightView:        frame.LightView,
		nearClip:         frame.NearClip,
		farClip:          frame.FarClip,
		sceneInverted:    frame.Scene.IsInverted(),
	}
	// the scene corners move into light space once per frame, not per cascade
	for i, corner := range frame.Scene.Corners() {
		in.sceneLight[i] = corner.Transform(frame.LightView)
	}

	out := &Cascades{
		Results:     make([]CascadeResult, cfg.CascadeCount),
		Breakpoints: make([]float32, cfg.CascadeCount),
	}

	if p.jobs != nil {
		if err := p.computeParallel(out, &in, &cfg); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < cfg.CascadeCount; i++ {
			out.Results[i] = p.computeCascade(i, &in, &cfg)
		}
	}

	for i := range out.Results {
		out.Breakpoints[i] = out.Results[i].Breakpoint
	}
	return out, nil
}

// computeParallel submits one job per cascade. Each job writes only its own
// slot of out.Results.
func (p *Partitioner) computeParallel(out *Cascades, in *frameInputs, cfg *Config) error {
	var wg sync.WaitGroup
	for i := 0; i < cfg.CascadeCount; i++ {
		index := i
		wg.Add(1)
		err := p.jobs.Submit(systems.JobTask{
			OnStart: func() error {
				out.Results[index] = p.computeCascade(index, in, cfg)
				return nil
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return nil
}

func (p *Partitioner) computeCascade(index int, in *frameInputs, cfg *Config) CascadeResult {
	interval := CascadeInterval(cfg, index, in.nearClip, in.farClip)

	corners := ComputeFrustumCorners(in.cameraProjection, interval.Begin, interval.End)

	boxMin := math.NewVec3Splat(math.K_FLOAT_MAX)
	boxMax := math.NewVec3Splat(-math.K_FLOAT_MAX)
	for i := range corners {
		// camera view -> world -> light
		corners[i] = corners[i].Transform(in.inverseView)
		light := corners[i].Transform(in.lightView)
		boxMin = boxMin.Min(light)
		boxMax = boxMax.Max(light)
	}

	var unitsPerTexel math.Vec3
	switch cfg.FitProjection {
	case FitToScene:
		boxMin, boxMax, unitsPerTexel = fitToScene(corners, boxMin, boxMax, cfg.BufferSize)
	case FitToCascades:
		boxMin, boxMax, unitsPerTexel = fitToCascades(boxMin, boxMax, cfg.BufferSize, cfg.PCFBlurSize)
	}

	boxMinZ := boxMin.Z

	if cfg.MoveLightTexelSize {
		boxMin = snapToTexel(boxMin, unitsPerTexel)
		boxMax = snapToTexel(boxMax, unitsPerTexel)
	}

	near, far := unfittedNear, unfittedFar
	switch cfg.FitNearFar {
	case FitNearFarAABB:
		sceneMin := math.NewVec3Splat(math.K_FLOAT_MAX)
		sceneMax := math.NewVec3Splat(-math.K_FLOAT_MAX)
		for _, pt := range in.sceneLight {
			sceneMin = sceneMin.Min(pt)
			sceneMax = sceneMax.Max(pt)
		}
		near, far = sceneMin.Z, sceneMax.Z
	case FitNearFarSceneAABB, FitNearFarPancaking:
		near, far = ComputeNearFar(boxMin, boxMax, in.sceneLight)
		if cfg.FitNearFar == FitNearFarPancaking && boxMinZ > near {
			near = boxMinZ
		}
	}

	box := OrthoBox{
		Left:   boxMin.X,
		Right:  boxMax.X,
		Bottom: boxMin.Y,
		Top:    boxMax.Y,
		Near:   near,
		Far:    far,
	}

	hasCasters := !in.sceneInverted && near <= far && hasArea(box)
	if !hasCasters {
		p.logger.Warn("cascade has no shadow casters",
			"partitioner", p.id,
			"cascade", index,
			"begin", interval.Begin,
			"end", interval.End,
			"near", near,
			"far", far,
			"width", box.Right-box.Left,
			"height", box.Top-box.Bottom,
		)
	}

	return CascadeResult{
		Interval:   interval,
		Box:        box,
		Breakpoint: interval.End,
		HasCasters: hasCasters,
	}
}

// hasArea reports whether every bound of b is finite and the box covers a
// non-empty area on X and Y. Equal breakpoints yield zero-width slices.
func hasArea(b OrthoBox) bool {
	for _, f := range [...]float32{b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far} {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return b.Right > b.Left && b.Top > b.Bottom
}

// fitToScene grows the box on X and Y to the length of the slice's diagonal
// (world corner 0 to world corner 6), which does not change as the camera
// rotates.
func fitToScene(worldCorners [8]math.Vec3, boxMin, boxMax math.Vec3, bufferSize int) (math.Vec3, math.Vec3, math.Vec3) {
	diagonal := worldCorners[0].Sub(worldCorners[6]).Length()

	offset := math.NewVec3Splat(diagonal).Sub(boxMax.Sub(boxMin)).MulScalar(0.5)
	offset.Z = 0

	unitsPerTexel := diagonal / float32(bufferSize)
	return boxMin.Sub(offset), boxMax.Add(offset), math.NewVec3(unitsPerTexel, unitsPerTexel, 0)
}

// fitToCascades pads the box by the fraction of it a PCF kernel of the given
// radius covers, so filtering near the edge still samples this cascade.
func fitToCascades(boxMin, boxMax math.Vec3, bufferSize, blurSize int) (math.Vec3, math.Vec3, math.Vec3) {
	blurScale := float32(blurSize*2+1) / float32(bufferSize)

	offset := boxMax.Sub(boxMin).MulScalar(0.5).MulScalar(blurScale)
	offset.Z = 0

	boxMin = boxMin.Sub(offset)
	boxMax = boxMax.Add(offset)

	unitsPerTexel := boxMax.Sub(boxMin).MulScalar(1 / float32(bufferSize))
	unitsPerTexel.Z = 0
	return boxMin, boxMax, unitsPerTexel
}

// snapToTexel floors X and Y to whole multiples of unitsPerTexel. Floor,
// not round, keeps the snapped edge stable as the camera moves. An axis with
// no texel size (a slice of zero extent) is left as is.
func snapToTexel(v, unitsPerTexel math.Vec3) math.Vec3 {
	if unitsPerTexel.X > 0 {
		v.X = math32.Floor(v.X/unitsPerTexel.X) * unitsPerTexel.X
	}
	if unitsPerTexel.Y > 0 {
		v.Y = math32.Floor(v.Y/unitsPerTexel.Y) * unitsPerTexel.Y
	}
	return v
}
