package shadow

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/math"
)

const (
	// MaxCascades is the largest number of cascades a Config can describe.
	MaxCascades = 8
	// PartitionMax is the scale partitions are expressed in (percent of the
	// camera near/far range).
	PartitionMax float32 = 100
)

// FitProjection selects how a cascade's light-space box is fitted.
type FitProjection int

const (
	// FitToCascades fits each cascade to its own frustum interval; the
	// intervals are chained so cascade i+1 begins where cascade i ends.
	FitToCascades FitProjection = iota
	// FitToScene fits every cascade from the camera near plane to its own
	// breakpoint, so cascades overlap.
	FitToScene
)

var fitProjectionNames = map[FitProjection]string{
	FitToCascades: "fit_to_cascades",
	FitToScene:    "fit_to_scene",
}

func (f FitProjection) String() string {
	if name, ok := fitProjectionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FitProjection(%d)", int(f))
}

func (f FitProjection) MarshalText() ([]byte, error) {
	if _, ok := fitProjectionNames[f]; !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownFit, f)
	}
	return []byte(f.String()), nil
}

func (f *FitProjection) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range fitProjectionNames {
		if v == name {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("%w: projection %q", core.ErrUnknownFit, name)
}

// FitNearFar selects how the near and far planes of a cascade are chosen.
type FitNearFar int

const (
	// FitNearFarZeroOne keeps the fixed 0/10000 planes. These are deliberately
	// poor and exist to show what accurate fitting buys.
	FitNearFarZeroOne FitNearFar = iota
	// FitNearFarAABB uses the z range of the light-space scene corners.
	FitNearFarAABB
	// FitNearFarSceneAABB clips the scene box against the cascade's
	// light-space box and uses the z range of what survives.
	FitNearFarSceneAABB
	// FitNearFarPancaking is FitNearFarSceneAABB with the near plane raised
	// to the cascade box's own minimum z when that is further out.
	FitNearFarPancaking
)

var fitNearFarNames = map[FitNearFar]string{
	FitNearFarZeroOne:   "zero_one",
	FitNearFarAABB:      "aabb",
	FitNearFarSceneAABB: "scene_aabb",
	FitNearFarPancaking: "pancaking",
}

func (f FitNearFar) String() string {
	if name, ok := fitNearFarNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FitNearFar(%d)", int(f))
}

func (f FitNearFar) MarshalText() ([]byte, error) {
	if _, ok := fitNearFarNames[f]; !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownFit, f)
	}
	return []byte(f.String()), nil
}

func (f *FitNearFar) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range fitNearFarNames {
		if v == name {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("%w: near/far %q", core.ErrUnknownFit, name)
}

// Config describes how the camera frustum is partitioned and how each
// cascade is fitted. It is copied by value into every computation.
type Config struct {
	// CascadeCount is the number of cascades in use, 1..MaxCascades.
	CascadeCount int
	// BufferSize is the shadow map size of one cascade, in texels per side.
	BufferSize int
	// Partitions holds the breakpoint of each cascade in percent of the
	// camera near/far range. Only the first CascadeCount entries are read.
	Partitions [MaxCascades]float32
	// FitProjection selects the light box fitting policy.
	FitProjection FitProjection
	// FitNearFar selects the near/far plane policy.
	FitNearFar FitNearFar
	// MoveLightTexelSize snaps the light box to whole shadow texels.
	MoveLightTexelSize bool
	// PCFBlurSize is the blur kernel radius; it widens FitToCascades boxes.
	PCFBlurSize int
}

func DefaultConfig() Config {
	return Config{
		CascadeCount:       3,
		BufferSize:         1024,
		Partitions:         [MaxCascades]float32{5, 15, 60, 100, 100, 100, 100, 100},
		FitProjection:      FitToCascades,
		FitNearFar:         FitNearFarSceneAABB,
		MoveLightTexelSize: true,
		PCFBlurSize:        3,
	}
}

// Validate reports the first problem that would make the partitioning
// meaningless.
func (c *Config) Validate() error {
	if c.CascadeCount < 1 || c.CascadeCount > MaxCascades {
		return fmt.Errorf("%w: %d not in [1,%d]", core.ErrInvalidCascadeCount, c.CascadeCount, MaxCascades)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: %d", core.ErrInvalidBufferSize, c.BufferSize)
	}
	if c.PCFBlurSize < 0 {
		return fmt.Errorf("%w: %d", core.ErrInvalidBlurSize, c.PCFBlurSize)
	}
	if _, ok := fitProjectionNames[c.FitProjection]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownFit, c.FitProjection)
	}
	if _, ok := fitNearFarNames[c.FitNearFar]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownFit, c.FitNearFar)
	}
	for i := 0; i < c.CascadeCount; i++ {
		p := c.Partitions[i]
		if p < 0 || p > PartitionMax {
			return fmt.Errorf("%w: cascade %d at %g", core.ErrInvalidPartition, i, p)
		}
		if i > 0 && p < c.Partitions[i-1] {
			return fmt.Errorf("%w: cascade %d at %g is below cascade %d at %g",
				core.ErrNonMonotonicPartitions, i, p, i-1, c.Partitions[i-1])
		}
	}
	return nil
}

// SetPartition moves one breakpoint and drags its neighbours along so the
// sequence stays non-decreasing, the way the partition sliders behave.
func (c *Config) SetPartition(index int, percent float32) {
	if index < 0 || index >= MaxCascades {
		return
	}
	percent = math.Clamp(percent, 0, PartitionMax)
	c.Partitions[index] = percent
	for i := 0; i < index; i++ {
		if c.Partitions[i] > percent {
			c.Partitions[i] = percent
		}
	}
	for i := index + 1; i < MaxCascades; i++ {
		if c.Partitions[i] < percent {
			c.Partitions[i] = percent
		}
	}
}

// Frame carries the per-frame inputs of the partitioner.
type Frame struct {
	// CameraProjection is the camera's left-handed perspective projection.
	CameraProjection math.Mat4
	// CameraView transforms world space into camera view space.
	CameraView math.Mat4
	// LightView transforms world space into light space.
	LightView math.Mat4
	// NearClip and FarClip are the camera clip distances.
	NearClip float32
	FarClip  float32
	// Scene bounds the shadow casters in world space.
	Scene math.Extents3D
}

func (f *Frame) Validate() error {
	if f.NearClip < 0 || f.FarClip <= f.NearClip {
		return fmt.Errorf("%w: near %g far %g", core.ErrInvalidCameraRange, f.NearClip, f.FarClip)
	}
	return nil
}

// Interval is a [Begin, End] range of camera view-space depth.
type Interval struct {
	Begin float32
	End   float32
}

// CascadeInterval returns the depth interval covered by cascade index.
// Percentages map onto [nearClip, farClip], so 0% is the camera near clip
// and FitToScene cascades all begin at nearClip.
func CascadeInterval(cfg *Config, index int, nearClip, farClip float32) Interval {
	depthRange := farClip - nearClip
	toDepth := func(percent float32) float32 {
		return nearClip + percent/PartitionMax*depthRange
	}

	begin := float32(0)
	if cfg.FitProjection == FitToCascades && index > 0 {
		begin = cfg.Partitions[index-1]
	}
	return Interval{
		Begin: toDepth(begin),
		End:   toDepth(cfg.Partitions[index]),
	}
}
