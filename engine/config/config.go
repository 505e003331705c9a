package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/math"
	"github.com/spaghettifunk/cascades/engine/shadow"
)

// Vector is a TOML `[x, y, z]` array.
type Vector [3]float32

func (v Vector) Vec3() math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

type Camera struct {
	Position   Vector  `toml:"position"`
	Target     Vector  `toml:"target"`
	FOVDegrees float32 `toml:"fov_degrees"`
	Aspect     float32 `toml:"aspect"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
}

type Light struct {
	Direction Vector `toml:"direction"`
}

type Scene struct {
	Min Vector `toml:"min"`
	Max Vector `toml:"max"`
}

type Cascades struct {
	Count         int                  `toml:"count"`
	BufferSize    int                  `toml:"buffer_size"`
	Partitions    []float32            `toml:"partitions"`
	FitProjection shadow.FitProjection `toml:"fit_projection"`
	FitNearFar    shadow.FitNearFar    `toml:"fit_near_far"`
	TexelSnap     bool                 `toml:"texel_snap"`
	PCFBlurSize   int                  `toml:"pcf_blur_size"`
}

type Log struct {
	Level string `toml:"level"`
}

// SceneFile is the on-disk description of a camera, a light, the caster
// bounds and the cascade settings to partition them with.
type SceneFile struct {
	Camera   Camera   `toml:"camera"`
	Light    Light    `toml:"light"`
	Scene    Scene    `toml:"scene"`
	Cascades Cascades `toml:"cascades"`
	Log      Log      `toml:"log"`
}

// Default returns a scene file holding the stock cascade settings and a
// camera looking at a unit cube lit from above.
func Default() *SceneFile {
	def := shadow.DefaultConfig()
	return &SceneFile{
		Camera: Camera{
			Position:   Vector{0, 2, -5},
			Target:     Vector{0, 0, 0},
			FOVDegrees: 60,
			Aspect:     16.0 / 9.0,
			Near:       1,
			Far:        100,
		},
		Light: Light{Direction: Vector{0, -1, 0}},
		Scene: Scene{Min: Vector{-0.5, -0.5, -0.5}, Max: Vector{0.5, 0.5, 0.5}},
		Cascades: Cascades{
			Count:         def.CascadeCount,
			BufferSize:    def.BufferSize,
			Partitions:    append([]float32(nil), def.Partitions[:def.CascadeCount]...),
			FitProjection: def.FitProjection,
			FitNearFar:    def.FitNearFar,
			TexelSnap:     def.MoveLightTexelSize,
			PCFBlurSize:   def.PCFBlurSize,
		},
		Log: Log{Level: "info"},
	}
}

func Load(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// Parse decodes a scene file on top of Default, so omitted keys keep their
// default values. Unknown keys are rejected.
func Parse(data []byte) (*SceneFile, error) {
	sf := Default()
	// partitions are replaced, not merged
	sf.Cascades.Partitions = nil

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(sf); err != nil {
		return nil, err
	}
	if sf.Cascades.Partitions == nil {
		sf.Cascades.Partitions = Default().Cascades.Partitions
	}
	if _, err := core.ParseLogLevel(sf.Log.Level); err != nil {
		return nil, err
	}
	if _, err := sf.CascadeConfig(); err != nil {
		return nil, err
	}
	if _, err := sf.Frame(); err != nil {
		return nil, err
	}
	return sf, nil
}

// CascadeConfig builds the partitioner configuration. Partitions beyond the
// listed ones are filled with the last listed value.
func (sf *SceneFile) CascadeConfig() (shadow.Config, error) {
	c := sf.Cascades
	cfg := shadow.Config{
		CascadeCount:       c.Count,
		BufferSize:         c.BufferSize,
		FitProjection:      c.FitProjection,
		FitNearFar:         c.FitNearFar,
		MoveLightTexelSize: c.TexelSnap,
		PCFBlurSize:        c.PCFBlurSize,
	}
	if len(c.Partitions) > shadow.MaxCascades {
		return cfg, fmt.Errorf("%w: %d partitions listed, at most %d",
			core.ErrInvalidCascadeCount, len(c.Partitions), shadow.MaxCascades)
	}
	if len(c.Partitions) < c.Count {
		return cfg, fmt.Errorf("%w: %d partitions listed for %d cascades",
			core.ErrInvalidPartition, len(c.Partitions), c.Count)
	}
	last := shadow.PartitionMax
	for i := range cfg.Partitions {
		if i < len(c.Partitions) {
			last = c.Partitions[i]
		}
		cfg.Partitions[i] = last
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Frame builds the per-frame partitioner inputs from the camera, light and
// scene tables.
func (sf *SceneFile) Frame() (shadow.Frame, error) {
	cam := sf.Camera
	scene := math.NewExtents3D(sf.Scene.Min.Vec3(), sf.Scene.Max.Vec3())
	frame := shadow.Frame{
		CameraProjection: math.NewMat4PerspectiveLH(math.DegToRad(cam.FOVDegrees), cam.Aspect, cam.Near, cam.Far),
		CameraView:       math.NewMat4LookAtLH(cam.Position.Vec3(), cam.Target.Vec3(), math.NewVec3(0, 1, 0)),
		LightView:        shadow.NewDirectionalLightView(sf.Light.Direction.Vec3(), scene),
		NearClip:         cam.Near,
		FarClip:          cam.Far,
		Scene:            scene,
	}
	if err := frame.Validate(); err != nil {
		return frame, err
	}
	return frame, nil
}

// LogLevel returns the parsed [log] level.
func (sf *SceneFile) LogLevel() core.LogLevel {
	level, err := core.ParseLogLevel(sf.Log.Level)
	if err != nil {
		return core.InfoLevel
	}
	return level
}
