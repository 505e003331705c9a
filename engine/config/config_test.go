package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/shadow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScene = `
[camera]
position = [0.0, 2.0, -5.0]
target = [0.0, 0.0, 0.0]
fov_degrees = 60.0
aspect = 1.0
near = 1.0
far = 100.0

[light]
direction = [0.0, -1.0, 0.0]

[scene]
min = [-0.5, -0.5, -0.5]
max = [0.5, 0.5, 0.5]

[cascades]
count = 2
buffer_size = 2048
partitions = [30.0, 100.0]
fit_projection = "fit_to_scene"
fit_near_far = "pancaking"
texel_snap = false
pcf_blur_size = 1

[log]
level = "debug"
`

func TestParseSceneFile(t *testing.T) {
	sf, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	cfg, err := sf.CascadeConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.CascadeCount)
	assert.Equal(t, 2048, cfg.BufferSize)
	assert.Equal(t, shadow.FitToScene, cfg.FitProjection)
	assert.Equal(t, shadow.FitNearFarPancaking, cfg.FitNearFar)
	assert.False(t, cfg.MoveLightTexelSize)
	assert.Equal(t, 1, cfg.PCFBlurSize)
	assert.Equal(t, [shadow.MaxCascades]float32{30, 100, 100, 100, 100, 100, 100, 100}, cfg.Partitions)

	frame, err := sf.Frame()
	require.NoError(t, err)
	assert.Equal(t, float32(1), frame.NearClip)
	assert.Equal(t, float32(100), frame.FarClip)
	assert.Equal(t, float32(0.5), frame.Scene.Max.X)

	assert.Equal(t, core.DebugLevel, sf.LogLevel())
}

func TestParseKeepsDefaults(t *testing.T) {
	sf, err := Parse([]byte("[camera]\nfar = 250.0\n"))
	require.NoError(t, err)

	assert.Equal(t, float32(250), sf.Camera.Far)
	assert.Equal(t, Default().Camera.Position, sf.Camera.Position)

	cfg, err := sf.CascadeConfig()
	require.NoError(t, err)
	def := shadow.DefaultConfig()
	assert.Equal(t, def.CascadeCount, cfg.CascadeCount)
	assert.Equal(t, def.Partitions[:def.CascadeCount], cfg.Partitions[:cfg.CascadeCount])
	assert.Equal(t, core.InfoLevel, sf.LogLevel())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown fit", "[cascades]\nfit_near_far = \"tight\"\n", nil},
		{"unknown key", "[cascades]\nsplits = 4\n", nil},
		{"malformed", "[cascades\n", nil},
		{"too few partitions", "[cascades]\ncount = 3\npartitions = [50.0, 100.0]\n", core.ErrInvalidPartition},
		{"decreasing partitions", "[cascades]\ncount = 2\npartitions = [60.0, 20.0]\n", core.ErrNonMonotonicPartitions},
		{"too many cascades", "[cascades]\ncount = 9\npartitions = [1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0, 9.0]\n", core.ErrInvalidCascadeCount},
		{"camera range", "[camera]\nnear = 10.0\nfar = 5.0\n", core.ErrInvalidCameraRange},
		{"log level", "[log]\nlevel = \"loud\"\n", core.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))

	sf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, sf.Cascades.Count)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSampleScene(t *testing.T) {
	sf, err := Load(filepath.Join("..", "..", "assets", "cascades.toml"))
	require.NoError(t, err)

	cfg, err := sf.CascadeConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CascadeCount)
	assert.Equal(t, shadow.FitToCascades, cfg.FitProjection)
	assert.Equal(t, shadow.FitNearFarSceneAABB, cfg.FitNearFar)
}
