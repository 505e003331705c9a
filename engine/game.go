package engine

import (
	"github.com/spaghettifunk/cascades/engine/config"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/shadow"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnReport          Report
	FnShutdown        Shutdown
}

// Initialize runs on start-up and every time the scene file is reloaded.
type Initialize func(scene *config.SceneFile) error

// Update may move the camera or light before the frame is partitioned.
type Update func(deltaTime float64, frame *shadow.Frame) error

// Report receives the cascades of every frame.
type Report func(frameIndex int64, cascades *shadow.Cascades, metrics *core.Metrics) error

type Shutdown func() error
