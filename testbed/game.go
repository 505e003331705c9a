package testbed

import (
	"github.com/spaghettifunk/cascades/engine"
	"github.com/spaghettifunk/cascades/engine/components"
	"github.com/spaghettifunk/cascades/engine/config"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/math"
	"github.com/spaghettifunk/cascades/engine/shadow"
)

// TestGame orbits the scene camera around its target and logs the cascades
// computed for every frame.
type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera
	// radians per second
	OrbitSpeed float32
}

func NewTestGame(appConfig *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: appConfig,
			State: &gameState{
				OrbitSpeed: math.K_PI / 4,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnReport = tg.Report
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(scene *config.SceneFile) error {
	cam := scene.Camera
	s := g.state()
	if s.WorldCamera == nil {
		s.WorldCamera = components.NewCamera(
			cam.Position.Vec3(), cam.Target.Vec3(),
			math.DegToRad(cam.FOVDegrees), cam.Aspect, cam.Near, cam.Far,
		)
	} else {
		// a reloaded scene file restarts the orbit from its camera
		s.WorldCamera.SetPosition(cam.Position.Vec3())
		s.WorldCamera.SetTarget(cam.Target.Vec3())
		s.WorldCamera.SetLens(math.DegToRad(cam.FOVDegrees), cam.Aspect, cam.Near, cam.Far)
	}
	core.LogDebug("camera at %v looking at %v", cam.Position, cam.Target)
	return nil
}

func (g *TestGame) Update(deltaTime float64, frame *shadow.Frame) error {
	s := g.state()
	s.WorldCamera.Orbit(s.OrbitSpeed * float32(deltaTime))
	frame.CameraView = s.WorldCamera.GetView()
	frame.CameraProjection = s.WorldCamera.GetProjection()
	return nil
}

func (g *TestGame) Report(frameIndex int64, cascades *shadow.Cascades, metrics *core.Metrics) error {
	pos := g.state().WorldCamera.GetPosition()
	core.LogInfo("frame %d: camera [%.3f, %.3f, %.3f], %d cascades in %.4fms (avg)",
		frameIndex, pos.X, pos.Y, pos.Z, len(cascades.Results), metrics.FrameTime())

	for i, r := range cascades.Results {
		if !r.HasCasters {
			core.LogWarn("  cascade %d [%.2f, %.2f]: no casters", i, r.Interval.Begin, r.Interval.End)
			continue
		}
		scale, offset := r.TextureScaleOffset()
		core.LogInfo("  cascade %d [%.2f, %.2f]: x [%.3f, %.3f] y [%.3f, %.3f] z [%.3f, %.3f]",
			i, r.Interval.Begin, r.Interval.End,
			r.Box.Left, r.Box.Right, r.Box.Bottom, r.Box.Top, r.Box.Near, r.Box.Far)
		core.LogDebug("  cascade %d texture scale %v offset %v", i, scale, offset)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}
