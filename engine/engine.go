package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/cascades/engine/config"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/engine/shadow"
	"github.com/spaghettifunk/cascades/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine drives a Game through frames of cascade partitioning.
type Engine struct {
	mutex        sync.Mutex
	currentStage Stage
	gameInstance *Game
	runID        uuid.UUID

	scene       *config.SceneFile
	watcher     *config.Watcher
	jobs        *systems.JobSystem
	partitioner *shadow.Partitioner

	clock      *core.Clock
	frameClock *core.Clock
	metrics    *core.Metrics

	done        chan struct{}
	closeOnce   sync.Once
	releaseOnce sync.Once
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game and application config are required")
	}
	if g.ApplicationConfig.Frames < 0 || g.ApplicationConfig.Workers < 0 {
		return nil, fmt.Errorf("frames (%d) and workers (%d) must not be negative",
			g.ApplicationConfig.Frames, g.ApplicationConfig.Workers)
	}
	if g.ApplicationConfig.Watch && g.ApplicationConfig.ScenePath == "" {
		return nil, errors.New("watching requires a scene file")
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		runID:        uuid.New(),
		clock:        core.NewClock(),
		frameClock:   core.NewClock(),
		metrics:      core.NewMetrics(),
		done:         make(chan struct{}),
	}, nil
}

func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

func (e *Engine) Stage() Stage {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.currentStage
}

func (e *Engine) setStage(s Stage) {
	e.mutex.Lock()
	e.currentStage = s
	e.mutex.Unlock()
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Initialize() error {
	e.setStage(EngineStageInitializing)
	appConfig := e.gameInstance.ApplicationConfig

	scene := config.Default()
	if appConfig.ScenePath != "" {
		var err error
		if scene, err = config.Load(appConfig.ScenePath); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	if err := e.setScene(scene); err != nil {
		return err
	}

	opts := []shadow.Option{
		shadow.WithID(e.runID),
		shadow.WithLogger(core.Logger().With("app", appConfig.Name, "run", e.runID.String())),
	}
	if appConfig.Workers > 0 {
		js, err := systems.NewJobSystem(appConfig.Workers, shadow.MaxCascades)
		if err != nil {
			return err
		}
		e.jobs = js
		opts = append(opts, shadow.WithJobSystem(js))
		core.LogDebug("computing cascades on %d workers", js.Workers())
	}
	e.partitioner = shadow.NewPartitioner(opts...)

	if appConfig.Watch {
		w, err := config.NewWatcher(appConfig.ScenePath)
		if err != nil {
			e.release()
			return err
		}
		e.watcher = w
	}

	core.LogInfo("%s initialized (run %s)", appConfig.Name, e.runID)
	e.setStage(EngineStageInitialized)
	return nil
}

func (e *Engine) setScene(scene *config.SceneFile) error {
	core.SetLogLevel(scene.LogLevel())
	e.scene = scene
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(scene); err != nil {
			core.LogError("game initialize failed: %s", err)
			return err
		}
	}
	return nil
}

// Run computes the configured frames and, when watching, recomputes them on
// every scene file change until Shutdown is called.
func (e *Engine) Run() error {
	defer e.release()

	e.setStage(EngineStageRunning)
	e.clock.Start()

	if err := e.runFrames(); err != nil {
		return err
	}
	if e.watcher == nil {
		return nil
	}

	for {
		select {
		case scene, ok := <-e.watcher.Updates():
			if !ok {
				return nil
			}
			core.LogInfo("scene file reloaded")
			if err := e.setScene(scene); err != nil {
				return err
			}
			if err := e.runFrames(); err != nil {
				return err
			}
		case err, ok := <-e.watcher.Errors():
			if !ok {
				return nil
			}
			core.LogWarn("keeping the previous scene: %s", err)
		case <-e.done:
			return nil
		}
	}
}

func (e *Engine) runFrames() error {
	cfg, err := e.scene.CascadeConfig()
	if err != nil {
		return err
	}
	frame, err := e.scene.Frame()
	if err != nil {
		return err
	}

	e.clock.Update()
	lastTime := e.clock.Elapsed()

	for i := 0; i < e.gameInstance.ApplicationConfig.Frames; i++ {
		select {
		case <-e.done:
			return nil
		default:
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - lastTime).Seconds()
		lastTime = currentTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta, &frame); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}

		e.frameClock.Start()
		cascades, err := e.partitioner.ComputeCascades(frame, cfg)
		e.frameClock.Stop()
		if err != nil {
			if errors.Is(err, systems.ErrJobSystemShutdown) {
				return nil
			}
			return err
		}
		e.metrics.Update(e.frameClock.Elapsed())

		if e.gameInstance.FnReport != nil {
			if err := e.gameInstance.FnReport(e.metrics.Frames()-1, cascades, e.metrics); err != nil {
				core.LogError("game report failed, shutting down: %s", err)
				return err
			}
		}
	}
	return nil
}

// Shutdown stops a running engine. Resources are released once Run returns,
// or right away when the engine is not running.
func (e *Engine) Shutdown() error {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	if e.Stage() != EngineStageRunning {
		e.release()
	}
	return nil
}

func (e *Engine) release() {
	e.releaseOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)
		e.clock.Stop()
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil && !errors.Is(err, core.ErrWatcherClosed) {
				core.LogWarn("closing watcher: %s", err)
			}
		}
		if e.jobs != nil {
			if err := e.jobs.Shutdown(); err != nil && !errors.Is(err, systems.ErrJobSystemShutdown) {
				core.LogWarn("stopping workers: %s", err)
			}
		}
		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				core.LogError("game shutdown failed: %s", err)
			}
		}
	})
}
