/*
Computes cascaded shadow map partitions for the scene described by a TOML
file, orbiting the camera around its target for a number of frames.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spaghettifunk/cascades/engine"
	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/spaghettifunk/cascades/testbed"
)

func main() {
	scenePath := flag.String("config", "assets/cascades.toml", "scene file; empty uses the built-in scene")
	frames := flag.Int("frames", 60, "frames to compute per scene load")
	watch := flag.Bool("watch", false, "recompute when the scene file changes")
	parallel := flag.Bool("parallel", false, "compute the cascades of a frame concurrently")
	flag.Parse()

	workers := 0
	if *parallel {
		workers = runtime.NumCPU()
	}

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		Name:      "Cascades",
		ScenePath: *scenePath,
		Frames:    *frames,
		Watch:     *watch,
		Workers:   workers,
	})

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := engine.Initialize(); err != nil {
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = engine.Shutdown()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogFatal("%s", err)
	}
	core.LogInfo("run %s finished after %d frames", engine.RunID(), engine.Metrics().Frames())
}
