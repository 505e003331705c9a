package engine

type ApplicationConfig struct {
	// The application name, used in log output.
	Name string
	// Path of the TOML scene file. Empty runs the built-in default scene.
	ScenePath string
	// Number of frames computed per scene load.
	Frames int
	// Recompute whenever the scene file changes, until shut down.
	Watch bool
	// Cascade workers. Zero computes the cascades of a frame sequentially.
	Workers int
}
