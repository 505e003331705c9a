package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spaghettifunk/cascades/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))

	changed := strings.Replace(sampleScene, "count = 2", "count = 1", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case sf := <-w.Updates():
			require.NotNil(t, sf)
			if sf.Cascades.Count == 1 {
				return
			}
		case <-w.Errors():
			// a write observed half way through; the next event completes it
		case <-timeout:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcherReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[cascades]\ncount = 0\n"), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case err := <-w.Errors():
			assert.ErrorIs(t, err, core.ErrInvalidCascadeCount)
			return
		case <-w.Updates():
			// the truncated, empty file parses to the defaults
		case <-timeout:
			t.Fatal("no error observed")
		}
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), core.ErrWatcherClosed)

	_, ok := <-w.Updates()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "scene.toml"))
	assert.Error(t, err)
}
