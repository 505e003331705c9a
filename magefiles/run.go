//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the partitioner over the sample scene.
func (Run) Cascades() error {
	fmt.Println("Run cascades...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "assets/cascades.toml", "-frames", "10"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the partitioner and recomputes whenever the sample scene changes.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/cascades", withArgs("-config", "assets/cascades.toml", "-frames", "1", "-watch"), withStream()); err != nil {
		return err
	}
	return nil
}
