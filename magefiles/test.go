//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the tests with the race detector; the job system and the asset
// watcher are the concurrent parts.
func (Test) Race() error {
	mg.Deps(Test.Unit)
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/..."), withStream())
	return err
}

// Runs only the state machine tests, verbosely.
func (Test) States() error {
	_, err := executeCmd("go", withArgs("test", "-v", "."), withDir("engine/states"), withStream())
	return err
}
