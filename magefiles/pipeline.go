//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline runs the ai-research stages through the built CLI.
type Pipeline mg.Namespace

// Collect fetches papers for the configured terms into page dumps.
func (Pipeline) Collect() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "collect")
}

// Parse loads the page dumps into the database.
func (Pipeline) Parse() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "parse")
}

// FosLevels fetches levels for stored fields of study.
func (Pipeline) FosLevels() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "fos-levels")
}

// Geocode resolves stored affiliations to places.
func (Pipeline) Geocode() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "geocode")
}

// All runs every stage in order.
func (p Pipeline) All() {
	mg.SerialDeps(p.Collect, p.Parse, p.FosLevels, p.Geocode)
}

// Status prints collection progress and table counts.
func (Pipeline) Status() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "status")
}
