// Rubberduck CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/rubberduck/internal/dagger"
)

// Rubberduck is the main module for the rubberduck CI/CD pipeline
type Rubberduck struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Rubberduck CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Rubberduck {
	return &Rubberduck{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted and
// the module and build caches attached.
//
// It is the shared foundation for tests, builds, and linting.
func (r *Rubberduck) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", r.Source)
}

// Test runs the rubberduck unit tests via "go test"
func (r *Rubberduck) Test(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
