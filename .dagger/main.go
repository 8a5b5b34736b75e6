// Clerk CI
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/clerk/internal/dagger"
)

// Clerk is the main module for the clerk CI pipeline
type Clerk struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Clerk CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".clerk", "build", "tmp"]
	source *dagger.Directory,
) *Clerk {
	return &Clerk{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
// The sqlitevec vector store links against sqlite through cgo.
func (c *Clerk) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", c.Source)
}

// Test runs the clerk unit tests with ginkgo.
func (c *Clerk) Test(ctx context.Context) (string, error) {
	return c.goContainer().
		WithExec([]string{"go", "run", "github.com/onsi/ginkgo/v2/ginkgo", "-r", "--randomize-all", "--race"}).
		Stdout(ctx)
}
