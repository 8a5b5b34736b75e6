package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/clerk/internal/dagger"
)

// Build the clerk binary for each supported platform
func (c *Clerk) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	gooses := []string{"linux", "darwin"}
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	// sqlite-vec needs cgo, so each target is built natively through zig cc.
	golang := c.goContainer().
		WithExec([]string{"sh", "-c", "curl -sSL https://ziglang.org/download/0.13.0/zig-linux-x86_64-0.13.0.tar.xz | tar -xJ -C /opt"}).
		WithEnvVariable("PATH", "/opt/zig-linux-x86_64-0.13.0:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true})

	for _, goos := range gooses {
		for _, goarch := range goarches {
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			build := golang.
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch).
				WithEnvVariable("CC", fmt.Sprintf("zig cc -target %s", zigTarget(goos, goarch))).
				WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/clerk"})

			outputs = outputs.WithDirectory(path, build.Directory(path))
		}
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (c *Clerk) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/clerk/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/clerk/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/clerk/pkg/utils.Buildtime=%s'", time.Now().UTC().Format(time.RFC3339)),
	}

	return c.Build(ctx, strings.Join(ldflags, " "))
}

func zigTarget(goos, goarch string) string {
	arch := map[string]string{"amd64": "x86_64", "arm64": "aarch64"}[goarch]
	if goos == "darwin" {
		return arch + "-macos"
	}
	return arch + "-linux-gnu"
}
