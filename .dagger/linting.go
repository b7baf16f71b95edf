package main

import (
	"context"
	"fmt"

	"dagger/rubberduck/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts returns the GolangcilintOpts shared by CheckLint and FixLint.
func (r *Rubberduck) lintOpts() dagger.GolangcilintOpts {
	base := r.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
	}
}

// CheckLint runs golangci-lint against the rubberduck source without applying fixes.
func (r *Rubberduck) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(r.Source, r.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the modified source directory.
func (r *Rubberduck) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(r.Source, r.lintOpts()).Lint()
}
