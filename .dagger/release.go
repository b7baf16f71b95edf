package main

import (
	"context"
	"fmt"
	"path"

	"dagger/rubberduck/internal/dagger"
)

// bucket holds the S3-compatible destination for release artifacts.
type bucket struct {
	endpoint        *dagger.Secret
	name            *dagger.Secret
	accessKeyID     *dagger.Secret
	secretAccessKey *dagger.Secret
}

// sync copies artifacts under each prefix of the bucket.
func (b bucket) sync(ctx context.Context, artifacts *dagger.Directory, prefixes ...string) error {
	name, err := b.name.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket name: %w", err)
	}
	endpoint, err := b.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket endpoint: %w", err)
	}

	aws := dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", b.accessKeyID).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", b.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts")

	for _, prefix := range prefixes {
		dest := "s3://" + path.Join(name, prefix)
		if _, err := aws.WithExec([]string{"aws", "s3", "sync", ".", dest, "--endpoint-url", endpoint}).Sync(ctx); err != nil {
			return fmt.Errorf("uploading rubberduck binaries to %s: %w", dest, err)
		}
	}
	return nil
}

// Release builds the rubberduck binaries for version and uploads them under
// both the version prefix and "latest". With nightly set, they go under
// "nightly" only.
func (r *Rubberduck) Release(
	ctx context.Context,

	// Version string (e.g., "v0.3.0"); ignored for nightly builds
	// +optional
	version string,

	// Git commit SHA
	commit string,

	// Publish a nightly build instead of a tagged release
	// +optional
	nightly bool,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyID *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	prefixes := []string{version, "latest"}
	if nightly {
		version = "nightly"
		prefixes = []string{version}
	} else if version == "" {
		return nil, fmt.Errorf("version is required for a tagged release")
	}

	artifacts := r.BuildRelease(ctx, version, commit)
	b := bucket{
		endpoint:        endpoint,
		name:            bucketName,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
	}
	return artifacts, b.sync(ctx, artifacts, prefixes...)
}
