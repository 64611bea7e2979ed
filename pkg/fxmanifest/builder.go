package fxmanifest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

// Builder owns a Manifest while a script is being intercepted
type Builder struct {
	manifest Manifest
}

// NewBuilder returns a Builder holding the default manifest
func NewBuilder(opts Options) *Builder {
	return &Builder{manifest: New(opts)}
}

// Apply handles one intercepted pair. Unknown keys are ignored so unrelated fxmanifest directives
// (fx_version, client_scripts, ...) pass through. Values are not validated here.
func (b *Builder) Apply(key, value string) {
	switch key {
	case DirectiveUIPage:
		b.manifest.UIPage = value
		b.manifest.HasUIPage = true
	case DirectiveIgnore:
		b.manifest.IgnoredPaths = append(b.manifest.IgnoredPaths, value)
	}
}

// Manifest returns a copy of the current state
func (b *Builder) Manifest() Manifest {
	return b.manifest.Clone()
}

// ReadSource extracts the manifest from script source. name is only used in error messages.
func ReadSource(ctx context.Context, name string, src []byte, opts Options) (Manifest, error) {
	builder := NewBuilder(opts)
	err := NewInterceptor(builder.Apply).Exec(ctx, name, src)
	if err != nil {
		return Manifest{}, err
	}

	return builder.Manifest(), nil
}

// Read extracts the manifest from the fxmanifest.lua in projectRoot
func Read(ctx context.Context, projectRoot string, opts Options) (Manifest, error) {
	path := filepath.Join(projectRoot, FileName)
	vxlog.Log(ctx).Info().Str("path", path).Msgf("Reading manifest from %s", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, &ReadError{Path: path, Err: err}
	}

	return ReadSource(ctx, FileName, src, opts)
}
