package pkg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
	"github.com/Vertex-Scripts/vx-cli/pkg/packer"
	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
	"github.com/Vertex-Scripts/vx-cli/pkg/webbuild"
)

// SupportedUIPage is the only ui_page value that can be built and packed
const SupportedUIPage = packer.WebOutputDir + "/index.html"

// ErrNoUIPage is returned by CheckUIPage for manifests without a ui_page
var ErrNoUIPage = eris.New("No UI page found")

// UnsupportedUIPageError is returned if the manifest's ui_page is anything but SupportedUIPage
type UnsupportedUIPageError struct {
	Page string
}

var _ error = (*UnsupportedUIPageError)(nil)

func (e *UnsupportedUIPageError) Error() string {
	return fmt.Sprintf("unsupported ui_page %q: as of now, only %s is supported", e.Page, SupportedUIPage)
}

// MissingOutputError is returned if the web build succeeded but didn't produce the UI page
type MissingOutputError struct {
	Path string
}

var _ error = (*MissingOutputError)(nil)

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("the web build did not produce %s", e.Path)
}

// CheckUIPage verifies the precondition for building the web UI
func CheckUIPage(manifest fxmanifest.Manifest) error {
	if !manifest.HasUIPage {
		return ErrNoUIPage
	}

	if manifest.UIPage != SupportedUIPage {
		return &UnsupportedUIPageError{Page: manifest.UIPage}
	}

	return nil
}

// PackOptions controls Pack
type PackOptions struct {
	Manifest fxmanifest.Options
	// Builder builds the web UI; required unless SkipBuild or DryRun is set and a ui_page is declared
	Builder webbuild.Builder
	// SkipBuild packs an already built web UI
	SkipBuild bool
	// DryRun only plans the archive. The web UI is not built.
	DryRun   bool
	Progress bool
}

// PackResult describes a finished Pack call
type PackResult struct {
	Context *packer.PackContext
	// ArchivePath is empty for dry runs
	ArchivePath string
	// Entries is only filled for dry runs
	Entries []packer.Entry
}

// LoadContext reads the project's manifest and pairs it with the absolute project root
func LoadContext(ctx context.Context, root string, opts fxmanifest.Options) (*packer.PackContext, error) {
	manifest, err := fxmanifest.Read(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	return packer.NewPackContext(root, manifest)
}

// Pack reads the manifest, builds the web UI if one is declared and writes <root>/<root name>.zip.
// Any error aborts the remaining steps.
func Pack(ctx context.Context, root string, opts PackOptions) (*PackResult, error) {
	logger := vxlog.Log(ctx)

	PrintTask("Reading manifest")
	pctx, err := LoadContext(ctx, root, opts.Manifest)
	if err != nil {
		return nil, err
	}
	result := &PackResult{Context: pctx}

	if pctx.Manifest.HasUIPage {
		logger.Info().Msgf("Found UI page: %s, looking for web project", pctx.Manifest.UIPage)
		err = CheckUIPage(pctx.Manifest)
		if err != nil {
			return nil, err
		}

		if !opts.SkipBuild && !opts.DryRun {
			PrintTask("Building web UI")
			if opts.Builder == nil {
				return nil, eris.New("no web builder configured")
			}

			err = opts.Builder.Build(ctx, pctx.Root)
			if err != nil {
				return nil, err
			}
		}

		if !opts.DryRun {
			page := filepath.Join(pctx.Root, filepath.FromSlash(SupportedUIPage))
			info, err := os.Stat(page)
			if err != nil || info.IsDir() {
				return nil, &MissingOutputError{Path: page}
			}
		}
	}

	if opts.DryRun {
		PrintTask("Planning archive")
		result.Entries, err = packer.Plan(ctx, pctx)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	PrintTask("Packing")
	result.ArchivePath, err = packer.Create(ctx, pctx, packer.Options{Progress: opts.Progress})
	if err != nil {
		return nil, err
	}

	return result, nil
}
