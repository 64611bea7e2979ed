// Package packer builds the distributable zip archive of a project.
package packer

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

// PackContext pairs the resolved project root with its finalized manifest
type PackContext struct {
	Root     string
	Manifest fxmanifest.Manifest
}

// NewPackContext resolves root to an absolute path
func NewPackContext(root string, manifest fxmanifest.Manifest) (*PackContext, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve %s", root)
	}

	return &PackContext{Root: abs, Manifest: manifest.Clone()}, nil
}

// ArchivePath returns the location of the archive: <root>/<root name>.zip
func (c *PackContext) ArchivePath() string {
	return filepath.Join(c.Root, filepath.Base(c.Root)+".zip")
}

// Entry is a file that will be stored in the archive
type Entry struct {
	// Path is the file on disk
	Path string
	// Name is the archive entry name, relative to the project root and '/'-separated
	Name string
	Size int64
}

// Options controls Create
type Options struct {
	// Progress shows a progress bar on stderr
	Progress bool
}

// Plan walks the project depth-first in lexical order and returns the files that belong in the archive.
// A symlinked project root is resolved first. Paths in skip, the archive itself and temporary archives of
// interrupted runs are never included. Ignored directories are still descended into because their
// children may be rescued by the web output override.
func Plan(ctx context.Context, pctx *PackContext, skip ...string) ([]Entry, error) {
	matcher, err := NewMatcher(pctx.Manifest.IgnoredPaths)
	if err != nil {
		return nil, err
	}

	walkRoot, err := filepath.EvalSymlinks(pctx.Root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve %s", pctx.Root)
	}

	skipped := map[string]bool{}
	for _, path := range skip {
		relPath, err := filepath.Rel(pctx.Root, path)
		if err == nil {
			skipped[filepath.ToSlash(relPath)] = true
		}
	}

	archiveName := filepath.Base(pctx.ArchivePath())
	logger := vxlog.Log(ctx)
	entries := make([]Entry, 0)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return eris.Wrapf(walkErr, "failed to read %s", path)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if path == walkRoot {
			return nil
		}

		relPath, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return eris.Wrapf(err, "failed to get relative path for %s", path)
		}
		name := filepath.ToSlash(relPath)

		if skipped[name] || (!strings.Contains(name, "/") && isArtifact(archiveName, name)) {
			return nil
		}

		if matcher.Excluded(name) {
			logger.Debug().Str("path", path).Msgf("Ignoring path: %s", name)
			return nil
		}

		info, err := entryInfo(path, d)
		if err != nil {
			return err
		}

		if info == nil || !info.Mode().IsRegular() {
			return nil
		}

		entries = append(entries, Entry{Path: filepath.Join(pctx.Root, relPath), Name: name, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// entryInfo returns the file info, following symlinks. Broken links yield nil.
func entryInfo(path string, d fs.DirEntry) (os.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, eris.Wrapf(err, "failed to resolve link %s", path)
		}
		return info, nil
	}

	info, err := d.Info()
	if err != nil {
		return nil, eris.Wrapf(err, "failed to stat %s", path)
	}
	return info, nil
}

// Create packs the project into its archive and returns the archive path. The archive is written to a
// temporary file first, so a failure never leaves a truncated archive behind.
func Create(ctx context.Context, pctx *PackContext, opts Options) (string, error) {
	archivePath := pctx.ArchivePath()
	logger := vxlog.Log(ctx)

	entries, err := Plan(ctx, pctx)
	if err != nil {
		return "", err
	}

	var total int64
	for _, entry := range entries {
		total += entry.Size
	}

	writer, err := NewWriter(archivePath)
	if err != nil {
		return "", err
	}

	bar := getProgressBar(total, "packing", opts.Progress)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			writer.Abort()
			return "", err
		}

		logger.Debug().Str("path", entry.Path).Msgf("Adding file: %s", entry.Name)
		err = addFile(writer, entry, bar)
		if err != nil {
			writer.Abort()
			return "", err
		}
	}
	bar.Finish()

	err = writer.Close()
	if err != nil {
		return "", err
	}

	logger.Info().
		Str("path", archivePath).
		Int("files", len(entries)).
		Msgf("Created %s (%d files)", archivePath, len(entries))
	return archivePath, nil
}

func addFile(writer *Writer, entry Entry, bar io.Writer) error {
	f, err := os.Open(entry.Path)
	if err != nil {
		return eris.Wrapf(err, "failed to open file %s", entry.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return eris.Wrapf(err, "failed to stat %s", entry.Path)
	}

	_, err = writer.WriteFile(entry.Name, info, io.TeeReader(f, bar))
	if err != nil {
		return eris.Wrapf(err, "failed to pack file %s", entry.Path)
	}

	return nil
}

func getProgressBar(length int64, desc string, visible bool) *progressbar.ProgressBar {
	if !visible || os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}
