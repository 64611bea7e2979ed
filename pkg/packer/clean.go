package packer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

// Artifacts lists the archive and any temporary archives an interrupted Create left behind
func Artifacts(pctx *PackContext) ([]string, error) {
	archiveName := filepath.Base(pctx.ArchivePath())

	items, err := os.ReadDir(pctx.Root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", pctx.Root)
	}

	result := []string{}
	for _, item := range items {
		if !item.IsDir() && isArtifact(archiveName, item.Name()) {
			result = append(result, filepath.Join(pctx.Root, item.Name()))
		}
	}

	return result, nil
}

// isArtifact matches the archive name and the names TempPath generates for it
func isArtifact(archiveName, name string) bool {
	return name == archiveName || (strings.HasPrefix(name, archiveName+".") && strings.HasSuffix(name, ".tmp"))
}

// Clean deletes everything Artifacts returns and reports the removed files
func Clean(ctx context.Context, pctx *PackContext) ([]string, error) {
	items, err := Artifacts(pctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		vxlog.Log(ctx).Debug().Str("path", item).Msgf("Deleting %s", item)
		err = os.Remove(item)
		if err != nil && !eris.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "Could not delete %s", item)
		}
	}

	return items, nil
}
