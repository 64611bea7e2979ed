package pkg

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"

	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
)

// FindProjectRoot returns the closest directory at or above start that contains an fxmanifest.lua.
// If there is none, start itself is returned so that reading the manifest reports the missing file.
func FindProjectRoot(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", start)
	}

	path := start
	for {
		_, err := os.Stat(filepath.Join(path, fxmanifest.FileName))
		if err == nil {
			return path, nil
		}

		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrap(err, "Error ocurred while searching for project root")
		}

		parent := filepath.Dir(path)
		if parent == path {
			return start, nil
		}
		path = parent
	}
}

func PrintTask(msg string) {
	colorstring.Printf("[blue][bold]==>[default] %s\n", msg)
}

func PrintSubtask(msg string) {
	colorstring.Printf("[green][bold]  ->[reset] %s\n", msg)
}
