package webbuild

import (
	"os"
	"path/filepath"
)

// PackageManager is the name of a JavaScript package manager executable
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
)

var lockfiles = []struct {
	name string
	pm   PackageManager
}{
	{"package-lock.json", NPM},
	{"yarn.lock", Yarn},
	{"pnpm-lock.yaml", PNPM},
}

// Detect looks for a lockfile in dir. The first match in the order npm, yarn, pnpm wins.
func Detect(dir string) (PackageManager, bool) {
	for _, item := range lockfiles {
		info, err := os.Stat(filepath.Join(dir, item.name))
		if err == nil && !info.IsDir() {
			return item.pm, true
		}
	}

	return "", false
}
