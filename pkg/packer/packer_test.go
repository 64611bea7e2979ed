package packer

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			t.Fatal(err)
		}

		err = os.WriteFile(path, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

// readArchive returns every entry name mapped to its content
func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer reader.Close()

	entries := make(map[string]string)
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatal(err)
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}

		entries[file.Name] = string(data)
	}
	return entries
}

func newProject(t *testing.T, files map[string]string, ignore ...string) *PackContext {
	t.Helper()

	root := filepath.Join(t.TempDir(), "vx_reports")
	err := os.Mkdir(root, 0755)
	if err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, files)

	manifest := fxmanifest.New(fxmanifest.Options{})
	manifest.IgnoredPaths = append(manifest.IgnoredPaths, ignore...)

	pctx, err := NewPackContext(root, manifest)
	if err != nil {
		t.Fatal(err)
	}
	return pctx
}

func TestArchivePath(t *testing.T) {
	pctx := newProject(t, nil)
	want := filepath.Join(pctx.Root, "vx_reports.zip")
	if got := pctx.ArchivePath(); got != want {
		t.Errorf("ArchivePath() = %s, want %s", got, want)
	}
}

func TestCreateExcludesVCS(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"fxmanifest.lua":        "fx_version 'cerulean'",
		"src/main.txt":          "main",
		".git/HEAD":             "ref: refs/heads/main",
		".git/objects/ab/cdef":  "blob",
		".vscode/settings.json": "{}",
		".gitattributes":        "* text=auto",
	})

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got := readArchive(t, archive)
	want := map[string]string{
		"fxmanifest.lua": "fx_version 'cerulean'",
		"src/main.txt":   "main",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("archive = %v, want %v", got, want)
	}
}

func TestCreateKeepsWebOutput(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"fxmanifest.lua":           "ui_page 'web/dist/index.html'",
		"web/package.json":         "{}",
		"web/src/App.tsx":          "app",
		"web/dist/index.html":      "<html>",
		"web/dist/assets/index.js": "js",
		"web/dist/app.js.map":      "map",
		"client/app.js.map":        "map",
	}, "web/**", "*.map")

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got := readArchive(t, archive)
	names := make([]string, 0, len(got))
	for name := range got {
		names = append(names, name)
	}
	sort.Strings(names)

	want := []string{"fxmanifest.lua", "web/dist/app.js.map", "web/dist/assets/index.js", "web/dist/index.html"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestCreateNeverContainsItself(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"a.txt": "a",
	})

	// a previous archive must neither be packed nor break the new one
	writeFiles(t, pctx.Root, map[string]string{"vx_reports.zip": "stale"})

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got := readArchive(t, archive)
	for name := range got {
		if strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".tmp") {
			t.Errorf("archive contains %s", name)
		}
	}

	if _, ok := got["a.txt"]; !ok {
		t.Errorf("archive = %v, want a.txt", got)
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"fxmanifest.lua":      "fx_version 'cerulean'",
		"client/main.lua":     strings.Repeat("print('hi')\n", 5000),
		"server/main.lua":     "print('server')",
		"stream/car.yft":      string([]byte{0, 1, 2, 3, 255}),
		"web/dist/index.html": "<html>",
	})

	first, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	firstEntries := readArchive(t, first)

	err = os.Remove(first)
	if err != nil {
		t.Fatal(err)
	}

	second, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(firstEntries, readArchive(t, second)) {
		t.Error("packing the same tree twice produced different archives")
	}
}

func TestCreateLeavesNoTempFiles(t *testing.T) {
	pctx := newProject(t, map[string]string{"a.txt": "a"})

	_, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(pctx.Root, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestCreateFailsOnBadPattern(t *testing.T) {
	pctx := newProject(t, map[string]string{"a.txt": "a"}, "[broken")

	_, err := Create(context.Background(), pctx, Options{})
	if err == nil {
		t.Fatal("Create() succeeded with an invalid pattern")
	}

	if _, statErr := os.Stat(pctx.ArchivePath()); !os.IsNotExist(statErr) {
		t.Errorf("archive exists after failure: %v", statErr)
	}
}

func TestCreateHonorsCancellation(t *testing.T) {
	pctx := newProject(t, map[string]string{"a.txt": "a", "b.txt": "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Create(ctx, pctx, Options{})
	if err == nil {
		t.Fatal("Create() succeeded with a canceled context")
	}

	entries, err := os.ReadDir(pctx.Root)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".zip") || strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("found %s after a canceled run", entry.Name())
		}
	}
}

func TestPlanOrderAndSkip(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"b/2.txt":   "2",
		"a/1.txt":   "1",
		"c.txt":     "c",
		"a/z/3.txt": "3",
		"skip.txt":  "s",
	})

	entries, err := Plan(context.Background(), pctx, filepath.Join(pctx.Root, "skip.txt"))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	names := make([]string, len(entries))
	for idx, entry := range entries {
		names[idx] = entry.Name
	}

	want := []string{"a/1.txt", "a/z/3.txt", "b/2.txt", "c.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Plan() = %v, want %v", names, want)
	}

	if entries[0].Size != 1 || entries[0].Path != filepath.Join(pctx.Root, "a", "1.txt") {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestPlanDoesNotPruneIgnoredDirectories(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"build/out.txt":              "out",
		"build/web/dist/index.html":  "<html>",
		"build/web/dist/css/app.css": "css",
	}, "build/**")

	entries, err := Plan(context.Background(), pctx)
	if err != nil {
		t.Fatal(err)
	}

	names := make([]string, len(entries))
	for idx, entry := range entries {
		names[idx] = entry.Name
	}

	want := []string{"build/web/dist/css/app.css", "build/web/dist/index.html"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Plan() = %v, want %v", names, want)
	}
}

func TestPlanFollowsFileLinks(t *testing.T) {
	pctx := newProject(t, map[string]string{"real.txt": "real"})

	err := os.Symlink(filepath.Join(pctx.Root, "real.txt"), filepath.Join(pctx.Root, "link.txt"))
	if err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	err = os.Symlink(filepath.Join(pctx.Root, "missing.txt"), filepath.Join(pctx.Root, "broken.txt"))
	if err != nil {
		t.Fatal(err)
	}

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}

	got := readArchive(t, archive)
	want := map[string]string{"link.txt": "real", "real.txt": "real"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("archive = %v, want %v", got, want)
	}
}

func TestCreateFollowsLinkedRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real_res")
	writeFiles(t, target, map[string]string{
		"fxmanifest.lua":  "fx_version 'cerulean'",
		"client/main.lua": "print('hi')",
	})

	link := filepath.Join(base, "vx_link")
	err := os.Symlink(target, link)
	if err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	pctx, err := NewPackContext(link, fxmanifest.New(fxmanifest.Options{}))
	if err != nil {
		t.Fatal(err)
	}

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if archive != filepath.Join(link, "vx_link.zip") {
		t.Errorf("archive = %s", archive)
	}

	got := readArchive(t, archive)
	want := map[string]string{
		"fxmanifest.lua":  "fx_version 'cerulean'",
		"client/main.lua": "print('hi')",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("archive = %v, want %v", got, want)
	}

	// a second run must not pick up the first archive through the resolved path
	archive, err = Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := readArchive(t, archive); !reflect.DeepEqual(got, want) {
		t.Errorf("second archive = %v, want %v", got, want)
	}
}

func TestCreateSkipsStaleTempArchives(t *testing.T) {
	pctx := newProject(t, map[string]string{
		"a.txt":                           "a",
		"vx_reports.zip.abc123.tmp":       "PARTIAL",
		"client/vx_reports.zip.def45.tmp": "nested",
		"vx_reports.zip.notes":            "kept",
	})

	archive, err := Create(context.Background(), pctx, Options{})
	if err != nil {
		t.Fatal(err)
	}

	got := readArchive(t, archive)
	want := map[string]string{
		"a.txt":                           "a",
		"client/vx_reports.zip.def45.tmp": "nested",
		"vx_reports.zip.notes":            "kept",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("archive = %v, want %v", got, want)
	}
}
