package webbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/interp"
)

func newWebProject(t *testing.T, lockfiles ...string) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, ProjectDir)
	err := os.Mkdir(dir, 0755)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range lockfiles {
		err = os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		lockfiles []string
		want      PackageManager
		found     bool
	}{
		{"npm", []string{"package-lock.json"}, NPM, true},
		{"yarn", []string{"yarn.lock"}, Yarn, true},
		{"pnpm", []string{"pnpm-lock.yaml"}, PNPM, true},
		{"npm wins over yarn", []string{"yarn.lock", "package-lock.json"}, NPM, true},
		{"yarn wins over pnpm", []string{"pnpm-lock.yaml", "yarn.lock"}, Yarn, true},
		{"nothing", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newWebProject(t, tt.lockfiles...)
			got, found := Detect(filepath.Join(root, ProjectDir))
			if got != tt.want || found != tt.found {
				t.Errorf("Detect() = %q, %v, want %q, %v", got, found, tt.want, tt.found)
			}
		})
	}
}

type recorder struct {
	calls [][]string
	dirs  []string
	fail  string
}

func (r *recorder) handler(ctx context.Context, args []string) error {
	hc := interp.HandlerCtx(ctx)
	r.calls = append(r.calls, args)
	r.dirs = append(r.dirs, hc.Dir)

	if r.fail != "" && strings.Join(args, " ") == r.fail {
		fmt.Fprint(hc.Stderr, "ERR! missing script: build\n")
		return interp.NewExitStatus(1)
	}

	fmt.Fprintf(hc.Stdout, "ran %s\n", strings.Join(args, " "))
	return nil
}

func TestShellBuilderCommands(t *testing.T) {
	tests := []struct {
		name      string
		lockfiles []string
		builder   ShellBuilder
		want      [][]string
	}{
		{
			name:      "detected yarn",
			lockfiles: []string{"yarn.lock"},
			builder:   ShellBuilder{Install: true, Script: "build"},
			want:      [][]string{{"yarn", "install"}, {"yarn", "run", "build"}},
		},
		{
			name:    "npm fallback",
			builder: ShellBuilder{Install: true},
			want:    [][]string{{"npm", "install"}, {"npm", "run", "build"}},
		},
		{
			name:      "forced manager without install",
			lockfiles: []string{"package-lock.json"},
			builder:   ShellBuilder{PackageManager: PNPM, Script: "build:prod"},
			want:      [][]string{{"pnpm", "run", "build:prod"}},
		},
		{
			name:    "script with spaces stays one argument",
			builder: ShellBuilder{Script: "build all"},
			want:    [][]string{{"npm", "run", "build all"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newWebProject(t, tt.lockfiles...)
			rec := &recorder{}
			builder := tt.builder
			builder.ExecHandler = rec.handler

			var stdout bytes.Buffer
			builder.Stdout = &stdout

			err := builder.Build(context.Background(), root)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			if !reflect.DeepEqual(rec.calls, tt.want) {
				t.Errorf("commands = %v, want %v", rec.calls, tt.want)
			}

			for _, dir := range rec.dirs {
				if dir != filepath.Join(root, ProjectDir) {
					t.Errorf("command ran in %s", dir)
				}
			}

			if !strings.Contains(stdout.String(), "ran ") {
				t.Errorf("stdout = %q, want command output", stdout.String())
			}
		})
	}
}

func TestShellBuilderFailure(t *testing.T) {
	root := newWebProject(t, "package-lock.json")
	rec := &recorder{fail: "npm run build"}

	var stderr bytes.Buffer
	builder := NewShellBuilder()
	builder.ExecHandler = rec.handler
	builder.Stdout = nil
	builder.Stderr = &stderr

	err := builder.Build(context.Background(), root)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Build() error = %v, want *CommandError", err)
	}

	if cmdErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d", cmdErr.ExitCode)
	}
	if cmdErr.Stderr != "ERR! missing script: build\n" {
		t.Errorf("Stderr = %q", cmdErr.Stderr)
	}
	if cmdErr.Command != "npm run build" {
		t.Errorf("Command = %q", cmdErr.Command)
	}
	if !strings.Contains(err.Error(), "ERR! missing script: build") {
		t.Errorf("Error() = %q, want the captured stderr", err.Error())
	}
	if stderr.String() != cmdErr.Stderr {
		t.Errorf("stderr was not passed through: %q", stderr.String())
	}
}

func TestShellBuilderStopsAfterFailedInstall(t *testing.T) {
	root := newWebProject(t)
	rec := &recorder{fail: "npm install"}

	builder := NewShellBuilder()
	builder.ExecHandler = rec.handler
	builder.Stdout = nil
	builder.Stderr = nil

	err := builder.Build(context.Background(), root)
	if err == nil {
		t.Fatal("Build() succeeded")
	}

	if len(rec.calls) != 1 {
		t.Errorf("commands = %v, want only the install", rec.calls)
	}
}

func TestShellBuilderMissingWebProject(t *testing.T) {
	rec := &recorder{}
	builder := NewShellBuilder()
	builder.ExecHandler = rec.handler

	err := builder.Build(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("Build() succeeded without a web directory")
	}
	if len(rec.calls) != 0 {
		t.Errorf("commands ran: %v", rec.calls)
	}
}
