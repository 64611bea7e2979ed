// Package webbuild builds a project's web UI with the package manager its lockfile points to.
// Commands run through the mvdan.cc/sh interpreter so the same code path works on every OS.
package webbuild

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

// ProjectDir is the web project inside a resource
const ProjectDir = "web"

// Builder builds the web UI of the project at root
type Builder interface {
	Build(ctx context.Context, root string) error
}

// CommandError is returned when a build command exits with a non-zero status
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

var _ error = (*CommandError)(nil)

func (e *CommandError) Error() string {
	return fmt.Sprintf("Command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// ShellBuilder installs the web project's dependencies and runs its build script
type ShellBuilder struct {
	// PackageManager skips lockfile detection if set
	PackageManager PackageManager
	// Install runs "<pm> install" before the build script
	Install bool
	// Script is the package.json script to run, usually "build"
	Script string
	Stdout io.Writer
	Stderr io.Writer
	// ExecHandler replaces the default handler that starts external programs
	ExecHandler interp.ExecHandlerFunc
}

var _ Builder = (*ShellBuilder)(nil)

// NewShellBuilder returns a builder that installs dependencies and runs the "build" script
func NewShellBuilder() *ShellBuilder {
	return &ShellBuilder{
		Install: true,
		Script:  "build",
		Stdout:  os.Stderr,
		Stderr:  os.Stderr,
	}
}

func (b *ShellBuilder) packageManager(ctx context.Context, dir string) PackageManager {
	if b.PackageManager != "" {
		return b.PackageManager
	}

	pm, found := Detect(dir)
	if !found {
		vxlog.Log(ctx).Warn().Msg("No lockfile found in web project, using npm as default")
		return NPM
	}

	vxlog.Log(ctx).Info().Msgf("Found package manager: %s", pm)
	return pm
}

// Build runs the install and build commands in <root>/web
func (b *ShellBuilder) Build(ctx context.Context, root string) error {
	dir := filepath.Join(root, ProjectDir)
	info, err := os.Stat(dir)
	if err != nil {
		return eris.Wrapf(err, "failed to find web project %s", dir)
	}
	if !info.IsDir() {
		return eris.Errorf("%s is not a directory", dir)
	}

	pm := b.packageManager(ctx, dir)
	commands := make([][]string, 0, 2)
	if b.Install {
		commands = append(commands, []string{string(pm), "install"})
	}

	script := b.Script
	if script == "" {
		script = "build"
	}
	commands = append(commands, []string{string(pm), "run", script})

	for _, args := range commands {
		if args[1] == "install" {
			vxlog.Log(ctx).Info().Str("step", "web").Msg("Installing web project dependencies...")
		} else {
			vxlog.Log(ctx).Info().Str("step", "web").Msg("Building web project...")
		}

		err = b.run(ctx, dir, args)
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *ShellBuilder) run(ctx context.Context, dir string, args []string) error {
	stmt := buildCall(args)

	var cmdLine strings.Builder
	syntax.NewPrinter(syntax.Minify(true)).Print(&cmdLine, stmt)
	vxlog.Log(ctx).Debug().
		Str("step", "web").
		Bool("command", true).
		Msg(cmdLine.String())

	stdout := b.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	var stderr bytes.Buffer
	var stderrOut io.Writer = &stderr
	if b.Stderr != nil {
		stderrOut = io.MultiWriter(&stderr, b.Stderr)
	}

	opts := []interp.RunnerOption{
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderrOut),
	}
	if b.ExecHandler != nil {
		opts = append(opts, interp.ExecHandler(b.ExecHandler))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return eris.Wrap(err, "failed to initialize runner")
	}

	err = runner.Run(ctx, stmt)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return &CommandError{
				Command:  cmdLine.String(),
				ExitCode: int(status),
				Stderr:   stderr.String(),
			}
		}
		return eris.Wrapf(err, "failed to run %s", cmdLine.String())
	}

	return nil
}

// buildCall turns args into a shell statement without going through the shell parser, so arguments are
// never split or expanded.
func buildCall(args []string) *syntax.Stmt {
	call := &syntax.CallExpr{Args: make([]*syntax.Word, len(args))}
	for idx, arg := range args {
		var part syntax.WordPart
		if strings.ContainsAny(arg, " $'\"\\*?[]{}()<>|&;`~#") {
			part = &syntax.SglQuoted{Value: arg}
		} else {
			part = &syntax.Lit{Value: arg}
		}

		call.Args[idx] = &syntax.Word{Parts: []syntax.WordPart{part}}
	}

	return &syntax.Stmt{Cmd: call}
}
