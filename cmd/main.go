package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Vertex-Scripts/vx-cli/pkg"
	"github.com/Vertex-Scripts/vx-cli/pkg/config"
	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

var rootCmd = &cobra.Command{
	Use:   "vx",
	Short: "Packaging tools for FiveM resources",
	Long: `vx reads the fxmanifest.lua of a resource, builds its web UI if one is declared
and packs everything that isn't ignored into a zip archive.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// logger is replaced once the configuration has been loaded
var logger = vxlog.New(os.Stderr, zerolog.InfoLevel, false)

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show debug messages")
	rootCmd.PersistentFlags().Bool("json", false, "write log messages as JSON lines")
}

// setup resolves the project root, loads the configuration and attaches a configured logger to the
// command's context.
func setup(cmd *cobra.Command, args []string) (context.Context, string, *config.Config, error) {
	var root string
	var err error
	if len(args) > 0 {
		root, err = filepath.Abs(args[0])
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			root, err = pkg.FindProjectRoot(wd)
		}
	}
	if err != nil {
		return nil, "", nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", nil, err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, "", nil, err
	}

	json, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, "", nil, err
	}

	level := cfg.LogLevel()
	if verbose {
		level = zerolog.DebugLevel
	}

	vxlog.SetTrace(cfg.Log.Trace)
	logger = vxlog.New(cmd.ErrOrStderr(), level, json || cfg.Log.JSON)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return vxlog.WithLogger(ctx, &logger), root, cfg, nil
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
