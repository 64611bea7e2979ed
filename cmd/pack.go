package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vertex-Scripts/vx-cli/pkg"
	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
	"github.com/Vertex-Scripts/vx-cli/pkg/webbuild"
)

var packCmd = &cobra.Command{
	Use:   "pack [project_dir]",
	Short: "Packs a resource into <resource name>.zip",
	Long: `Reads fxmanifest.lua, builds the web UI if ui_page is declared and writes
<project_dir>/<project name>.zip. Without project_dir the closest directory
containing an fxmanifest.lua is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, root, cfg, err := setup(cmd, args)
		if err != nil {
			return err
		}

		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		skipBuild, err := cmd.Flags().GetBool("skip-build")
		if err != nil {
			return err
		}

		builder := webbuild.NewShellBuilder()
		builder.PackageManager = webbuild.PackageManager(cfg.Web.PackageManager)
		builder.Install = cfg.Web.Install
		builder.Script = cfg.Web.Script
		builder.Stdout = cmd.ErrOrStderr()
		builder.Stderr = cmd.ErrOrStderr()

		result, err := pkg.Pack(ctx, root, pkg.PackOptions{
			Manifest:  fxmanifest.Options{IgnoreDocs: cfg.Pack.IgnoreDocs},
			Builder:   builder,
			SkipBuild: skipBuild,
			DryRun:    dryRun,
			Progress:  cfg.Pack.Progress,
		})
		if err != nil {
			return err
		}

		if dryRun {
			out := cmd.OutOrStdout()
			for _, entry := range result.Entries {
				fmt.Fprintln(out, entry.Name)
			}
			return nil
		}

		pkg.PrintSubtask("Created " + result.ArchivePath)
		return nil
	},
}

func init() {
	packCmd.Flags().BoolP("dry", "n", false, "dry run; only list the files that would be packed")
	packCmd.Flags().Bool("skip-build", false, "don't build the web UI, pack the existing build output")
	rootCmd.AddCommand(packCmd)
}
