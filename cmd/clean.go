package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Vertex-Scripts/vx-cli/pkg"
	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
	"github.com/Vertex-Scripts/vx-cli/pkg/packer"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [project_dir]",
	Short: "Deletes the packed archive and temporary files left by interrupted runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, root, _, err := setup(cmd, args)
		if err != nil {
			return err
		}

		pctx, err := packer.NewPackContext(root, fxmanifest.Manifest{})
		if err != nil {
			return err
		}

		removed, err := packer.Clean(ctx, pctx)
		if err != nil {
			return err
		}

		if len(removed) == 0 {
			pkg.PrintSubtask("Nothing to clean")
		}
		for _, item := range removed {
			pkg.PrintSubtask("Deleted " + item)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
