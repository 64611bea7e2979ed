package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Vertex-Scripts/vx-cli/pkg/fxmanifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest [project_dir]",
	Short: "Prints the packing manifest extracted from fxmanifest.lua",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, root, cfg, err := setup(cmd, args)
		if err != nil {
			return err
		}

		manifest, err := fxmanifest.Read(ctx, root, fxmanifest.Options{IgnoreDocs: cfg.Pack.IgnoreDocs})
		if err != nil {
			return err
		}

		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		err = encoder.Encode(manifest)
		if err != nil {
			return eris.Wrap(err, "failed to encode manifest")
		}

		return encoder.Close()
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
