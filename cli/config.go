package cli

import (
	"github.com/spf13/cobra"
)

func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := deps.Config.YAML()
			if err != nil {
				return err
			}
			_, err = deps.Out.Write(out)
			return err
		},
	})
	return cmd
}
