package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/console"
	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/speakers"
	"github.com/mpgigat/actas-repfora/suggest"
)

func newConsole(deps *Dependencies, transcriptPath string) *console.Console {
	c := console.New(deps.Store, deps.In, deps.Out, logging.Component(deps.Logger, "console"))
	c.Transcript = transcriptPath
	c.Suggest = func(ctx context.Context, path string) (map[string]string, error) {
		return suggest.File(ctx, path, deps.Config.Suggest.WindowWords, deps.extractor())
	}
	return c
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func NewSpeakersCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers [transcript]",
		Short: "Manage speaker names interactively",
		Long:  "Opens the speaker manager. When a transcript is given and no suggestions are cached, names are suggested from it before assigning.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newConsole(deps, optionalArg(args)).Run(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List global speakers with their local labels and names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newConsole(deps, "").List()
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show speaker statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newConsole(deps, "").Stats()
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "assign [transcript]",
		Short: "Assign names to every global speaker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newConsole(deps, optionalArg(args)).Assign(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <HABLANTE_n> <name>",
		Short: "Set the display name of one global speaker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, name := args[0], args[1]
			if _, ok := speakers.Number(id); !ok {
				return fmt.Errorf("invalid speaker id %q, expected %s<n>", id, speakers.Prefix)
			}
			names := speakers.OpenNames(deps.Store, logging.Component(deps.Logger, "names"))
			names.Set(id, name)
			if !names.Save() {
				return fmt.Errorf("could not save speaker names")
			}
			deps.formatter().Success(id + " -> " + name)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the speaker registry and names (asks for confirmation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newConsole(deps, "").Reset()
		},
	})

	return cmd
}
