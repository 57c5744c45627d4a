package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/speakers"
	"github.com/mpgigat/actas-repfora/suggest"
)

func NewSuggestCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <transcript>",
		Short: "Suggest speaker names from a transcript and cache them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := deps.formatter()

			found, err := suggest.File(cmd.Context(), args[0], deps.Config.Suggest.WindowWords, deps.extractor())
			if err != nil {
				return err
			}
			if !speakers.SaveSuggestions(deps.Store, found) {
				return fmt.Errorf("could not save suggestions")
			}
			if len(found) == 0 {
				formatter.Info("No se encontraron nombres")
				return nil
			}

			ids := make([]string, 0, len(found))
			for id := range found {
				ids = append(ids, id)
			}
			speakers.SortIDs(ids)
			for _, id := range ids {
				formatter.Line("  %s: %s", id, found[id])
			}
			formatter.Success(fmt.Sprintf("%d sugerencias guardadas", len(found)))
			return nil
		},
	}
	return cmd
}
