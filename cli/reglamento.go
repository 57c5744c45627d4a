package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/reglamento"
)

func NewReglamentoCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "reglamento <text> <out.json>",
		Short: "Extract numbered clauses from regulation text into JSON",
		Long:  "Reads the plain text of a regulation (already extracted from PDF or DOCX) and writes its numerals keyed by chapter and article.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := reglamento.Parse(f)
			if err != nil {
				return err
			}
			if err := reglamento.Write(args[1], doc); err != nil {
				return err
			}
			deps.formatter().Success(fmt.Sprintf("%d numerales guardados en %s", len(doc.Articulos), args[1]))
			return nil
		},
	}
}
