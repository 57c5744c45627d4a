package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/combine"
	"github.com/mpgigat/actas-repfora/speakers"
)

func NewCombineCmd(deps *Dependencies) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "combine <dir>",
		Short: "Join the part transcripts of a split recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := deps.formatter()

			parts, err := combine.Discover(args[0])
			if err != nil {
				return err
			}
			if len(parts) == 0 {
				return fmt.Errorf("no *_parte_<n>%s files in %s", combine.Suffix, args[0])
			}

			combined, err := combine.Join(parts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(args[0], "completa"+combine.Suffix)
			}
			if err := os.WriteFile(out, []byte(combined.Text), 0o644); err != nil {
				return fmt.Errorf("writing combined transcript: %w", err)
			}

			formatter.Success(fmt.Sprintf("%d partes combinadas: %s", len(parts), out))
			if len(combined.Speakers) > 0 {
				formatter.Info("Hablantes: " + joinSpeakers(combined.Speakers))
			}
			names := speakers.OpenNames(deps.Store, nil)
			if missing := combine.Unnamed(combined.Speakers, names); len(missing) > 0 {
				formatter.Warning("Hablantes sin nombre registrado: " + joinSpeakers(missing))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Combined transcript path (default <dir>/completa_transcripcion.txt)")
	return cmd
}

func joinSpeakers(ns []int) string {
	labels := make([]string, len(ns))
	for i, n := range ns {
		labels[i] = "HABLANTE " + strconv.Itoa(n)
	}
	return strings.Join(labels, ", ")
}
