package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/media"
)

func NewPrepareCmd(deps *Dependencies) *cobra.Command {
	var parts int
	var dir string

	cmd := &cobra.Command{
		Use:   "prepare <audio>",
		Short: "Denoise a recording and split it into parts",
		Long:  "Writes a 16 kHz mono denoised copy of the audio and cuts it into <name>_parte_<n>.wav files ready for transcribe.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parts == 0 {
				parts = deps.Config.Media.Parts
			}
			if dir == "" {
				dir = deps.Config.Media.Dir
			}
			if dir == "" {
				dir = filepath.Dir(args[0])
			}

			ff := media.FFmpeg{
				Bin:      deps.Config.Media.FFmpegBin,
				ProbeBin: deps.Config.Media.FFprobeBin,
				Log:      logging.Component(deps.Logger, "media"),
			}
			paths, err := ff.Split(cmd.Context(), args[0], dir, parts)
			if err != nil {
				return err
			}

			formatter := deps.formatter()
			for i, p := range paths {
				formatter.Line("  Parte %d: %s", i+1, p)
			}
			formatter.Success(fmt.Sprintf("%d partes creadas en %s", len(paths), dir))
			return nil
		},
	}

	cmd.Flags().IntVar(&parts, "parts", 0, "Number of parts (default media.parts)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default media.dir)")
	return cmd
}
