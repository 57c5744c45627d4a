package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/combine"
	"github.com/mpgigat/actas-repfora/orchestrator"
	"github.com/mpgigat/actas-repfora/speakers"
)

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	var segments, out string
	var noDiarization bool
	var parts int

	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe an audio file into a speaker-attributed transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := deps.formatter()

			p := orchestrator.NewPipeline(deps.Config, deps.Store, deps.Logger)
			p.SegmentsFile = segments
			p.NoDiarization = noDiarization
			p.Output = out

			formatter.Transcribing(args[0])
			if parts > 0 {
				return runParts(cmd, deps, p, args[0], parts)
			}
			rep, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			formatter.NewSpeakers(rep.Minted)
			if rep.Fallback {
				formatter.Warning("No se detectaron intervenciones; se usó un único hablante desconocido")
			}
			formatter.TranscribeDone(rep.TranscriptPath, rep.Turns, rep.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&segments, "segments", "", "Use an existing whisperx JSON instead of transcribing")
	cmd.Flags().BoolVar(&noDiarization, "no-diarization", false, "Attribute every turn to an unknown speaker")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Transcript path (default <audio>_transcripcion.txt)")
	cmd.Flags().IntVar(&parts, "parts", 0, "Clean and split the audio into this many parts, transcribe each and combine them")

	return cmd
}

func runParts(cmd *cobra.Command, deps *Dependencies, p *orchestrator.Pipeline, audio string, parts int) error {
	formatter := deps.formatter()
	rep, err := p.RunParts(cmd.Context(), audio, parts)
	if err != nil {
		return err
	}

	for _, part := range rep.Parts {
		formatter.Line("  Parte %d: %s (%d intervenciones)", part.Number, part.Transcript, part.Turns)
	}
	for _, n := range rep.Failed {
		formatter.Warning(fmt.Sprintf("No se pudo transcribir la parte %d", n))
	}
	formatter.NewSpeakers(rep.Minted)
	if len(rep.Speakers) > 0 {
		formatter.Info("Hablantes: " + joinSpeakers(rep.Speakers))
	}
	names := speakers.OpenNames(deps.Store, nil)
	if missing := combine.Unnamed(rep.Speakers, names); len(missing) > 0 {
		formatter.Warning("Hablantes sin nombre registrado: " + joinSpeakers(missing))
	}
	formatter.TranscribeDone(rep.Transcript, countTurns(rep), rep.Duration)
	return nil
}

func countTurns(rep *orchestrator.PartsReport) int {
	n := 0
	for _, part := range rep.Parts {
		n += part.Turns
	}
	return n
}
