package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/clients"
	cfg "github.com/mpgigat/actas-repfora/config"
	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/media"
	"github.com/mpgigat/actas-repfora/metadata"
	"github.com/mpgigat/actas-repfora/speakers"
	"github.com/mpgigat/actas-repfora/store"
	"github.com/mpgigat/actas-repfora/transcript"
)

type Pipeline struct {
	cfg      *cfg.Root
	http     *clients.HTTP
	whisperx clients.WhisperX
	store    store.Store
	logger   *logrus.Logger
	log      *logrus.Entry
	now      func() time.Time

	// SegmentsFile skips transcription and reads whisperx-style JSON instead.
	SegmentsFile string
	// NoDiarization attributes every segment to the unknown speaker.
	NoDiarization bool
	// Output overrides the transcript path. In RunParts it is the combined
	// transcript path.
	Output string
	// Splitter cuts recordings for RunParts.
	Splitter Splitter
}

func NewPipeline(c *cfg.Root, s store.Store, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	timeout := c.Transcription.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Pipeline{
		cfg:      c,
		http:     clients.NewHTTPWithTimeout(timeout),
		whisperx: clients.WhisperX{Bin: c.Transcription.WhisperXBin, Log: logging.Component(logger, "whisperx")},
		store:    s,
		logger:   logger,
		log:      logging.Component(logger, "pipeline"),
		now:      time.Now,
		Splitter: media.FFmpeg{
			Bin:      c.Media.FFmpegBin,
			ProbeBin: c.Media.FFprobeBin,
			Log:      logging.Component(logger, "media"),
		},
	}
}

// attempt is one way of obtaining segments. A failed attempt hands over to
// the next one only when fallThrough accepts its error.
type attempt struct {
	name        string
	run         func(ctx context.Context) (*Transcription, error)
	fallThrough func(error) bool
}

func always(error) bool { return true }

func paramsRejected(err error) bool { return errors.Is(err, clients.ErrParamsRejected) }

// Run transcribes audioPath, formats the result against the speaker
// registries and writes the transcript with its manifest.
func (p *Pipeline) Run(ctx context.Context, audioPath string) (*Report, error) {
	return p.run(ctx, audioPath, p.Output)
}

func (p *Pipeline) run(ctx context.Context, audioPath, output string) (*Report, error) {
	started := p.now()
	runID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"run_id": runID, "audio": audioPath})

	sum, err := fingerprint(audioPath)
	if err != nil {
		log.WithError(err).Warn("could not fingerprint audio")
	}

	tr, err := p.transcribe(ctx, audioPath, log)
	if err != nil {
		return nil, err
	}
	diarized := tr.Diarized && !p.NoDiarization
	log.WithFields(logrus.Fields{
		"source":   tr.Source,
		"segments": len(tr.Segments),
		"diarized": diarized,
	}).Info("transcription ready")

	reg := speakers.OpenRegistry(p.store, logging.Component(p.logger, "registry"))
	engine := &transcript.Engine{
		Identities: reg,
		Names:      speakers.OpenNames(p.store, logging.Component(p.logger, "names")),
		Log:        logging.Component(p.logger, "transcript"),
	}
	res := engine.Format(tr.engineInput(), diarized)

	txtPath, metaPath := outputPaths(p.cfg.Paths.Outputs, audioPath, output)
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	m := Manifest{
		RunID:       runID,
		AudioPath:   audioPath,
		AudioBLAKE3: sum,
		GeneratedAt: p.now().UTC(),
		Source:      tr.Source,
		Language:    tr.Language,
		Diarized:    diarized,
		Segments:    len(res.Processed),
		Groups:      len(res.Groups),
		Turns:       res.Turns,
		Minted:      reg.Minted(),
		Fallback:    res.Fallback,
		Transcript:  txtPath,
		Metadata:    metadata.Extract(base, res.Text, p.now()),
	}
	if err := persist(txtPath, metaPath, res.Text, m); err != nil {
		return nil, err
	}

	rep := &Report{
		Manifest:       m,
		TranscriptPath: txtPath,
		ManifestPath:   metaPath,
		Text:           res.Text,
		Duration:       p.now().Sub(started),
	}
	log.WithFields(logrus.Fields{
		"turns":    rep.Turns,
		"minted":   len(rep.Minted),
		"path":     txtPath,
		"duration": rep.Duration.Round(time.Millisecond),
	}).Info("transcript written")
	return rep, nil
}

func (p *Pipeline) transcribe(ctx context.Context, audioPath string, log *logrus.Entry) (*Transcription, error) {
	attempts := p.attempts(audioPath)
	var errs []error
	for i, a := range attempts {
		tr, err := a.run(ctx)
		if err == nil {
			return tr, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i+1 < len(attempts) && a.fallThrough(err) {
			log.WithError(err).WithField("attempt", a.name).Warn("transcription attempt failed, trying next")
			continue
		}
		break
	}
	return nil, fmt.Errorf("transcription failed: %w", errors.Join(errs...))
}

func (p *Pipeline) attempts(audioPath string) []attempt {
	t := p.cfg.Transcription

	if p.SegmentsFile != "" || t.Backend == SourceFile {
		path := p.SegmentsFile
		if path == "" {
			path = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".json"
		}
		return []attempt{{name: SourceFile, run: p.fromFile(path), fallThrough: always}}
	}

	if t.Backend == SourceWhisperX {
		return p.whisperxAttempts(audioPath)
	}

	var out []attempt
	for _, profile := range []clients.ASRProfile{clients.ProfileAdvanced, clients.ProfileBasic, clients.ProfileMinimal} {
		params := clients.ASRParams{
			Profile:   profile,
			Language:  t.Language,
			Model:     t.Model,
			BatchSize: t.BatchSize,
			Diarize:   !p.NoDiarization,
		}
		name := SourceHTTP + "/" + profile.String()
		out = append(out, attempt{
			name: name,
			run: func(ctx context.Context) (*Transcription, error) {
				resp, err := p.http.ASR(ctx, p.cfg.Services.ASR.URL, audioPath, params)
				if err != nil {
					return nil, err
				}
				return fromASR(name, resp), nil
			},
			fallThrough: paramsRejected,
		})
	}
	return out
}

func (p *Pipeline) whisperxAttempts(audioPath string) []attempt {
	t := p.cfg.Transcription
	base := clients.WhisperXOptions{
		Model:       t.Model,
		Language:    t.Language,
		Device:      t.Device,
		ComputeType: adjustComputeType(t.Device, t.ComputeType),
		BatchSize:   t.BatchSize,
	}
	if base.ComputeType != t.ComputeType {
		p.log.WithField("compute_type", base.ComputeType).Warn("float16 is not supported on cpu, using float32")
	}

	var opts []clients.WhisperXOptions
	if t.HFToken != "" && !p.NoDiarization {
		diarized := base
		diarized.Diarize = true
		diarized.HFToken = t.HFToken
		opts = append(opts, diarized)
	} else if !p.NoDiarization {
		p.log.Warn("HF_TOKEN not set, diarization skipped")
	}
	opts = append(opts, base)
	if t.FallbackModel != "" && t.FallbackModel != t.Model {
		fb := base
		fb.Model = t.FallbackModel
		fb.ComputeType = "float32"
		opts = append(opts, fb)
	}

	out := make([]attempt, 0, len(opts))
	for _, o := range opts {
		name := SourceWhisperX + "/" + o.Model
		if o.Diarize {
			name += "+diarize"
		}
		out = append(out, attempt{
			name: name,
			run: func(ctx context.Context) (*Transcription, error) {
				if t.Timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, t.Timeout)
					defer cancel()
				}
				resp, err := p.whisperx.Run(ctx, audioPath, o)
				if err != nil {
					return nil, err
				}
				return fromASR(name, resp), nil
			},
			fallThrough: always,
		})
	}
	return out
}

func (p *Pipeline) fromFile(path string) func(context.Context) (*Transcription, error) {
	return func(context.Context) (*Transcription, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening segments: %w", err)
		}
		defer f.Close()
		resp, err := clients.DecodeWhisperX(f)
		if err != nil {
			return nil, err
		}
		return fromASR(SourceFile, resp), nil
	}
}
