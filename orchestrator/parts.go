package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/combine"
	"github.com/mpgigat/actas-repfora/metadata"
)

// Splitter cuts one recording into numbered part files, returned in order.
type Splitter interface {
	Split(ctx context.Context, audioPath, outDir string, parts int) ([]string, error)
}

const combinedSuffix = "_completa" + transcriptSuffix

// RunParts splits audioPath, runs every part through the pipeline and joins
// the part transcripts. A failed part is logged and left out of the join;
// the run fails only when no part succeeds.
func (p *Pipeline) RunParts(ctx context.Context, audioPath string, parts int) (*PartsReport, error) {
	if p.SegmentsFile != "" {
		return nil, errors.New("a segments file cannot be combined with parts")
	}
	if p.Splitter == nil {
		return nil, errors.New("no audio splitter configured")
	}

	started := p.now()
	runID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"run_id": runID, "audio": audioPath, "parts": parts})

	sum, err := fingerprint(audioPath)
	if err != nil {
		log.WithError(err).Warn("could not fingerprint audio")
	}

	outDir := p.cfg.Media.Dir
	if outDir == "" {
		outDir = filepath.Dir(audioPath)
	}
	paths, err := p.Splitter.Split(ctx, audioPath, outDir, parts)
	if err != nil {
		return nil, fmt.Errorf("splitting audio: %w", err)
	}

	rep := &PartsReport{}
	var (
		joined []combine.Part
		errs   []error
	)
	for i, path := range paths {
		n := i + 1
		r, err := p.run(ctx, path, "")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("part", n).Warn("part failed, continuing")
			rep.Failed = append(rep.Failed, n)
			errs = append(errs, fmt.Errorf("part %d: %w", n, err))
			continue
		}
		rep.Reports = append(rep.Reports, r)
		rep.Parts = append(rep.Parts, PartEntry{
			Number:     n,
			Audio:      path,
			Transcript: r.TranscriptPath,
			Manifest:   r.ManifestPath,
			Turns:      r.Turns,
		})
		rep.Minted = append(rep.Minted, r.Minted...)
		joined = append(joined, combine.Part{Number: n, Path: r.TranscriptPath})
	}
	if len(joined) == 0 {
		return nil, fmt.Errorf("no part was transcribed: %w", errors.Join(errs...))
	}

	combined, err := combine.Join(joined)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := p.Output
	if txtPath == "" {
		txtPath = filepath.Join(filepath.Dir(rep.Reports[0].TranscriptPath), base+combinedSuffix)
	}
	_, metaPath := outputPaths("", audioPath, txtPath)

	rep.RunID = runID
	rep.AudioPath = audioPath
	rep.AudioBLAKE3 = sum
	rep.GeneratedAt = p.now().UTC()
	rep.Speakers = combined.Speakers
	rep.Transcript = txtPath
	rep.Metadata = metadata.Extract(base, combined.Text, p.now())
	if err := persist(txtPath, metaPath, combined.Text, rep.PartsManifest); err != nil {
		return nil, err
	}

	rep.ManifestPath = metaPath
	rep.Text = combined.Text
	rep.Duration = p.now().Sub(started)
	log.WithFields(logrus.Fields{
		"done":     len(rep.Parts),
		"failed":   len(rep.Failed),
		"path":     txtPath,
		"duration": rep.Duration.Round(time.Millisecond),
	}).Info("combined transcript written")
	return rep, nil
}
