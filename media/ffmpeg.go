// Package media prepares long recordings for transcription with ffmpeg:
// denoise, resample to 16 kHz mono and cut into numbered parts.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
)

// Filters is the cleanup chain applied before splitting.
var Filters = []string{
	"highpass=f=80",
	"lowpass=f=8000",
	"afftdn=nr=20:nf=-40",
	"dynaudnorm=p=0.9:s=5",
}

// FFmpeg runs the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	Bin      string
	ProbeBin string
	Log      *logrus.Entry
}

func (f FFmpeg) bin() string {
	if f.Bin == "" {
		return "ffmpeg"
	}
	return f.Bin
}

func (f FFmpeg) probeBin() string {
	if f.ProbeBin == "" {
		return "ffprobe"
	}
	return f.ProbeBin
}

func (f FFmpeg) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	logging.OrNop(f.Log).WithField("args", strings.Join(args, " ")).Debug(filepath.Base(bin))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		tail := stderr.Bytes()
		if len(tail) > 500 {
			tail = tail[len(tail)-500:]
		}
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(bin), err, bytes.TrimSpace(tail))
	}
	return stdout.Bytes(), nil
}

// Duration reports the length of the media at path in seconds.
func (f FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	out, err := f.run(ctx, f.probeBin(), "-v", "quiet", "-show_entries", "format=duration", "-of", "csv=p=0", path)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration of %s: %w", path, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s has no duration", path)
	}
	return d, nil
}

// Clean writes a denoised 16 kHz mono copy of in to out.
func (f FFmpeg) Clean(ctx context.Context, in, out string) error {
	_, err := f.run(ctx, f.bin(),
		"-y", "-i", in,
		"-af", strings.Join(Filters, ","),
		"-ar", "16000", "-ac", "1",
		out,
	)
	return err
}

// Cut copies length seconds of in starting at start into out.
func (f FFmpeg) Cut(ctx context.Context, in, out string, start, length float64) error {
	_, err := f.run(ctx, f.bin(),
		"-y", "-i", in,
		"-ss", seconds(start), "-t", seconds(length),
		"-c", "copy",
		out,
	)
	return err
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PartPath is <dir>/<base>_parte_<n>.wav.
func PartPath(dir, base string, n int) string {
	return filepath.Join(dir, base+"_parte_"+strconv.Itoa(n)+".wav")
}

// Split cleans audioPath into outDir and cuts the clean copy into parts of
// equal length. It returns the part paths in order.
func (f FFmpeg) Split(ctx context.Context, audioPath, outDir string, parts int) ([]string, error) {
	if parts < 1 {
		return nil, fmt.Errorf("split: parts must be at least 1, got %d", parts)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("split: creating %s: %w", outDir, err)
	}

	total, err := f.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	clean := filepath.Join(outDir, base+"_limpio.wav")
	if err := f.Clean(ctx, audioPath, clean); err != nil {
		return nil, fmt.Errorf("cleaning audio: %w", err)
	}

	log := logging.OrNop(f.Log)
	length := total / float64(parts)
	out := make([]string, 0, parts)
	for i := 0; i < parts; i++ {
		p := PartPath(outDir, base, i+1)
		if err := f.Cut(ctx, clean, p, float64(i)*length, length); err != nil {
			return nil, fmt.Errorf("cutting part %d: %w", i+1, err)
		}
		log.WithFields(logrus.Fields{"part": i + 1, "path": p}).Info("audio part written")
		out = append(out, p)
	}
	return out, nil
}
