package clients

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mpgigat/actas-repfora/logging"
)

type (
	whisperxResult struct {
		Language string            `json:"language"`
		Segments []whisperxSegment `json:"segments"`
	}

	whisperxSegment struct {
		Text    string          `json:"text"`
		Start   decimal.Decimal `json:"start"`
		End     decimal.Decimal `json:"end"`
		Speaker string          `json:"speaker"`
		Words   []whisperxWord  `json:"words"`
	}

	whisperxWord struct {
		Text    string           `json:"word"`
		Start   *decimal.Decimal `json:"start"`
		Speaker string           `json:"speaker"`
	}
)

// WhisperX runs the whisperx command line tool.
type WhisperX struct {
	Bin string
	Log *logrus.Entry
}

type WhisperXOptions struct {
	Model       string
	Language    string
	Device      string
	ComputeType string
	BatchSize   int
	Diarize     bool
	HFToken     string
	// OutputDir receives <audio base>.json; defaults to a temp dir.
	OutputDir string
}

func (o WhisperXOptions) args(audioPath, outDir string) []string {
	args := []string{audioPath, "--output_format", "json", "--output_dir", outDir}
	if o.Model != "" {
		args = append(args, "--model", o.Model)
	}
	if o.Language != "" {
		args = append(args, "--language", o.Language)
	}
	if o.Device != "" {
		args = append(args, "--device", o.Device)
	}
	if o.ComputeType != "" {
		args = append(args, "--compute_type", o.ComputeType)
	}
	if o.BatchSize > 0 {
		args = append(args, "--batch_size", strconv.Itoa(o.BatchSize))
	}
	if o.Diarize {
		args = append(args, "--diarize", "--hf_token", o.HFToken)
	}
	return args
}

func (w WhisperX) Run(ctx context.Context, audioPath string, o WhisperXOptions) (*ASRResp, error) {
	log := logging.OrNop(w.Log)
	bin := w.Bin
	if bin == "" {
		bin = "whisperx"
	}

	outDir := o.OutputDir
	if outDir == "" {
		dir, err := os.MkdirTemp("", "whisperx-")
		if err != nil {
			return nil, fmt.Errorf("whisperx: temp dir: %w", err)
		}
		defer os.RemoveAll(dir)
		outDir = dir
	}

	cmd := exec.CommandContext(ctx, bin, o.args(audioPath, outDir)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("whisperx: stderr pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("whisperx: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting whisperx: %w", err)
	}

	done := make(chan struct{}, 2)
	go pump(stderr, log.WithField("stream", "stderr"), done)
	go pump(stdout, log.WithField("stream", "stdout"), done)
	<-done
	<-done

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("transcribing with whisperx: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	f, err := os.Open(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("opening whisperx transcribe result: %w", err)
	}
	defer f.Close()

	res, err := DecodeWhisperX(f)
	if err != nil {
		return nil, err
	}
	res.Diarized = res.Diarized || o.Diarize
	return res, nil
}

const maxLogLine = 1 << 20

// pump logs r line by line and then drains it, so the child never blocks on
// a full pipe even after a line longer than maxLogLine.
func pump(r io.Reader, log *logrus.Entry, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			log.Debug(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Debug("stopped logging output")
	}
	_, _ = io.Copy(io.Discard, r)
}

// scanProgressLines splits on '\n' and on the '\r' progress bars redraw with.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// DecodeWhisperX reads a whisperx JSON result. A segment without its own
// speaker takes the most common speaker among its words. Diarized is set when
// any segment ends up with a speaker.
func DecodeWhisperX(r io.Reader) (*ASRResp, error) {
	var tr whisperxResult
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decoding whisperx json result: %w", err)
	}

	res := &ASRResp{Language: tr.Language, Segments: make([]TransSeg, len(tr.Segments))}
	for n, s := range tr.Segments {
		speaker := s.Speaker
		if speaker == "" {
			speaker = dominantWordSpeaker(s.Words)
		}
		if speaker != "" {
			res.Diarized = true
		}
		res.Segments[n] = TransSeg{
			Start:   s.Start.InexactFloat64(),
			End:     s.End.InexactFloat64(),
			Text:    s.Text,
			Speaker: speaker,
		}
	}
	return res, nil
}

func dominantWordSpeaker(words []whisperxWord) string {
	counts := map[string]int{}
	best, bestCount := "", 0
	for _, w := range words {
		if w.Speaker == "" {
			continue
		}
		counts[w.Speaker]++
	}
	for _, w := range words {
		if c := counts[w.Speaker]; w.Speaker != "" && c > bestCount {
			best, bestCount = w.Speaker, c
		}
	}
	return best
}
