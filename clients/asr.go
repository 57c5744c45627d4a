package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrParamsRejected means the sidecar refused the decoding parameters; a
// simpler profile may still succeed.
var ErrParamsRejected = errors.New("asr: parameters rejected")

type TransSeg struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
	Diarized bool       `json:"diarized"`
}

// ASRProfile selects how many decoding parameters are sent.
type ASRProfile int

const (
	ProfileAdvanced ASRProfile = iota
	ProfileBasic
	ProfileMinimal
)

func (p ASRProfile) String() string {
	switch p {
	case ProfileAdvanced:
		return "advanced"
	case ProfileBasic:
		return "basic"
	default:
		return "minimal"
	}
}

type ASRParams struct {
	Profile   ASRProfile
	Language  string
	Model     string
	BatchSize int
	Diarize   bool
}

func (p ASRParams) fields() map[string]string {
	f := map[string]string{
		"language": p.Language,
		"diarize":  strconv.FormatBool(p.Diarize),
	}
	if p.Model != "" {
		f["model"] = p.Model
	}
	if p.Profile <= ProfileBasic && p.BatchSize > 0 {
		f["batch_size"] = strconv.Itoa(p.BatchSize)
	}
	if p.Profile == ProfileAdvanced {
		f["condition_on_previous_text"] = "false"
		f["no_speech_threshold"] = "0.6"
		f["logprob_threshold"] = "-1.0"
		f["compression_ratio_threshold"] = "2.4"
		f["temperature"] = "0.0"
	}
	return f
}

// --- ASR (/transcribe) ---
func (h *HTTP) ASR(ctx context.Context, url, wavPath string, p ASRParams) (*ASRResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	fields := p.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w (%s profile): %s", ErrParamsRejected, p.Profile, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out ASRResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	return &out, nil
}
