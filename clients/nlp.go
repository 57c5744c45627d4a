package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- NLP (/entities) ---
type EntitiesReq struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}
type EntitiesResp struct {
	Entities []Entity `json:"entities"`
}

func (h *HTTP) Entities(ctx context.Context, url, text, language string) (*EntitiesResp, error) {
	payload, err := json.Marshal(EntitiesReq{Text: text, Language: language})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/entities", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nlp %s: %s", resp.Status, string(body))
	}

	var out EntitiesResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("nlp decode: %w", err)
	}
	return &out, nil
}
