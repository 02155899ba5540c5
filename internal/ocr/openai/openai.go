package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"diary-ocr/internal/ocr"
	"diary-ocr/internal/util"
)

const defaultBaseURL = "https://api.openai.com"

type Engine struct {
	APIKey     string
	Model      string
	EmbedModel string
	BaseURL    string // overridable in tests
	httpc      *http.Client
}

func New(key, model, embedModel string) *Engine {
	return &Engine{
		APIKey:     key,
		Model:      model,
		EmbedModel: embedModel,
		BaseURL:    defaultBaseURL,
		httpc:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string { return "openai" }

func (e *Engine) GetModel() string { return e.Model }

// Transcribe sends one page image with the fixed transcription prompt and
// returns the model's plain-text output.
func (e *Engine) Transcribe(ctx context.Context, img []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is empty")
	}
	b64 := base64.StdEncoding.EncodeToString(img)
	dataURL := util.MakeDataURL(mime, b64)

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": ocr.TranscribePrompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
		"temperature": 0,
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai transcribe: %v", ocr.ErrRecognition, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: openai transcribe %d: %s", ocr.ErrRecognition, resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%w: openai transcribe: %v", ocr.ErrRecognition, err)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("%w: openai transcribe: empty response", ocr.ErrRecognition)
	}
	return util.StripCodeFences(raw.Choices[0].Message.Content), nil
}

// Embed returns the embedding vector for text via the embeddings endpoint.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is empty")
	}
	body := map[string]any{
		"model": e.EmbedModel,
		"input": text,
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/v1/embeddings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai embed %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(raw.Data) == 0 {
		return nil, fmt.Errorf("openai embed: empty response")
	}
	return raw.Data[0].Embedding, nil
}
