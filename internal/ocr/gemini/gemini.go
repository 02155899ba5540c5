package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"diary-ocr/internal/ocr"
	"diary-ocr/internal/util"
)

type Engine struct {
	APIKey     string
	Model      string
	EmbedModel string
}

func New(apiKey, model, embedModel string) *Engine {
	return &Engine{
		APIKey:     strings.TrimSpace(apiKey),
		Model:      strings.TrimSpace(model),
		EmbedModel: strings.TrimSpace(embedModel),
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Transcribe(ctx context.Context, img []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ocr.ErrRecognition, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	parts := []genai.Part{
		genai.Text(ocr.TranscribePrompt),
		&genai.Blob{MIMEType: mime, Data: img},
	}
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini transcribe: %v", ocr.ErrRecognition, err)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("%w: gemini transcribe: empty response", ocr.ErrRecognition)
	}
	return util.StripCodeFences(txt), nil
}

func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	defer cl.Close()

	em := cl.EmbeddingModel(e.EmbedModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty response")
	}
	return res.Embedding.Values, nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func ptrFloat32(f float32) *float32 { return &f }
