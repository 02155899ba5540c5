package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OCR_ENGINE", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_EMBED_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_EMBED_MODEL",
		"OCR_DPI", "OCR_OUTPUT_DIR", "TELEGRAM_BOT_TOKEN",
		"DIARY_USER_ID", "DIARY_ID",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "openai", cfg.Engine)
	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAIModel)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAIEmbedModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "text-embedding-004", cfg.GeminiEmbedModel)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_ENGINE", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OCR_DPI", "150")
	t.Setenv("OCR_OUTPUT_DIR", "out")

	cfg := Load()

	assert.Equal(t, "gemini", cfg.Engine)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, 150, cfg.DPI)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_BadDPIIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_DPI", "not-a-number")
	assert.Equal(t, 300, Load().DPI)

	t.Setenv("OCR_DPI", "0")
	assert.Equal(t, 300, Load().DPI)
}
