package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Engine string // "openai" | "gemini"

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIEmbedModel string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiEmbedModel string

	DPI       int
	OutputDir string

	TelegramBotToken string

	// Row ownership for ingested pages.
	UserID  string
	DiaryID string
}

// MustEnv returns the value of k or terminates the process.
// Used by the commands for credentials they cannot run without.
func MustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Engine: getEnv("OCR_ENGINE", "openai"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		DPI:       getEnvInt("OCR_DPI", 300),
		OutputDir: getEnv("OCR_OUTPUT_DIR", "output"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		UserID:  os.Getenv("DIARY_USER_ID"),
		DiaryID: os.Getenv("DIARY_ID"),
	}
}
