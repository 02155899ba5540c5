package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"diary-ocr/internal/config"
	"diary-ocr/internal/ocr"
	"diary-ocr/internal/ocr/gemini"
	"diary-ocr/internal/ocr/openai"
	"diary-ocr/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: ocr input/YourFile.pdf [more files...]")
		fmt.Fprintln(os.Stderr, "       ocr input/YourImage.jpg")
		fmt.Fprintln(os.Stderr, "       ocr input/YourImage.HEIC")
		os.Exit(1)
	}

	cfg := config.Load()
	eng := engineFromConfig(cfg)

	runner := pipeline.New(eng, cfg.OutputDir, cfg.DPI)
	ctx := context.Background()

	for _, path := range os.Args[1:] {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("file not found: %s", path)
		}
		log.Printf("running OCR on %s (engine=%s model=%s)", path, eng.Name(), eng.GetModel())
		out, err := runner.Run(ctx, path)
		if err != nil {
			log.Fatalf("ocr %s: %v", path, err)
		}
		log.Printf("output saved to %s", out)
	}
}

// engineFromConfig picks the recognition engine and fails fast on a missing
// credential, before any file is touched.
func engineFromConfig(cfg *config.Config) ocr.Engine {
	switch cfg.Engine {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("missing required env OPENAI_API_KEY")
		}
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbedModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatalf("missing required env GEMINI_API_KEY")
		}
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel)
	default:
		log.Fatalf("unknown OCR_ENGINE %q (want openai or gemini)", cfg.Engine)
		return nil
	}
}
