package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"diary-ocr/internal/config"
	"diary-ocr/internal/ingest"
	"diary-ocr/internal/ocr"
	"diary-ocr/internal/ocr/gemini"
	"diary-ocr/internal/ocr/openai"
	"diary-ocr/internal/store"
)

func main() {
	var (
		all      = flag.Bool("all", false, "ingest every .txt file in the output directory")
		backfill = flag.Bool("backfill", false, "compute embeddings for pages missing one after ingesting")
		limit    = flag.Int("limit", 50, "max pages per backfill batch")
		dateStr  = flag.String("date", "", "entry date YYYY-MM-DD (default: inferred from text)")
		pageNum  = flag.Int("page", 0, "page number (default: inferred from text)")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ingest [flags] output/YourFile_openai.txt")
		fmt.Fprintln(os.Stderr, "       ingest -all [-backfill]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()
	if cfg.UserID == "" || cfg.DiaryID == "" {
		log.Fatalf("missing required env DIARY_USER_ID or DIARY_ID")
	}

	dsn := store.ResolveDSN()
	if dsn == "" {
		log.Fatal("database DSN is empty: set DATABASE_URL or POSTGRES_* env vars")
	}
	db, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	repo := store.NewPageRepo(db)

	ctx := context.Background()

	switch {
	case *all:
		if err := ingestAll(ctx, repo, cfg); err != nil {
			log.Fatal(err)
		}
	case flag.NArg() == 1:
		var entryDate *time.Time
		if *dateStr != "" {
			d, err := time.Parse("2006-01-02", *dateStr)
			if err != nil {
				log.Fatalf("bad -date %q: %v", *dateStr, err)
			}
			entryDate = &d
		}
		var page *int
		if *pageNum > 0 {
			page = pageNum
		}
		if err := ingest.File(ctx, repo, cfg.UserID, cfg.DiaryID, flag.Arg(0), entryDate, page); err != nil {
			log.Fatal(err)
		}
		log.Printf("ingested %s", flag.Arg(0))
	default:
		flag.Usage()
		os.Exit(1)
	}

	if *backfill {
		if err := backfillEmbeddings(ctx, repo, cfg, *limit); err != nil {
			log.Fatal(err)
		}
	}
}

func ingestAll(ctx context.Context, repo *store.PageRepo, cfg *config.Config) error {
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, filepath.Join(cfg.OutputDir, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		log.Printf("no .txt files found in %s", cfg.OutputDir)
		return nil
	}

	var ok, failed int
	for i, f := range files {
		log.Printf("[%d/%d] ingesting %s", i+1, len(files), filepath.Base(f))
		if err := ingest.File(ctx, repo, cfg.UserID, cfg.DiaryID, f, nil, nil); err != nil {
			log.Printf("ingest %s: %v", filepath.Base(f), err)
			failed++
			continue
		}
		ok++
	}
	log.Printf("batch ingest done: %d ok, %d failed", ok, failed)
	return nil
}

func backfillEmbeddings(ctx context.Context, repo *store.PageRepo, cfg *config.Config, limit int) error {
	emb := embedderFromConfig(cfg)

	pages, err := repo.WithoutEmbeddings(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch pages without embeddings: %w", err)
	}
	if len(pages) == 0 {
		log.Printf("no pages without embeddings, all caught up")
		return nil
	}
	log.Printf("embedding %d pages", len(pages))

	for _, p := range pages {
		text := p.CleanText
		if strings.TrimSpace(text) == "" {
			text = p.RawText
		}
		if strings.TrimSpace(text) == "" {
			log.Printf("page %s: empty text, skipping", p.ID)
			continue
		}
		vec, err := emb.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed page %s: %w", p.ID, err)
		}
		if err := repo.UpdateEmbedding(ctx, p.ID, vec); err != nil {
			return fmt.Errorf("update embedding %s: %w", p.ID, err)
		}
		log.Printf("page %s: embedded (%d dims)", p.ID, len(vec))
	}
	return nil
}

func embedderFromConfig(cfg *config.Config) ocr.Embedder {
	switch cfg.Engine {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatalf("missing required env GEMINI_API_KEY")
		}
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel)
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("missing required env OPENAI_API_KEY")
		}
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbedModel)
	}
}
