package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"diary-ocr/internal/config"
	"diary-ocr/internal/ocr"
	"diary-ocr/internal/ocr/gemini"
	"diary-ocr/internal/ocr/openai"
	"diary-ocr/internal/store"
)

const snippetLen = 300

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, `Usage: search "your search query" [match_count]`)
		os.Exit(1)
	}
	query := os.Args[1]
	count := 5
	if len(os.Args) >= 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			log.Fatalf("bad match_count %q", os.Args[2])
		}
		count = n
	}

	cfg := config.Load()
	emb := embedderFromConfig(cfg)

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
	vec, err := emb.Embed(ctx, query)
	if err != nil {
		log.Fatalf("embed query: %v", err)
	}
	results, err := repo.Match(ctx, vec, count)
	if err != nil {
		log.Fatalf("match: %v", err)
	}

	fmt.Printf("\nQuery: %s\n\n", query)
	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}
	for i, m := range results {
		date := "-"
		if m.EntryDate != nil {
			date = m.EntryDate.Format("2006-01-02")
		}
		pageNo := "-"
		if m.PageNumber != nil {
			pageNo = strconv.Itoa(*m.PageNumber)
		}
		snippet := strings.TrimSpace(m.Text)
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen] + "..."
		}
		fmt.Printf("Result %d:\n", i+1)
		fmt.Printf("  Similarity: %.3f\n", m.Similarity)
		fmt.Printf("  Date: %s | Page: %s\n", date, pageNo)
		fmt.Printf("  Snippet:\n    %s\n", snippet)
		fmt.Println(strings.Repeat("-", 60))
	}
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
