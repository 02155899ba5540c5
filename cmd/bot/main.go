package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"diary-ocr/internal/config"
	"diary-ocr/internal/ocr"
	"diary-ocr/internal/ocr/gemini"
	"diary-ocr/internal/ocr/openai"
	"diary-ocr/internal/util"
)

// Telegram message hard limit is 4096; leave headroom for the page header.
const replyChunk = 4000

func main() {
	cfg := config.Load()
	token := config.MustEnv("TELEGRAM_BOT_TOKEN")

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	engines := map[string]ocr.Engine{
		"openai": openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbedModel),
		"gemini": gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel),
	}
	def, ok := engines[cfg.Engine]
	if !ok {
		log.Fatalf("unknown OCR_ENGINE %q (want openai or gemini)", cfg.Engine)
	}
	manager := ocr.NewManager(def)

	h := &handler{bot: bot, manager: manager, engines: engines,
		httpc: &http.Client{Timeout: 60 * time.Second}}

	log.Printf("bot started as @%s (default engine=%s)", bot.Self.UserName, def.Name())
	runPolling(context.Background(), bot, h.handleUpdate)
}

type handler struct {
	bot     *tgbotapi.BotAPI
	manager *ocr.Manager
	engines map[string]ocr.Engine
	httpc   *http.Client
}

func (h *handler) handleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		h.handleCommand(msg)
	case len(msg.Photo) > 0:
		h.handlePhoto(msg)
	default:
		h.reply(cid, "Send me a photo of a diary page and I will transcribe it. /engine switches the model.")
	}
}

func (h *handler) handleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		h.reply(cid, "Send a photo of a handwritten diary page to get its transcription.")
	case "engine":
		name := strings.TrimSpace(msg.CommandArguments())
		if name == "" {
			h.reply(cid, "Current engine: "+h.manager.Get(cid).Name()+". Use /engine openai or /engine gemini.")
			return
		}
		eng, ok := h.engines[name]
		if !ok {
			h.reply(cid, "Unknown engine "+name+". Use /engine openai or /engine gemini.")
			return
		}
		h.manager.Set(cid, eng)
		h.reply(cid, "Engine switched to "+eng.Name()+" ("+eng.GetModel()+").")
	default:
		h.reply(cid, "Unknown command.")
	}
}

func (h *handler) handlePhoto(msg *tgbotapi.Message) {
	cid := msg.Chat.ID

	// Largest photo size is last.
	ph := msg.Photo[len(msg.Photo)-1]
	file, err := h.bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		h.sendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", h.bot.Token, file.FilePath)
	img, err := h.download(url)
	if err != nil {
		h.sendError(cid, err)
		return
	}

	eng := h.manager.Get(cid)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := eng.Transcribe(ctx, img, util.SniffMimeHTTP(img))
	if err != nil {
		h.sendError(cid, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		h.reply(cid, "No text recognized on this page.")
		return
	}
	for _, chunk := range splitChunks(text, replyChunk) {
		h.reply(cid, chunk)
	}
}

func (h *handler) download(url string) ([]byte, error) {
	resp, err := h.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (h *handler) reply(cid int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(cid, text)); err != nil {
		log.Printf("send to %d: %v", cid, err)
	}
}

func (h *handler) sendError(cid int64, err error) {
	log.Printf("chat %d: %v", cid, err)
	h.reply(cid, "Error: "+err.Error())
}

func splitChunks(s string, size int) []string {
	var out []string
	for len(s) > size {
		cut := strings.LastIndexByte(s[:size], '\n')
		if cut <= 0 {
			cut = size
		}
		out = append(out, s[:cut])
		s = strings.TrimLeft(s[cut:], "\n")
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			log.Printf("polling error: %v; retry in %v", err, d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}
