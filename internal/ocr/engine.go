package ocr

import (
	"context"
	"errors"
	"sync"
)

// ErrRecognition marks transport failures, non-success statuses and
// malformed responses from the remote model.
var ErrRecognition = errors.New("recognition failed")

// Engine is one remote vision model able to transcribe a page image.
type Engine interface {
	Name() string
	GetModel() string
	Transcribe(ctx context.Context, img []byte, mime string) (string, error)
}

// Embedder produces a vector embedding for a block of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Manager holds the per-chat engine choice for the bot; unknown chats get
// the default engine.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
