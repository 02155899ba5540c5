package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-ocr/internal/ocr"
)

// tiny JPEG header, enough for payload checks
var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	e := New("test-key", "gpt-4.1-mini", "text-embedding-3-small")
	e.BaseURL = srv.URL
	return e
}

func TestTranscribe(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Dear diary, today it rained."}}]}`))
	})

	text, err := e.Transcribe(context.Background(), fakeJPEG, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Dear diary, today it rained.", text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4.1-mini", gotBody["model"])

	// The request carries the fixed prompt and the image as a data URL.
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	content := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	textPart := content[0].(map[string]any)
	assert.Equal(t, ocr.TranscribePrompt, textPart["text"])
	imgPart := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.True(t, strings.HasPrefix(imgPart["url"].(string), "data:image/jpeg;base64,"))
}

func TestTranscribe_StripsCodeFences(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```\\nsome text\\n```" + `"}}]}`))
	})
	text, err := e.Transcribe(context.Background(), fakeJPEG, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "some text", text)
}

func TestTranscribe_EmptyKey(t *testing.T) {
	called := false
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	e.APIKey = ""

	_, err := e.Transcribe(context.Background(), fakeJPEG, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.False(t, called, "no request may be sent without a credential")
}

func TestTranscribe_NonSuccessStatus(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := e.Transcribe(context.Background(), fakeJPEG, "image/jpeg")
	require.ErrorIs(t, err, ocr.ErrRecognition)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestTranscribe_EmptyChoices(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := e.Transcribe(context.Background(), fakeJPEG, "image/jpeg")
	require.ErrorIs(t, err, ocr.ErrRecognition)
	assert.Contains(t, err.Error(), "empty response")
}

func TestEmbed(t *testing.T) {
	var gotBody map[string]any
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.25,-0.5,1]}]}`))
	})

	vec, err := e.Embed(context.Background(), "today it rained")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)
	assert.Equal(t, "text-embedding-3-small", gotBody["model"])
	assert.Equal(t, "today it rained", gotBody["input"])
}

func TestEmbed_NonSuccessStatus(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := e.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
