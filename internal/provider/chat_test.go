package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatChunk(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`, content)
}

// newChatServer serves an OpenAI-style SSE stream and records the last request body.
func newChatServer(t *testing.T, fragments []string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			_ = json.Unmarshal(body, got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range fragments {
			fmt.Fprintf(w, "data: %s\n\n", chatChunk(f))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatAdapter_StreamConcatenation(t *testing.T) {
	var body map[string]any
	srv := newChatServer(t, []string{"Hello", "", " world"}, &body)

	a := NewChatAdapter(models.ProviderSpec{
		Name:       "OpenAI",
		Kind:       models.KindOpenAI,
		BaseURL:    srv.URL,
		Credential: "test-key",
	}, srv.Client())

	text, err := Collect(context.Background(), a, Request{Model: "gpt-4o", Prompt: "hi", Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
}

func TestChatAdapter_ClampsTemperature(t *testing.T) {
	var body map[string]any
	srv := newChatServer(t, []string{"ok"}, &body)

	a := NewChatAdapter(models.ProviderSpec{Kind: models.KindOpenAI, BaseURL: srv.URL, Credential: "test-key"}, srv.Client())
	_, err := Collect(context.Background(), a, Request{Model: "m", Prompt: "hi", Temperature: 5})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, body["temperature"], 1e-9)
}

func TestChatAdapter_SystemMessage(t *testing.T) {
	var body map[string]any
	srv := newChatServer(t, []string{"ok"}, &body)

	a := NewChatAdapter(models.ProviderSpec{Kind: models.KindOpenAI, BaseURL: srv.URL, Credential: "test-key"}, srv.Client())
	_, err := Collect(context.Background(), a, Request{Model: "m", Prompt: "hi", System: "be brief"})
	require.NoError(t, err)

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestChatAdapter_DeepSeekThroughFactory(t *testing.T) {
	srv := newChatServer(t, []string{"Deep", "Seek"}, nil)

	a, err := New(models.ProviderSpec{
		Name:       "DeepSeek Chat",
		Kind:       models.KindDeepSeek,
		BaseURL:    srv.URL,
		Credential: "test-key",
	}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	text, err := Collect(context.Background(), a, Request{Model: "deepseek-chat", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "DeepSeek", text)
}

func TestChatAdapter_TransportErrorBeforeFirstFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	a := NewChatAdapter(models.ProviderSpec{Kind: models.KindOpenAI, BaseURL: srv.URL, Credential: "test-key"}, srv.Client())
	stream, err := a.Stream(context.Background(), Request{Model: "m", Prompt: "hi"})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}
