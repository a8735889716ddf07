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

func TestGroqAdapter_Stream(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range []string{"Lla", "ma"} {
			fmt.Fprintf(w, "data: %s\n\n", chatChunk(f))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	a := NewGroqAdapter(models.ProviderSpec{
		Name:       "Llama 3 70B (Groq)",
		Kind:       models.KindGroq,
		BaseURL:    srv.URL + "/",
		Credential: "test-key",
	}, srv.Client())

	text, err := Collect(context.Background(), a, Request{Model: "llama3-70b-8192", Prompt: "hi", Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "Llama", text)

	assert.Equal(t, "llama3-70b-8192", body["model"])
	assert.Contains(t, body, "temperature")
}

func TestGroqAdapter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	a := NewGroqAdapter(models.ProviderSpec{Kind: models.KindGroq, BaseURL: srv.URL, Credential: "bad"}, srv.Client())
	_, err := a.Stream(context.Background(), Request{Model: "m", Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
