// Package provider adapts vendor LLM APIs to a single pull-based text stream.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"modelmind/internal/models"
)

// Request is the input of a single generation call.
type Request struct {
	Model  string
	Prompt string
	// System is an optional instruction sent ahead of the prompt.
	System      string
	Temperature float64
}

// Stream yields non-empty text fragments until io.EOF.
//
// A stream is forward-only and cannot be restarted. Any other error terminates
// it; fragments already returned stay valid.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Adapter normalizes one vendor API to Stream.
type Adapter interface {
	Name() string
	Kind() string
	// Stream issues exactly one request. It never retries.
	Stream(ctx context.Context, req Request) (Stream, error)
}

// ErrUnknownKind is returned by New for an unsupported provider kind.
var ErrUnknownKind = errors.New("provider: unknown kind")

// Option configures adapters built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient sets the HTTP client used by every adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// New builds the adapter matching spec.Kind.
func New(spec models.ProviderSpec, opts ...Option) (Adapter, error) {
	o := options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}

	switch spec.Kind {
	case models.KindOpenAI:
		return NewChatAdapter(spec, o.httpClient), nil
	case models.KindDeepSeek:
		if spec.BaseURL == "" {
			spec.BaseURL = DeepSeekBaseURL
		}
		return NewChatAdapter(spec, o.httpClient), nil
	case models.KindGroq:
		return NewGroqAdapter(spec, o.httpClient), nil
	case models.KindGemini:
		return NewGeminiAdapter(spec, o.httpClient), nil
	case models.KindHuggingFace:
		return NewHuggingFaceAdapter(spec, o.httpClient), nil
	}
	return nil, fmt.Errorf("%w %q for provider %s", ErrUnknownKind, spec.Kind, spec.Name)
}

// Collect drains a single call into one string.
func Collect(ctx context.Context, adapter Adapter, req Request) (string, error) {
	stream, err := adapter.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		text, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return b.String(), err
		}
		b.WriteString(text)
	}
}

// clampTemperature limits t to the range a backend accepts.
func clampTemperature(t, lo, hi float64) float64 {
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
