package provider

import (
	"context"
	"io"
	"iter"
	"net/http"

	"modelmind/internal/models"

	"google.golang.org/genai"
)

// GeminiAdapter uses the native streaming call of the Gemini SDK.
type GeminiAdapter struct {
	spec       models.ProviderSpec
	httpClient *http.Client
}

// NewGeminiAdapter creates a Gemini adapter for spec.
func NewGeminiAdapter(spec models.ProviderSpec, httpClient *http.Client) *GeminiAdapter {
	return &GeminiAdapter{spec: spec, httpClient: httpClient}
}

func (a *GeminiAdapter) Name() string { return a.spec.Name }
func (a *GeminiAdapter) Kind() string { return a.spec.Kind }

func (a *GeminiAdapter) Stream(ctx context.Context, req Request) (Stream, error) {
	cfg := &genai.ClientConfig{
		APIKey:     a.spec.Credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
	}
	if a.spec.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: withTrailingSlash(a.spec.BaseURL)}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(clampTemperature(req.Temperature, 0, 2))),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	seq := client.Models.GenerateContentStream(ctx, req.Model, genai.Text(req.Prompt), genCfg)
	next, stop := iter.Pull2(seq)
	return &geminiStream{next: next, stop: stop}, nil
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *geminiStream) Recv() (string, error) {
	for {
		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() error {
	s.stop()
	return nil
}
