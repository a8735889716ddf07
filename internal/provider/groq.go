package provider

import (
	"context"
	"math"
	"net/http"
	"strings"

	"modelmind/internal/models"

	goopenai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is the OpenAI-compatible Groq endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter streams chat completions from Groq.
type GroqAdapter struct {
	client *goopenai.Client
	spec   models.ProviderSpec
}

// NewGroqAdapter creates a Groq adapter for spec.
func NewGroqAdapter(spec models.ProviderSpec, httpClient *http.Client) *GroqAdapter {
	cfg := goopenai.DefaultConfig(spec.Credential)
	cfg.BaseURL = GroqBaseURL
	if spec.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(spec.BaseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &GroqAdapter{
		client: goopenai.NewClientWithConfig(cfg),
		spec:   spec,
	}
}

func (a *GroqAdapter) Name() string { return a.spec.Name }
func (a *GroqAdapter) Kind() string { return a.spec.Kind }

func (a *GroqAdapter) Stream(ctx context.Context, req Request) (Stream, error) {
	var messages []goopenai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	// The client drops a zero temperature from the payload.
	temperature := float32(clampTemperature(req.Temperature, 0, 2))
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return &groqStream{stream: stream}, nil
}

type groqStream struct {
	stream *goopenai.ChatCompletionStream
}

// Recv returns io.EOF from the underlying client when the stream ends.
func (s *groqStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *groqStream) Close() error {
	return s.stream.Close()
}
