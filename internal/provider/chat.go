package provider

import (
	"context"
	"io"
	"net/http"

	"modelmind/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const (
	// OpenAIBaseURL is the default endpoint of the chat adapter.
	OpenAIBaseURL = "https://api.openai.com/v1"
	// DeepSeekBaseURL serves the OpenAI-compatible DeepSeek API.
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// ChatAdapter streams OpenAI-style chat completions. DeepSeek reuses it with
// its own base URL and key.
type ChatAdapter struct {
	client openai.Client
	spec   models.ProviderSpec
}

// NewChatAdapter creates a chat completion adapter for spec.
func NewChatAdapter(spec models.ProviderSpec, httpClient *http.Client) *ChatAdapter {
	opts := []option.RequestOption{
		option.WithAPIKey(spec.Credential),
		option.WithMaxRetries(0),
	}

	// Set custom base URL if different from OpenAI's default
	if spec.BaseURL != "" && spec.BaseURL != OpenAIBaseURL {
		opts = append(opts, option.WithBaseURL(withTrailingSlash(spec.BaseURL)))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &ChatAdapter{
		client: openai.NewClient(opts...),
		spec:   spec,
	}
}

func (a *ChatAdapter) Name() string { return a.spec.Name }
func (a *ChatAdapter) Kind() string { return a.spec.Kind }

// Stream starts a streaming chat completion. Transport errors surface on the
// first Recv.
func (a *ChatAdapter) Stream(ctx context.Context, req Request) (Stream, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       req.Model,
		Temperature: openai.Float(clampTemperature(req.Temperature, 0, 2)),
	}

	return &chatStream{stream: a.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

type chatStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *chatStream) Recv() (string, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
	if err := s.stream.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
