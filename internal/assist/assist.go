// Package assist holds the single-shot helper tools built on one provider:
// the prompt coach, the ethics and bias checker and interview practice.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modelmind/internal/provider"
)

// ErrEmptyInput is reported to the user as an input warning.
var ErrEmptyInput = errors.New("please enter some text")

const (
	coachTemperature     = 0.3
	ethicsTemperature    = 0.4
	interviewTemperature = 0.6
)

const coachSystemPrompt = `You are an expert prompt engineering coach. Evaluate the user's prompt for clarity, specificity, context, constraints and expected output format. Reply with a short markdown table scoring each criterion from 1 to 5, then list concrete improvements and finish with a rewritten version of the prompt.`

const ethicsSystemPrompt = `You are an AI ethics and bias detection assistant. Review the user's prompt or generated text for potential ethical concerns, including but not limited to: bias (gender, race, age, etc.), harmful stereotypes, hate speech, privacy violations, and misinformation. Provide a brief analysis highlighting any potential issues and suggest ways to mitigate them. If the text appears ethically sound, state that clearly.`

// Assistant runs the helper tools against one backend.
type Assistant struct {
	adapter provider.Adapter
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an assistant using model on adapter.
func New(adapter provider.Adapter, model string, timeout time.Duration, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		adapter: adapter,
		model:   model,
		timeout: timeout,
		logger:  logger.With("assist_provider", adapter.Name()),
	}
}

// Coach evaluates a prompt and suggests improvements.
func (a *Assistant) Coach(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyInput
	}
	return a.ask(ctx, "coach", provider.Request{
		System:      coachSystemPrompt,
		Prompt:      prompt,
		Temperature: coachTemperature,
	})
}

// CheckEthics reviews text for bias and other ethical concerns.
func (a *Assistant) CheckEthics(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	return a.ask(ctx, "ethics", provider.Request{
		System:      ethicsSystemPrompt,
		Prompt:      text,
		Temperature: ethicsTemperature,
	})
}

// InterviewFeedback gives feedback on an answer to an interview question.
func (a *Assistant) InterviewFeedback(ctx context.Context, question, answer string) (string, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return "", ErrEmptyInput
	}
	prompt := fmt.Sprintf("Provide constructive feedback on the following interview answer to the question: '%s'. The answer is: '%s'. Focus on clarity, conciseness, and relevance. Suggest improvements if necessary.", question, answer)
	return a.ask(ctx, "interview", provider.Request{
		Prompt:      prompt,
		Temperature: interviewTemperature,
	})
}

func (a *Assistant) ask(ctx context.Context, tool string, req provider.Request) (string, error) {
	req.Model = a.model

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := provider.Collect(ctx, a.adapter, req)
	if err != nil {
		a.logger.Warn("assist request failed", "tool", tool, "error", err)
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	a.logger.Debug("assist request finished", "tool", tool, "duration", time.Since(start), "chars", len(text))
	return text, nil
}
