package assist

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"modelmind/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAdapter answers with a fixed reply and keeps the last request.
type recordingAdapter struct {
	reply string
	err   error
	last  provider.Request
}

func (a *recordingAdapter) Name() string { return "recorder" }
func (a *recordingAdapter) Kind() string { return "fake" }

func (a *recordingAdapter) Stream(_ context.Context, req provider.Request) (provider.Stream, error) {
	a.last = req
	if a.err != nil {
		return nil, a.err
	}
	return &onceStream{text: a.reply}, nil
}

type onceStream struct {
	text string
	sent bool
}

func (s *onceStream) Recv() (string, error) {
	if s.sent || s.text == "" {
		return "", io.EOF
	}
	s.sent = true
	return s.text, nil
}

func (s *onceStream) Close() error { return nil }

func TestCoach(t *testing.T) {
	a := &recordingAdapter{reply: "| Clarity | 4 |"}
	asst := New(a, "gpt-4o", time.Second, nil)

	out, err := asst.Coach(context.Background(), "write a poem")
	require.NoError(t, err)
	assert.Equal(t, "| Clarity | 4 |", out)
	assert.Equal(t, "gpt-4o", a.last.Model)
	assert.Equal(t, "write a poem", a.last.Prompt)
	assert.Equal(t, coachSystemPrompt, a.last.System)
	assert.Equal(t, coachTemperature, a.last.Temperature)
}

func TestCheckEthics(t *testing.T) {
	a := &recordingAdapter{reply: "No concerns found."}
	asst := New(a, "gpt-4o", 0, nil)

	out, err := asst.CheckEthics(context.Background(), "Nurses are caring people.")
	require.NoError(t, err)
	assert.Equal(t, "No concerns found.", out)
	assert.Equal(t, ethicsSystemPrompt, a.last.System)
	assert.Equal(t, ethicsTemperature, a.last.Temperature)
}

func TestInterviewFeedback(t *testing.T) {
	a := &recordingAdapter{reply: "Be more specific."}
	asst := New(a, "gpt-4o", time.Second, nil)

	out, err := asst.InterviewFeedback(context.Background(), "Tell me about a time you failed.", "I once missed a deadline.")
	require.NoError(t, err)
	assert.Equal(t, "Be more specific.", out)
	assert.Contains(t, a.last.Prompt, "Tell me about a time you failed.")
	assert.Contains(t, a.last.Prompt, "I once missed a deadline.")
	assert.Empty(t, a.last.System)
}

func TestEmptyInput(t *testing.T) {
	asst := New(&recordingAdapter{reply: "x"}, "m", time.Second, nil)
	ctx := context.Background()

	_, err := asst.Coach(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = asst.CheckEthics(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = asst.InterviewFeedback(ctx, "q", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTransportErrorIsReturned(t *testing.T) {
	boom := errors.New("401 unauthorized")
	asst := New(&recordingAdapter{err: boom}, "m", time.Second, nil)

	_, err := asst.CheckEthics(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "ethics")
}

func TestRandomQuestion(t *testing.T) {
	for _, topic := range Topics {
		q, err := RandomQuestion(topic, nil)
		require.NoError(t, err)
		assert.Contains(t, questionBank[topic], q)
	}

	_, err := RandomQuestion("Trivia", nil)
	assert.Error(t, err)
}

func TestRandomQuestionIsDeterministicWithSeed(t *testing.T) {
	a, err := RandomQuestion(TopicSituational, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	b, err := RandomQuestion(TopicSituational, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	q, err := RandomQuestion(TopicBehavioral, nil)
	require.NoError(t, err)
	assert.Contains(t, questionBank[TopicBehavioral], q)
}

func TestParseTopic(t *testing.T) {
	topic, ok := ParseTopic("technical")
	assert.True(t, ok)
	assert.Equal(t, TopicTechnical, topic)

	_, ok = ParseTopic("cooking")
	assert.False(t, ok)
}
