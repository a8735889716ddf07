package metrics

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"modelmind/internal/models"
	"modelmind/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type step struct {
	delay time.Duration
	text  string
	err   error
}

// scriptedAdapter replays steps, advancing the fake clock before each one.
type scriptedAdapter struct {
	clock    *fakeClock
	steps    []step
	startErr error
	closed   bool
}

func (a *scriptedAdapter) Name() string { return "scripted" }
func (a *scriptedAdapter) Kind() string { return "scripted" }

func (a *scriptedAdapter) Stream(context.Context, provider.Request) (provider.Stream, error) {
	if a.startErr != nil {
		return nil, a.startErr
	}
	return &scriptedStream{a: a}, nil
}

type scriptedStream struct {
	a *scriptedAdapter
	i int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.i >= len(s.a.steps) {
		return "", io.EOF
	}
	st := s.a.steps[s.i]
	s.i++
	s.a.clock.Advance(st.delay)
	if st.err != nil {
		return "", st.err
	}
	return st.text, nil
}

func (s *scriptedStream) Close() error {
	s.a.closed = true
	return nil
}

func drainAll(r *Run) []models.StreamItem {
	var items []models.StreamItem
	r.Drain(func(it models.StreamItem) { items = append(items, it) })
	return items
}

func TestRun_ForwardsFragmentsAndEmitsMetricsLast(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{
		{delay: 100 * time.Millisecond, text: "He"},
		{delay: 100 * time.Millisecond, text: "llo"},
	}}

	run := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{Prompt: "hi"})
	items := drainAll(run)

	require.Len(t, items, 3)
	assert.Equal(t, models.StreamItem{Kind: models.ItemFragment, Text: "He"}, items[0])
	assert.Equal(t, models.StreamItem{Kind: models.ItemFragment, Text: "llo"}, items[1])
	require.True(t, items[2].IsTerminal())

	m := *items[2].Metrics
	assert.Equal(t, 100*time.Millisecond, m.TimeToFirstFragment)
	assert.Equal(t, 200*time.Millisecond, m.TotalTime)
	assert.Equal(t, 5, m.OutputChars)
	assert.InDelta(t, 25.0, m.Throughput, 1e-9)
	assert.False(t, m.Failed)
	assert.Equal(t, "Hello", run.Response())
	assert.True(t, adapter.closed)

	_, ok := run.Next()
	assert.False(t, ok, "no items after the terminal record")
}

func TestRun_ThroughputFormula(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{
		{delay: 2 * time.Second, text: strings.Repeat("x", 100)},
	}}

	m := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}).Drain(nil)
	assert.Equal(t, 100, m.OutputChars)
	assert.Equal(t, 2*time.Second, m.TotalTime)
	assert.Equal(t, 50.0, m.Throughput)
}

func TestRun_ZeroElapsedHasZeroThroughput(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{{text: "instant"}}}

	m := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}).Drain(nil)
	assert.Equal(t, time.Duration(0), m.TotalTime)
	assert.Equal(t, 7, m.OutputChars)
	assert.Equal(t, 0.0, m.Throughput)
	assert.True(t, m.HasFirstFragment())
	assert.Equal(t, time.Duration(0), m.TimeToFirstFragment)
}

func TestRun_CountsCharactersNotBytes(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{{delay: time.Second, text: "héllo ✓"}}}

	m := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}).Drain(nil)
	assert.Equal(t, 7, m.OutputChars)
}

func TestRun_SkipsEmptyFragments(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{
		{delay: 50 * time.Millisecond, text: ""},
		{delay: 50 * time.Millisecond, text: "a"},
	}}

	items := drainAll(NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}))
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Text)
	assert.Equal(t, 100*time.Millisecond, items[1].Metrics.TimeToFirstFragment)
}

func TestRun_StartFailure(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, startErr: errors.New("connection refused")}

	items := drainAll(NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}))
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemError, items[0].Kind)
	assert.Equal(t, "Error: connection refused", items[0].Text)

	m := items[1].Metrics
	require.NotNil(t, m)
	assert.True(t, m.Failed)
	assert.Equal(t, "connection refused", m.Error)
	assert.Equal(t, time.Duration(0), m.TimeToFirstFragment)
	assert.Equal(t, 0, m.OutputChars)
	assert.Equal(t, 0.0, m.Throughput)
}

func TestRun_FailureBeforeFirstFragment(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{
		{delay: 300 * time.Millisecond, err: errors.New("http 500")},
	}}

	run := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{})
	items := drainAll(run)
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemError, items[0].Kind)
	assert.Equal(t, 300*time.Millisecond, items[1].Metrics.TotalTime)
	assert.Equal(t, time.Duration(0), items[1].Metrics.TimeToFirstFragment)
	assert.EqualError(t, run.Err(), "http 500")
	assert.True(t, adapter.closed)
}

func TestRun_MidStreamFailureKeepsFragments(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock, steps: []step{
		{delay: 100 * time.Millisecond, text: "par"},
		{delay: 100 * time.Millisecond, text: "tial"},
		{delay: 100 * time.Millisecond, err: errors.New("stream reset")},
		{text: "never"},
	}}

	run := NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{})
	items := drainAll(run)

	kinds := make([]models.ItemKind, len(items))
	for i, it := range items {
		kinds[i] = it.Kind
	}
	assert.Equal(t, []models.ItemKind{models.ItemFragment, models.ItemFragment, models.ItemError, models.ItemMetrics}, kinds)
	assert.Equal(t, "partial", run.Response())

	m := run.Metrics()
	assert.True(t, m.Failed)
	assert.Equal(t, 7, m.OutputChars)
	assert.Equal(t, 300*time.Millisecond, m.TotalTime)
	assert.Equal(t, 100*time.Millisecond, m.TimeToFirstFragment)
}

func TestRun_ZeroFragmentSuccess(t *testing.T) {
	clock := newFakeClock()
	adapter := &scriptedAdapter{clock: clock}

	items := drainAll(NewCollector(adapter, WithClock(clock.Now)).Start(context.Background(), provider.Request{}))
	require.Len(t, items, 1)
	m := items[0].Metrics
	assert.False(t, m.Failed)
	assert.False(t, m.HasFirstFragment())
}

func TestFailed(t *testing.T) {
	items := drainAll(Failed(errors.New("unknown kind")))
	require.Len(t, items, 2)
	assert.Equal(t, "Error: unknown kind", items[0].Text)
	assert.True(t, items[1].Metrics.Failed)
	assert.GreaterOrEqual(t, items[1].Metrics.TotalTime, time.Duration(0))
}
