// Package metrics instruments provider streams with latency measurements.
package metrics

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"modelmind/internal/models"
	"modelmind/internal/provider"
)

// Clock returns the current time. Tests replace it to control durations.
type Clock func() time.Time

// Collector wraps an adapter and times every run it starts.
type Collector struct {
	adapter provider.Adapter
	now     Clock
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock replaces the wall clock.
func WithClock(now Clock) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector creates a collector around adapter.
func NewCollector(adapter provider.Adapter, opts ...Option) *Collector {
	c := &Collector{adapter: adapter, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start records the start time and invokes the adapter. A failing start is
// not returned: it becomes the error item of the run.
func (c *Collector) Start(ctx context.Context, req provider.Request) *Run {
	r := &Run{now: c.now}
	r.start = c.now()
	stream, err := c.adapter.Stream(ctx, req)
	if err != nil {
		r.err = err
		return r
	}
	r.stream = stream
	return r
}

// Failed returns a run that only reports err, for providers that could not be
// constructed at all.
func Failed(err error) *Run {
	now := time.Now()
	return &Run{now: func() time.Time { return now }, start: now, err: err}
}

// Run is one instrumented stream. Fragments are forwarded as they arrive;
// after the underlying stream ends, Next yields an optional error item and
// exactly one metrics item, then reports false.
type Run struct {
	now    Clock
	stream provider.Stream

	start    time.Time
	first    time.Time
	gotFirst bool

	text  strings.Builder
	chars int

	err      error
	finished bool
	pending  []models.StreamItem
	metrics  models.RunMetrics
}

// Next returns the next item. The second value is false once the terminal
// metrics item has been consumed.
func (r *Run) Next() (models.StreamItem, bool) {
	if len(r.pending) > 0 {
		item := r.pending[0]
		r.pending = r.pending[1:]
		return item, true
	}
	if r.finished {
		return models.StreamItem{}, false
	}

	for r.stream != nil {
		text, err := r.stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			_ = r.stream.Close()
			r.stream = nil
			break
		}
		if text == "" {
			continue
		}
		if !r.gotFirst {
			r.first = r.now()
			r.gotFirst = true
		}
		r.text.WriteString(text)
		r.chars += utf8.RuneCountInString(text)
		return models.StreamItem{Kind: models.ItemFragment, Text: text}, true
	}

	r.finish()
	return r.Next()
}

func (r *Run) finish() {
	end := r.now()
	total := end.Sub(r.start)
	if total < 0 {
		total = 0
	}

	m := models.RunMetrics{
		TotalTime:   total,
		OutputChars: r.chars,
		Throughput:  models.ComputeThroughput(r.chars, total),
	}
	if r.gotFirst {
		m.FirstFragment = true
		m.TimeToFirstFragment = max(r.first.Sub(r.start), 0)
	}
	if r.err != nil {
		m.Failed = true
		m.Error = r.err.Error()
		r.pending = append(r.pending, models.StreamItem{Kind: models.ItemError, Text: "Error: " + r.err.Error()})
	}

	r.metrics = m
	r.finished = true
	r.pending = append(r.pending, models.StreamItem{Kind: models.ItemMetrics, Metrics: &m})
}

// Drain consumes the run, passing every item to fn, and returns the metrics.
func (r *Run) Drain(fn func(models.StreamItem)) models.RunMetrics {
	for {
		item, ok := r.Next()
		if !ok {
			return r.metrics
		}
		if fn != nil {
			fn(item)
		}
	}
}

// Response returns the text accumulated so far.
func (r *Run) Response() string {
	return r.text.String()
}

// Metrics returns the terminal record. It is zero until the run finished.
func (r *Run) Metrics() models.RunMetrics {
	return r.metrics
}

// Err returns the failure that ended the run, if any.
func (r *Run) Err() error {
	return r.err
}
