package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"modelmind/internal/metrics"
	"modelmind/internal/models"
	"modelmind/internal/provider"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyPrompt is reported to the user as an input warning.
	ErrEmptyPrompt = errors.New("please enter a prompt")
	// ErrNoProviders is reported to the user as an input warning.
	ErrNoProviders = errors.New("please select at least one available model")
)

// AdapterFactory builds the adapter for a provider.
type AdapterFactory func(spec models.ProviderSpec) (provider.Adapter, error)

// Event is one stream item of one provider, tagged with its selection index.
type Event struct {
	Index    int
	Provider string
	Item     models.StreamItem
}

// Sink receives events while a comparison runs. Calls are serialized.
type Sink func(Event)

// ComparisonService runs one prompt against several providers
type ComparisonService struct {
	providers []models.ProviderSpec
	config    models.CompareConfig
	timeout   time.Duration
	logger    *slog.Logger
	factory   AdapterFactory
	clock     metrics.Clock
}

// Option configures a ComparisonService.
type Option func(*ComparisonService)

// WithAdapterFactory replaces the adapter constructor.
func WithAdapterFactory(factory AdapterFactory) Option {
	return func(s *ComparisonService) {
		s.factory = factory
	}
}

// WithClock replaces the clock used for run metrics.
func WithClock(clock metrics.Clock) Option {
	return func(s *ComparisonService) {
		s.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ComparisonService) {
		s.logger = logger
	}
}

// NewComparisonService creates a comparison service over the available providers in config.
func NewComparisonService(config models.CompareConfig, opts ...Option) (*ComparisonService, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	s := &ComparisonService{
		providers: AvailableProviders(config.Providers),
		config:    config,
		timeout:   timeout,
		logger:    slog.Default(),
		factory: func(spec models.ProviderSpec) (provider.Adapter, error) {
			return provider.New(spec, provider.WithHTTPClient(http.DefaultClient))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetProviders returns the selectable providers in configuration order.
func (s *ComparisonService) GetProviders() []models.ProviderSpec {
	return s.providers
}

// Temperature returns the configured default temperature.
func (s *ComparisonService) Temperature() float64 {
	return s.config.Temperature
}

// NormalizePrompt strips surrounding whitespace. RunComparison sends the
// normalized prompt.
func NormalizePrompt(prompt string) string {
	return strings.TrimSpace(prompt)
}

// ValidateInput checks the caller-side preconditions of RunComparison.
func ValidateInput(prompt string, providers []models.ProviderSpec) error {
	if NormalizePrompt(prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(providers) == 0 {
		return ErrNoProviders
	}
	return nil
}

// RunComparison sends prompt to every provider and waits for all terminal
// records. Provider failures are recorded in the result, never returned.
func (s *ComparisonService) RunComparison(ctx context.Context, prompt string, temperature float64, providers []models.ProviderSpec, sink Sink) (models.ComparisonResult, error) {
	if err := ValidateInput(prompt, providers); err != nil {
		return models.ComparisonResult{}, err
	}
	prompt = NormalizePrompt(prompt)

	result := models.ComparisonResult{
		RunID:       uuid.NewString(),
		Prompt:      prompt,
		Temperature: temperature,
		StartedAt:   time.Now(),
		Runs:        make([]models.ProviderRun, len(providers)),
	}

	var mu sync.Mutex
	emit := func(ev Event) {
		if sink == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		sink(ev)
	}

	log := s.logger.With("run_id", result.RunID)
	log.Info("comparison started", "providers", len(providers), "temperature", temperature)

	var g errgroup.Group
	if s.config.Concurrency > 0 {
		g.SetLimit(s.config.Concurrency)
	}

	for i, spec := range providers {
		g.Go(func() error {
			result.Runs[i] = s.runProvider(ctx, log, i, spec, prompt, temperature, emit)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("comparison finished", "failed", len(FailedRuns(result.Runs)))
	return result, nil
}

func (s *ComparisonService) runProvider(ctx context.Context, log *slog.Logger, index int, spec models.ProviderSpec, prompt string, temperature float64, emit func(Event)) models.ProviderRun {
	log = log.With("provider", spec.Name, "model", spec.Model)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var run *metrics.Run
	adapter, err := s.factory(spec)
	if err != nil {
		run = metrics.Failed(err)
	} else {
		var opts []metrics.Option
		if s.clock != nil {
			opts = append(opts, metrics.WithClock(s.clock))
		}
		log.Debug("provider run started")
		run = metrics.NewCollector(adapter, opts...).Start(ctx, provider.Request{
			Model:       spec.Model,
			Prompt:      prompt,
			Temperature: temperature,
		})
	}

	m := run.Drain(func(item models.StreamItem) {
		emit(Event{Index: index, Provider: spec.Name, Item: item})
	})

	if m.Failed {
		log.Warn("provider run failed", "error", m.Error, "duration", m.TotalTime)
	} else {
		log.Debug("provider run finished",
			"ttft", m.TimeToFirstFragment,
			"total", m.TotalTime,
			"chars", m.OutputChars,
		)
	}

	return models.ProviderRun{
		Provider: spec.Name,
		Model:    spec.Model,
		Response: run.Response(),
		Metrics:  m,
	}
}
