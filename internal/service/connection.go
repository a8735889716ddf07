package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"modelmind/internal/models"
	"modelmind/internal/provider"
)

const probePrompt = "Hello, this is a connection test. Please respond with 'OK'."

// ConnectionResult is the outcome of probing one provider.
type ConnectionResult struct {
	Provider string
	Model    string
	Latency  time.Duration
	Err      error
}

// TestConnections probes every available provider concurrently. Results keep
// configuration order.
func (s *ComparisonService) TestConnections(ctx context.Context) []ConnectionResult {
	results := make([]ConnectionResult, len(s.providers))
	var wg sync.WaitGroup

	for i, spec := range s.providers {
		wg.Add(1)
		go func(i int, p models.ProviderSpec) {
			defer wg.Done()
			results[i] = s.testConnection(ctx, p)
		}(i, spec)
	}

	wg.Wait()
	return results
}

func (s *ComparisonService) testConnection(ctx context.Context, spec models.ProviderSpec) ConnectionResult {
	res := ConnectionResult{Provider: spec.Name, Model: spec.Model}

	adapter, err := s.factory(spec)
	if err != nil {
		res.Err = err
		return res
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := provider.Collect(timeoutCtx, adapter, provider.Request{
		Model:       spec.Model,
		Prompt:      probePrompt,
		Temperature: s.config.Temperature,
	})
	res.Latency = time.Since(start)

	switch {
	case err != nil:
		res.Err = fmt.Errorf("connection test failed: %w", err)
	case text == "":
		res.Err = fmt.Errorf("connection test failed: empty response")
	}
	if res.Err != nil {
		s.logger.Warn("connection test failed", "provider", spec.Name, "error", res.Err)
	}
	return res
}
