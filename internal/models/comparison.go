package models

import "time"

// ItemKind tags the values produced by an instrumented provider stream.
type ItemKind string

const (
	// ItemFragment carries a non-empty piece of generated text.
	ItemFragment ItemKind = "fragment"
	// ItemError carries the visible "Error: ..." text of a failed run.
	ItemError ItemKind = "error"
	// ItemMetrics is the terminal record of a run. It is always the last item.
	ItemMetrics ItemKind = "metrics"
)

// StreamItem is one value of an instrumented stream.
type StreamItem struct {
	Kind    ItemKind    `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Metrics *RunMetrics `json:"metrics,omitempty"`
}

// IsTerminal reports whether the item closes its stream.
func (i StreamItem) IsTerminal() bool { return i.Kind == ItemMetrics }

// RunMetrics is the timing summary of a single provider run.
type RunMetrics struct {
	TotalTime time.Duration `json:"total_time" yaml:"total_time"`
	// TimeToFirstFragment is only meaningful when FirstFragment is set.
	TimeToFirstFragment time.Duration `json:"time_to_first_fragment" yaml:"time_to_first_fragment"`
	// FirstFragment records that at least one fragment arrived.
	FirstFragment bool `json:"first_fragment" yaml:"first_fragment"`
	OutputChars   int  `json:"output_chars" yaml:"output_chars"`
	// Throughput is measured in characters per second.
	Throughput float64 `json:"throughput" yaml:"throughput"`
	Failed     bool    `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasFirstFragment reports whether time to first fragment was measured. A
// fragment arriving within the same clock tick as the request still counts.
func (m RunMetrics) HasFirstFragment() bool { return m.FirstFragment }

// ComputeThroughput returns characters per second, or 0 for a non-positive duration.
func ComputeThroughput(chars int, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(chars) / total.Seconds()
}

// ProviderRun is the outcome of one provider within a comparison.
type ProviderRun struct {
	Provider string     `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	Response string     `json:"response" yaml:"response"`
	Metrics  RunMetrics `json:"metrics" yaml:"metrics"`
}

// ComparisonResult holds every provider run of one prompt, in selection order.
type ComparisonResult struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Prompt      string        `json:"prompt" yaml:"prompt"`
	Temperature float64       `json:"temperature" yaml:"temperature"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Runs        []ProviderRun `json:"runs" yaml:"runs"`
}

// Metrics returns the metrics recorded for the named provider.
func (r ComparisonResult) Metrics(provider string) (RunMetrics, bool) {
	for _, run := range r.Runs {
		if run.Provider == provider {
			return run.Metrics, true
		}
	}
	return RunMetrics{}, false
}

// Category names a metric that can be won.
type Category string

const (
	CategoryTTFT        Category = "ttft"
	CategoryTotalTime   Category = "total_time"
	CategoryOutputChars Category = "output_chars"
	CategoryThroughput  Category = "throughput"
)

// Categories lists all categories in display order.
var Categories = []Category{CategoryTTFT, CategoryTotalTime, CategoryOutputChars, CategoryThroughput}

// Title returns a human readable label for the category.
func (c Category) Title() string {
	switch c {
	case CategoryTTFT:
		return "Fastest Response (TTFT)"
	case CategoryTotalTime:
		return "Shortest Total Time"
	case CategoryOutputChars:
		return "Longest Output"
	case CategoryThroughput:
		return "Highest Throughput"
	}
	return string(c)
}

// Winner names the provider that won a category.
type Winner struct {
	Category Category `json:"category" yaml:"category"`
	Provider string   `json:"provider" yaml:"provider"`
	Value    float64  `json:"value" yaml:"value"`
}
