package charts

import (
	"strings"
	"testing"
	"time"

	"modelmind/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() models.ComparisonResult {
	return models.ComparisonResult{
		Prompt: "hi",
		Runs: []models.ProviderRun{
			{Provider: "Beta", Metrics: models.RunMetrics{
				TimeToFirstFragment: 300 * time.Millisecond,
				FirstFragment:       true,
				TotalTime:           2 * time.Second,
				OutputChars:         100,
				Throughput:          50,
			}},
			{Provider: "Alpha", Metrics: models.RunMetrics{
				TimeToFirstFragment: 100 * time.Millisecond,
				FirstFragment:       true,
				TotalTime:           time.Second,
				OutputChars:         20,
				Throughput:          20,
			}},
			{Provider: "Broken", Metrics: models.RunMetrics{
				TotalTime: 50 * time.Millisecond,
				Failed:    true,
				Error:     "401",
			}},
		},
	}
}

func TestEntriesKeepSelectionOrder(t *testing.T) {
	got := entries(sampleResult(), ttftSeries)
	require.Len(t, got, 2)
	assert.Equal(t, "Beta", got[0].Label)
	assert.Equal(t, "Alpha", got[1].Label)
	assert.InDelta(t, 300.0, got[0].Value, 1e-9)
	assert.Equal(t, palette[0], got[0].Color)
	assert.Equal(t, palette[1], got[1].Color)
}

func TestEntriesSkipUnmeasuredRuns(t *testing.T) {
	result := models.ComparisonResult{Runs: []models.ProviderRun{
		{Provider: "Silent", Metrics: models.RunMetrics{TotalTime: time.Second}},
	}}

	assert.Empty(t, entries(result, ttftSeries))
	assert.Empty(t, entries(result, throughputSeries))
	assert.Len(t, entries(result, totalTimeSeries), 1)
}

func TestGenerateLegendDoesNotReorderInput(t *testing.T) {
	cg := NewChartGenerator(40, 10)
	in := []LegendEntry{
		{Label: "Low", Value: 1, Unit: "ms", Color: "10"},
		{Label: "High", Value: 5, Unit: "ms", Color: "9"},
	}

	legend := cg.generateLegend(in, "Test")

	assert.Equal(t, "Low", in[0].Label)
	assert.Less(t, strings.Index(legend, "High"), strings.Index(legend, "Low"))
	assert.Contains(t, legend, "5.00 ms")
	assert.Contains(t, legend, "1.00 ms")
}

func TestGenerateLegendEmpty(t *testing.T) {
	assert.Empty(t, NewChartGenerator(40, 10).generateLegend(nil, "Test"))
}

func TestGenerateCharts(t *testing.T) {
	cg := NewChartGenerator(60, 12)
	result := sampleResult()

	ttft := cg.GenerateTTFTChart(result)
	assert.Contains(t, ttft, "Time to First Fragment (ms)")
	assert.Contains(t, ttft, "300.0 ms")
	assert.NotContains(t, ttft, "Broken")

	throughput := cg.GenerateThroughputChart(result)
	assert.Contains(t, throughput, "50.0 chars/sec")

	all := cg.GenerateAllCharts(result)
	assert.Contains(t, all, "Total Time (ms)")
}

func TestGenerateChartsWithoutData(t *testing.T) {
	cg := NewChartGenerator(60, 12)

	assert.Equal(t, "No data available for charts", cg.GenerateAllCharts(models.ComparisonResult{}))

	failedOnly := models.ComparisonResult{Runs: []models.ProviderRun{
		{Provider: "Broken", Metrics: models.RunMetrics{Failed: true}},
	}}
	assert.Contains(t, cg.GenerateTTFTChart(failedOnly), "No data available")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.125", formatValue(0.125))
	assert.Equal(t, "2.50", formatValue(2.5))
	assert.Equal(t, "123.4", formatValue(123.44))
}
