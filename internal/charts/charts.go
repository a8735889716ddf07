// Package charts renders comparison metrics as terminal bar charts.
package charts

import (
	"fmt"
	"sort"
	"strings"

	"modelmind/internal/models"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

// Green, Red, Yellow, Blue, Magenta, Cyan, White, Dark cyan
var palette = []string{"10", "9", "11", "12", "13", "14", "15", "6"}

// ChartGenerator renders comparison results as bar charts
type ChartGenerator struct {
	width  int
	height int
}

// NewChartGenerator creates a new chart generator with specified dimensions
func NewChartGenerator(width, height int) *ChartGenerator {
	return &ChartGenerator{
		width:  width,
		height: height,
	}
}

// LegendEntry represents a single entry in the chart legend
type LegendEntry struct {
	Label string
	Value float64
	Unit  string
	Color string
}

// series describes one chart: which runs it shows and how to measure them.
type series struct {
	title   string
	unit    string
	value   func(models.RunMetrics) float64
	include func(models.RunMetrics) bool
}

var (
	ttftSeries = series{
		title: "Time to First Fragment (ms)",
		unit:  "ms",
		value: func(m models.RunMetrics) float64 {
			return float64(m.TimeToFirstFragment.Nanoseconds()) / 1e6
		},
		include: func(m models.RunMetrics) bool {
			return !m.Failed && m.HasFirstFragment()
		},
	}
	totalTimeSeries = series{
		title: "Total Time (ms)",
		unit:  "ms",
		value: func(m models.RunMetrics) float64 {
			return float64(m.TotalTime.Nanoseconds()) / 1e6
		},
		include: func(m models.RunMetrics) bool {
			return !m.Failed && m.TotalTime > 0
		},
	}
	throughputSeries = series{
		title: "Throughput (chars/sec)",
		unit:  "chars/sec",
		value: func(m models.RunMetrics) float64 {
			return m.Throughput
		},
		include: func(m models.RunMetrics) bool {
			return !m.Failed && m.Throughput > 0
		},
	}
)

// generateLegend creates a formatted legend showing the numerical values,
// largest first. entries is not modified.
func (cg *ChartGenerator) generateLegend(entries []LegendEntry, title string) string {
	if len(entries) == 0 {
		return ""
	}

	sorted := make([]LegendEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	var legend strings.Builder
	legend.WriteString(fmt.Sprintf("\n📋 %s Legend:\n", title))
	legend.WriteString(strings.Repeat("─", cg.width) + "\n")

	maxLabelLen := 0
	for _, entry := range sorted {
		if len(entry.Label) > maxLabelLen {
			maxLabelLen = len(entry.Label)
		}
	}

	for i, entry := range sorted {
		indicator := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Color)).Render("■")
		paddedLabel := fmt.Sprintf("%-*s", maxLabelLen, entry.Label)

		legend.WriteString(fmt.Sprintf("  %s %s: %s %s\n",
			indicator, paddedLabel, formatValue(entry.Value), entry.Unit))

		if i < len(sorted)-1 {
			legend.WriteString("    " + strings.Repeat("·", maxLabelLen+10) + "\n")
		}
	}

	return legend.String()
}

func formatValue(v float64) string {
	switch {
	case v < 1:
		return fmt.Sprintf("%.3f", v)
	case v < 10:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// entries collects the legend entries of s, in selection order. Colors follow
// the selection index so a provider keeps its color across charts.
func entries(result models.ComparisonResult, s series) []LegendEntry {
	var out []LegendEntry
	for i, run := range result.Runs {
		if !s.include(run.Metrics) {
			continue
		}
		out = append(out, LegendEntry{
			Label: run.Provider,
			Value: s.value(run.Metrics),
			Unit:  s.unit,
			Color: palette[i%len(palette)],
		})
	}
	return out
}

func (cg *ChartGenerator) render(result models.ComparisonResult, s series) string {
	legendEntries := entries(result, s)
	if len(legendEntries) == 0 {
		return fmt.Sprintf("No data available for %s chart", strings.ToLower(s.title))
	}

	barData := make([]barchart.BarData, 0, len(legendEntries))
	for _, e := range legendEntries {
		barData = append(barData, barchart.BarData{
			Label: e.Label,
			Values: []barchart.BarValue{
				{Name: s.unit, Value: e.Value, Style: lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color))},
			},
		})
	}

	bc := barchart.New(cg.width, cg.height)
	bc.PushAll(barData)
	bc.Draw()

	out := fmt.Sprintf("📊 %s\n%s\n%s", s.title, strings.Repeat("─", cg.width), bc.View())
	return out + cg.generateLegend(legendEntries, s.title)
}

// GenerateTTFTChart charts the time to first fragment of every run that
// produced output.
func (cg *ChartGenerator) GenerateTTFTChart(result models.ComparisonResult) string {
	return cg.render(result, ttftSeries)
}

// GenerateTotalTimeChart charts the total time of every successful run.
func (cg *ChartGenerator) GenerateTotalTimeChart(result models.ComparisonResult) string {
	return cg.render(result, totalTimeSeries)
}

// GenerateThroughputChart charts characters per second.
func (cg *ChartGenerator) GenerateThroughputChart(result models.ComparisonResult) string {
	return cg.render(result, throughputSeries)
}

// GenerateAllCharts generates all available charts for the given result
func (cg *ChartGenerator) GenerateAllCharts(result models.ComparisonResult) string {
	if len(result.Runs) == 0 {
		return "No data available for charts"
	}

	var b strings.Builder
	b.WriteString(cg.GenerateTTFTChart(result) + "\n\n")
	b.WriteString(cg.GenerateTotalTimeChart(result) + "\n\n")
	b.WriteString(cg.GenerateThroughputChart(result) + "\n\n")
	return b.String()
}
