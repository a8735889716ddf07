package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"modelmind/internal/charts"
	"modelmind/internal/models"
	"modelmind/internal/service"

	"github.com/gosuri/uitable"
)

// comparisonOutput is what compare --json prints and display reads back.
type comparisonOutput struct {
	Result  models.ComparisonResult `json:"result"`
	Winners []models.Winner         `json:"winners"`
}

func newComparisonOutput(result models.ComparisonResult) comparisonOutput {
	out := comparisonOutput{Result: result, Winners: []models.Winner{}}
	if len(result.Runs) > 0 {
		out.Winners = service.ComputeWinners(result.Runs)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// progressSink reports each provider as its terminal record arrives.
func progressSink(w io.Writer) service.Sink {
	return func(ev service.Event) {
		if !ev.Item.IsTerminal() {
			return
		}
		m := ev.Item.Metrics
		if m.Failed {
			fmt.Fprintf(w, "❌ %s failed after %.2fs: %s\n", ev.Provider, m.TotalTime.Seconds(), m.Error)
			return
		}
		fmt.Fprintf(w, "✅ %s finished in %.2fs\n", ev.Provider, m.TotalTime.Seconds())
	}
}

func printResponses(w io.Writer, result models.ComparisonResult) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "MODEL RESPONSES")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for _, run := range result.Runs {
		fmt.Fprintf(w, "\n📝 %s - %s\n", run.Provider, run.Model)
		fmt.Fprintln(w, strings.Repeat("-", 50))
		if run.Metrics.Failed {
			fmt.Fprintf(w, "Error: %s\n", run.Metrics.Error)
			continue
		}
		if run.Response == "" {
			fmt.Fprintln(w, "(empty response)")
			continue
		}
		fmt.Fprintln(w, run.Response)
	}
	fmt.Fprintln(w)
}

func printMetrics(w io.Writer, out comparisonOutput) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "PERFORMANCE METRICS")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("MODEL", "TTFT", "TOTAL", "CHARS", "CHARS/SEC", "STATUS")
	for _, run := range out.Result.Runs {
		m := run.Metrics
		ttft := "-"
		if m.HasFirstFragment() {
			ttft = fmt.Sprintf("%.2fs", m.TimeToFirstFragment.Seconds())
		}
		status := "ok"
		if m.Failed {
			status = "failed"
		}
		table.AddRow(run.Provider, ttft, fmt.Sprintf("%.2fs", m.TotalTime.Seconds()),
			m.OutputChars, fmt.Sprintf("%.1f", m.Throughput), status)
	}
	fmt.Fprintln(w, table)

	fmt.Fprintln(w, "\n🏆 WINNERS")
	fmt.Fprintln(w, strings.Repeat("-", 20))
	if len(out.Winners) == 0 {
		fmt.Fprintln(w, "No successful runs to rank.")
		return
	}

	winners := uitable.New()
	for _, win := range out.Winners {
		winners.AddRow(win.Category.Title()+":", win.Provider, formatWinnerValue(win))
	}
	fmt.Fprintln(w, winners)
}

func formatWinnerValue(w models.Winner) string {
	switch w.Category {
	case models.CategoryTTFT, models.CategoryTotalTime:
		return fmt.Sprintf("%.2fs", w.Value)
	case models.CategoryOutputChars:
		return fmt.Sprintf("%.0f chars", w.Value)
	default:
		return fmt.Sprintf("%.1f chars/sec", w.Value)
	}
}

func printCharts(w io.Writer, result models.ComparisonResult) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "COMPARISON CHARTS")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	chartGen := charts.NewChartGenerator(60, 15)
	fmt.Fprint(w, chartGen.GenerateAllCharts(result))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}
