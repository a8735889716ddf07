package service

import (
	"modelmind/internal/models"
)

// ComputeWinners picks the best provider per category. Latency categories are
// won by the minimum, volume categories by the maximum; ties go to the
// provider selected first. Failed runs never win, and runs that produced no
// fragment are left out of the TTFT category.
//
// Calling it without runs is a programming error.
func ComputeWinners(runs []models.ProviderRun) []models.Winner {
	if len(runs) == 0 {
		panic("service: ComputeWinners called without runs")
	}

	var winners []models.Winner
	for _, category := range models.Categories {
		if w, ok := winner(runs, category); ok {
			winners = append(winners, w)
		}
	}
	return winners
}

func winner(runs []models.ProviderRun, category models.Category) (models.Winner, bool) {
	var best models.Winner
	found := false

	for _, run := range runs {
		m := run.Metrics
		if m.Failed {
			continue
		}
		if category == models.CategoryTTFT && !m.HasFirstFragment() {
			continue
		}

		value := CategoryValue(m, category)
		if !found || better(category, value, best.Value) {
			best = models.Winner{Category: category, Provider: run.Provider, Value: value}
			found = true
		}
	}
	return best, found
}

// better uses strict comparison so earlier providers keep ties.
func better(category models.Category, value, current float64) bool {
	switch category {
	case models.CategoryTTFT, models.CategoryTotalTime:
		return value < current
	default:
		return value > current
	}
}

// CategoryValue returns the metric of a category, with durations in seconds.
func CategoryValue(m models.RunMetrics, category models.Category) float64 {
	switch category {
	case models.CategoryTTFT:
		return m.TimeToFirstFragment.Seconds()
	case models.CategoryTotalTime:
		return m.TotalTime.Seconds()
	case models.CategoryOutputChars:
		return float64(m.OutputChars)
	case models.CategoryThroughput:
		return m.Throughput
	}
	return 0
}
