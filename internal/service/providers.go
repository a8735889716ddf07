package service

import (
	"fmt"
	"strings"

	"modelmind/internal/models"

	"github.com/samber/lo"
)

// AvailableProviders drops providers without a credential.
func AvailableProviders(providers []models.ProviderSpec) []models.ProviderSpec {
	return lo.Filter(providers, func(p models.ProviderSpec, _ int) bool {
		return p.Available()
	})
}

// SelectProviders picks providers by name, in the order given. An empty
// selection means every available provider.
func SelectProviders(available []models.ProviderSpec, names []string) ([]models.ProviderSpec, error) {
	if len(names) == 0 {
		return available, nil
	}

	byName := lo.KeyBy(available, func(p models.ProviderSpec) string {
		return strings.ToLower(p.Name)
	})

	selected := make([]models.ProviderSpec, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		spec, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("provider %q is not configured or has no API key", name)
		}
		seen[key] = true
		selected = append(selected, spec)
	}
	return selected, nil
}

// FailedRuns returns the runs that ended with an error.
func FailedRuns(runs []models.ProviderRun) []models.ProviderRun {
	return lo.Filter(runs, func(r models.ProviderRun, _ int) bool {
		return r.Metrics.Failed
	})
}
