package cmd

import (
	"fmt"

	"modelmind/internal/service"

	"github.com/spf13/cobra"
)

var (
	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Test connections to configured providers",
		Long: `Test connectivity to every provider that has an API key.
This command sends a short test prompt to verify that the providers
are reachable and responding correctly.`,
		RunE: runTest,
	}
)

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	svc, err := service.NewComparisonService(configMgr.GetCompareConfig(), service.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create comparison service: %w", err)
	}

	if len(svc.GetProviders()) == 0 {
		fmt.Println("⚠️  No provider has an API key. Set OPENAI_API_KEY, GOOGLE_API_KEY, GROQ_API_KEY, HUGGINGFACE_API_KEY or DEEPSEEK_API_KEY.")
		return fmt.Errorf("no providers available")
	}

	fmt.Println("Testing connections to available providers...")
	fmt.Println()

	results := svc.TestConnections(cmd.Context())

	successCount := 0
	totalCount := len(results)

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("❌ %s (%s): %v\n", res.Provider, res.Model, res.Err)
		} else {
			fmt.Printf("✅ %s (%s): Connection successful in %.2fs\n", res.Provider, res.Model, res.Latency.Seconds())
			successCount++
		}
	}

	fmt.Println()
	fmt.Printf("Results: %d/%d providers connected successfully\n", successCount, totalCount)

	if successCount == totalCount {
		fmt.Println("🎉 All providers are ready for comparison!")
		return nil
	}

	fmt.Println("⚠️  Some providers failed connection test. Check your API keys and configuration.")
	return fmt.Errorf("connection test failed for %d provider(s)", totalCount-successCount)
}
