package cmd

import (
	"fmt"
	"os"
	"strings"

	"modelmind/internal/service"
	"modelmind/internal/tui"

	"github.com/spf13/cobra"
)

var (
	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Send one prompt to several providers and compare them",
		Long: `Send the same prompt to every selected provider concurrently and measure
how each of them streams its answer. Providers without an API key are skipped.
Results show the full responses, a metrics table and the winner of every
category.`,
		Example: `  modelmind compare -p "Explain recursion in one paragraph"
  modelmind compare -p "Write a haiku" --providers "DeepSeek Chat,Llama 3 70B (Groq)" -t 1.2
  modelmind compare -i`,
		RunE: runCompare,
	}

	// Compare flags
	prompt        string
	temperature   float64
	providerNames []string
	outputJSON    bool
	showCharts    bool
	interactive   bool
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt to send to every provider")
	compareCmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "Sampling temperature between 0 and 2 (overrides config)")
	compareCmd.Flags().StringSliceVar(&providerNames, "providers", nil, "Providers to compare, in display order (default: all available)")
	compareCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results in JSON format")
	compareCmd.Flags().BoolVar(&showCharts, "charts", false, "Display bar charts for the metrics")
	compareCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := configMgr.GetCompareConfig()

	svc, err := service.NewComparisonService(cfg, service.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create comparison service: %w", err)
	}

	temp := svc.Temperature()
	if cmd.Flags().Changed("temperature") {
		temp = temperature
	}
	if temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %.2f", temp)
	}

	selected, err := service.SelectProviders(svc.GetProviders(), providerNames)
	if err != nil {
		return err
	}

	if interactive {
		return tui.NewApp(svc, prompt, temp, selected).Run(cmd.Context())
	}

	if err := service.ValidateInput(prompt, selected); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", capitalize(err.Error()))
		return err
	}

	var sink service.Sink
	if !outputJSON {
		fmt.Printf("Comparing %d model(s) at temperature %.1f...\n\n", len(selected), temp)
		sink = progressSink(os.Stdout)
	}

	result, err := svc.RunComparison(cmd.Context(), prompt, temp, selected, sink)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	out := newComparisonOutput(result)
	if outputJSON {
		return writeJSON(os.Stdout, out)
	}

	fmt.Println()
	printResponses(os.Stdout, out.Result)
	printMetrics(os.Stdout, out)
	if showCharts {
		printCharts(os.Stdout, out.Result)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
