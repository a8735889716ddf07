package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	displayCmd = &cobra.Command{
		Use:   "display <results-file>",
		Short: "Display comparison results printed by compare --json",
		Long: `Display the output of a previous "compare --json" run without sending the
prompt again. Use "-" to read from standard input.`,
		Example: `  modelmind compare -p "Hello" --json | modelmind display - --charts`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDisplay,
	}

	displayCharts bool
)

func init() {
	rootCmd.AddCommand(displayCmd)

	displayCmd.Flags().BoolVar(&displayCharts, "charts", false, "Display bar charts for the metrics")
}

func runDisplay(cmd *cobra.Command, args []string) error {
	out, err := loadComparisonOutput(args[0])
	if err != nil {
		return fmt.Errorf("failed to load results from %s: %w", args[0], err)
	}

	fmt.Printf("🆔 Run: %s\n", out.Result.RunID)
	fmt.Printf("🕒 Started: %s\n", out.Result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("💬 Prompt: %s\n", out.Result.Prompt)
	fmt.Printf("🌡  Temperature: %.1f\n\n", out.Result.Temperature)

	if displayCharts {
		printCharts(os.Stdout, out.Result)
		return nil
	}

	printResponses(os.Stdout, out.Result)
	printMetrics(os.Stdout, out)
	return nil
}

func loadComparisonOutput(name string) (comparisonOutput, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return comparisonOutput{}, err
		}
		defer f.Close()
		r = f
	}
	return decodeComparisonOutput(r)
}

// decodeComparisonOutput reads compare --json output. Winners are recomputed
// from the runs.
func decodeComparisonOutput(r io.Reader) (comparisonOutput, error) {
	var raw comparisonOutput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return comparisonOutput{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(raw.Result.Runs) == 0 {
		return comparisonOutput{}, fmt.Errorf("no runs in results")
	}
	return newComparisonOutput(raw.Result), nil
}
