package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharishay14/service-tracker/internal/analyzer"
	"github.com/shaharishay14/service-tracker/internal/narrative"
	"github.com/shaharishay14/service-tracker/internal/report"
	"github.com/shaharishay14/service-tracker/internal/utils"
)

var (
	reportInput      string
	reportOutput     string
	reportModel      string
	reportMaxTokens  int
	reportTemp       float64
	reportTimeoutSec int
	reportOffline    bool
	reportFilters    filterFlags
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Generate a full text report with an AI narrative",
	Long: `Report runs the full analysis, asks the configured model for a
narrative via OpenRouter, and assembles a downloadable text report. Without a
valid API key, or when the model is unreachable, the report falls back to a
deterministic offline narrative instead of failing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "record file (.json or .csv); defaults to the configured data file")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to this file instead of stdout")
	reportCmd.Flags().StringVarP(&reportModel, "model", "m", "", "model to use (overrides config)")
	reportCmd.Flags().IntVar(&reportMaxTokens, "max-tokens", 0, "max tokens for the narrative (overrides config)")
	reportCmd.Flags().Float64Var(&reportTemp, "temperature", 0, "sampling temperature (overrides config)")
	reportCmd.Flags().IntVar(&reportTimeoutSec, "timeout-sec", 0, "generation timeout in seconds (overrides config)")
	reportCmd.Flags().BoolVar(&reportOffline, "offline", false, "skip the external model and use the offline narrative")
	reportCmd.Flags().StringSliceVar(&reportFilters.regions, "regions", nil, "only include these regions")
	reportCmd.Flags().StringSliceVar(&reportFilters.issues, "issues", nil, "only include these issue types")
	reportCmd.Flags().StringSliceVar(&reportFilters.statuses, "statuses", nil, "only include these statuses")
	reportCmd.Flags().StringVar(&reportFilters.from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().StringVar(&reportFilters.to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	input := reportInput
	if len(args) > 0 {
		input = args[0]
	}
	table, err := loadTable(input, &reportFilters)
	if err != nil {
		return err
	}

	c := activeConfig()
	an := analyzer.New(analyzer.Options{
		ProblematicRegionFactor: c.ProblematicRegionFactor,
		ComplexIssueFactor:      c.ComplexIssueFactor,
	})
	result, err := an.Comprehensive(table)
	if err != nil {
		return err
	}

	model := c.DefaultModel
	if reportModel != "" {
		model = reportModel
	}
	maxTokens := c.MaxTokens
	if reportMaxTokens > 0 {
		maxTokens = reportMaxTokens
	}
	temperature := c.Temperature
	if reportTemp > 0 {
		temperature = reportTemp
	}
	timeout := time.Duration(c.HTTPTimeoutSec) * time.Second
	if reportTimeoutSec > 0 {
		timeout = time.Duration(reportTimeoutSec) * time.Second
	}

	apiKey := c.APIKey
	var client narrative.Generator
	if !reportOffline && apiKey != "" {
		client = narrative.NewClient(
			apiKey,
			timeout,
			c.RetryMaxAttempts,
			time.Duration(c.RetryBaseDelayMs)*time.Millisecond,
			time.Duration(c.RetryMaxDelayMs)*time.Millisecond,
		)
	}
	if reportOffline {
		apiKey = ""
	}

	nar := narrative.NewNarrator(client, apiKey, model, maxTokens, temperature)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if !quiet && !reportOffline {
		fmt.Fprintf(os.Stderr, "Generating narrative with %s...\n", model)
	}
	nr := nar.Generate(ctx, result)
	if nr.Source == narrative.SourceFallback && !quiet {
		fmt.Fprintf(os.Stderr, "⚠ Using offline narrative: %s\n", nr.Err)
		printNarrativeHint(nr.Err)
	}

	text, err := report.Render(result, nr)
	if err != nil {
		return err
	}

	if reportOutput == "" {
		fmt.Println(text)
		return nil
	}
	if err := utils.SafeWriteFile(reportOutput, []byte(text)); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("✓ Report written to %s\n", reportOutput)
	}
	return nil
}

// printNarrativeHint maps a fallback reason to an actionable hint. The
// narrator folds client errors into strings, so matching is by substring.
func printNarrativeHint(reason string) {
	switch {
	case reason == "missing API key" || reason == "invalid API key":
		fmt.Fprintln(os.Stderr, "  Hint: set api_key via 'service-tracker config set api_key <key>' or OPENROUTER_API_KEY")
	case strings.Contains(reason, "rate limited"):
		fmt.Fprintln(os.Stderr, "  Hint: rate limited; retry later or lower request volume")
	case strings.Contains(reason, "authentication failed"):
		fmt.Fprintln(os.Stderr, "  Hint: check the configured API key")
	case strings.Contains(reason, "unreachable"):
		fmt.Fprintln(os.Stderr, "  Hint: check network connectivity; the offline report is still complete")
	}
}
