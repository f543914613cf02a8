package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharishay14/service-tracker/internal/analyzer"
	"github.com/shaharishay14/service-tracker/internal/loader"
	"github.com/shaharishay14/service-tracker/internal/model"
	"github.com/shaharishay14/service-tracker/internal/narrative"
	"github.com/shaharishay14/service-tracker/internal/utils"
)

var (
	analyzeInput   string
	analyzeJSON    bool
	analyzeFilters filterFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Compute statistics and key insights from service-request data",
	Long: `Analyze loads a JSON or CSV record file, runs the full statistical
analysis and prints either a plain-text digest with key insights or the full
analysis as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "record file (.json or .csv); defaults to the configured data file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full analysis as JSON")
	analyzeCmd.Flags().StringSliceVar(&analyzeFilters.regions, "regions", nil, "only include these regions")
	analyzeCmd.Flags().StringSliceVar(&analyzeFilters.issues, "issues", nil, "only include these issue types")
	analyzeCmd.Flags().StringSliceVar(&analyzeFilters.statuses, "statuses", nil, "only include these statuses")
	analyzeCmd.Flags().StringVar(&analyzeFilters.from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	analyzeCmd.Flags().StringVar(&analyzeFilters.to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := analyzeInput
	if len(args) > 0 {
		input = args[0]
	}
	table, err := loadTable(input, &analyzeFilters)
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

	if analyzeJSON {
		b, err := utils.PrettyJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Println(narrative.Digest(result))
	fmt.Println()
	fmt.Println("Key insights:")
	insights, err := an.KeyInsights(table)
	if err != nil {
		return err
	}
	for _, line := range insights {
		fmt.Println("  •", line)
	}
	return nil
}

// loadTable resolves the input path, loads the record file and applies any
// filters. Shared by analyze, report and export.
func loadTable(input string, filters *filterFlags) (*model.Table, error) {
	path := input
	if path == "" {
		path = activeConfig().DataFile
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("record file not found: %s (use --input or run 'service-tracker seed')", path)
	}

	table, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if filters != nil && !filters.empty() {
		f, err := filters.build()
		if err != nil {
			return nil, err
		}
		table = table.Filter(f)
		if table.Len() == 0 {
			return nil, fmt.Errorf("no records match the given filters")
		}
	}
	return table, nil
}
