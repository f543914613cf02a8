package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaharishay14/service-tracker/internal/storage"
)

var (
	exportInput   string
	exportFormat  string
	exportOutput  string
	exportDSN     string
	exportFilters filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export records to CSV or PostgreSQL",
	Long: `Export loads a record file, applies any filters, and writes the rows
to a CSV file or to a PostgreSQL table (service_requests, idempotent on id).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "record file (.json or .csv); defaults to the configured data file")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: csv or postgres")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "service_requests_export.csv", "output file for csv format")
	exportCmd.Flags().StringVar(&exportDSN, "dsn", "", "PostgreSQL DSN for postgres format (overrides config)")
	exportCmd.Flags().StringSliceVar(&exportFilters.regions, "regions", nil, "only include these regions")
	exportCmd.Flags().StringSliceVar(&exportFilters.issues, "issues", nil, "only include these issue types")
	exportCmd.Flags().StringSliceVar(&exportFilters.statuses, "statuses", nil, "only include these statuses")
	exportCmd.Flags().StringVar(&exportFilters.from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportFilters.to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	input := exportInput
	if len(args) > 0 {
		input = args[0]
	}
	table, err := loadTable(input, &exportFilters)
	if err != nil {
		return err
	}

	var w storage.RequestWriter
	switch exportFormat {
	case "csv":
		w, err = storage.NewCSVWriter(exportOutput, table.HasGeography())
	case "postgres":
		dsn := exportDSN
		if dsn == "" {
			dsn = activeConfig().PostgresDSN
		}
		if dsn == "" {
			return fmt.Errorf("postgres export needs a DSN (--dsn, config postgres_dsn, or SVCTRACK_POSTGRES_DSN)")
		}
		w, err = storage.NewPostgresWriter(dsn, table.HasGeography())
	default:
		return fmt.Errorf("unknown --format: %s (use csv or postgres)", exportFormat)
	}
	if err != nil {
		return err
	}

	if err := w.Write(table.Rows()); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if !quiet {
		switch exportFormat {
		case "csv":
			fmt.Printf("✓ Exported %d records to %s\n", table.Len(), exportOutput)
		case "postgres":
			fmt.Printf("✓ Exported %d records to PostgreSQL\n", table.Len())
		}
	}
	return nil
}
