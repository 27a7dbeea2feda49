package iocache

import (
	"errors"
	"fmt"

	"github.com/evamaxfield/repo-statistics/internal/parquet"
)

// ExecuteResultsExport performs the actual export of batch results to Parquet files.
func ExecuteResultsExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetResultStore()
	if store == nil {
		return errors.New("no result store configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get result store status: %w", err)
	}

	if status.MetricsRows == 0 && status.ErrorRows == 0 {
		return errors.New("no batch results found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Metrics rows: %d\n", status.MetricsRows)
	fmt.Printf("Error rows: %d\n", status.ErrorRows)

	metrics, err := store.LoadMetricsTable()
	if err != nil {
		return fmt.Errorf("failed to load metrics table: %w", err)
	}

	repoErrors, err := store.LoadErrorsTable()
	if err != nil {
		return fmt.Errorf("failed to load errors table: %w", err)
	}

	// Convert to Parquet format
	metricRows := parquet.ConvertMetricsTable(metrics)
	errorRows := parquet.ConvertErrorsTable(repoErrors)

	// Write metrics to Parquet
	metricsFile := outputFile + ".metrics.parquet"
	if err := parquet.WriteMetricsParquet(metricRows, metricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	fmt.Printf("Exported %d metric values to: %s\n", len(metricRows), metricsFile)

	// Write errors to Parquet
	errorsFile := outputFile + ".errors.parquet"
	if err := parquet.WriteErrorsParquet(errorRows, errorsFile); err != nil {
		return fmt.Errorf("failed to write errors: %w", err)
	}
	fmt.Printf("Exported %d failure rows to: %s\n", len(errorRows), errorsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
