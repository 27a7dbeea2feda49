// Package parquet provides data structures and functions for exporting repository
// metrics and errors to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/parquet-go/parquet-go"
)

// MetricValue is one metric of one repository in long format. At most one of
// the value columns is set; all nil means the metric is null for this
// repository (disabled family or undefined value).
type MetricValue struct {
	// RepoID is the stable repository identity
	RepoID string `parquet:"repo_id,snappy"`

	// MetricName is the catalogue key for this value
	MetricName string `parquet:"metric_name,snappy"`

	// ValueFloat holds float-valued metrics (nullable)
	ValueFloat *float64 `parquet:"value_float,optional,snappy"`

	// ValueInt holds count-valued metrics (nullable)
	ValueInt *int64 `parquet:"value_int,optional,snappy"`

	// ValueStr holds string-valued metrics such as datetimes (nullable)
	ValueStr *string `parquet:"value_str,optional,snappy"`

	// ValueBool holds boolean-valued metrics (nullable)
	ValueBool *bool `parquet:"value_bool,optional,snappy"`
}

// RepoFailure represents a single batch failure.
// This struct maps to the repo_errors database table.
type RepoFailure struct {
	// RepoID is the stable repository identity
	RepoID string `parquet:"repo_id,snappy"`

	// Message is the failure message recorded by the batch orchestrator
	Message string `parquet:"message,snappy"`

	// FailedAt is when the failure was recorded
	FailedAt time.Time `parquet:"failed_at,snappy"`
}

// ConvertMetricsTable flattens the metrics table into long-format rows,
// ordered by repository identity and metric name so exports are reproducible.
func ConvertMetricsTable(metrics map[string]schema.MetricRecord) []MetricValue {
	repoIDs := make([]string, 0, len(metrics))
	for repoID := range metrics {
		repoIDs = append(repoIDs, repoID)
	}
	sort.Strings(repoIDs)

	var rows []MetricValue
	for _, repoID := range repoIDs {
		rec := metrics[repoID]

		names := make([]string, 0, len(rec))
		for name := range rec {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			rows = append(rows, convertMetricValue(repoID, name, rec[name]))
		}
	}
	return rows
}

// convertMetricValue maps one metric value onto the typed value columns.
// Counts loaded back from a JSON round trip arrive as float64 and stay in
// the float column rather than guessing intent.
func convertMetricValue(repoID, name string, value any) MetricValue {
	row := MetricValue{RepoID: repoID, MetricName: name}

	switch v := value.(type) {
	case nil:
		// All value columns stay nil
	case int:
		i := int64(v)
		row.ValueInt = &i
	case int64:
		row.ValueInt = &v
	case float64:
		row.ValueFloat = &v
	case bool:
		row.ValueBool = &v
	case string:
		row.ValueStr = &v
	default:
		s := fmt.Sprintf("%v", v)
		row.ValueStr = &s
	}
	return row
}

// ConvertErrorsTable flattens the errors table into rows ordered by
// repository identity.
func ConvertErrorsTable(errors map[string]schema.RepoError) []RepoFailure {
	repoIDs := make([]string, 0, len(errors))
	for repoID := range errors {
		repoIDs = append(repoIDs, repoID)
	}
	sort.Strings(repoIDs)

	rows := make([]RepoFailure, 0, len(errors))
	for _, repoID := range repoIDs {
		e := errors[repoID]
		rows = append(rows, RepoFailure{
			RepoID:   e.RepoID,
			Message:  e.Message,
			FailedAt: e.FailedAt,
		})
	}
	return rows
}

// WriteMetricsParquet writes long-format metric rows to a Parquet file.
func WriteMetricsParquet(data []MetricValue, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the MetricValue struct tags
	writer := parquet.NewGenericWriter[MetricValue](file)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes buffered row groups
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}

// WriteErrorsParquet writes failure rows to a Parquet file.
func WriteErrorsParquet(data []RepoFailure, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the RepoFailure struct tags
	writer := parquet.NewGenericWriter[RepoFailure](file)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes buffered row groups
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}
