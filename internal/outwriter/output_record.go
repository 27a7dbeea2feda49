package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintMetricRecord outputs one metric record, dispatching based on the output format configured.
func PrintMetricRecord(rec schema.MetricRecord, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeRecordJSONResults(rec, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRecordCSVResults(rec, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordTable(rec, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeRecordJSONResults handles opening the file and calling the JSON writer.
// MetricRecord is a map, so keys marshal in sorted order.
func writeRecordJSONResults(rec schema.MetricRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, rec)
	}, "Wrote JSON")
}

// writeRecordCSVResults handles opening the file and calling the CSV writer.
func writeRecordCSVResults(rec schema.MetricRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForRecord(csvWriter, rec, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// writeRecordTable generates and writes the human-readable table, one section
// per metric family in catalogue display order.
func writeRecordTable(rec schema.MetricRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Family", "Metric", "Value"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	familyName := fmt.Sprint
	if cfg.UseColors {
		familyName = color.New(color.FgCyan).Sprint
	}

	var data [][]string
	for _, fam := range schema.AllFamilies {
		for i, key := range schema.FamilyKeys[fam] {
			famCell := ""
			if i == 0 {
				famCell = familyName(string(fam))
			}
			data = append(data, []string{
				famCell,
				key,
				formatMetricValue(rec[key], fmtFloat, intFmt),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Computed %d metrics in %v. Cache backend: %s\n", len(rec), duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRecord writes one metric record in CSV format.
func writeCSVResultsForRecord(w *csv.Writer, rec schema.MetricRecord, fmtFloat func(float64) string, intFmt string) error {
	// CSV header
	header := []string{"family", "metric", "value"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, fam := range schema.AllFamilies {
		for _, key := range schema.FamilyKeys[fam] {
			row := []string{
				string(fam),
				key,
				formatMetricValue(rec[key], fmtFloat, intFmt),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}
