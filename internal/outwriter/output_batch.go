package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBatchResults outputs consolidated batch results, dispatching based on the output format configured.
func PrintBatchResults(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeBatchJSONResults(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeBatchCSVResults(result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTables(result, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// sortedRepoIDs returns the map keys in stable display order.
func sortedRepoIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// writeBatchJSONResults handles opening the file and calling the JSON writer.
func writeBatchJSONResults(result *schema.BatchResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON")
}

// writeBatchCSVResults writes the batch metrics table in long format. Failures
// keep their repositories visible through a failure_message row.
func writeBatchCSVResults(result *schema.BatchResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()

		header := []string{"repo_id", "state", "metric", "value"}
		if err := csvWriter.Write(header); err != nil {
			return err
		}

		for _, repoID := range sortedRepoIDs(result.States) {
			state := string(result.States[repoID])

			if rec, ok := result.Metrics[repoID]; ok {
				for _, key := range schema.OrderedKeys() {
					row := []string{
						repoID,
						state,
						key,
						formatMetricValue(rec[key], fmtFloat, intFmt),
					}
					if err := csvWriter.Write(row); err != nil {
						return err
					}
				}
				continue
			}

			if e, ok := result.Errors[repoID]; ok {
				row := []string{repoID, state, "failure_message", e.Message}
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	}, "Wrote CSV")
}

// writeBatchTables generates and writes the human-readable state and failure tables.
func writeBatchTables(result *schema.BatchResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	stateLabel := func(s schema.RepoState) string { return string(s) }
	if cfg.UseColors {
		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		stateLabel = func(s schema.RepoState) string {
			switch s {
			case schema.SucceededState:
				return green(string(s))
			case schema.CachedState:
				return cyan(string(s))
			case schema.FailedState:
				return red(string(s))
			default:
				return string(s)
			}
		}
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Repository", "State"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var counts struct{ succeeded, cached, failed int }
	var data [][]string
	for _, repoID := range sortedRepoIDs(result.States) {
		state := result.States[repoID]
		switch state {
		case schema.SucceededState:
			counts.succeeded++
		case schema.CachedState:
			counts.cached++
		case schema.FailedState:
			counts.failed++
		}
		data = append(data, []string{
			contract.TruncatePath(repoID, getMaxTableRepoWidth(cfg)),
			stateLabel(state),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		if _, err := fmt.Fprintf(writer, "\nFailures:\n"); err != nil {
			return err
		}
		errTable := tablewriter.NewWriter(writer)
		errTable.Header([]string{"Repository", "Error"})
		var errData [][]string
		for _, repoID := range sortedRepoIDs(result.Errors) {
			errData = append(errData, []string{
				contract.TruncatePath(repoID, getMaxTableRepoWidth(cfg)),
				result.Errors[repoID].Message,
			})
		}
		if err := errTable.Bulk(errData); err != nil {
			return err
		}
		if err := errTable.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(writer, "Processed %d repositories: %d succeeded, %d cached, %d failed\n",
		len(result.States), counts.succeeded, counts.cached, counts.failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Batch completed in %v with %d workers. Results backend: %s\n", duration, cfg.Workers, cfg.ResultBackend); err != nil {
		return err
	}
	return nil
}
