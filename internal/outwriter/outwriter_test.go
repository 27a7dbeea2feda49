package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Output:        schema.TextOut,
		Precision:     3,
		UseColors:     false,
		Width:         120,
		Workers:       2,
		CacheBackend:  schema.SQLiteBackend,
		ResultBackend: schema.SQLiteBackend,
	}
}

func sampleRecord() schema.MetricRecord {
	rec := schema.NewMetricRecord()
	rec["repo_id"] = "github.com/acme/widgets"
	rec["commits_count"] = 42
	rec["unique_contributors_count"] = 5
	rec["weekly_commit_entropy"] = 2.5849625007
	rec["has_license"] = true
	return rec
}

func TestFormatMetricValue(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"float", 2.5, "2.500"},
		{"whole float", 6.0, "6"},
		{"bool", true, "true"},
		{"string", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMetricValue(tt.value, fmtFloat, intFmt))
		})
	}
}

func TestWriteRecordTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	err := writeRecordTable(sampleRecord(), cfg, fmtFloat, intFmt, 150*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "summary")
	assert.Contains(t, out, "commits_count")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "weekly_commit_entropy")
	assert.Contains(t, out, "2.585")
	assert.Contains(t, out, "null")
	assert.Contains(t, out, "Computed")
}

func TestWriteCSVResultsForRecord(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, intFmt := createFormatters(3)

	w := csv.NewWriter(&buf)
	require.NoError(t, writeCSVResultsForRecord(w, sampleRecord(), fmtFloat, intFmt))
	w.Flush()

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	// Header plus one row per catalogue key
	require.Len(t, rows, schema.CatalogueSize()+1)
	assert.Equal(t, []string{"family", "metric", "value"}, rows[0])

	byMetric := make(map[string][]string)
	for _, row := range rows[1:] {
		byMetric[row[1]] = row
	}
	assert.Equal(t, "summary", byMetric["commits_count"][0])
	assert.Equal(t, "42", byMetric["commits_count"][2])
	assert.Equal(t, "null", byMetric["stargazers_count"][2])
	assert.Equal(t, "true", byMetric["has_license"][2])
}

func TestPrintMetricRecordJSONToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "record.json")

	require.NoError(t, PrintMetricRecord(sampleRecord(), cfg, time.Second))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, schema.CatalogueSize())
	assert.Equal(t, float64(42), decoded["commits_count"])
	assert.Nil(t, decoded["stargazers_count"])
}

func sampleBatchResult() *schema.BatchResult {
	result := schema.NewBatchResult()

	rec := sampleRecord()
	result.Metrics["github.com/acme/widgets"] = rec
	result.States["github.com/acme/widgets"] = schema.SucceededState

	result.Metrics["github.com/acme/legacy"] = rec
	result.States["github.com/acme/legacy"] = schema.CachedState

	result.Errors["github.com/acme/broken"] = schema.RepoError{
		RepoID:   "github.com/acme/broken",
		Message:  "clone failed: repository not found",
		FailedAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
	result.States["github.com/acme/broken"] = schema.FailedState

	return result
}

func TestWriteBatchTables(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()

	err := writeBatchTables(sampleBatchResult(), cfg, 2*time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "github.com/acme/widgets")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "cached")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "clone failed: repository not found")
	assert.Contains(t, out, "1 succeeded, 1 cached, 1 failed")
}

func TestPrintBatchResultsCSVToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "batch.csv")

	require.NoError(t, PrintBatchResults(sampleBatchResult(), cfg, time.Second))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// Header, one row per key for both successful repos, one failure row
	require.Len(t, rows, 2*schema.CatalogueSize()+2)
	assert.Equal(t, []string{"repo_id", "state", "metric", "value"}, rows[0])

	var failureRow []string
	for _, row := range rows[1:] {
		if row[2] == "failure_message" {
			failureRow = row
		}
	}
	require.NotNil(t, failureRow)
	assert.Equal(t, "github.com/acme/broken", failureRow[0])
	assert.Equal(t, string(schema.FailedState), failureRow[1])
	assert.Equal(t, "clone failed: repository not found", failureRow[3])
}

func TestPrintBatchResultsJSONRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "batch.json")

	require.NoError(t, PrintBatchResults(sampleBatchResult(), cfg, time.Second))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded schema.BatchResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Metrics, 2)
	assert.Len(t, decoded.Errors, 1)
	assert.Equal(t, schema.FailedState, decoded.States["github.com/acme/broken"])
}
