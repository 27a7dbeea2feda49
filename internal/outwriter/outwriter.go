// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRecord prints one repository's metric record using the configured output format.
func (ow *OutWriter) WriteRecord(rec schema.MetricRecord, cfg *contract.Config, duration time.Duration) error {
	return PrintMetricRecord(rec, cfg, duration)
}

// WriteBatch prints consolidated batch results using the configured output format.
func (ow *OutWriter) WriteBatch(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	return PrintBatchResults(result, cfg, duration)
}
