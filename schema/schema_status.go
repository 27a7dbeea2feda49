package schema

import "time"

// CacheStatus represents the status of the activity cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// ResultStoreStatus represents the status of the metrics/errors result store.
type ResultStoreStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	MetricsRows   int       `json:"metrics_rows"`
	ErrorRows     int       `json:"error_rows"`
	LastProcessed time.Time `json:"last_processed"`
}
