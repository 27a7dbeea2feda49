package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// Table names for the consolidated batch results.
const (
	metricsTable = "repo_metrics"
	errorsTable  = "repo_errors"
)

// ResultStoreImpl implements the ResultStore interface over the repo_metrics
// and repo_errors tables. Metric records are stored as one JSON document per
// repository so the metric catalogue can evolve without schema migrations.
type ResultStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// NewResultStore creates a new ResultStore with the specified backend.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (contract.ResultStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetResultsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &ResultStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the server is running and accessible", backend, err)
	}

	if err := createResultTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result tables: %w", err)
	}

	return &ResultStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createResultTables creates the metrics and errors tables.
func createResultTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{metricsTable, getCreateMetricsQuery(backend)},
		{errorsTable, getCreateErrorsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateMetricsQuery returns the CREATE TABLE query for repo_metrics.
// Timestamps are stored as unix seconds on every backend so reads never
// depend on driver-specific datetime scanning.
func getCreateMetricsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id VARCHAR(512) PRIMARY KEY,
				record JSON NOT NULL,
				processed_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id TEXT PRIMARY KEY,
				record JSONB NOT NULL,
				processed_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id TEXT PRIMARY KEY,
				record TEXT NOT NULL,
				processed_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateErrorsQuery returns the CREATE TABLE query for repo_errors.
func getCreateErrorsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(errorsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id VARCHAR(512) PRIMARY KEY,
				message TEXT NOT NULL,
				failed_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id TEXT PRIMARY KEY,
				message TEXT NOT NULL,
				failed_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repo_id TEXT PRIMARY KEY,
				message TEXT NOT NULL,
				failed_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// UpsertMetrics merges one metric record into the metrics table. The last
// write for a repository identity wins, so retries are idempotent.
func (rs *ResultStoreImpl) UpsertMetrics(repoID string, rec schema.MetricRecord, processedAt time.Time) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal metric record for %s: %w", repoID, err)
	}

	quotedTableName := quoteTableName(metricsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, record, processed_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE record = new.record, processed_at = new.processed_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, record, processed_at) VALUES ($1, $2, $3)
			ON CONFLICT (repo_id) DO UPDATE SET record = EXCLUDED.record, processed_at = EXCLUDED.processed_at`, quotedTableName)

	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (repo_id, record, processed_at) VALUES (?, ?, ?)`, quotedTableName)
	}

	if _, err := rs.db.Exec(query, repoID, string(data), processedAt.Unix()); err != nil {
		return fmt.Errorf("failed to upsert metrics for %s: %w", repoID, err)
	}
	return nil
}

// UpsertError merges one failure into the errors table.
func (rs *ResultStoreImpl) UpsertError(e schema.RepoError) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(errorsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, message, failed_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE message = new.message, failed_at = new.failed_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (repo_id, message, failed_at) VALUES ($1, $2, $3)
			ON CONFLICT (repo_id) DO UPDATE SET message = EXCLUDED.message, failed_at = EXCLUDED.failed_at`, quotedTableName)

	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (repo_id, message, failed_at) VALUES (?, ?, ?)`, quotedTableName)
	}

	if _, err := rs.db.Exec(query, e.RepoID, e.Message, e.FailedAt.Unix()); err != nil {
		return fmt.Errorf("failed to upsert error for %s: %w", e.RepoID, err)
	}
	return nil
}

// ListMetricsKeys returns the repository identities present in the metrics table.
func (rs *ResultStoreImpl) ListMetricsKeys() ([]string, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(metricsTable, rs.backend)
	query := fmt.Sprintf("SELECT repo_id FROM %s ORDER BY repo_id", quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan metrics key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics keys: %w", err)
	}

	return keys, nil
}

// LoadMetricsTable reads the full metrics table keyed by repository identity.
func (rs *ResultStoreImpl) LoadMetricsTable() (map[string]schema.MetricRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(metricsTable, rs.backend)
	query := fmt.Sprintf("SELECT repo_id, record FROM %s ORDER BY repo_id", quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make(map[string]schema.MetricRecord)
	for rows.Next() {
		var repoID string
		var data []byte
		if err := rows.Scan(&repoID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}

		var rec schema.MetricRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metric record for %s: %w", repoID, err)
		}
		results[repoID] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics table: %w", err)
	}

	return results, nil
}

// LoadErrorsTable reads the full errors table keyed by repository identity.
func (rs *ResultStoreImpl) LoadErrorsTable() (map[string]schema.RepoError, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(errorsTable, rs.backend)
	query := fmt.Sprintf("SELECT repo_id, message, failed_at FROM %s ORDER BY repo_id", quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make(map[string]schema.RepoError)
	for rows.Next() {
		var e schema.RepoError
		var failedAt int64
		if err := rows.Scan(&e.RepoID, &e.Message, &failedAt); err != nil {
			return nil, fmt.Errorf("failed to scan errors row: %w", err)
		}
		e.FailedAt = time.Unix(failedAt, 0).UTC()
		results[e.RepoID] = e
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating errors table: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the result store.
func (rs *ResultStoreImpl) GetStatus() (schema.ResultStoreStatus, error) {
	status := schema.ResultStoreStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	metricsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(metricsTable, rs.backend))
	row := rs.db.QueryRow(metricsQuery)
	if err := row.Scan(&status.MetricsRows); err != nil {
		return status, fmt.Errorf("failed to get metrics row count: %w", err)
	}

	errorsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(errorsTable, rs.backend))
	row = rs.db.QueryRow(errorsQuery)
	if err := row.Scan(&status.ErrorRows); err != nil {
		return status, fmt.Errorf("failed to get errors row count: %w", err)
	}

	if status.MetricsRows > 0 {
		lastQuery := fmt.Sprintf("SELECT MAX(processed_at) FROM %s", quoteTableName(metricsTable, rs.backend))
		row = rs.db.QueryRow(lastQuery)
		var lastTs int64
		if err := row.Scan(&lastTs); err != nil {
			return status, fmt.Errorf("failed to get last processed time: %w", err)
		}
		status.LastProcessed = time.Unix(lastTs, 0)
	}

	return status, nil
}
