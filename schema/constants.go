package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// ConcurrencyMode represents how the batch orchestrator dispatches work.
	ConcurrencyMode string

	// DatabaseBackend represents the database backend for caching and results.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All concurrency modes supported. Parallelism is configuration, not
// semantics: batch output is identical regardless of mode.
const (
	SequentialMode  ConcurrencyMode = "sequential"
	ThreadPoolMode  ConcurrencyMode = "threads" // default
	DistributedMode ConcurrencyMode = "distributed"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidConcurrencyModes lists all valid concurrency modes.
var ValidConcurrencyModes = map[ConcurrencyMode]struct{}{
	SequentialMode:  {},
	ThreadPoolMode:  {},
	DistributedMode: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
