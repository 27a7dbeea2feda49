package contract

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/evamaxfield/repo-statistics/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	MaxPrecision     = 6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultBotNameIndicators are the built-in name substrings marking a commit
// as bot-authored.
var DefaultBotNameIndicators = []string{
	"[bot]", "dependabot", "renovate", "greenkeeper",
	"github-actions", "travis", "circleci", "codecov", "snyk",
}

// DefaultBotEmailIndicators are the built-in email substrings marking a
// commit as bot-authored.
var DefaultBotEmailIndicators = []string{
	"[bot]", "dependabot", "renovate", "actions@github.com",
}

// Config holds the runtime configuration for an analysis or batch run.
// This struct remains the "final, validated" config.
type Config struct {
	Repos []string

	// Analysis window [StartTime, EndTime); zero values leave that side open.
	StartTime time.Time
	EndTime   time.Time

	// Feature toggles, one per metric family group.
	ComputeTimeseries              bool
	ComputeContributorStability    bool
	ComputeContributorAbsence      bool
	ComputeContributorDistribution bool
	ComputeRepoLinter              bool
	ComputeTags                    bool
	ComputePlatform                bool

	// Bot exclusion indicator lists; empty slices disable that check.
	BotNameIndicators  []string
	BotEmailIndicators []string

	Workers             int
	Concurrency         schema.ConcurrencyMode
	BatchSize           int // Absolute dispatch chunk, resolved against len(Repos)
	IgnoreCachedResults bool

	GithubToken string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	UseColors  bool
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	ResultBackend   schema.DatabaseBackend
	ResultDBConnect string // Please use env var as this is plaintext
}

// Clone returns a copy of the config that is safe to mutate per request.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Repos = append([]string(nil), c.Repos...)
	clone.BotNameIndicators = append([]string(nil), c.BotNameIndicators...)
	clone.BotEmailIndicators = append([]string(nil), c.BotEmailIndicators...)
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Repos []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Start           string `mapstructure:"start"`
	End             string `mapstructure:"end"`
	Workers         int    `mapstructure:"workers"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Color           string `mapstructure:"color"`
	Width           int    `mapstructure:"width"`
	GithubToken     string `mapstructure:"github-token"`
	BotNames        string `mapstructure:"bot-names"`
	BotEmails       string `mapstructure:"bot-emails"`
	CacheBackend    string `mapstructure:"cache-backend"`
	CacheDBConnect  string `mapstructure:"cache-db-connect"`
	ResultBackend   string `mapstructure:"results-backend"`
	ResultDBConnect string `mapstructure:"results-db-connect"`

	// --- Metric family toggles ---
	Timeseries              string `mapstructure:"timeseries"`
	ContributorStability    string `mapstructure:"contributor-stability"`
	ContributorAbsence      string `mapstructure:"absence-factor"`
	ContributorDistribution string `mapstructure:"contributor-distribution"`
	RepoLinter              string `mapstructure:"repo-linter"`
	Tags                    string `mapstructure:"tags"`
	Platform                string `mapstructure:"platform"`

	// --- Fields from batchCmd.Flags() ---
	Concurrency         string `mapstructure:"concurrency"`
	BatchSize           string `mapstructure:"batch-size"`
	IgnoreCachedResults bool   `mapstructure:"ignore-cached-results"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeWindow(cfg, input); err != nil {
		return err
	}
	if err := processToggles(cfg, input); err != nil {
		return err
	}
	if err := processBotIndicators(cfg, input); err != nil {
		return err
	}
	if err := processBatchOptions(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and result store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.ResultBackend = schema.DatabaseBackend(strings.ToLower(input.ResultBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultBackend]; !ok {
		return fmt.Errorf("invalid results backend '%s'. must be sqlite, mysql, postgresql, none", input.ResultBackend)
	}
	cfg.ResultDBConnect = input.ResultDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ResultBackend, cfg.ResultDBConnect); err != nil {
		return err
	}

	// Cache and result storage must not share a SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.ResultBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		resultPath := cfg.ResultDBConnect
		if resultPath == "" {
			resultPath = GetResultsDBFilePath()
		}
		if cachePath == resultPath {
			return fmt.Errorf("cache and results storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-window fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Repos = input.Repos
	cfg.OutputFile = input.OutputFile
	cfg.GithubToken = input.GithubToken
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	return validateBackendConfigs(cfg, input)
}

// processTimeWindow parses the optional [start, end) analysis window.
func processTimeWindow(cfg *Config, input *ConfigRawInput) error {
	now := time.Now().UTC()

	if input.Start != "" {
		t, err := ParseTimeBound(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start bound: %w", err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseTimeBound(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end bound: %w", err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && !cfg.StartTime.Before(cfg.EndTime) {
		return fmt.Errorf("start time (%s) must be before end time (%s)",
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// processToggles parses the per-family boolean toggles. The platform family
// also needs credentials, so enabling it without a token is rejected here
// rather than failing later inside the collaborator.
func processToggles(cfg *Config, input *ConfigRawInput) error {
	for _, t := range []struct {
		raw   string
		label string
		dst   *bool
	}{
		{input.Timeseries, "timeseries", &cfg.ComputeTimeseries},
		{input.ContributorStability, "contributor-stability", &cfg.ComputeContributorStability},
		{input.ContributorAbsence, "absence-factor", &cfg.ComputeContributorAbsence},
		{input.ContributorDistribution, "contributor-distribution", &cfg.ComputeContributorDistribution},
		{input.RepoLinter, "repo-linter", &cfg.ComputeRepoLinter},
		{input.Tags, "tags", &cfg.ComputeTags},
		{input.Platform, "platform", &cfg.ComputePlatform},
	} {
		v, err := ParseBoolString(t.raw)
		if err != nil {
			return fmt.Errorf("invalid --%s value: %w", t.label, err)
		}
		*t.dst = v
	}

	if cfg.ComputePlatform && cfg.GithubToken == "" {
		return fmt.Errorf("platform metrics require a GitHub token (--github-token or REPOSTAT_GITHUB_TOKEN)")
	}
	return nil
}

// processBotIndicators resolves the bot exclusion lists. An unset input uses
// the built-in defaults; the literal "none" disables that check entirely.
func processBotIndicators(cfg *Config, input *ConfigRawInput) error {
	resolve := func(raw string, defaults []string) []string {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "default":
			return defaults
		case "none":
			return nil
		}
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	cfg.BotNameIndicators = resolve(input.BotNames, DefaultBotNameIndicators)
	cfg.BotEmailIndicators = resolve(input.BotEmails, DefaultBotEmailIndicators)
	return nil
}

// processBatchOptions parses concurrency mode and batch size. Both tune
// dispatch only and never change metric values.
func processBatchOptions(cfg *Config, input *ConfigRawInput) error {
	mode := schema.ConcurrencyMode(strings.ToLower(input.Concurrency))
	if mode == "" {
		mode = schema.ThreadPoolMode
	}
	if _, ok := schema.ValidConcurrencyModes[mode]; !ok {
		return fmt.Errorf("invalid concurrency mode '%s'. must be sequential, threads, distributed", input.Concurrency)
	}
	cfg.Concurrency = mode
	if cfg.Concurrency == schema.SequentialMode {
		cfg.Workers = 1
	}

	size, err := ResolveBatchSize(input.BatchSize, len(cfg.Repos))
	if err != nil {
		return err
	}
	cfg.BatchSize = size

	cfg.IgnoreCachedResults = input.IgnoreCachedResults
	return nil
}

// ResolveBatchSize parses a batch size given either as an absolute count
// ("50") or as a proportion of the input list ("0.25"). An empty input
// dispatches everything as one chunk. The result is clamped to [1, total]
// when total is positive.
func ResolveBatchSize(raw string, total int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if total < 1 {
			return 1, nil
		}
		return total, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("batch size must be at least 1 (received %d)", n)
		}
		if total > 0 && n > total {
			n = total
		}
		return n, nil
	}

	frac, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid batch size '%s'. Expected an integer count or a proportion in (0, 1]", raw)
	}
	if frac <= 0 || frac > 1 {
		return 0, fmt.Errorf("batch size proportion must be in (0, 1] (received %g)", frac)
	}
	n := int(math.Ceil(frac * float64(total)))
	if n < 1 {
		n = 1
	}
	return n, nil
}
