package schema

// MetricFamily groups related metric keys. The key set of a MetricRecord is
// the union of all families and is stable regardless of which families are
// enabled: disabled families are nulled, never omitted.
type MetricFamily string

// The thirteen metric families of the catalogue.
const (
	FamilyWeeklySeries  MetricFamily = "weekly_series"
	FamilyMonthlySeries MetricFamily = "monthly_series"
	FamilyStability     MetricFamily = "contributor_stability"
	FamilyDistribution  MetricFamily = "contributor_distribution"
	FamilySummary       MetricFamily = "summary"
	FamilyCommitSize    MetricFamily = "commit_size"
	FamilyPlatform      MetricFamily = "platform"
	FamilyTags          MetricFamily = "tags"
	FamilyFileScope     MetricFamily = "file_scope"
	FamilyRepoLinter    MetricFamily = "repo_linter"
	FamilyEpisodes      MetricFamily = "episodes"
	FamilyRecency       MetricFamily = "recency"
	FamilyProvenance    MetricFamily = "provenance"
)

// AllFamilies lists the catalogue families in display order.
var AllFamilies = []MetricFamily{
	FamilyProvenance,
	FamilySummary,
	FamilyWeeklySeries,
	FamilyMonthlySeries,
	FamilyEpisodes,
	FamilyRecency,
	FamilyStability,
	FamilyDistribution,
	FamilyCommitSize,
	FamilyFileScope,
	FamilyTags,
	FamilyRepoLinter,
	FamilyPlatform,
}

// FamilyKeys maps each family to its metric keys, in display order.
var FamilyKeys = map[MetricFamily][]string{
	FamilyWeeklySeries: {
		"weekly_commit_entropy",
		"weekly_commit_variation",
		"weekly_lines_entropy",
		"weekly_lines_variation",
		"weekly_active_frac",
	},
	FamilyMonthlySeries: {
		"monthly_commit_entropy",
		"monthly_commit_variation",
		"monthly_lines_entropy",
		"monthly_lines_variation",
		"monthly_active_frac",
	},
	FamilyStability: {
		"stable_contributors_count",
		"transient_contributors_count",
		"median_contribution_span_days",
		"mean_contribution_span_days",
		"normalized_median_contribution_span",
		"normalized_mean_contribution_span",
	},
	FamilyDistribution: {
		"contributor_commit_gini",
		"contributor_lines_gini",
		"contributor_absence_factor_code",
		"contributor_absence_factor_all",
		"specialization_score",
		"specialist_contributors_count",
		"generalist_contributors_count",
		"turnover_same_count",
		"turnover_change_count",
	},
	FamilySummary: {
		"commits_count",
		"non_bot_commits_count",
		"unique_contributors_count",
		"first_commit_datetime",
		"last_commit_datetime",
		"project_duration_days",
	},
	FamilyCommitSize: {
		"mean_lines_changed",
		"median_lines_changed",
		"substantial_commits_count",
		"mean_commit_interval_hours",
		"median_commit_interval_hours",
	},
	FamilyPlatform: {
		"stargazers_count",
		"forks_count",
		"watchers_count",
		"open_issues_count",
		"primary_language",
	},
	FamilyTags: {
		"tags_count",
		"semver_tags_count",
		"last_tag_datetime",
		"mean_days_between_tags",
	},
	FamilyFileScope: {
		"distinct_files_count",
		"mean_files_per_commit",
		"code_lines_changed_frac",
	},
	FamilyRepoLinter: {
		"has_license",
		"has_readme",
		"has_changelog",
		"has_contributing",
		"has_ci_config",
	},
	FamilyEpisodes: {
		"median_commit_span",
		"mean_commit_span",
		"std_commit_span",
		"median_no_commit_span",
		"mean_no_commit_span",
		"std_no_commit_span",
		"monthly_median_commit_span",
		"monthly_mean_commit_span",
		"monthly_std_commit_span",
		"monthly_median_no_commit_span",
		"monthly_mean_no_commit_span",
		"monthly_std_no_commit_span",
	},
	FamilyRecency: {
		"days_since_last_commit",
		"active_weeks_frac_last_year",
	},
	FamilyProvenance: {
		"repo_id",
		"start_datetime",
		"end_datetime",
		"processed_at",
	},
}

// MetricRecord maps metric name to value. Values are numbers, booleans,
// RFC3339 timestamp strings or small string labels; nil marks a metric
// whose family is disabled or whose computation is undefined for the input.
// The record is JSON-serializable as-is.
type MetricRecord map[string]any

// NewMetricRecord returns a record with every catalogue key present and nil.
func NewMetricRecord() MetricRecord {
	rec := make(MetricRecord, CatalogueSize())
	for _, fam := range AllFamilies {
		for _, key := range FamilyKeys[fam] {
			rec[key] = nil
		}
	}
	return rec
}

// CatalogueSize returns the total number of metric keys.
func CatalogueSize() int {
	var n int
	for _, fam := range AllFamilies {
		n += len(FamilyKeys[fam])
	}
	return n
}

// OrderedKeys returns all metric keys in catalogue display order.
func OrderedKeys() []string {
	keys := make([]string, 0, CatalogueSize())
	for _, fam := range AllFamilies {
		keys = append(keys, FamilyKeys[fam]...)
	}
	return keys
}

// NullFamily resets every key of the given family to nil.
func (r MetricRecord) NullFamily(fam MetricFamily) {
	for _, key := range FamilyKeys[fam] {
		r[key] = nil
	}
}
