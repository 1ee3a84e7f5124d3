package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "opd-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for a fetch run.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// InputFile is the spreadsheet or CSV file containing publication numbers.
	InputFile string `json:"input_file" yaml:"input_file"`

	// InputColumn is the header of the column holding publication numbers.
	InputColumn string `json:"input_column" yaml:"input_column"`

	// OutputDir is the directory downloaded result files are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MetadataDir is the directory per-case YAML records are written to.
	MetadataDir string `json:"metadata_dir" yaml:"metadata_dir"`

	// LogPath is the CSV run log path. A timestamp-suffixed alternate is
	// used when this path cannot be written.
	LogPath string `json:"log_path" yaml:"log_path"`

	// IncludeKeywords restricts downloads to files whose display name
	// contains at least one keyword (case-insensitive). Empty means all.
	IncludeKeywords []string `json:"include_keywords,omitempty" yaml:"include_keywords,omitempty"`

	// MaxAttempts is the bounded-retry attempt count for API calls (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// CaseDelay is the fixed delay between consecutive cases (default 250ms).
	CaseDelay time.Duration `json:"case_delay" yaml:"case_delay"`
}
