// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New(); Load layers a YAML file and env vars on top.
// - Validation failures wrap ErrInvalidConfig, load failures wrap ErrLoadConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RecentWindow is how many of the most recent matches the windowed
	// features read.
	RecentWindow int `koanf:"recent_window"`

	// HistorySource selects the match history loader: "file" or "http".
	HistorySource string `koanf:"history_source"`

	// HistoryDir holds "<player>_matches.csv" files for the file source.
	HistoryDir string `koanf:"history_dir"`

	// HistoryURL is the base URL of the http source.
	HistoryURL string `koanf:"history_url"`

	// HTTPTimeoutMS bounds one request to the http source.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// HTTPMaxRetries is how many times a failed request is retried.
	HTTPMaxRetries int `koanf:"http_max_retries"`

	// HTTPRateLimit caps requests per second to the http source.
	HTTPRateLimit float64 `koanf:"http_rate_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		RecentWindow:   10,
		HistorySource:  "file",
		HistoryDir:     ".",
		HTTPTimeoutMS:  30_000,
		HTTPMaxRetries: 3,
		HTTPRateLimit:  5,
	}
}
