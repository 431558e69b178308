package config

import "time"

// Default values for configuration fields.
const (
	// DefaultFetchTimeout is the default timeout of a single fetch attempt.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultRetryDelay is the default initial delay between fetch retries.
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxIncludeDepth is the default include nesting limit.
	DefaultMaxIncludeDepth = 32

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "INFO"
)

// setDefaults applies default values to unset configuration fields.
// This modifies the config in-place and should be called after parsing
// the configuration and before validation.
//
// Most callers should use LoadConfig() instead. This function is primarily
// useful for testing default application independently from YAML parsing.
func setDefaults(cfg *Config) {
	// Render defaults
	// Note: Concurrency 0 means unbounded, so we don't set a default
	if cfg.Render.MaxIncludeDepth == 0 {
		cfg.Render.MaxIncludeDepth = DefaultMaxIncludeDepth
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}

	// Fetch durations stay as configured; the getters below fall back to
	// the defaults.
}

// GetTimeout returns the configured fetch timeout or the default if not
// specified or invalid.
func (f *FetchConfig) GetTimeout() time.Duration {
	if f.Timeout != "" {
		if duration, err := time.ParseDuration(f.Timeout); err == nil {
			return duration
		}
	}
	return DefaultFetchTimeout
}

// GetRetryDelay returns the configured retry delay or the default if not
// specified or invalid.
func (f *FetchConfig) GetRetryDelay() time.Duration {
	if f.RetryDelay != "" {
		if duration, err := time.ParseDuration(f.RetryDelay); err == nil {
			return duration
		}
	}
	return DefaultRetryDelay
}
