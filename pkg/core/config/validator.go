package config

import (
	"fmt"
	"net/url"
	"time"

	"flyrender/pkg/core/logging"
)

// maxRetries caps fetch retries; backoff doubles per attempt.
const maxRetries = 10

// ValidateStructure performs basic structural validation on the configuration.
// Validates the template source, durations, value ranges and the log level.
func ValidateStructure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateTemplatesConfig(&cfg.Templates); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	if err := validateFetchConfig(&cfg.Fetch); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := validateRenderConfig(&cfg.Render); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

// validateTemplatesConfig validates the template source.
func validateTemplatesConfig(tc *TemplatesConfig) error {
	if tc.BaseURL == "" && tc.Directory == "" {
		return fmt.Errorf("one of base_url or directory must be set")
	}
	if tc.BaseURL != "" && tc.Directory != "" {
		return fmt.Errorf("base_url and directory are mutually exclusive")
	}

	if tc.BaseURL != "" {
		u, err := url.Parse(tc.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url %q is invalid: %w", tc.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url %q must use http or https", tc.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("base_url %q has no host", tc.BaseURL)
		}
	}

	return nil
}

// validateFetchConfig validates fetch durations, retries and auth.
func validateFetchConfig(fc *FetchConfig) error {
	if err := validateDuration("timeout", fc.Timeout); err != nil {
		return err
	}
	if err := validateDuration("retry_delay", fc.RetryDelay); err != nil {
		return err
	}

	if fc.Retries < 0 || fc.Retries > maxRetries {
		return fmt.Errorf("retries must be between 0 and %d, got %d", maxRetries, fc.Retries)
	}

	if fc.Auth != nil {
		if err := validateAuthConfig(fc.Auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	return nil
}

// validateDuration checks that an optional duration string parses and is positive.
func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s %q is not a valid duration: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, value)
	}

	return nil
}

// validateAuthConfig validates the authentication configuration.
func validateAuthConfig(ac *AuthConfig) error {
	switch ac.Type {
	case "basic":
		if ac.Username == "" {
			return fmt.Errorf("username cannot be empty for basic auth")
		}
	case "bearer":
		if ac.Token == "" {
			return fmt.Errorf("token cannot be empty for bearer auth")
		}
	case "header":
		if len(ac.Headers) == 0 {
			return fmt.Errorf("headers cannot be empty for header auth")
		}
	default:
		return fmt.Errorf("type must be basic, bearer or header, got %q", ac.Type)
	}

	return nil
}

// validateRenderConfig validates the render limits.
func validateRenderConfig(rc *RenderConfig) error {
	if rc.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative, got %d", rc.Concurrency)
	}

	if rc.MaxIncludeDepth < 0 {
		return fmt.Errorf("max_include_depth cannot be negative, got %d", rc.MaxIncludeDepth)
	}

	return nil
}

// validateLoggingConfig validates the logging configuration.
func validateLoggingConfig(lc *LoggingConfig) error {
	if lc.Level != "" && !logging.ValidLevel(lc.Level) {
		return fmt.Errorf("level must be ERROR, WARNING, INFO or DEBUG, got %q", lc.Level)
	}

	return nil
}
