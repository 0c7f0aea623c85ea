package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

func Validate(cfg Config) error {
	return validationError(problems(cfg))
}

// ValidateForImport additionally requires a category for created songs.
func ValidateForImport(cfg Config) error {
	found := problems(cfg)
	if cfg.SongCategory <= 0 {
		found = append(found, "song_category must be set to import songs")
	}
	return validationError(found)
}

// ValidateForDelete additionally requires the source id of imported
// arrangements.
func ValidateForDelete(cfg Config) error {
	found := problems(cfg)
	if cfg.SourceID <= 0 {
		found = append(found, "source_id must be set to delete imported songs")
	}
	return validationError(found)
}

func validationError(problems []string) error {
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func problems(cfg Config) []string {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		problems = append(problems, "api_url must be set")
	} else if err := validateURL(cfg.APIURL); err != nil {
		problems = append(problems, fmt.Sprintf("api_url is invalid: %v", err))
	}

	if !cfg.HasCredentials() {
		problems = append(problems, "api_token or username must be set")
	}

	if cfg.SourceID < 0 {
		problems = append(problems, "source_id must be >= 0")
	}
	if cfg.SongCategory < 0 {
		problems = append(problems, "song_category must be >= 0")
	}
	if !slices.Contains(AttachmentModes, cfg.AttachmentMode) {
		problems = append(problems, fmt.Sprintf("attachment_mode %q must be one of %s", cfg.AttachmentMode, strings.Join(AttachmentModes, ", ")))
	}
	if cfg.PageSize < 0 {
		problems = append(problems, "page_size must be >= 0")
	}
	if cfg.MaxRetries < 0 {
		problems = append(problems, "max_retries must be >= 0")
	}
	if cfg.RetryBackoffMS < 0 {
		problems = append(problems, "retry_backoff_ms must be >= 0")
	}
	if cfg.RequestsPerSecond < 0 {
		problems = append(problems, "requests_per_second must be >= 0")
	}
	if cfg.TimeoutSeconds <= 0 {
		problems = append(problems, "timeout_seconds must be > 0")
	}

	return problems
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
