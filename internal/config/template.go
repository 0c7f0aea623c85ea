package config

import "fmt"

func DefaultTemplate() string {
	defaults := DefaultConfig()
	return fmt.Sprintf(`version: 1
api_url: "https://example.church.tools/api"
# api_token: "replace-me"
# username: "replace-me"
# source_id: 1
song_category: 1
arrangement_name: %q
attachment_mode: %q
max_retries: %d
retry_backoff_ms: %d
timeout_seconds: %d
`, defaults.ArrangementName, defaults.AttachmentMode, defaults.MaxRetries, defaults.RetryBackoffMS, defaults.TimeoutSeconds)
}
