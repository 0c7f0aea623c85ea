package config

import "time"

const (
	DefaultArrangementName = "SongBeamer"
	DefaultAttachmentMode  = "skip"
)

var AttachmentModes = []string{"add", "skip", "replace"}

type Config struct {
	Version           int     `yaml:"version"`
	APIURL            string  `yaml:"api_url"`
	APIToken          string  `yaml:"api_token,omitempty"`
	Username          string  `yaml:"username,omitempty"`
	Password          string  `yaml:"password,omitempty"`
	SourceID          int     `yaml:"source_id,omitempty"`
	SongCategory      int     `yaml:"song_category,omitempty"`
	ArrangementName   string  `yaml:"arrangement_name"`
	AttachmentMode    string  `yaml:"attachment_mode"`
	PageSize          int     `yaml:"page_size,omitempty"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryBackoffMS    int     `yaml:"retry_backoff_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Version:         1,
		ArrangementName: DefaultArrangementName,
		AttachmentMode:  DefaultAttachmentMode,
		MaxRetries:      5,
		RetryBackoffMS:  1000,
		TimeoutSeconds:  30,
	}
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasCredentials reports whether a token or a username is configured.
func (c Config) HasCredentials() bool {
	return c.APIToken != "" || c.Username != ""
}
