package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version           *int     `yaml:"version"`
	APIURL            *string  `yaml:"api_url"`
	APIToken          *string  `yaml:"api_token"`
	Username          *string  `yaml:"username"`
	Password          *string  `yaml:"password"`
	SourceID          *int     `yaml:"source_id"`
	SongCategory      *int     `yaml:"song_category"`
	ArrangementName   *string  `yaml:"arrangement_name"`
	AttachmentMode    *string  `yaml:"attachment_mode"`
	PageSize          *int     `yaml:"page_size"`
	MaxRetries        *int     `yaml:"max_retries"`
	RetryBackoffMS    *int     `yaml:"retry_backoff_ms"`
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	TimeoutSeconds    *int     `yaml:"timeout_seconds"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		path, err := ExpandPath(explicit)
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, path, true); err != nil {
			return Config{}, err
		}
	} else {
		legacyPath, err := LegacyConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, legacyPath, false); err != nil {
			return Config{}, err
		}

		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	mergeString(&cfg.APIURL, fc.APIURL)
	mergeString(&cfg.APIToken, fc.APIToken)
	mergeString(&cfg.Username, fc.Username)
	if fc.Password != nil {
		cfg.Password = *fc.Password
	}
	mergeInt(&cfg.SourceID, fc.SourceID)
	mergeInt(&cfg.SongCategory, fc.SongCategory)
	mergeString(&cfg.ArrangementName, fc.ArrangementName)
	mergeString(&cfg.AttachmentMode, fc.AttachmentMode)
	mergeInt(&cfg.PageSize, fc.PageSize)
	mergeInt(&cfg.MaxRetries, fc.MaxRetries)
	mergeInt(&cfg.RetryBackoffMS, fc.RetryBackoffMS)
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	mergeInt(&cfg.TimeoutSeconds, fc.TimeoutSeconds)
	return nil
}

func mergeString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func mergeInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["CTSONG_API_URL"]); value != "" {
		cfg.APIURL = value
	}
	if value := strings.TrimSpace(env["CTSONG_API_TOKEN"]); value != "" {
		cfg.APIToken = value
	}
	if value := strings.TrimSpace(env["CTSONG_USERNAME"]); value != "" {
		cfg.Username = value
	}
	if value := env["CTSONG_PASSWORD"]; value != "" {
		cfg.Password = value
	}
	if value := strings.TrimSpace(env["CTSONG_SOURCE_ID"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CTSONG_SOURCE_ID value %q: %w", value, err)
		}
		cfg.SourceID = parsed
	}
	if value := strings.TrimSpace(env["CTSONG_SONG_CATEGORY"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CTSONG_SONG_CATEGORY value %q: %w", value, err)
		}
		cfg.SongCategory = parsed
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.AttachmentMode = strings.ToLower(strings.TrimSpace(cfg.AttachmentMode))
	if cfg.AttachmentMode == "" {
		cfg.AttachmentMode = DefaultAttachmentMode
	}
	if strings.TrimSpace(cfg.ArrangementName) == "" {
		cfg.ArrangementName = DefaultArrangementName
	}
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return nil
}
