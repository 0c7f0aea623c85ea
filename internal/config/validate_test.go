package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.APIURL = "https://example.church.tools/api"
	cfg.APIToken = "token"
	return cfg
}

func TestValidateSuccess(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateFailure(t *testing.T) {
	cfg := Config{
		Version:        2,
		APIURL:         "ftp://example",
		AttachmentMode: "merge",
		MaxRetries:     -1,
		TimeoutSeconds: 0,
	}

	err := Validate(cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Problems) < 5 {
		t.Fatalf("expected multiple problems, got %v", validationErr.Problems)
	}
}

func TestValidateForCommands(t *testing.T) {
	cfg := validConfig()

	err := ValidateForImport(cfg)
	if err == nil || !strings.Contains(err.Error(), "song_category") {
		t.Fatalf("expected song_category problem, got %v", err)
	}
	err = ValidateForDelete(cfg)
	if err == nil || !strings.Contains(err.Error(), "source_id") {
		t.Fatalf("expected source_id problem, got %v", err)
	}

	cfg.SongCategory = 1
	cfg.SourceID = 4
	if err := ValidateForImport(cfg); err != nil {
		t.Fatalf("expected import config to be valid, got %v", err)
	}
	if err := ValidateForDelete(cfg); err != nil {
		t.Fatalf("expected delete config to be valid, got %v", err)
	}
}

func TestDefaultTemplateLoads(t *testing.T) {
	tmp := isolateHome(t)
	path := tmp + "/template.yaml"
	writeFile(t, path, DefaultTemplate())

	cfg, err := Load(LoadOptions{ExplicitPath: path, WorkingDir: tmp, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.SongCategory != 1 || cfg.AttachmentMode != DefaultAttachmentMode {
		t.Fatalf("unexpected template config %+v", cfg)
	}
}
