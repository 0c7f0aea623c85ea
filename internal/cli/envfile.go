package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnvFiles applies .env and then .env.local from cwd. Variables
// already present in environ are never overwritten.
func loadDotEnvFiles(cwd string, environ []string, setenv func(string, string) error) error {
	if strings.TrimSpace(cwd) == "" {
		return nil
	}
	if setenv == nil {
		return fmt.Errorf("setenv is required")
	}

	protected := map[string]struct{}{}
	for _, pair := range environ {
		key, _, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		protected[key] = struct{}{}
	}

	files := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, ".env.local"),
	}
	for _, file := range files {
		if err := applyDotEnvFile(file, protected, setenv); err != nil {
			return err
		}
	}
	return nil
}

func applyDotEnvFile(path string, protected map[string]struct{}, setenv func(string, string) error) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, exists := protected[key]; exists {
			continue
		}
		if err := setenv(key, values[key]); err != nil {
			return fmt.Errorf("set %s from %s: %w", key, path, err)
		}
	}
	return nil
}
