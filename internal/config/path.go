package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "ctsong"

func UserConfigPath() (string, error) {
	if strings.TrimSpace(xdg.ConfigHome) == "" {
		return "", fmt.Errorf("resolve user config directory")
	}
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml"), nil
}

// LegacyConfigPath is the home-directory file shared with older ChurchTools
// scripts.
func LegacyConfigPath() (string, error) {
	home := xdg.Home
	if strings.TrimSpace(home) == "" {
		resolved, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		home = resolved
	}
	return filepath.Join(home, ".church-tools.yml"), nil
}

func ProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, appName+".yaml")
}

func ExpandPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(strings.TrimSpace(raw))
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(expanded, "~"), "/"))
	}

	return filepath.Clean(expanded), nil
}
