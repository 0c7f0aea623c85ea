package auth

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

const keychainService = "ctsong"

var ErrTokenNotFound = errors.New("api token not found")

type commandRunner func(name string, args ...string) ([]byte, error)

// TokenResolver looks up the API token of an installation outside the config
// files: CTSONG_API_TOKEN first, then the macOS keychain entry for the URL.
type TokenResolver struct {
	Getenv  func(string) string
	Command commandRunner
}

func ResolveToken(apiURL string) (string, error) {
	return TokenResolver{
		Getenv:  os.Getenv,
		Command: runCommandOutput,
	}.Resolve(apiURL)
}

func (r TokenResolver) Resolve(apiURL string) (string, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv("CTSONG_API_TOKEN")); value != "" {
		return value, nil
	}
	if strings.TrimSpace(apiURL) == "" {
		return "", ErrTokenNotFound
	}

	command := r.Command
	if command == nil {
		command = runCommandOutput
	}
	raw, err := command(
		"security",
		"find-generic-password",
		"-s", keychainService,
		"-a", apiURL,
		"-w",
	)
	if err != nil {
		return "", ErrTokenNotFound
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", ErrTokenNotFound
	}
	return value, nil
}

func runCommandOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
