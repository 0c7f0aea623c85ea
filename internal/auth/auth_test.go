package auth

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestTokenResolverPrefersEnv(t *testing.T) {
	resolver := TokenResolver{
		Getenv: func(key string) string {
			if key == "CTSONG_API_TOKEN" {
				return " env-token "
			}
			return ""
		},
		Command: func(name string, args ...string) ([]byte, error) {
			return nil, errors.New("should not execute command")
		},
	}

	got, err := resolver.Resolve("https://example.church.tools/api")
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if got != "env-token" {
		t.Fatalf("unexpected token. got=%q", got)
	}
}

func TestTokenResolverUsesKeychainLookupPerURL(t *testing.T) {
	var gotArgs []string
	resolver := TokenResolver{
		Getenv: func(key string) string { return "" },
		Command: func(name string, args ...string) ([]byte, error) {
			gotArgs = args
			return []byte("keychain-token\n"), nil
		},
	}

	got, err := resolver.Resolve("https://example.church.tools/api")
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if got != "keychain-token" {
		t.Fatalf("unexpected token. got=%q", got)
	}
	if strings.Join(gotArgs, " ") != "find-generic-password -s ctsong -a https://example.church.tools/api -w" {
		t.Fatalf("unexpected keychain lookup %v", gotArgs)
	}
}

func TestTokenResolverNotFound(t *testing.T) {
	resolver := TokenResolver{
		Getenv: func(key string) string { return "" },
		Command: func(name string, args ...string) ([]byte, error) {
			return nil, errors.New("not found")
		},
	}

	_, err := resolver.Resolve("https://example.church.tools/api")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestPasswordPrompterReadsHiddenInput(t *testing.T) {
	out := &bytes.Buffer{}
	prompter := PasswordPrompter{
		In:           os.Stdin,
		Out:          out,
		IsTerminal:   func(fd int) bool { return true },
		ReadPassword: func(fd int) ([]byte, error) { return []byte("secret"), nil },
	}

	got, err := prompter.Prompt("ada")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if got != "secret" {
		t.Fatalf("unexpected password %q", got)
	}
	if !strings.Contains(out.String(), "Password for ada:") {
		t.Fatalf("expected prompt text, got %q", out.String())
	}
}

func TestPasswordPrompterRequiresTerminal(t *testing.T) {
	prompter := PasswordPrompter{
		In:         os.Stdin,
		IsTerminal: func(fd int) bool { return false },
	}

	if _, err := prompter.Prompt("ada"); !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("expected ErrNoTerminal, got %v", err)
	}
}
