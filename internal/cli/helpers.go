package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/jaa/ctsong/internal/auth"
	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/config"
	"github.com/jaa/ctsong/internal/doctor"
	"github.com/jaa/ctsong/internal/exitcode"
	"github.com/jaa/ctsong/internal/output"
)

// loadConfig loads the layered config and applies the global flags on top.
func loadConfig(app *AppContext) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: strings.TrimSpace(app.Opts.ConfigPath),
		WorkingDir:   wd,
	})
	if err != nil {
		return config.Config{}, err
	}

	if value := strings.TrimSpace(app.Opts.APIURL); value != "" {
		cfg.APIURL = strings.TrimRight(value, "/")
	}
	if value := strings.TrimSpace(app.Opts.APIToken); value != "" {
		cfg.APIToken = value
	}
	if value := strings.TrimSpace(app.Opts.Username); value != "" {
		cfg.Username = value
		if app.Opts.APIToken == "" {
			cfg.APIToken = ""
		}
	}
	if app.Opts.Password != "" {
		cfg.Password = app.Opts.Password
	}

	if !cfg.HasCredentials() && cfg.APIURL != "" {
		resolve := app.ResolveToken
		if resolve == nil {
			resolve = auth.ResolveToken
		}
		if token, err := resolve(cfg.APIURL); err == nil {
			cfg.APIToken = token
		}
	}
	return cfg, nil
}

// ensurePassword prompts for the password when logging in with a username.
func ensurePassword(app *AppContext, cfg *config.Config) error {
	if cfg.APIToken != "" || cfg.Username == "" || cfg.Password != "" {
		return nil
	}
	if app.Opts.NoInput {
		return fmt.Errorf("password for %s is required (set --password or CTSONG_PASSWORD)", cfg.Username)
	}

	prompt := app.PromptPassword
	if prompt == nil {
		in, ok := app.IO.In.(*os.File)
		if !ok {
			return fmt.Errorf("password for %s is required: %w", cfg.Username, auth.ErrNoTerminal)
		}
		prompt = auth.NewPasswordPrompter(in, app.IO.ErrOut).Prompt
	}
	password, err := prompt(cfg.Username)
	if err != nil {
		return fmt.Errorf("password for %s is required: %w", cfg.Username, err)
	}
	cfg.Password = password
	return nil
}

func newClient(cfg config.Config) (*churchtools.Client, error) {
	return churchtools.New(cfg.APIURL,
		churchtools.WithToken(cfg.APIToken),
		churchtools.WithPageSize(cfg.PageSize),
		churchtools.WithRetries(cfg.MaxRetries, cfg.RetryBackoff()),
		churchtools.WithRateLimit(cfg.RequestsPerSecond),
		churchtools.WithTimeout(cfg.Timeout()),
	)
}

// connect authenticates against the API and fetches the CSRF token used by
// all mutating requests.
func connect(ctx context.Context, app *AppContext, cfg config.Config) (*churchtools.Client, error) {
	if err := ensurePassword(app, &cfg); err != nil {
		return nil, withExitCode(exitcode.InvalidUsage, err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}

	if cfg.APIToken == "" {
		if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return nil, withExitCode(exitcode.ConnectionFailure, err)
		}
	}
	person, err := client.Whoami(ctx)
	if err != nil {
		return nil, withExitCode(exitcode.ConnectionFailure, err)
	}
	if !app.Opts.JSON && !app.Opts.Quiet {
		fmt.Fprintln(app.IO.Out, doctor.AuthenticatedMessage(person))
	}
	if err := client.FetchCSRFToken(ctx); err != nil {
		if errors.Is(err, churchtools.ErrNoCSRFToken) {
			return nil, withExitCode(exitcode.ConnectionFailure, fmt.Errorf("could not acquire CSRF token: %w", err))
		}
		return nil, withExitCode(exitcode.ConnectionFailure, err)
	}
	return client, nil
}

// newEmitter returns the console emitter, fanned out to --log-file when set.
// The returned close function releases the log file.
func newEmitter(app *AppContext) (output.EventEmitter, func() error, error) {
	var console output.EventEmitter
	if app.Opts.JSON {
		console = output.NewJSONEmitter(app.IO.Out)
	} else {
		colorize := !app.Opts.NoColor && output.SupportsColor(app.IO.ErrOut)
		console = output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, app.Opts.Verbose, colorize)
	}

	path := strings.TrimSpace(app.Opts.LogFile)
	if path == "" {
		return console, func() error { return nil }, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(expanded, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return output.NewMultiEmitter(console, output.NewJSONEmitter(file)), file.Close, nil
}

// printJSON writes v as a single JSON line.
func printJSON(w io.Writer, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func isTTY(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func stdinIsTTY(app *AppContext) bool {
	file, ok := app.IO.In.(*os.File)
	return ok && isTTY(file)
}
