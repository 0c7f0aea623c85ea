package cli

import (
	"fmt"
	"os"

	"github.com/jaa/ctsong/internal/exitcode"
	"github.com/spf13/cobra"
)

func Execute(build BuildInfo, streams IOStreams) int {
	if wd, err := os.Getwd(); err == nil {
		if envErr := loadDotEnvFiles(wd, os.Environ(), os.Setenv); envErr != nil {
			fmt.Fprintln(streams.ErrOut, "WARN:", envErr)
		}
	}

	app := &AppContext{Build: build, IO: streams}
	root := newRootCommand(app)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(streams.ErrOut, "ERROR:", err)
		return mapExitCode(err)
	}
	return exitcode.Success
}

func newRootCommand(app *AppContext) *cobra.Command {
	showVersion := false

	root := &cobra.Command{
		Use:   "ctsong",
		Short: "Import SongBeamer songs into ChurchTools",
		Long:  "ctsong matches local SongBeamer .sng files against the ChurchTools song database, creates or updates songs and arrangements, and attaches the files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(app)
				return nil
			}
			return cmd.Help()
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	defaultConfigPath := os.Getenv("CTSONG_CONFIG")
	flags := root.PersistentFlags()
	flags.StringVarP(&app.Opts.ConfigPath, "config", "c", defaultConfigPath, "Path to config file")
	flags.StringVarP(&app.Opts.APIURL, "api-url", "u", "", "ChurchTools API URL")
	flags.StringVarP(&app.Opts.APIToken, "api-token", "t", "", "ChurchTools API token")
	flags.StringVar(&app.Opts.Username, "username", "", "ChurchTools user name (instead of an API token)")
	flags.StringVar(&app.Opts.Password, "password", "", "ChurchTools password (prompted when omitted)")
	flags.BoolVar(&app.Opts.JSON, "json", false, "Emit newline-delimited JSON events")
	flags.StringVar(&app.Opts.LogFile, "log-file", "", "Also append JSON events to this file")
	flags.BoolVarP(&app.Opts.Quiet, "quiet", "q", false, "Reduce output to errors and summary")
	flags.BoolVarP(&app.Opts.Verbose, "verbose", "v", false, "Increase diagnostic output")
	flags.BoolVar(&app.Opts.NoColor, "no-color", false, "Disable color output")
	flags.BoolVar(&app.Opts.NoInput, "no-input", false, "Disable interactive prompts")
	root.Flags().BoolVar(&showVersion, "version", false, "Print version info")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(exitcode.InvalidUsage, err)
	})

	root.AddCommand(newInitCommand(app))
	root.AddCommand(newValidateCommand(app))
	root.AddCommand(newTestCommand(app))
	root.AddCommand(newImportCommand(app))
	root.AddCommand(newDeleteCommand(app))
	root.AddCommand(newCheckCommand(app))
	root.AddCommand(newVersionCommand(app))

	return root
}

func printVersion(app *AppContext) {
	version := app.Build.Version
	if version == "" {
		version = "dev"
	}
	commit := app.Build.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := app.Build.Date
	if date == "" {
		date = "unknown"
	}

	fmt.Fprintf(app.IO.Out, "ctsong version %s\ncommit: %s\nbuild_date: %s\n", version, commit, date)
}
