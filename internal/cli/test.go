package cli

import (
	"fmt"

	"github.com/jaa/ctsong/internal/doctor"
	"github.com/jaa/ctsong/internal/exitcode"
	"github.com/spf13/cobra"
)

func newTestCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check the connection to ChurchTools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := ensurePassword(app, &cfg); err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}

			ctx := commandContext(cmd)

			checker := doctor.NewChecker()
			var report doctor.Report
			client, clientErr := newClient(cfg)
			if clientErr != nil {
				report = doctor.Report{Checks: []doctor.Check{{Severity: doctor.SeverityError, Name: "config", Message: clientErr.Error()}}}
			} else {
				report = checker.Check(ctx, cfg, client)
			}

			if app.Opts.JSON {
				if err := printJSON(app.IO.Out, report); err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
			} else {
				for _, check := range report.Checks {
					if app.Opts.Quiet && check.Severity == doctor.SeverityInfo {
						continue
					}
					fmt.Fprintf(app.IO.Out, "[%s] %s: %s\n", check.Severity, check.Name, check.Message)
				}
			}

			if failed, ok := report.FirstError(); ok {
				code := exitcode.ConnectionFailure
				if failed.Name == "config" {
					code = exitcode.InvalidConfig
				}
				return withExitCode(code, fmt.Errorf("connection test failed: %s", failed.Message))
			}
			return nil
		},
	}
}
