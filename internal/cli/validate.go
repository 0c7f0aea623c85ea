package cli

import (
	"fmt"

	"github.com/jaa/ctsong/internal/config"
	"github.com/jaa/ctsong/internal/exitcode"
	"github.com/spf13/cobra"
)

func newValidateCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the merged config without contacting ChurchTools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if app.Opts.JSON {
				if err := printJSON(app.IO.Out, map[string]any{"valid": true}); err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
			} else {
				fmt.Fprintln(app.IO.Out, "Config is valid.")
			}
			return nil
		},
	}
}
