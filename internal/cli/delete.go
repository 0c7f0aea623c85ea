package cli

import (
	"errors"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jaa/ctsong/internal/config"
	"github.com/jaa/ctsong/internal/engine"
	"github.com/jaa/ctsong/internal/exitcode"
)

func newDeleteCommand(app *AppContext) *cobra.Command {
	sourceID := 0

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete all arrangements and songs imported with a source id",
		Long:  "Delete removes every arrangement tagged with the source id. Songs are removed only when all of their arrangements carried that source id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if cmd.Flags().Changed("source_id") {
				cfg.SourceID = sourceID
			}
			if err := config.ValidateForDelete(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			opts, err := engineOptions(cfg)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), interruptSignals()...)
			defer stop()

			emitter, closeLog, err := newEmitter(app)
			if err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			defer closeLog()

			client, err := connect(ctx, app, cfg)
			if err != nil {
				return err
			}

			importer := engine.NewImporter(client, emitter, opts)
			result, err := importer.DeleteImportedSongs(ctx)
			if err != nil {
				if errors.Is(err, engine.ErrInterrupted) {
					return withExitCode(exitcode.Interrupted, err)
				}
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			if result.Failed > 0 {
				return withExitCode(exitcode.PartialSuccess, fmt.Errorf("%d of %d song(s) could not be deleted", result.Failed, result.Songs))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sourceID, "source_id", 0, "Source id of the arrangements to delete")
	return cmd
}
