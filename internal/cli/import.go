package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jaa/ctsong/internal/config"
	"github.com/jaa/ctsong/internal/engine"
	"github.com/jaa/ctsong/internal/exitcode"
)

type importFlags struct {
	sourceID        int
	songCategory    int
	arrangementName string
	attachmentMode  engine.AttachmentMode
}

func (f *importFlags) bind(flags *pflag.FlagSet) {
	flags.IntVar(&f.sourceID, "source_id", 0, "Source id stored on created arrangements")
	flags.IntVar(&f.songCategory, "song_category", 0, "Category id for newly created songs")
	flags.StringVar(&f.arrangementName, "arrangement_name", "", "Name of created arrangements")
	flags.Var(&f.attachmentMode, "attachment_mode", "How existing attachments are handled")
}

// apply overlays the flags the user actually set on cfg.
func (f *importFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("source_id") {
		cfg.SourceID = f.sourceID
	}
	if flags.Changed("song_category") {
		cfg.SongCategory = f.songCategory
	}
	if flags.Changed("arrangement_name") {
		cfg.ArrangementName = f.arrangementName
	}
	if flags.Changed("attachment_mode") {
		cfg.AttachmentMode = f.attachmentMode.String()
	}
}

func engineOptions(cfg config.Config) (engine.Options, error) {
	mode, err := engine.ParseAttachmentMode(cfg.AttachmentMode)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		SourceID:        cfg.SourceID,
		SongCategory:    cfg.SongCategory,
		ArrangementName: cfg.ArrangementName,
		AttachmentMode:  mode,
	}, nil
}

func newImportCommand(app *AppContext) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import [path...]",
		Short: "Import .sng files or directories into ChurchTools",
		Long:  "Import matches every SongBeamer file against the ChurchTools song database, creates or updates the song and its arrangement, and attaches the file. Directories are scanned for .sng files without recursion.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			flags.apply(cmd.Flags(), &cfg)
			if err := config.ValidateForImport(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			opts, err := engineOptions(cfg)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
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
			result, err := importer.Import(ctx, paths)
			if err != nil {
				if errors.Is(err, engine.ErrInterrupted) {
					return withExitCode(exitcode.Interrupted, err)
				}
				return withExitCode(exitcode.RuntimeFailure, err)
			}
			if result.Failed > 0 {
				return withExitCode(exitcode.PartialSuccess, fmt.Errorf("%d of %d file(s) failed to import", result.Failed, result.Total))
			}
			return nil
		},
	}

	flags.bind(cmd.Flags())
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
