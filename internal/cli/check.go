package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaa/ctsong/internal/engine"
	"github.com/jaa/ctsong/internal/exitcode"
	"github.com/jaa/ctsong/internal/songbeamer"
)

type fileProblem struct {
	File   string `json:"file"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Value  string `json:"value"`
}

type checkReport struct {
	Songs      int                         `json:"songs"`
	Problems   []fileProblem               `json:"problems"`
	Duplicates []songbeamer.DuplicateGroup `json:"duplicates"`
}

func newCheckCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Check local .sng files for invalid fields and duplicate titles",
		Long:  "Check works offline. It reports every field that ChurchTools would reject or that import would shorten, and every title used by more than one file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			songs, err := songbeamer.ScanDir(dir)
			if err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}

			report := checkReport{Songs: len(songs), Problems: []fileProblem{}, Duplicates: songbeamer.FindDuplicates(songs)}
			for _, song := range songs {
				for _, problem := range engine.CheckSong(song) {
					report.Problems = append(report.Problems, fileProblem{
						File:   song.FileName(),
						Field:  problem.Field,
						Reason: problem.Reason,
						Value:  problem.Value,
					})
				}
			}

			if app.Opts.JSON {
				if err := printJSON(app.IO.Out, report); err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
			} else {
				printCheckReport(app, report)
			}

			if len(report.Problems) > 0 || len(report.Duplicates) > 0 {
				return withExitCode(exitcode.ValidationFailed,
					fmt.Errorf("%d invalid field(s) and %d duplicate title(s) in %s", len(report.Problems), len(report.Duplicates), dir))
			}
			return nil
		},
	}
}

func printCheckReport(app *AppContext, report checkReport) {
	if len(report.Problems) > 0 {
		rows := make([][]string, 0, len(report.Problems))
		for _, problem := range report.Problems {
			rows = append(rows, []string{problem.File, problem.Field, problem.Reason, problem.Value})
		}
		fmt.Fprintln(app.IO.Out, renderTable([]string{"File", "Field", "Problem", "Value"}, rows))
	}
	if len(report.Duplicates) > 0 {
		rows := make([][]string, 0, len(report.Duplicates))
		for _, group := range report.Duplicates {
			rows = append(rows, []string{group.Title, strings.Join(group.Files, "\n")})
		}
		fmt.Fprintln(app.IO.Out, renderTable([]string{"Title", "Files"}, rows))
	}
	if !app.Opts.Quiet {
		fmt.Fprintf(app.IO.Out, "Checked %d song(s): %d problem(s), %d duplicate title(s).\n",
			report.Songs, len(report.Problems), len(report.Duplicates))
	}
}
