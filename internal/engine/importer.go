package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/output"
	"github.com/jaa/ctsong/internal/songbeamer"
)

type Importer struct {
	Catalog Catalog
	Emitter output.EventEmitter
	Options Options
	Now     func() time.Time
	Open    func(path string) (io.ReadCloser, error)

	runID string
}

func NewImporter(catalog Catalog, emitter output.EventEmitter, opts Options) *Importer {
	if emitter == nil {
		emitter = noOpEmitter{}
	}
	return &Importer{
		Catalog: catalog,
		Emitter: emitter,
		Options: opts,
		Now:     time.Now,
		Open:    openFile,
	}
}

type noOpEmitter struct{}

func (noOpEmitter) Emit(event output.Event) error {
	return nil
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (i *Importer) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

func (i *Importer) emit(level output.Level, name output.EventName, file, message string, details map[string]any) {
	if i.Emitter == nil {
		return
	}
	_ = i.Emitter.Emit(output.Event{
		Timestamp: i.now(),
		Level:     level,
		Event:     name,
		RunID:     i.runID,
		File:      file,
		Message:   message,
		Details:   details,
	})
}

// ImportSong finds or creates the remote song for a local one. Ambiguous
// matches return SongAmbiguous and no error.
func (i *Importer) ImportSong(ctx context.Context, song songbeamer.Song) (churchtools.Song, SongAction, error) {
	file := song.FileName()

	candidates, err := i.Catalog.SearchSongs(ctx, song.Title)
	if err != nil {
		return churchtools.Song{}, "", err
	}
	for idx := range candidates {
		if candidates[idx].Arrangements != nil {
			continue
		}
		arrangements, err := i.Catalog.Arrangements(ctx, candidates[idx].ID)
		if err != nil {
			return churchtools.Song{}, "", err
		}
		candidates[idx].Arrangements = arrangements
	}

	outcome := MatchSong(song, candidates, i.Options.SourceID)
	switch outcome.Kind {
	case ExactMatch:
		existing := outcome.Song
		delta := DiffSong(song, existing)
		if delta.Empty() {
			i.emit(output.LevelInfo, output.EventSongKept, file,
				fmt.Sprintf("Keep existing song: %d - %s", existing.ID, existing.Name),
				map[string]any{"song_id": existing.ID, "matched_by": outcome.Reason})
			return existing, SongKept, nil
		}
		if err := i.Catalog.UpdateSong(ctx, existing.ID, delta.Apply(existing)); err != nil {
			return churchtools.Song{}, "", err
		}
		i.emit(output.LevelInfo, output.EventSongUpdated, file,
			fmt.Sprintf("Updating existing song: %d - %s", existing.ID, existing.Name),
			map[string]any{"song_id": existing.ID, "matched_by": outcome.Reason, "fields": delta.Fields()})
		return existing, SongUpdated, nil

	case Ambiguous:
		i.emit(output.LevelWarn, output.EventSongAmbiguous, file,
			fmt.Sprintf("Could not match song '%s' (%d candidates).", song.Title, outcome.Candidates),
			map[string]any{"candidates": outcome.Candidates})
		return churchtools.Song{}, SongAmbiguous, nil

	default:
		created, err := i.Catalog.CreateSong(ctx, NewSongCreate(song, i.Options.SongCategory))
		if err != nil {
			return churchtools.Song{}, "", err
		}
		i.emit(output.LevelInfo, output.EventSongCreated, file,
			fmt.Sprintf("Creating new song: %d - %s", created.ID, song.Title),
			map[string]any{"song_id": created.ID, "category_id": i.Options.SongCategory})
		return created, SongCreated, nil
	}
}

// ImportArrangement finds or creates the arrangement of remote that holds the
// local file.
func (i *Importer) ImportArrangement(ctx context.Context, song songbeamer.Song, remote churchtools.Song) (churchtools.Arrangement, error) {
	file := song.FileName()

	existing, ok := MatchArrangement(song, remote.Arrangements, i.Options.SourceID)
	if !ok {
		created, err := i.Catalog.CreateArrangement(ctx, remote.ID, NewArrangementCreate(song, i.Options, i.now()))
		if err != nil {
			return churchtools.Arrangement{}, err
		}
		i.emit(output.LevelInfo, output.EventArrangementCreated, file,
			fmt.Sprintf("Creating new arrangement %d for song id %d.", created.ID, remote.ID),
			map[string]any{"song_id": remote.ID, "arrangement_id": created.ID})
		return created, nil
	}

	update, needsUpdate := DiffArrangement(song, existing, i.Options.SourceID, i.now())
	if !needsUpdate {
		i.emit(output.LevelInfo, output.EventArrangementKept, file,
			fmt.Sprintf("Keeping existing arrangement %d for song id %d.", existing.ID, remote.ID),
			map[string]any{"song_id": remote.ID, "arrangement_id": existing.ID})
		return existing, nil
	}
	if err := i.Catalog.UpdateArrangement(ctx, remote.ID, existing.ID, update); err != nil {
		return churchtools.Arrangement{}, err
	}
	i.emit(output.LevelInfo, output.EventArrangementUpdated, file,
		fmt.Sprintf("Updating existing arrangement %d for song id %d.", existing.ID, remote.ID),
		map[string]any{"song_id": remote.ID, "arrangement_id": existing.ID})
	return existing, nil
}

// ImportAttachment uploads the song file to the arrangement according to
// mode.
func (i *Importer) ImportAttachment(ctx context.Context, song songbeamer.Song, arrangement churchtools.Arrangement, mode AttachmentMode) error {
	file := song.FileName()

	if mode != AttachmentAdd {
		attachments, err := i.Catalog.ArrangementFiles(ctx, arrangement.ID)
		if err != nil {
			return err
		}
		for _, attachment := range attachments {
			if attachment.Name != file {
				continue
			}
			if mode == AttachmentSkip {
				i.emit(output.LevelInfo, output.EventAttachmentKept, file,
					fmt.Sprintf("Keeping existing attachment %d for arrangement %d.", attachment.ID, arrangement.ID),
					map[string]any{"arrangement_id": arrangement.ID, "file_id": attachment.ID})
				return nil
			}
			if err := i.Catalog.DeleteFile(ctx, attachment.ID); err != nil {
				return err
			}
			i.emit(output.LevelInfo, output.EventAttachmentDeleted, file,
				fmt.Sprintf("Deleting existing attachment %d for arrangement %d.", attachment.ID, arrangement.ID),
				map[string]any{"arrangement_id": arrangement.ID, "file_id": attachment.ID})
		}
	}

	content, err := i.Open(song.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", song.Path, err)
	}
	defer content.Close()

	if err := i.Catalog.UploadArrangementFile(ctx, arrangement.ID, file, content); err != nil {
		return err
	}
	i.emit(output.LevelInfo, output.EventAttachmentUploaded, file,
		fmt.Sprintf("Uploading attachment '%s' for arrangement %d.", file, arrangement.ID),
		map[string]any{"arrangement_id": arrangement.ID, "mode": string(mode)})
	return nil
}

func (i *Importer) SetDefaultArrangement(ctx context.Context, file string, songID, arrangementID int) error {
	if err := i.Catalog.SetDefaultArrangement(ctx, songID, arrangementID); err != nil {
		return err
	}
	i.emit(output.LevelInfo, output.EventDefaultSet, file,
		fmt.Sprintf("Arrangement %d is the default for song id %d.", arrangementID, songID),
		map[string]any{"song_id": songID, "arrangement_id": arrangementID})
	return nil
}

type fileOutcome int

const (
	fileFailed fileOutcome = iota
	fileSkipped
	fileInvalid
	fileAmbiguous
	fileCreated
	fileUpdated
	fileKept
)

// importFile runs the song, arrangement, attachment and default steps for one
// file. A failing step stops the remaining steps of that file.
func (i *Importer) importFile(ctx context.Context, path string) (fileOutcome, error) {
	file := filepath.Base(path)

	song, err := songbeamer.Read(path)
	if err != nil {
		if errors.Is(err, songbeamer.ErrNoTitle) {
			i.emit(output.LevelInfo, output.EventFileSkipped, file,
				fmt.Sprintf("Skipping %s: no title found.", file), nil)
			return fileSkipped, nil
		}
		return fileFailed, err
	}

	song, problems := SanitizeSong(song)
	if len(problems) > 0 {
		reasons := make([]string, 0, len(problems))
		for _, problem := range problems {
			reasons = append(reasons, problem.String())
		}
		i.emit(output.LevelWarn, output.EventFileInvalid, file,
			fmt.Sprintf("Skipping invalid song %s: %s", file, joinProblems(reasons)),
			map[string]any{"problems": reasons})
		return fileInvalid, nil
	}

	remote, action, err := i.ImportSong(ctx, song)
	if err != nil {
		return fileFailed, err
	}
	if action == SongAmbiguous {
		return fileAmbiguous, nil
	}

	arrangement, err := i.ImportArrangement(ctx, song, remote)
	if err != nil {
		return fileFailed, err
	}
	if err := i.ImportAttachment(ctx, song, arrangement, i.Options.attachmentMode()); err != nil {
		return fileFailed, err
	}
	if err := i.SetDefaultArrangement(ctx, file, remote.ID, arrangement.ID); err != nil {
		return fileFailed, err
	}

	switch action {
	case SongCreated:
		return fileCreated, nil
	case SongUpdated:
		return fileUpdated, nil
	default:
		return fileKept, nil
	}
}

// Import processes every path in order. Directories contribute their .sng
// files, sorted by name and not recursively. Failures never stop the batch.
func (i *Importer) Import(ctx context.Context, paths []string) (ImportResult, error) {
	result := ImportResult{}
	i.runID = uuid.NewString()

	files, failures := expandPaths(paths)
	result.Total = len(files) + len(failures)

	i.emit(output.LevelInfo, output.EventImportStarted, "",
		fmt.Sprintf("import started (%d file(s))", result.Total),
		map[string]any{
			"total":           result.Total,
			"source_id":       i.Options.SourceID,
			"attachment_mode": string(i.Options.attachmentMode()),
		})

	for _, failure := range failures {
		result.Failed++
		i.emit(output.LevelError, output.EventFileFailed, failure.path, failure.err.Error(), nil)
	}

	for _, path := range files {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		file := filepath.Base(path)
		i.emit(output.LevelInfo, output.EventFileStarted, file, fmt.Sprintf("Importing %s", path),
			map[string]any{"path": path})

		outcome, err := i.importFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
			}
			result.Failed++
			i.emit(output.LevelError, output.EventFileFailed, file,
				fmt.Sprintf("Failed to import %s: %v", file, err),
				map[string]any{"path": path})
			continue
		}

		switch outcome {
		case fileSkipped:
			result.Skipped++
		case fileInvalid:
			result.Invalid++
		case fileAmbiguous:
			result.Ambiguous++
		case fileCreated:
			result.Created++
		case fileUpdated:
			result.Updated++
		case fileKept:
			result.Kept++
		}
	}

	details := map[string]any{
		"total":     result.Total,
		"created":   result.Created,
		"updated":   result.Updated,
		"kept":      result.Kept,
		"ambiguous": result.Ambiguous,
		"invalid":   result.Invalid,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}
	if result.Interrupted {
		i.emit(output.LevelError, output.EventImportFinished, "", "import interrupted", details)
		return result, ErrInterrupted
	}
	i.emit(output.LevelInfo, output.EventImportFinished, "",
		fmt.Sprintf("import finished: created=%d updated=%d kept=%d ambiguous=%d invalid=%d skipped=%d failed=%d",
			result.Created, result.Updated, result.Kept, result.Ambiguous, result.Invalid, result.Skipped, result.Failed),
		details)
	return result, nil
}

// DeleteImportedSongs removes every arrangement tagged with the configured
// source. A song is deleted only when all of its arrangements carried the tag.
func (i *Importer) DeleteImportedSongs(ctx context.Context) (DeleteResult, error) {
	result := DeleteResult{}
	sourceID := i.Options.SourceID
	if sourceID == 0 {
		return result, ErrSourceIDRequired
	}
	i.runID = uuid.NewString()

	songs, err := i.Catalog.SongsBySource(ctx, sourceID)
	if err != nil {
		return result, err
	}
	result.Songs = len(songs)

	i.emit(output.LevelInfo, output.EventDeleteStarted, "",
		fmt.Sprintf("delete started (%d song(s) of source %d)", len(songs), sourceID),
		map[string]any{"songs": len(songs), "source_id": sourceID})

	for _, song := range songs {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		arrangements, songDeleted, err := i.deleteImportedSong(ctx, song, sourceID)
		result.ArrangementsDeleted += arrangements
		if err != nil {
			result.Failed++
			i.emit(output.LevelError, output.EventDeleteFailed, "",
				fmt.Sprintf("Failed to delete song %d - %s: %v", song.ID, song.Name, err),
				map[string]any{"song_id": song.ID})
			continue
		}
		if songDeleted {
			result.SongsDeleted++
		}
	}

	details := map[string]any{
		"songs":                result.Songs,
		"songs_deleted":        result.SongsDeleted,
		"arrangements_deleted": result.ArrangementsDeleted,
		"failed":               result.Failed,
	}
	if result.Interrupted {
		i.emit(output.LevelError, output.EventDeleteFinished, "", "delete interrupted", details)
		return result, ErrInterrupted
	}
	i.emit(output.LevelInfo, output.EventDeleteFinished, "",
		fmt.Sprintf("delete finished: songs=%d deleted=%d arrangements=%d failed=%d",
			result.Songs, result.SongsDeleted, result.ArrangementsDeleted, result.Failed),
		details)
	return result, nil
}

func (i *Importer) deleteImportedSong(ctx context.Context, song churchtools.Song, sourceID int) (int, bool, error) {
	arrangements, err := i.Catalog.Arrangements(ctx, song.ID)
	if err != nil {
		return 0, false, err
	}

	deleted := 0
	deleteSong := true
	for _, arrangement := range arrangements {
		if !arrangement.HasSource(sourceID) {
			deleteSong = false
			continue
		}
		if err := i.Catalog.DeleteArrangement(ctx, song.ID, arrangement.ID); err != nil {
			return deleted, false, err
		}
		deleted++
		i.emit(output.LevelInfo, output.EventArrangementDeleted, "",
			fmt.Sprintf("Deleting arrangement %d of song %d.", arrangement.ID, song.ID),
			map[string]any{"song_id": song.ID, "arrangement_id": arrangement.ID})
	}

	if !deleteSong {
		return deleted, false, nil
	}
	if err := i.Catalog.DeleteSong(ctx, song.ID); err != nil {
		return deleted, false, err
	}
	i.emit(output.LevelInfo, output.EventSongDeleted, "",
		fmt.Sprintf("Deleting song %d - %s.", song.ID, song.Name),
		map[string]any{"song_id": song.ID})
	return deleted, true, nil
}

type pathFailure struct {
	path string
	err  error
}

func expandPaths(paths []string) ([]string, []pathFailure) {
	files := []string{}
	failures := []pathFailure{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, pathFailure{path: path, err: err})
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			failures = append(failures, pathFailure{path: path, err: err})
			continue
		}
		names := []string{}
		for _, entry := range entries {
			if entry.Type().IsRegular() && songbeamer.IsSongFile(entry.Name()) {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(path, name))
		}
	}
	return files, failures
}

func joinProblems(reasons []string) string {
	return strings.Join(reasons, "; ")
}
