package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/output"
	"github.com/jaa/ctsong/internal/songbeamer"
)

// fakeCatalog keeps songs in memory and records every mutating call.
type fakeCatalog struct {
	songs  []churchtools.Song
	nextID int
	calls  []string

	songUpdates        []churchtools.SongUpdate
	songCreates        []churchtools.SongCreate
	arrangementUpdates []churchtools.ArrangementUpdate
	uploads            map[int][]string

	failOn map[string]error
}

func newFakeCatalog(songs ...churchtools.Song) *fakeCatalog {
	return &fakeCatalog{songs: songs, nextID: 1000, uploads: map[int][]string{}, failOn: map[string]error{}}
}

func (c *fakeCatalog) record(call string) error {
	c.calls = append(c.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return c.failOn[name]
}

func (c *fakeCatalog) id() int {
	c.nextID++
	return c.nextID
}

func (c *fakeCatalog) song(id int) *churchtools.Song {
	for idx := range c.songs {
		if c.songs[idx].ID == id {
			return &c.songs[idx]
		}
	}
	return nil
}

func (c *fakeCatalog) arrangement(id int) *churchtools.Arrangement {
	for idx := range c.songs {
		for a := range c.songs[idx].Arrangements {
			if c.songs[idx].Arrangements[a].ID == id {
				return &c.songs[idx].Arrangements[a]
			}
		}
	}
	return nil
}

// mutations returns the recorded calls that change remote state.
func (c *fakeCatalog) mutations() []string {
	out := []string{}
	for _, call := range c.calls {
		name, _, _ := strings.Cut(call, " ")
		switch name {
		case "SearchSongs", "SongsBySource", "Arrangements", "ArrangementFiles":
			continue
		}
		out = append(out, call)
	}
	return out
}

func (c *fakeCatalog) SearchSongs(ctx context.Context, name string) ([]churchtools.Song, error) {
	if err := c.record("SearchSongs " + name); err != nil {
		return nil, err
	}
	out := []churchtools.Song{}
	for _, song := range c.songs {
		// the name filter is a case-insensitive partial match
		if strings.Contains(strings.ToLower(song.Name), strings.ToLower(name)) {
			// search results omit arrangements
			song.Arrangements = nil
			out = append(out, song)
		}
	}
	return out, nil
}

func (c *fakeCatalog) SongsBySource(ctx context.Context, sourceID int) ([]churchtools.Song, error) {
	if err := c.record(fmt.Sprintf("SongsBySource %d", sourceID)); err != nil {
		return nil, err
	}
	out := []churchtools.Song{}
	for _, song := range c.songs {
		for _, arrangement := range song.Arrangements {
			if arrangement.HasSource(sourceID) {
				out = append(out, song)
				break
			}
		}
	}
	return out, nil
}

func (c *fakeCatalog) CreateSong(ctx context.Context, create churchtools.SongCreate) (churchtools.Song, error) {
	if err := c.record("CreateSong " + create.Name); err != nil {
		return churchtools.Song{}, err
	}
	c.songCreates = append(c.songCreates, create)
	song := churchtools.Song{
		ID:        c.id(),
		Name:      create.Name,
		Author:    create.Author,
		CCLI:      churchtools.FlexString(create.CCLI),
		Copyright: create.Copyright,
		Category:  churchtools.Category{ID: create.CategoryID},
	}
	c.songs = append(c.songs, song)
	return song, nil
}

func (c *fakeCatalog) UpdateSong(ctx context.Context, songID int, update churchtools.SongUpdate) error {
	if err := c.record(fmt.Sprintf("UpdateSong %d", songID)); err != nil {
		return err
	}
	c.songUpdates = append(c.songUpdates, update)
	song := c.song(songID)
	song.Name = update.Name
	song.Author = update.Author
	song.CCLI = churchtools.FlexString(update.CCLI)
	song.Copyright = update.Copyright
	return nil
}

func (c *fakeCatalog) DeleteSong(ctx context.Context, songID int) error {
	if err := c.record(fmt.Sprintf("DeleteSong %d", songID)); err != nil {
		return err
	}
	for idx := range c.songs {
		if c.songs[idx].ID == songID {
			c.songs = append(c.songs[:idx], c.songs[idx+1:]...)
			break
		}
	}
	return nil
}

func (c *fakeCatalog) Arrangements(ctx context.Context, songID int) ([]churchtools.Arrangement, error) {
	if err := c.record(fmt.Sprintf("Arrangements %d", songID)); err != nil {
		return nil, err
	}
	song := c.song(songID)
	out := make([]churchtools.Arrangement, len(song.Arrangements))
	copy(out, song.Arrangements)
	return out, nil
}

func (c *fakeCatalog) CreateArrangement(ctx context.Context, songID int, create churchtools.ArrangementCreate) (churchtools.Arrangement, error) {
	if err := c.record(fmt.Sprintf("CreateArrangement %d", songID)); err != nil {
		return churchtools.Arrangement{}, err
	}
	arrangement := churchtools.Arrangement{
		ID:          c.id(),
		Name:        create.Name,
		Key:         create.Key,
		SourceID:    create.SourceID,
		Description: create.Description,
	}
	song := c.song(songID)
	song.Arrangements = append(song.Arrangements, arrangement)
	return arrangement, nil
}

func (c *fakeCatalog) UpdateArrangement(ctx context.Context, songID, arrangementID int, update churchtools.ArrangementUpdate) error {
	if err := c.record(fmt.Sprintf("UpdateArrangement %d/%d", songID, arrangementID)); err != nil {
		return err
	}
	c.arrangementUpdates = append(c.arrangementUpdates, update)
	arrangement := c.arrangement(arrangementID)
	arrangement.Key = update.Key
	arrangement.SourceID = update.SourceID
	arrangement.Description = update.Description
	return nil
}

func (c *fakeCatalog) DeleteArrangement(ctx context.Context, songID, arrangementID int) error {
	if err := c.record(fmt.Sprintf("DeleteArrangement %d/%d", songID, arrangementID)); err != nil {
		return err
	}
	song := c.song(songID)
	for idx := range song.Arrangements {
		if song.Arrangements[idx].ID == arrangementID {
			song.Arrangements = append(song.Arrangements[:idx], song.Arrangements[idx+1:]...)
			break
		}
	}
	return nil
}

func (c *fakeCatalog) SetDefaultArrangement(ctx context.Context, songID, arrangementID int) error {
	return c.record(fmt.Sprintf("SetDefaultArrangement %d/%d", songID, arrangementID))
}

func (c *fakeCatalog) ArrangementFiles(ctx context.Context, arrangementID int) ([]churchtools.File, error) {
	if err := c.record(fmt.Sprintf("ArrangementFiles %d", arrangementID)); err != nil {
		return nil, err
	}
	arrangement := c.arrangement(arrangementID)
	out := make([]churchtools.File, len(arrangement.Files))
	copy(out, arrangement.Files)
	return out, nil
}

func (c *fakeCatalog) UploadArrangementFile(ctx context.Context, arrangementID int, name string, content io.Reader) error {
	if err := c.record(fmt.Sprintf("UploadArrangementFile %d %s", arrangementID, name)); err != nil {
		return err
	}
	payload, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	c.uploads[arrangementID] = append(c.uploads[arrangementID], string(payload))
	arrangement := c.arrangement(arrangementID)
	arrangement.Files = append(arrangement.Files, churchtools.File{ID: c.id(), Name: name})
	return nil
}

func (c *fakeCatalog) DeleteFile(ctx context.Context, fileID int) error {
	if err := c.record(fmt.Sprintf("DeleteFile %d", fileID)); err != nil {
		return err
	}
	for idx := range c.songs {
		for a := range c.songs[idx].Arrangements {
			arrangement := &c.songs[idx].Arrangements[a]
			for f := range arrangement.Files {
				if arrangement.Files[f].ID == fileID {
					arrangement.Files = append(arrangement.Files[:f], arrangement.Files[f+1:]...)
					return nil
				}
			}
		}
	}
	return nil
}

type recordingEmitter struct {
	events []output.Event
}

func (e *recordingEmitter) Emit(event output.Event) error {
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) names() []string {
	out := make([]string, 0, len(e.events))
	for _, event := range e.events {
		out = append(out, string(event.Event))
	}
	return out
}

func (e *recordingEmitter) has(name output.EventName) bool {
	for _, event := range e.events {
		if event.Event == name {
			return true
		}
	}
	return false
}

func newTestImporter(catalog *fakeCatalog, opts Options) (*Importer, *recordingEmitter) {
	emitter := &recordingEmitter{}
	importer := NewImporter(catalog, emitter, opts)
	importer.Now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }
	return importer, emitter
}

func writeSongFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestImportSongCreatesWithDefaultCategory(t *testing.T) {
	catalog := newFakeCatalog()
	importer, emitter := newTestImporter(catalog, Options{SongCategory: 4})

	song := songbeamer.Song{Title: "New Song", Author: "Someone", Path: "new.sng"}
	remote, action, err := importer.ImportSong(context.Background(), song)
	if err != nil {
		t.Fatalf("import song: %v", err)
	}
	if action != SongCreated || remote.ID == 0 {
		t.Fatalf("expected created song, got %s %+v", action, remote)
	}
	want := churchtools.SongCreate{Name: "New Song", CategoryID: 4, Author: "Someone"}
	if len(catalog.songCreates) != 1 || catalog.songCreates[0] != want {
		t.Fatalf("unexpected create payloads %+v", catalog.songCreates)
	}
	if !emitter.has(output.EventSongCreated) {
		t.Fatalf("expected song_created event, got %v", emitter.names())
	}
}

func TestImportSongKeepsRemoteName(t *testing.T) {
	tests := []struct {
		name       string
		local      songbeamer.Song
		wantAction SongAction
		wantUpdate []churchtools.SongUpdate
	}{
		{
			name:       "title differs only",
			local:      songbeamer.Song{Title: "Amazing Grace", Path: "grace.sng"},
			wantAction: SongKept,
		},
		{
			name:       "title and copyright differ",
			local:      songbeamer.Song{Title: "Amazing Grace", Copyright: "New", Path: "grace.sng"},
			wantAction: SongUpdated,
			wantUpdate: []churchtools.SongUpdate{{Name: "Amazing Grace (My Chains Are Gone)", CategoryID: 3, Copyright: "New"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catalog := newFakeCatalog(churchtools.Song{
				ID: 5, Name: "Amazing Grace (My Chains Are Gone)", Copyright: "Old",
				Category:     churchtools.Category{ID: 3},
				Arrangements: []churchtools.Arrangement{},
			})
			importer, _ := newTestImporter(catalog, Options{SongCategory: 4})

			remote, action, err := importer.ImportSong(context.Background(), tc.local)
			if err != nil {
				t.Fatalf("import song: %v", err)
			}
			if action != tc.wantAction || remote.ID != 5 {
				t.Fatalf("expected %s of song 5, got %s %+v", tc.wantAction, action, remote)
			}
			if len(catalog.songUpdates) != len(tc.wantUpdate) {
				t.Fatalf("unexpected update payloads %+v", catalog.songUpdates)
			}
			for idx, want := range tc.wantUpdate {
				if catalog.songUpdates[idx] != want {
					t.Fatalf("update %d = %+v, want %+v", idx, catalog.songUpdates[idx], want)
				}
			}
			if got := catalog.song(5).Name; got != "Amazing Grace (My Chains Are Gone)" {
				t.Fatalf("expected remote name to stay, got %q", got)
			}
		})
	}
}

func TestImportSongUpdatesOnlyChangedCopyright(t *testing.T) {
	catalog := newFakeCatalog(churchtools.Song{
		ID: 10, Name: "Amazing Grace", Author: "Newton", CCLI: "123456", Copyright: "Old",
		Category:     churchtools.Category{ID: 3},
		Arrangements: []churchtools.Arrangement{},
	})
	importer, emitter := newTestImporter(catalog, Options{SongCategory: 4})

	song := songbeamer.Song{Title: "Amazing Grace", Author: "Newton", CCLI: "123456", Copyright: "New", Path: "grace.sng"}
	_, action, err := importer.ImportSong(context.Background(), song)
	if err != nil {
		t.Fatalf("import song: %v", err)
	}
	if action != SongUpdated {
		t.Fatalf("expected update, got %s", action)
	}
	want := churchtools.SongUpdate{Name: "Amazing Grace", CategoryID: 3, Author: "Newton", CCLI: "123456", Copyright: "New"}
	if len(catalog.songUpdates) != 1 || catalog.songUpdates[0] != want {
		t.Fatalf("unexpected update payloads %+v", catalog.songUpdates)
	}
	for _, event := range emitter.events {
		if event.Event == output.EventSongUpdated {
			fields := event.Details["fields"].([]string)
			if strings.Join(fields, ",") != "copyright,categoryId" {
				t.Fatalf("unexpected updated fields %v", fields)
			}
		}
	}
}

func TestImportSongAmbiguousStopsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSongFile(t, dir, "exodus.sng", "#Title=Exodus\n#Author=Newton\n")

	catalog := newFakeCatalog(
		churchtools.Song{ID: 1, Name: "Exodus"},
		churchtools.Song{ID: 2, Name: "Exodus"},
	)
	importer, emitter := newTestImporter(catalog, Options{SongCategory: 4})

	result, err := importer.Import(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Ambiguous != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if muts := catalog.mutations(); len(muts) != 0 {
		t.Fatalf("expected no writes for an ambiguous song, got %v", muts)
	}
	if !emitter.has(output.EventSongAmbiguous) {
		t.Fatalf("expected song_ambiguous event, got %v", emitter.names())
	}
}

func TestImportFullPipelineIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeSongFile(t, dir, "grace.sng", "#Title=Amazing Grace\n#Author=John Newton\n#CCLI=22025\n#Key=G\n---\nAmazing grace\n")

	catalog := newFakeCatalog()
	importer, _ := newTestImporter(catalog, Options{SourceID: 7, SongCategory: 4})

	first, err := importer.Import(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Created != 1 || first.Total != 1 {
		t.Fatalf("unexpected first result %+v", first)
	}
	wantFirst := []string{
		"CreateSong Amazing Grace",
		"CreateArrangement 1001",
		"UploadArrangementFile 1002 grace.sng",
		"SetDefaultArrangement 1001/1002",
	}
	if got := catalog.mutations(); strings.Join(got, "|") != strings.Join(wantFirst, "|") {
		t.Fatalf("unexpected first run calls:\n got %v\nwant %v", got, wantFirst)
	}
	arrangement := catalog.arrangement(1002)
	if arrangement.Key != "G" || !arrangement.HasSource(7) || arrangement.Description != "Created from 'grace.sng' on 2026-05-06." {
		t.Fatalf("unexpected arrangement %+v", arrangement)
	}
	content, _ := os.ReadFile(path)
	if uploads := catalog.uploads[1002]; len(uploads) != 1 || uploads[0] != string(content) {
		t.Fatalf("expected file content to be uploaded, got %v", uploads)
	}

	catalog.calls = nil
	second, err := importer.Import(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Kept != 1 {
		t.Fatalf("unexpected second result %+v", second)
	}
	for _, call := range catalog.mutations() {
		if strings.HasPrefix(call, "Update") || strings.HasPrefix(call, "Create") || strings.HasPrefix(call, "Upload") {
			t.Fatalf("expected no writes on second run, got %v", catalog.mutations())
		}
	}
}

func TestImportArrangementUpdatesKeyAndSource(t *testing.T) {
	catalog := newFakeCatalog(churchtools.Song{
		ID:   1,
		Name: "Grace",
		Arrangements: []churchtools.Arrangement{
			{ID: 2, Name: "Band", Key: "F", Tempo: intPtr(80), Files: []churchtools.File{{ID: 3, Name: "grace.sng"}}},
		},
	})
	importer, emitter := newTestImporter(catalog, Options{SourceID: 0})

	remote := *catalog.song(1)
	song := songbeamer.Song{Title: "Grace", Key: "G", Path: "grace.sng"}
	arrangement, err := importer.ImportArrangement(context.Background(), song, remote)
	if err != nil {
		t.Fatalf("import arrangement: %v", err)
	}
	if arrangement.ID != 2 {
		t.Fatalf("expected existing arrangement, got %+v", arrangement)
	}
	if len(catalog.arrangementUpdates) != 1 {
		t.Fatalf("expected one update, got %d", len(catalog.arrangementUpdates))
	}
	update := catalog.arrangementUpdates[0]
	if update.Key != "G" || update.Name != "Band" || update.Tempo == nil || *update.Tempo != 80 || update.SourceID != nil {
		t.Fatalf("unexpected update %+v", update)
	}
	if update.Description != "Updated from 'grace.sng' on 2026-05-06." {
		t.Fatalf("unexpected description %q", update.Description)
	}
	if !emitter.has(output.EventArrangementUpdated) {
		t.Fatalf("expected arrangement_updated event, got %v", emitter.names())
	}
}

func TestImportAttachmentModes(t *testing.T) {
	dir := t.TempDir()
	path := writeSongFile(t, dir, "grace.sng", "#Title=Grace\n")
	song := songbeamer.Song{Title: "Grace", Path: path}

	tests := []struct {
		name      string
		mode      AttachmentMode
		wantCalls []string
		wantFiles int
	}{
		{
			name:      "add always uploads",
			mode:      AttachmentAdd,
			wantCalls: []string{"UploadArrangementFile 2 grace.sng"},
			wantFiles: 2,
		},
		{
			name:      "skip keeps existing",
			mode:      AttachmentSkip,
			wantCalls: []string{"ArrangementFiles 2"},
			wantFiles: 1,
		},
		{
			name:      "replace deletes then uploads",
			mode:      AttachmentReplace,
			wantCalls: []string{"ArrangementFiles 2", "DeleteFile 3", "UploadArrangementFile 2 grace.sng"},
			wantFiles: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catalog := newFakeCatalog(churchtools.Song{
				ID: 1, Name: "Grace",
				Arrangements: []churchtools.Arrangement{{ID: 2, Files: []churchtools.File{{ID: 3, Name: "grace.sng"}}}},
			})
			importer, _ := newTestImporter(catalog, Options{})

			if err := importer.ImportAttachment(context.Background(), song, *catalog.arrangement(2), tc.mode); err != nil {
				t.Fatalf("import attachment: %v", err)
			}
			if strings.Join(catalog.calls, "|") != strings.Join(tc.wantCalls, "|") {
				t.Fatalf("unexpected calls %v, want %v", catalog.calls, tc.wantCalls)
			}
			if got := len(catalog.arrangement(2).Files); got != tc.wantFiles {
				t.Fatalf("expected %d attachment(s), got %d", tc.wantFiles, got)
			}
		})
	}
}

func TestImportAttachmentSkipUploadsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeSongFile(t, dir, "grace.sng", "#Title=Grace\n")

	catalog := newFakeCatalog(churchtools.Song{
		ID: 1, Name: "Grace",
		Arrangements: []churchtools.Arrangement{{ID: 2, Files: []churchtools.File{{ID: 3, Name: "other.sng"}}}},
	})
	importer, _ := newTestImporter(catalog, Options{})

	err := importer.ImportAttachment(context.Background(), songbeamer.Song{Title: "Grace", Path: path}, *catalog.arrangement(2), AttachmentSkip)
	if err != nil {
		t.Fatalf("import attachment: %v", err)
	}
	if len(catalog.uploads[2]) != 1 {
		t.Fatalf("expected upload when no attachment matches, got %v", catalog.calls)
	}
}

func TestImportContinuesAfterFailures(t *testing.T) {
	dir := t.TempDir()
	writeSongFile(t, dir, "a.sng", "#Title=Alpha\n")
	writeSongFile(t, dir, "b.sng", "#Title=B\n")
	writeSongFile(t, dir, "c.sng", "#Author=Nobody\n")
	writeSongFile(t, dir, "d.sng", "#Title=Delta\n")
	writeSongFile(t, dir, "notes.txt", "#Title=Notes\n")

	catalog := newFakeCatalog()
	catalog.failOn["UploadArrangementFile"] = errors.New("upload rejected")
	importer, emitter := newTestImporter(catalog, Options{SongCategory: 1})

	result, err := importer.Import(context.Background(), []string{dir, filepath.Join(dir, "missing.sng")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := ImportResult{Total: 5, Invalid: 1, Skipped: 1, Failed: 3}
	if result != want {
		t.Fatalf("unexpected result %+v, want %+v", result, want)
	}

	started := []string{}
	for _, event := range emitter.events {
		if event.Event == output.EventFileStarted {
			started = append(started, event.File)
		}
		if event.RunID == "" {
			t.Fatalf("expected run id on %s", event.Event)
		}
	}
	if strings.Join(started, ",") != "a.sng,b.sng,c.sng,d.sng" {
		t.Fatalf("expected files in name order, got %v", started)
	}
	for _, call := range catalog.calls {
		if strings.HasPrefix(call, "SetDefaultArrangement") {
			t.Fatalf("expected failed upload to stop the file before setting default, got %v", catalog.calls)
		}
	}
}

func TestImportStopsWhenContextCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeSongFile(t, dir, "a.sng", "#Title=Alpha\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	importer, emitter := newTestImporter(newFakeCatalog(), Options{SongCategory: 1})
	result, err := importer.Import(ctx, []string{path})
	if !errors.Is(err, ErrInterrupted) || !result.Interrupted {
		t.Fatalf("expected interrupted import, got %+v %v", result, err)
	}
	if emitter.has(output.EventFileStarted) {
		t.Fatalf("expected no file to start after cancellation")
	}
}

func TestDeleteImportedSongs(t *testing.T) {
	catalog := newFakeCatalog(
		churchtools.Song{ID: 1, Name: "Only ours", Arrangements: []churchtools.Arrangement{
			{ID: 11, SourceID: intPtr(7)},
			{ID: 12, SourceID: intPtr(7)},
		}},
		churchtools.Song{ID: 2, Name: "Shared", Arrangements: []churchtools.Arrangement{
			{ID: 21, SourceID: intPtr(7)},
			{ID: 22, SourceID: intPtr(3)},
			{ID: 23},
		}},
		churchtools.Song{ID: 3, Name: "Foreign", Arrangements: []churchtools.Arrangement{
			{ID: 31, SourceID: intPtr(3)},
		}},
	)
	importer, emitter := newTestImporter(catalog, Options{SourceID: 7})

	result, err := importer.DeleteImportedSongs(context.Background())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := DeleteResult{Songs: 2, SongsDeleted: 1, ArrangementsDeleted: 3}
	if result != want {
		t.Fatalf("unexpected result %+v, want %+v", result, want)
	}
	if catalog.song(1) != nil {
		t.Fatalf("expected song 1 to be deleted")
	}
	shared := catalog.song(2)
	if shared == nil || len(shared.Arrangements) != 2 {
		t.Fatalf("expected shared song to keep foreign arrangements, got %+v", shared)
	}
	if catalog.song(3) == nil {
		t.Fatalf("expected foreign song to be untouched")
	}
	if !emitter.has(output.EventDeleteFinished) {
		t.Fatalf("expected delete_finished event, got %v", emitter.names())
	}
}

func TestDeleteImportedSongsContinuesAfterFailure(t *testing.T) {
	catalog := newFakeCatalog(
		churchtools.Song{ID: 1, Name: "A", Arrangements: []churchtools.Arrangement{{ID: 11, SourceID: intPtr(7)}}},
		churchtools.Song{ID: 2, Name: "B", Arrangements: []churchtools.Arrangement{{ID: 21, SourceID: intPtr(7)}}},
	)
	catalog.failOn["DeleteSong"] = errors.New("forbidden")
	importer, emitter := newTestImporter(catalog, Options{SourceID: 7})

	result, err := importer.DeleteImportedSongs(context.Background())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Failed != 2 || result.ArrangementsDeleted != 2 || result.SongsDeleted != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !emitter.has(output.EventDeleteFailed) {
		t.Fatalf("expected delete_failed event, got %v", emitter.names())
	}
}

func TestDeleteImportedSongsRequiresSourceID(t *testing.T) {
	importer, _ := newTestImporter(newFakeCatalog(), Options{})
	if _, err := importer.DeleteImportedSongs(context.Background()); !errors.Is(err, ErrSourceIDRequired) {
		t.Fatalf("expected ErrSourceIDRequired, got %v", err)
	}
}
