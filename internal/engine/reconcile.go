package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/songbeamer"
)

// SongDelta holds the song fields whose local value is set and differs from
// the remote one. The remote name is never changed and CategoryID is always
// resent unchanged.
type SongDelta struct {
	Author     *string
	CCLI       *string
	Copyright  *string
	CategoryID int
}

func DiffSong(local songbeamer.Song, existing churchtools.Song) SongDelta {
	delta := SongDelta{CategoryID: existing.Category.ID}
	delta.CCLI = changed(local.CCLI, existing.CCLI.String())
	delta.Author = changed(local.Author, existing.Author)
	delta.Copyright = changed(local.Copyright, existing.Copyright)
	return delta
}

func changed(local, remote string) *string {
	local = strings.TrimSpace(local)
	if local == "" || sameValue(local, remote) {
		return nil
	}
	return &local
}

// Empty reports whether nothing but the category would be sent.
func (d SongDelta) Empty() bool {
	return d.Author == nil && d.CCLI == nil && d.Copyright == nil
}

// Fields lists the changed field names in payload order.
func (d SongDelta) Fields() []string {
	fields := []string{}
	if d.CCLI != nil {
		fields = append(fields, "ccli")
	}
	if d.Author != nil {
		fields = append(fields, "author")
	}
	if d.Copyright != nil {
		fields = append(fields, "copyright")
	}
	return append(fields, "categoryId")
}

// Apply overlays the delta on the existing record to build a full update.
func (d SongDelta) Apply(existing churchtools.Song) churchtools.SongUpdate {
	update := churchtools.SongUpdate{
		Name:       existing.Name,
		CategoryID: d.CategoryID,
		CCLI:       existing.CCLI.String(),
		Author:     existing.Author,
		Copyright:  existing.Copyright,
	}
	if d.CCLI != nil {
		update.CCLI = *d.CCLI
	}
	if d.Author != nil {
		update.Author = *d.Author
	}
	if d.Copyright != nil {
		update.Copyright = *d.Copyright
	}
	return update
}

func NewSongCreate(local songbeamer.Song, categoryID int) churchtools.SongCreate {
	return churchtools.SongCreate{
		Name:       local.Title,
		CategoryID: categoryID,
		CCLI:       local.CCLI,
		Author:     local.Author,
		Copyright:  local.Copyright,
	}
}

// Provenance describes which file an arrangement was written from and when.
func Provenance(verb, fileName string, now time.Time) string {
	return fmt.Sprintf("%s from '%s' on %s.", verb, fileName, now.Format(time.DateOnly))
}

// DiffArrangement builds the update for a matched arrangement. The returned
// flag is false when neither the key nor the source tag needs to change.
func DiffArrangement(local songbeamer.Song, existing churchtools.Arrangement, sourceID int, now time.Time) (churchtools.ArrangementUpdate, bool) {
	update := churchtools.ArrangementUpdate{
		Name:        existing.Name,
		Key:         existing.Key,
		Beat:        existing.Beat,
		Duration:    existing.Duration,
		Tempo:       existing.Tempo,
		SourceID:    existing.SourceID,
		Description: Provenance("Updated", local.FileName(), now),
	}

	needsUpdate := false
	if local.Key != "" && local.Key != existing.Key {
		update.Key = local.Key
		needsUpdate = true
	}
	if sourceID != 0 && !existing.HasSource(sourceID) {
		update.SourceID = &sourceID
		needsUpdate = true
	}
	return update, needsUpdate
}

func NewArrangementCreate(local songbeamer.Song, opts Options, now time.Time) churchtools.ArrangementCreate {
	create := churchtools.ArrangementCreate{
		Name:        opts.arrangementName(),
		Description: Provenance("Created", local.FileName(), now),
		Key:         local.Key,
	}
	if opts.SourceID != 0 {
		sourceID := opts.SourceID
		create.SourceID = &sourceID
	}
	return create
}
