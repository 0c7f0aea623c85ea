package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jaa/ctsong/internal/churchtools"
)

var (
	ErrInterrupted      = errors.New("import interrupted")
	ErrSourceIDRequired = errors.New("source_id must be set to delete imported songs")
)

// DefaultArrangementName names arrangements created by an import.
const DefaultArrangementName = "SongBeamer"

// Catalog is the part of the ChurchTools API the importer talks to.
type Catalog interface {
	SearchSongs(ctx context.Context, name string) ([]churchtools.Song, error)
	SongsBySource(ctx context.Context, sourceID int) ([]churchtools.Song, error)
	CreateSong(ctx context.Context, song churchtools.SongCreate) (churchtools.Song, error)
	UpdateSong(ctx context.Context, songID int, song churchtools.SongUpdate) error
	DeleteSong(ctx context.Context, songID int) error

	Arrangements(ctx context.Context, songID int) ([]churchtools.Arrangement, error)
	CreateArrangement(ctx context.Context, songID int, arrangement churchtools.ArrangementCreate) (churchtools.Arrangement, error)
	UpdateArrangement(ctx context.Context, songID, arrangementID int, arrangement churchtools.ArrangementUpdate) error
	DeleteArrangement(ctx context.Context, songID, arrangementID int) error
	SetDefaultArrangement(ctx context.Context, songID, arrangementID int) error

	ArrangementFiles(ctx context.Context, arrangementID int) ([]churchtools.File, error)
	UploadArrangementFile(ctx context.Context, arrangementID int, name string, content io.Reader) error
	DeleteFile(ctx context.Context, fileID int) error
}

type AttachmentMode string

const (
	AttachmentAdd     AttachmentMode = "add"
	AttachmentSkip    AttachmentMode = "skip"
	AttachmentReplace AttachmentMode = "replace"
)

var AttachmentModes = []AttachmentMode{AttachmentAdd, AttachmentSkip, AttachmentReplace}

func ParseAttachmentMode(value string) (AttachmentMode, error) {
	mode := AttachmentMode(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range AttachmentModes {
		if mode == known {
			return mode, nil
		}
	}
	return "", fmt.Errorf("invalid attachment mode %q (expected add, skip or replace)", value)
}

func (m AttachmentMode) String() string {
	return string(m)
}

func (m *AttachmentMode) Set(value string) error {
	mode, err := ParseAttachmentMode(value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m *AttachmentMode) Type() string {
	return "add|skip|replace"
}

type Options struct {
	// SourceID tags created arrangements and scopes file-name matching. Zero
	// means unset.
	SourceID        int
	SongCategory    int
	ArrangementName string
	AttachmentMode  AttachmentMode
}

func (o Options) arrangementName() string {
	if strings.TrimSpace(o.ArrangementName) == "" {
		return DefaultArrangementName
	}
	return o.ArrangementName
}

func (o Options) attachmentMode() AttachmentMode {
	if o.AttachmentMode == "" {
		return AttachmentSkip
	}
	return o.AttachmentMode
}

type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	Ambiguous
)

func (k MatchKind) String() string {
	switch k {
	case ExactMatch:
		return "exact"
	case Ambiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// MatchOutcome is the result of matching a local song against remote
// candidates. Song is only set for ExactMatch.
type MatchOutcome struct {
	Kind       MatchKind
	Song       churchtools.Song
	Reason     string
	Candidates int
}

type SongAction string

const (
	SongCreated   SongAction = "created"
	SongUpdated   SongAction = "updated"
	SongKept      SongAction = "kept"
	SongAmbiguous SongAction = "ambiguous"
)

type ImportResult struct {
	Total       int
	Created     int
	Updated     int
	Kept        int
	Ambiguous   int
	Invalid     int
	Skipped     int
	Failed      int
	Interrupted bool
}

type DeleteResult struct {
	Songs               int
	SongsDeleted        int
	ArrangementsDeleted int
	Failed              int
	Interrupted         bool
}
