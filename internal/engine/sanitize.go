package engine

import (
	"errors"
	"fmt"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/schema"
	"github.com/jaa/ctsong/internal/songbeamer"
)

type FieldProblem struct {
	Field  string
	Value  string
	Reason string
}

func (p FieldProblem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Reason)
}

// SanitizeSong fits the song fields to the API limits, clamping values that
// are too long. Fields that cannot be made to fit are reported as problems.
func SanitizeSong(song songbeamer.Song) (songbeamer.Song, []FieldProblem) {
	return fitSong(song, true)
}

// CheckSong reports every field that would be rejected or clamped.
func CheckSong(song songbeamer.Song) []FieldProblem {
	_, problems := fitSong(song, false)
	return problems
}

func fitSong(song songbeamer.Song, clamp bool) (songbeamer.Song, []FieldProblem) {
	fields := map[string]*string{
		churchtools.FieldTitle:     &song.Title,
		churchtools.FieldAuthor:    &song.Author,
		churchtools.FieldCopyright: &song.Copyright,
		churchtools.FieldCCLI:      &song.CCLI,
		churchtools.FieldKey:       &song.Key,
	}

	problems := []FieldProblem{}
	for _, field := range churchtools.SongFields {
		target, ok := fields[field.Name]
		if !ok {
			continue
		}
		if !clamp {
			if err := schema.Validate(*target, field.Schema); err != nil {
				problems = append(problems, problemFor(field.Name, *target, err))
			}
			continue
		}
		value, err := schema.Sanitize(*target, field.Schema)
		if err != nil {
			problems = append(problems, problemFor(field.Name, *target, err))
			continue
		}
		if text, ok := value.(string); ok {
			*target = text
		}
	}
	return song, problems
}

func problemFor(field, value string, err error) FieldProblem {
	reason := err.Error()
	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		reason = schemaErr.Reason
	}
	return FieldProblem{Field: field, Value: value, Reason: reason}
}
