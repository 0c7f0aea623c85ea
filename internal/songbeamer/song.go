// Package songbeamer reads the metadata header of SongBeamer .sng files.
package songbeamer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Extension is the file suffix of SongBeamer song files.
const Extension = ".sng"

var ErrNoTitle = errors.New("song has no title")

// Song is the metadata parsed from one local .sng file.
type Song struct {
	Title      string
	Key        string
	Author     string
	Copyright  string
	CCLI       string
	Categories []string
	Path       string
}

// FileName is the base name used to recognise earlier uploads of this file.
func (s Song) FileName() string {
	return filepath.Base(s.Path)
}

// IsSongFile reports whether name carries the .sng extension.
func IsSongFile(name string) bool {
	return strings.HasSuffix(name, Extension)
}

// Read parses the file at path. Files that are not valid UTF-8 are decoded
// as ISO-8859-1. ErrNoTitle is returned when no #Title line is present.
func Read(path string) (Song, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Song{}, fmt.Errorf("read %s: %w", path, err)
	}
	text, err := decode(payload)
	if err != nil {
		return Song{}, fmt.Errorf("decode %s: %w", path, err)
	}
	song, err := Parse(text)
	if err != nil {
		return Song{}, err
	}
	song.Path = path
	return song, nil
}

// Parse reads the tagged header lines of a decoded .sng document.
func Parse(text string) (Song, error) {
	song := Song{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tag, value, ok := strings.Cut(strings.TrimRight(scanner.Text(), "\r"), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch tag {
		case "#Title":
			song.Title = value
		case "#Key":
			song.Key = value
		case "#Author":
			song.Author = value
		case "#(c)":
			song.Copyright = value
		case "#CCLI":
			song.CCLI = value
		case "#Categories":
			song.Categories = splitCategories(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return Song{}, err
	}

	if song.Title == "" {
		return Song{}, ErrNoTitle
	}
	return song, nil
}

func splitCategories(value string) []string {
	parts := strings.Split(value, ",")
	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		categories = append(categories, strings.TrimSpace(part))
	}
	return categories
}

func decode(payload []byte) (string, error) {
	if utf8.Valid(payload) {
		decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(payload)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
