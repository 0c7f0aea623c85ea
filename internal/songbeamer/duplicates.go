package songbeamer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/cases"
)

// DuplicateGroup lists the files sharing one case-folded title.
type DuplicateGroup struct {
	Title string   `json:"title"`
	Files []string `json:"files"`
}

// ScanDir parses every .sng file directly inside dir in name order. Files
// without a title are left out; other read failures abort the scan.
func ScanDir(dir string) ([]Song, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	songs := []Song{}
	for _, entry := range entries {
		if entry.IsDir() || !IsSongFile(entry.Name()) {
			continue
		}
		song, err := Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			if errors.Is(err, ErrNoTitle) {
				continue
			}
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// FindDuplicates groups songs whose titles are equal ignoring case.
func FindDuplicates(songs []Song) []DuplicateGroup {
	folder := cases.Fold()
	order := []string{}
	byTitle := map[string]*DuplicateGroup{}

	for _, song := range songs {
		key := folder.String(song.Title)
		group, ok := byTitle[key]
		if !ok {
			group = &DuplicateGroup{Title: key}
			byTitle[key] = group
			order = append(order, key)
		}
		group.Files = append(group.Files, song.FileName())
	}

	duplicates := []DuplicateGroup{}
	for _, key := range order {
		group := byTitle[key]
		if len(group.Files) < 2 {
			continue
		}
		sort.Strings(group.Files)
		duplicates = append(duplicates, *group)
	}
	return duplicates
}
