package engine

import (
	"strings"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/songbeamer"
)

// MatchArrangement returns the first arrangement holding an attachment named
// like the song file. A non-zero sourceID skips arrangements of other sources.
func MatchArrangement(song songbeamer.Song, arrangements []churchtools.Arrangement, sourceID int) (churchtools.Arrangement, bool) {
	name := song.FileName()
	for _, arrangement := range arrangements {
		if sourceID != 0 && !arrangement.HasSource(sourceID) {
			continue
		}
		for _, file := range arrangement.Files {
			if file.Name == name {
				return arrangement, true
			}
		}
	}
	return churchtools.Arrangement{}, false
}

// MatchSong resolves the local song against candidates in fixed order: file
// name, CCLI, author, then cardinality of what is left.
func MatchSong(song songbeamer.Song, candidates []churchtools.Song, sourceID int) MatchOutcome {
	total := len(candidates)

	for _, candidate := range candidates {
		if _, ok := MatchArrangement(song, candidate.Arrangements, sourceID); ok {
			return MatchOutcome{Kind: ExactMatch, Song: candidate, Reason: "file", Candidates: total}
		}
	}

	if ccli := strings.TrimSpace(song.CCLI); ccli != "" {
		if match, ok := findSong(candidates, func(s churchtools.Song) bool { return sameValue(ccli, s.CCLI.String()) }); ok {
			return MatchOutcome{Kind: ExactMatch, Song: match, Reason: "ccli", Candidates: total}
		}
		candidates = withoutCCLI(candidates)
	}

	if author := strings.TrimSpace(song.Author); author != "" {
		if match, ok := findSong(candidates, func(s churchtools.Song) bool { return sameValue(author, s.Author) }); ok {
			return MatchOutcome{Kind: ExactMatch, Song: match, Reason: "author", Candidates: total}
		}
		candidates = withoutAuthor(candidates)
	}

	switch len(candidates) {
	case 0:
		return MatchOutcome{Kind: NoMatch, Candidates: total}
	case 1:
		return MatchOutcome{Kind: ExactMatch, Song: candidates[0], Reason: "title", Candidates: total}
	default:
		return MatchOutcome{Kind: Ambiguous, Reason: "title", Candidates: len(candidates)}
	}
}

func findSong(candidates []churchtools.Song, match func(churchtools.Song) bool) (churchtools.Song, bool) {
	for _, candidate := range candidates {
		if match(candidate) {
			return candidate, true
		}
	}
	return churchtools.Song{}, false
}

func filterSongs(candidates []churchtools.Song, keep func(churchtools.Song) bool) []churchtools.Song {
	filtered := make([]churchtools.Song, 0, len(candidates))
	for _, candidate := range candidates {
		if keep(candidate) {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

func withoutCCLI(candidates []churchtools.Song) []churchtools.Song {
	return filterSongs(candidates, func(s churchtools.Song) bool { return !s.HasCCLI() })
}

func withoutAuthor(candidates []churchtools.Song) []churchtools.Song {
	return filterSongs(candidates, func(s churchtools.Song) bool { return !s.HasAuthor() })
}

// sameValue compares a local and a remote field ignoring surrounding
// whitespace. Matching and song updates both use it.
func sameValue(local, remote string) bool {
	return strings.TrimSpace(local) == strings.TrimSpace(remote)
}
