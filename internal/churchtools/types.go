package churchtools

import (
	"strings"
)

// FlexString decodes a JSON string or number into a trimmed string. Null and
// missing values decode to the empty string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(value))
		return nil
	}
	*f = FlexString(raw)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Category is the song category reference embedded in a song.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Song is a remote song snapshot. Unknown fields in responses are ignored.
// Arrangements is nil when the response did not include them.
type Song struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Author       string        `json:"author"`
	CCLI         FlexString    `json:"ccli"`
	Copyright    string        `json:"copyright"`
	Category     Category      `json:"category"`
	Arrangements []Arrangement `json:"arrangements"`
}

// HasCCLI reports whether the song carries a CCLI number at all.
func (s Song) HasCCLI() bool {
	return strings.TrimSpace(s.CCLI.String()) != ""
}

// HasAuthor reports whether the song carries an author at all.
func (s Song) HasAuthor() bool {
	return strings.TrimSpace(s.Author) != ""
}

// Arrangement is a remote arrangement snapshot.
type Arrangement struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Key         string  `json:"key"`
	Beat        *string `json:"beat"`
	Duration    *int    `json:"duration"`
	Tempo       *int    `json:"tempo"`
	SourceID    *int    `json:"sourceId"`
	Description string  `json:"description"`
	IsDefault   bool    `json:"isDefault"`
	Files       []File  `json:"files"`
}

// HasSource reports whether the arrangement was tagged with sourceID.
func (a Arrangement) HasSource(sourceID int) bool {
	return a.SourceID != nil && *a.SourceID == sourceID
}

// File is an attachment descriptor.
type File struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SongCreate is the payload of POST /songs.
type SongCreate struct {
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
	CCLI       string `json:"ccli,omitempty"`
	Author     string `json:"author,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// SongUpdate is the payload of PUT /songs/{id}.
type SongUpdate struct {
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
	CCLI       string `json:"ccli,omitempty"`
	Author     string `json:"author,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// ArrangementCreate is the payload of POST /songs/{id}/arrangements.
type ArrangementCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SourceID    *int   `json:"sourceId,omitempty"`
	Key         string `json:"key,omitempty"`
}

// ArrangementUpdate is the payload of PUT /songs/{id}/arrangements/{id}.
type ArrangementUpdate struct {
	Name        string  `json:"name"`
	Key         string  `json:"key,omitempty"`
	Beat        *string `json:"beat,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	Tempo       *int    `json:"tempo,omitempty"`
	SourceID    *int    `json:"sourceId,omitempty"`
	Description string  `json:"description"`
}

// Person is the authenticated user returned by /whoami.
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Info is the installation info returned by /info.
type Info struct {
	Version  string `json:"version"`
	SiteName string `json:"siteName"`
}
