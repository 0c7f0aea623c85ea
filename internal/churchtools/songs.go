package churchtools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// SearchSongs lists songs whose name matches name.
func (c *Client) SearchSongs(ctx context.Context, name string) ([]Song, error) {
	query := url.Values{}
	query.Set("name", name)
	songs, err := Collect[Song](ctx, c, "songs", query)
	if err != nil {
		return nil, fmt.Errorf("search songs %q: %w", name, err)
	}
	return songs, nil
}

// SongsBySource lists songs having arrangements tagged with sourceID.
func (c *Client) SongsBySource(ctx context.Context, sourceID int) ([]Song, error) {
	query := url.Values{}
	query.Set("sourceId", strconv.Itoa(sourceID))
	songs, err := Collect[Song](ctx, c, "songs", query)
	if err != nil {
		return nil, fmt.Errorf("list songs of source %d: %w", sourceID, err)
	}
	return songs, nil
}

// Arrangements lists all arrangements of a song.
func (c *Client) Arrangements(ctx context.Context, songID int) ([]Arrangement, error) {
	arrangements, err := Collect[Arrangement](ctx, c, songPath(songID, "arrangements"), nil)
	if err != nil {
		return nil, fmt.Errorf("list arrangements of song %d: %w", songID, err)
	}
	return arrangements, nil
}

func (c *Client) CreateSong(ctx context.Context, song SongCreate) (Song, error) {
	var result envelope[Song]
	if err := c.sendJSON(ctx, http.MethodPost, "songs", song, &result); err != nil {
		return Song{}, fmt.Errorf("create song: %w", err)
	}
	return result.Data, nil
}

func (c *Client) UpdateSong(ctx context.Context, songID int, song SongUpdate) error {
	if err := c.sendJSON(ctx, http.MethodPut, songPath(songID), song, nil); err != nil {
		return fmt.Errorf("update song %d: %w", songID, err)
	}
	return nil
}

func (c *Client) DeleteSong(ctx context.Context, songID int) error {
	if err := c.sendJSON(ctx, http.MethodDelete, songPath(songID), nil, nil); err != nil {
		return fmt.Errorf("delete song %d: %w", songID, err)
	}
	return nil
}

func (c *Client) CreateArrangement(ctx context.Context, songID int, arrangement ArrangementCreate) (Arrangement, error) {
	var result envelope[Arrangement]
	if err := c.sendJSON(ctx, http.MethodPost, songPath(songID, "arrangements"), arrangement, &result); err != nil {
		return Arrangement{}, fmt.Errorf("create arrangement for song %d: %w", songID, err)
	}
	return result.Data, nil
}

func (c *Client) UpdateArrangement(ctx context.Context, songID, arrangementID int, arrangement ArrangementUpdate) error {
	path := songPath(songID, "arrangements", strconv.Itoa(arrangementID))
	if err := c.sendJSON(ctx, http.MethodPut, path, arrangement, nil); err != nil {
		return fmt.Errorf("update arrangement %d of song %d: %w", arrangementID, songID, err)
	}
	return nil
}

func (c *Client) DeleteArrangement(ctx context.Context, songID, arrangementID int) error {
	path := songPath(songID, "arrangements", strconv.Itoa(arrangementID))
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete arrangement %d of song %d: %w", arrangementID, songID, err)
	}
	return nil
}

// SetDefaultArrangement marks an arrangement as the default of its song.
func (c *Client) SetDefaultArrangement(ctx context.Context, songID, arrangementID int) error {
	path := songPath(songID, "arrangements", strconv.Itoa(arrangementID), "default")
	if err := c.sendJSON(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("set arrangement %d as default for song %d: %w", arrangementID, songID, err)
	}
	return nil
}

// ArrangementFiles lists the attachments of an arrangement.
func (c *Client) ArrangementFiles(ctx context.Context, arrangementID int) ([]File, error) {
	files, err := Collect[File](ctx, c, arrangementFilesPath(arrangementID), nil)
	if err != nil {
		return nil, fmt.Errorf("list attachments of arrangement %d: %w", arrangementID, err)
	}
	return files, nil
}

// UploadArrangementFile attaches content as a file called name.
func (c *Client) UploadArrangementFile(ctx context.Context, arrangementID int, name string, content io.Reader) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("files[]", name)
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build upload: %w", err)
	}

	if _, err := c.send(ctx, http.MethodPost, arrangementFilesPath(arrangementID), nil, buf.Bytes(), writer.FormDataContentType()); err != nil {
		return fmt.Errorf("upload attachment for arrangement %d: %w", arrangementID, err)
	}
	return nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID int) error {
	if err := c.sendJSON(ctx, http.MethodDelete, "files/"+strconv.Itoa(fileID), nil, nil); err != nil {
		return fmt.Errorf("delete attachment %d: %w", fileID, err)
	}
	return nil
}

func songPath(songID int, segments ...string) string {
	return JoinPath("songs/"+strconv.Itoa(songID), segments...)
}

func arrangementFilesPath(arrangementID int) string {
	return "files/song_arrangement/" + strconv.Itoa(arrangementID)
}
