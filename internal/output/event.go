package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventImportStarted  EventName = "import_started"
	EventFileStarted    EventName = "file_started"
	EventFileSkipped    EventName = "file_skipped"
	EventFileInvalid    EventName = "file_invalid"
	EventFileFailed     EventName = "file_failed"
	EventImportFinished EventName = "import_finished"

	EventSongCreated   EventName = "song_created"
	EventSongUpdated   EventName = "song_updated"
	EventSongKept      EventName = "song_kept"
	EventSongAmbiguous EventName = "song_ambiguous"

	EventArrangementCreated EventName = "arrangement_created"
	EventArrangementUpdated EventName = "arrangement_updated"
	EventArrangementKept    EventName = "arrangement_kept"

	EventAttachmentKept     EventName = "attachment_kept"
	EventAttachmentDeleted  EventName = "attachment_deleted"
	EventAttachmentUploaded EventName = "attachment_uploaded"
	EventDefaultSet         EventName = "default_arrangement_set"

	EventDeleteStarted      EventName = "delete_started"
	EventArrangementDeleted EventName = "arrangement_deleted"
	EventSongDeleted        EventName = "song_deleted"
	EventDeleteFailed       EventName = "delete_failed"
	EventDeleteFinished     EventName = "delete_finished"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	RunID     string         `json:"run_id,omitempty"`
	File      string         `json:"file,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// IsSummary reports whether the event closes a run.
func (e Event) IsSummary() bool {
	return e.Event == EventImportFinished || e.Event == EventDeleteFinished
}
