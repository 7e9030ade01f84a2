package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Status is the processing state reported by the transcription service
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Label returns the human readable badge text. Values the service may add
// later fall back to "unknown".
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDownloading:
		return "downloading"
	case StatusTranscribing:
		return "transcribing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the job has stopped changing
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

type ContentType string

const (
	ContentPodcast     ContentType = "podcast"
	ContentDocumentary ContentType = "documentary"
)

func (c ContentType) Label() string {
	switch c {
	case ContentDocumentary:
		return "documentary"
	default:
		return "podcast"
	}
}

type NoteType string

const (
	NoteAuto NoteType = "auto"
	NoteAI   NoteType = "ai"
)

func (n NoteType) Label() string {
	switch n {
	case NoteAuto:
		return "rule engine"
	case NoteAI:
		return "AI"
	default:
		return "unknown"
	}
}

// FlexID is an identifier the service may send as either a JSON string or a
// number. It is always held in string form so ids compare equal regardless of
// how they were encoded.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

// PodcastSummary is one entry of the podcast list
type PodcastSummary struct {
	ID               FlexID      `json:"id"`
	Title            string      `json:"title"`
	URL              string      `json:"url,omitempty"`
	Status           Status      `json:"status"`
	Category         string      `json:"category,omitempty"`
	ContentType      ContentType `json:"content_type,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	ErrorMessage     string      `json:"error_message,omitempty"`
	Duration         float64     `json:"duration,omitempty"`  // seconds
	FileSize         int64       `json:"file_size,omitempty"` // bytes
	OriginalFilename string      `json:"original_filename,omitempty"`
}

// DisplayTitle falls back to the original filename or the id for untitled jobs
func (p *PodcastSummary) DisplayTitle() string {
	switch {
	case p.Title != "":
		return p.Title
	case p.OriginalFilename != "":
		return p.OriginalFilename
	default:
		return "untitled " + p.ContentType.Label()
	}
}

// UnmarshalJSON accepts the timestamp formats the service emits (RFC 3339 and
// Python's isoformat without a zone).
func (p *PodcastSummary) UnmarshalJSON(data []byte) error {
	type plain PodcastSummary
	aux := struct {
		*plain
		CreatedAt string `json:"created_at"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.CreatedAt = ParseTime(aux.CreatedAt)
	return nil
}

// TranscriptRecord describes one stored transcript of a podcast
type TranscriptRecord struct {
	ID           FlexID    `json:"id"`
	ModelVersion string    `json:"model_version,omitempty"`
	WordCount    int       `json:"word_count"`
	CreatedAt    time.Time `json:"created_at"`
	FilePath     string    `json:"file_path"`
}

func (t *TranscriptRecord) UnmarshalJSON(data []byte) error {
	type plain TranscriptRecord
	aux := struct {
		*plain
		CreatedAt string `json:"created_at"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.CreatedAt = ParseTime(aux.CreatedAt)
	return nil
}

// NoteRecord describes one generated note
type NoteRecord struct {
	ID        FlexID    `json:"id"`
	NoteType  NoteType  `json:"note_type"`
	ModelName string    `json:"model_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	FilePath  string    `json:"file_path"`
}

func (n *NoteRecord) UnmarshalJSON(data []byte) error {
	type plain NoteRecord
	aux := struct {
		*plain
		CreatedAt string `json:"created_at"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.CreatedAt = ParseTime(aux.CreatedAt)
	return nil
}

// PodcastDetail is fetched on demand when the detail dialog opens and dropped
// when it closes
type PodcastDetail struct {
	Podcast     PodcastSummary     `json:"podcast"`
	Transcripts []TranscriptRecord `json:"transcripts"`
	Notes       []NoteRecord       `json:"notes"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a service timestamp, returning the zero time when the value
// is empty or unrecognised
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Unix(int64(secs), 0).UTC()
	}
	return time.Time{}
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour
func FormatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatTimestamp renders seconds as HH:MM:SS, as used in transcript exports
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatFileSize renders a byte count with a binary unit
func FormatFileSize(bytes int64) string {
	const unit = 1024
	switch {
	case bytes < unit:
		return fmt.Sprintf("%d B", bytes)
	case bytes < unit*unit:
		return fmt.Sprintf("%.2f KB", float64(bytes)/unit)
	case bytes < unit*unit*unit:
		return fmt.Sprintf("%.2f MB", float64(bytes)/unit/unit)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/unit/unit/unit)
	}
}
