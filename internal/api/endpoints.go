package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/csams/transcript-tui/internal/download"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/oops"
)

func escape(id string) string {
	return url.PathEscape(id)
}

// ListPodcasts returns every podcast known to the service
func (c *Client) ListPodcasts(ctx context.Context) ([]models.PodcastSummary, error) {
	var podcasts []models.PodcastSummary
	if err := c.doJSON(ctx, http.MethodGet, "/podcasts", nil, &podcasts); err != nil {
		return nil, err
	}
	if podcasts == nil {
		podcasts = []models.PodcastSummary{}
	}
	return podcasts, nil
}

// GetPodcast returns a podcast with its transcripts and notes
func (c *Client) GetPodcast(ctx context.Context, id string) (*models.PodcastDetail, error) {
	var detail models.PodcastDetail
	if err := c.doJSON(ctx, http.MethodGet, "/podcasts/"+escape(id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) DeletePodcast(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/podcasts/"+escape(id), nil, nil)
}

// ClearAll deletes every podcast and returns how many were removed
func (c *Client) ClearAll(ctx context.Context) (int, error) {
	var result struct {
		Deleted int `json:"podcasts_deleted"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/podcasts/clear-all", nil, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// DeletePodcasts removes several podcasts in one request and returns how many
// the service deleted
func (c *Client) DeletePodcasts(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var result struct {
		Deleted int `json:"podcasts_deleted"`
	}
	payload := map[string][]string{"podcast_ids": ids}
	if err := c.doJSON(ctx, http.MethodPost, "/podcasts/batch-delete", payload, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// ServiceSettings is the AI configuration the service reports
type ServiceSettings struct {
	AIProviders     []string `json:"ai_providers"`
	DefaultProvider string   `json:"default_provider"`
	WhisperProvider string   `json:"whisper_provider"`
}

func (c *Client) GetSettings(ctx context.Context) (*ServiceSettings, error) {
	var settings ServiceSettings
	if err := c.doJSON(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) RenamePodcast(ctx context.Context, id, title string) error {
	return c.doJSON(ctx, http.MethodPut, "/podcasts/"+escape(id)+"/rename", map[string]string{"title": title}, nil)
}

// SetCategory assigns a category; an empty category clears it
func (c *Client) SetCategory(ctx context.Context, id, category string) error {
	return c.doJSON(ctx, http.MethodPut, "/podcasts/"+escape(id)+"/category", map[string]string{"category": category}, nil)
}

type createdPodcast struct {
	PodcastID models.FlexID `json:"podcast_id"`
	ID        models.FlexID `json:"id"`
}

func (c createdPodcast) id() string {
	if c.PodcastID != "" {
		return c.PodcastID.String()
	}
	return c.ID.String()
}

// SubmitURL creates a transcription job for a remote media URL
func (c *Client) SubmitURL(ctx context.Context, mediaURL string, contentType models.ContentType) (string, error) {
	payload := map[string]string{"url": mediaURL}
	if contentType != "" {
		payload["content_type"] = string(contentType)
	}
	var created createdPodcast
	if err := c.doJSON(ctx, http.MethodPost, "/podcasts", payload, &created); err != nil {
		return "", err
	}
	return created.id(), nil
}

// UploadProgress receives the number of bytes sent so far and the file size
type UploadProgress func(sent, total int64)

// UploadFile streams a local media file to the service as multipart form data
func (c *Client) UploadFile(ctx context.Context, path string, contentType models.ContentType, progress UploadProgress) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", oops.New(err, "failed to open %s", path)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", oops.New(err, "failed to stat %s", path)
	}

	reader := download.NewProgressReader(file, stat.Size(), func(current, total, speed int64) {
		if progress != nil {
			progress(current, total)
		}
	})

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if contentType != "" {
				if err := form.WriteField("content_type", string(contentType)); err != nil {
					return err
				}
			}
			part, err := form.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, reader); err != nil {
				return err
			}
			return form.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, requestID, err := c.newRequest(ctx, http.MethodPost, "/podcasts/upload", pr, form.FormDataContentType())
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}

	var created createdPodcast
	if err := c.send(c.transfer, req, requestID, http.MethodPost, "/podcasts/upload", &created); err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	return created.id(), nil
}

// PreviewType distinguishes server-rendered documents from raw text
type PreviewType string

const (
	PreviewMarkdown PreviewType = "markdown"
	PreviewText     PreviewType = "text"
)

// Preview is the service's rendering of a stored file
type Preview struct {
	Type    PreviewType `json:"type"`
	HTML    string      `json:"html,omitempty"`
	Content string      `json:"content,omitempty"`
}

func (c *Client) Preview(ctx context.Context, filePath string) (*Preview, error) {
	var preview Preview
	if err := c.doJSON(ctx, http.MethodPost, "/files/preview", map[string]string{"file_path": filePath}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Download fetches a stored file
func (c *Client) Download(ctx context.Context, filePath string) (*Artifact, error) {
	return c.doBinary(ctx, "/files/download", map[string]string{"file_path": filePath}, download.DefaultFilename)
}

// ListSpeakers returns the speaker id -> display name mapping of a transcript.
// Speakers without a custom name map to an empty string.
func (c *Client) ListSpeakers(ctx context.Context, transcriptID string) (map[string]string, error) {
	var result struct {
		Speakers map[string]*string `json:"speakers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/transcripts/"+escape(transcriptID)+"/speakers", nil, &result); err != nil {
		return nil, err
	}
	speakers := make(map[string]string, len(result.Speakers))
	for id, name := range result.Speakers {
		if name != nil {
			speakers[id] = *name
		} else {
			speakers[id] = ""
		}
	}
	return speakers, nil
}

func (c *Client) RenameSpeakers(ctx context.Context, transcriptID string, names map[string]string) error {
	return c.doJSON(ctx, http.MethodPut, "/transcripts/"+escape(transcriptID)+"/speakers", map[string]interface{}{"speakers": names}, nil)
}

// ExportFormat is the file format of a transcript export
type ExportFormat string

const (
	FormatText     ExportFormat = "txt"
	FormatMarkdown ExportFormat = "md"
	FormatSubtitle ExportFormat = "srt"
)

func (f ExportFormat) Label() string {
	switch f {
	case FormatText:
		return "plain text"
	case FormatMarkdown:
		return "markdown"
	case FormatSubtitle:
		return "subtitles"
	default:
		return string(f)
	}
}

// ExportOptions select the format and what to include in an export
type ExportOptions struct {
	Format            ExportFormat `json:"format"`
	IncludeSpeakers   bool         `json:"include_speakers"`
	IncludeTimestamps bool         `json:"include_timestamps"`
}

// DefaultExportName is the file name used when the server sends none
func DefaultExportName(format ExportFormat) string {
	return fmt.Sprintf("transcript.%s", format)
}

// Export renders a transcript in the requested format
func (c *Client) Export(ctx context.Context, transcriptID string, opts ExportOptions) (*Artifact, error) {
	return c.doBinary(ctx, "/transcripts/"+escape(transcriptID)+"/export", opts, DefaultExportName(opts.Format))
}

// GenerateNote asks the service to produce a note and returns its file path
func (c *Client) GenerateNote(ctx context.Context, podcastID string, noteType models.NoteType, provider string) (string, error) {
	payload := map[string]string{
		"podcast_id": podcastID,
		"note_type":  string(noteType),
	}
	if provider != "" {
		payload["ai_provider"] = provider
	}
	var result struct {
		FilePath string `json:"file_path"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/notes/generate", payload, &result); err != nil {
		return "", err
	}
	return result.FilePath, nil
}

// InitChat opens an AI conversation grounded on a podcast's transcript
func (c *Client) InitChat(ctx context.Context, podcastID, provider string) (string, error) {
	var result struct {
		SessionID string `json:"session_id"`
	}
	payload := map[string]string{"podcast_id": podcastID, "provider": provider}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/init", payload, &result); err != nil {
		return "", err
	}
	if result.SessionID == "" {
		return "", fmt.Errorf("%w: no session id", ErrMalformed)
	}
	return result.SessionID, nil
}

// SendChat sends one user message and returns the assistant's reply
func (c *Client) SendChat(ctx context.Context, sessionID, message string) (string, error) {
	var result struct {
		Reply    string `json:"reply"`
		Response string `json:"response"`
	}
	payload := map[string]string{"session_id": sessionID, "message": message}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/send", payload, &result); err != nil {
		return "", err
	}
	if result.Reply != "" {
		return result.Reply, nil
	}
	return result.Response, nil
}

// ClearChat resets the service-side conversation history
func (c *Client) ClearChat(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodPost, "/chat/clear", map[string]string{"session_id": sessionID}, nil)
}
