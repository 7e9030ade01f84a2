package ui

import (
	"context"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/collection"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/transcript"
)

// Backend is everything the UI asks of the transcription service
type Backend interface {
	collection.Fetcher
	chat.Backend
	transcript.SpeakerRenamer
	transcript.Exporter

	GetPodcast(ctx context.Context, id string) (*models.PodcastDetail, error)
	DeletePodcast(ctx context.Context, id string) error
	ClearAll(ctx context.Context) (int, error)
	RenamePodcast(ctx context.Context, id, title string) error
	SetCategory(ctx context.Context, id, category string) error
	SubmitURL(ctx context.Context, mediaURL string, contentType models.ContentType) (string, error)
	UploadFile(ctx context.Context, path string, contentType models.ContentType, progress api.UploadProgress) (string, error)
	Preview(ctx context.Context, filePath string) (*api.Preview, error)
	Download(ctx context.Context, filePath string) (*api.Artifact, error)
	ListSpeakers(ctx context.Context, transcriptID string) (map[string]string, error)
	GenerateNote(ctx context.Context, podcastID string, noteType models.NoteType, provider string) (string, error)
}

var _ Backend = (*api.Client)(nil)
