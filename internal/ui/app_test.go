package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/config"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/overlay"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	podcasts []models.PodcastSummary
	listErr  error
	details  map[string]*models.PodcastDetail
	// gate, when set, holds GetPodcast until it is closed
	gate chan struct{}

	speakerNames map[string]string
	deleted      []string
	cleared      bool
	generated    []models.NoteType
	renamed      map[string]string
	sent         []string
	sentTo       []string
	sessions     int
	// sendGate, when set, holds SendChat until it is closed
	sendGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		podcasts: []models.PodcastSummary{
			{ID: "1", Title: "A", Category: "X", Status: models.StatusCompleted},
			{ID: "2", Title: "B", Category: "Y", Status: models.StatusPending},
			{ID: "3", Title: "C", Category: "X", Status: models.StatusFailed},
		},
		details: map[string]*models.PodcastDetail{
			"1": {
				Podcast: models.PodcastSummary{ID: "1", Title: "A", Category: "X", Status: models.StatusCompleted},
				Transcripts: []models.TranscriptRecord{
					{ID: "10", WordCount: 7, FilePath: "transcripts/a.json"},
				},
				Notes: []models.NoteRecord{
					{ID: "100", NoteType: models.NoteAuto, FilePath: "notes/a-auto.md"},
					{ID: "101", NoteType: models.NoteAI, ModelName: "qwen", FilePath: "notes/a-ai.md"},
				},
			},
			"2": {
				Podcast: models.PodcastSummary{ID: "2", Title: "B", Category: "Y", Status: models.StatusPending},
			},
		},
		speakerNames: map[string]string{},
	}
}

func (b *fakeBackend) ListPodcasts(ctx context.Context) ([]models.PodcastSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]models.PodcastSummary(nil), b.podcasts...), nil
}

func (b *fakeBackend) GetPodcast(ctx context.Context, id string) (*models.PodcastDetail, error) {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	detail, ok := b.details[id]
	if !ok {
		return nil, &api.EnvelopeError{Endpoint: "/podcasts/" + id, Message: "podcast not found"}
	}
	copied := *detail
	copied.Notes = append([]models.NoteRecord(nil), detail.Notes...)
	return &copied, nil
}

func (b *fakeBackend) DeletePodcast(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	for i, p := range b.podcasts {
		if p.ID.String() == id {
			b.podcasts = append(b.podcasts[:i], b.podcasts[i+1:]...)
			break
		}
	}
	return nil
}

func (b *fakeBackend) ClearAll(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.podcasts)
	b.podcasts = nil
	b.cleared = true
	return n, nil
}

func (b *fakeBackend) RenamePodcast(ctx context.Context, id, title string) error {
	return nil
}

func (b *fakeBackend) SetCategory(ctx context.Context, id, category string) error {
	return nil
}

func (b *fakeBackend) SubmitURL(ctx context.Context, mediaURL string, contentType models.ContentType) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.podcasts = append(b.podcasts, models.PodcastSummary{ID: "4", URL: mediaURL, Status: models.StatusPending, ContentType: contentType})
	return "4", nil
}

func (b *fakeBackend) UploadFile(ctx context.Context, path string, contentType models.ContentType, progress api.UploadProgress) (string, error) {
	return "", errors.New("not supported")
}

func (b *fakeBackend) Preview(ctx context.Context, filePath string) (*api.Preview, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if filepath.Ext(filePath) != ".json" {
		return &api.Preview{Type: api.PreviewMarkdown, Content: "# Note\n\nSome **bold** text"}, nil
	}
	doc := map[string]interface{}{
		"segments": []map[string]interface{}{
			{"start": 0, "end": 1, "text": "Hello World", "speaker_id": "S1"},
			{"start": 1, "end": 2, "text": "hi there", "speaker_id": "S2"},
			{"start": 2, "end": 3, "text": "the world is big", "speaker_id": "S1"},
			{"start": 3, "end": 4, "text": "goodbye", "speaker_id": "S3"},
		},
		"metadata": map[string]interface{}{"speaker_names": b.speakerNames},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return &api.Preview{Type: api.PreviewText, Content: string(data)}, nil
}

func (b *fakeBackend) Download(ctx context.Context, filePath string) (*api.Artifact, error) {
	return &api.Artifact{Filename: filepath.Base(filePath), Data: []byte("data")}, nil
}

func (b *fakeBackend) ListSpeakers(ctx context.Context, transcriptID string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]string{"S1": "", "S2": "", "S3": ""}
	for id, name := range b.speakerNames {
		out[id] = name
	}
	return out, nil
}

func (b *fakeBackend) RenameSpeakers(ctx context.Context, transcriptID string, names map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renamed = names
	for id, name := range names {
		b.speakerNames[id] = name
	}
	return nil
}

func (b *fakeBackend) Export(ctx context.Context, transcriptID string, opts api.ExportOptions) (*api.Artifact, error) {
	return &api.Artifact{Data: []byte("exported")}, nil
}

func (b *fakeBackend) GenerateNote(ctx context.Context, podcastID string, noteType models.NoteType, provider string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generated = append(b.generated, noteType)
	detail := b.details[podcastID]
	detail.Notes = append(detail.Notes, models.NoteRecord{ID: "102", NoteType: noteType, FilePath: "notes/new.md"})
	return "notes/new.md", nil
}

func (b *fakeBackend) InitChat(ctx context.Context, podcastID, provider string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions++
	return fmt.Sprintf("session-%d", b.sessions), nil
}

func (b *fakeBackend) SendChat(ctx context.Context, sessionID, message string) (string, error) {
	b.mu.Lock()
	gate := b.sendGate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, message)
	b.sentTo = append(b.sentTo, sessionID)
	return "reply to " + message, nil
}

func (b *fakeBackend) ClearChat(ctx context.Context, sessionID string) error {
	return nil
}

func newTestApp(t *testing.T, backend *fakeBackend) *App {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 40)

	dir := t.TempDir()
	a := NewApp(Options{
		Backend: backend,
		Settings: &config.Settings{
			ConfigDir:    dir,
			DownloadDir:  filepath.Join(dir, "downloads"),
			ChatProvider: "qwen",
		},
		Screen: screen,
	})
	a.overlay.Load()
	t.Cleanup(func() {
		a.Quit()
		a.shutdown()
		screen.Fini()
	})
	return a
}

// pump applies one background result the way the event loop does
func pump(t *testing.T, a *App) {
	t.Helper()
	select {
	case fn := <-a.updates:
		fn()
		a.modals.Sweep()
		a.draw()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a background result")
	}
}

func press(a *App, r rune) {
	a.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	a.draw()
}

func pressKey(a *App, k tcell.Key) {
	a.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
	a.draw()
}

func typeText(a *App, text string) {
	for _, r := range text {
		press(a, r)
	}
}

func click(a *App, x, y int) {
	a.handleMouse(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	a.handleMouse(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
	a.draw()
}

func listTitles(a *App) []string {
	var titles []string
	for _, row := range a.list.table.rows {
		titles = append(titles, row.(podcastRow).podcast.Title)
	}
	return titles
}

func loadedApp(t *testing.T, backend *fakeBackend) *App {
	a := newTestApp(t, backend)
	a.list.Refresh()
	pump(t, a)
	return a
}

// openDetailOf opens the detail dialog of the first podcast and waits for it
func openDetailOf(t *testing.T, a *App) *DetailDialog {
	pressKey(a, tcell.KeyEnter)
	pump(t, a)
	d := a.detailDialog()
	require.NotNil(t, d.detail)
	return d
}

func TestRefreshAndCategoryFilter(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	assert.Equal(t, []string{"A", "B", "C"}, listTitles(a))

	press(a, 'c')
	require.NotNil(t, a.list.category)
	assert.Equal(t, "X", *a.list.category)
	assert.Equal(t, []string{"A", "C"}, listTitles(a))

	press(a, 'c')
	assert.Equal(t, []string{"B"}, listTitles(a))

	press(a, 'c')
	assert.Nil(t, a.list.category)
	assert.Equal(t, []string{"A", "B", "C"}, listTitles(a))
}

func TestFailedRefreshKeepsList(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	backend.mu.Lock()
	backend.listErr = errors.New("connection refused")
	backend.mu.Unlock()

	press(a, 'r')
	pump(t, a)
	assert.Equal(t, []string{"A", "B", "C"}, listTitles(a))
	assert.True(t, a.statusError)
	assert.Contains(t, a.statusMessage, "connection refused")
}

func TestDismissingDetailClearsPage(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	d := openDetailOf(t, a)

	assert.Equal(t, 1, a.modals.Count())
	assert.True(t, a.modals.Page().HasBackdrop())
	assert.True(t, a.modals.Page().Locked())
	assert.Len(t, d.items, 3)

	pressKey(a, tcell.KeyEscape)
	assert.Equal(t, 0, a.modals.Count())
	assert.False(t, a.modals.Page().Active())
	assert.Nil(t, d.detail)
}

func TestDetailFailureIsShownInDialog(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	press(a, 'j')
	press(a, 'j')
	pressKey(a, tcell.KeyEnter)
	pump(t, a)

	d := a.detailDialog()
	assert.Nil(t, d.detail)
	require.Error(t, d.err)
	assert.Equal(t, "podcast not found", errorText(d.err))
	assert.True(t, d.isOpen())
}

func TestLateDetailResultIsDropped(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gate = gate
	backend.mu.Unlock()

	// open A, close it, open B while A's fetch is still in flight
	pressKey(a, tcell.KeyEnter)
	pressKey(a, tcell.KeyEscape)
	press(a, 'j')
	pressKey(a, tcell.KeyEnter)

	close(gate)
	pump(t, a)
	pump(t, a)

	d := a.detailDialog()
	require.NotNil(t, d.detail)
	assert.Equal(t, "B", d.detail.Podcast.Title)
}

func TestLateResultAfterCloseIsNoop(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gate = gate
	backend.mu.Unlock()

	pressKey(a, tcell.KeyEnter)
	pressKey(a, tcell.KeyEscape)
	close(gate)
	pump(t, a)

	assert.Nil(t, a.detailDialog().detail)
	assert.Equal(t, 0, a.modals.Count())
	assert.False(t, a.modals.Page().Active())
}

func TestHideAndRestoreNotes(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	d := openDetailOf(t, a)

	press(a, 'j') // first note
	press(a, 'h')
	assert.Len(t, d.items, 2)
	assert.Equal(t, 1, d.hidden)
	assert.True(t, a.overlay.IsHidden("1", "100"))

	// persisted for the next run
	reloaded := overlay.NewStore(a.settings.HiddenNotesPath())
	reloaded.Load()
	assert.True(t, reloaded.IsHidden(1, 100))

	// still hidden after the detail is fetched again
	press(a, 'r')
	pump(t, a)
	assert.Len(t, d.items, 2)

	press(a, 'H')
	assert.Len(t, d.items, 3)
	assert.False(t, a.overlay.IsHidden("1", "100"))
}

func TestGenerateNoteReloadsDetail(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)
	d := openDetailOf(t, a)

	press(a, 'G')
	assert.Equal(t, 2, a.modals.Count(), "loading dialog above the detail")

	pump(t, a) // note generated, reload started
	assert.Equal(t, 1, a.modals.Count())
	pump(t, a) // detail reloaded
	assert.Len(t, d.items, 4)
	assert.Equal(t, []models.NoteType{models.NoteAuto}, backend.generated)
}

func TestGeneratedNoteStaysHiddenWhenHidden(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)
	a.overlay.Hide("1", "102")
	d := openDetailOf(t, a)

	press(a, 'G')
	pump(t, a)
	pump(t, a)
	assert.Len(t, d.items, 3)
	assert.Equal(t, 1, d.hidden)
}

func TestProviderChooserAndBackdropClick(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	openDetailOf(t, a)

	press(a, 'g')
	require.Equal(t, 2, a.modals.Count())
	assert.Equal(t, 1, a.modals.Registered())

	click(a, 0, 0)
	assert.Equal(t, 1, a.modals.Count(), "only the chooser is dismissed")
	assert.Equal(t, 0, a.modals.Registered())
	assert.True(t, a.modals.Page().HasBackdrop())

	click(a, 0, 0)
	assert.Equal(t, 0, a.modals.Count())
	assert.False(t, a.modals.Page().Active())
}

func TestTranscriptPreviewFilters(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	openDetailOf(t, a)

	pressKey(a, tcell.KeyEnter) // transcript is the first item
	pump(t, a)
	p := a.previewDialog()
	model := p.model()
	require.NotNil(t, model)
	assert.Equal(t, []string{"S1", "S2", "S3"}, model.Speakers())
	assert.Len(t, model.VisibleSegments(), 4)

	press(a, '1')
	assert.Equal(t, []int{1, 3}, model.VisibleSegments())
	assert.False(t, model.AllSelected())

	press(a, '0')
	assert.True(t, model.AllSelected())
	assert.Len(t, model.VisibleSegments(), 4)

	press(a, '/')
	typeText(a, "WORLD")
	pressKey(a, tcell.KeyEnter)
	assert.Equal(t, "WORLD", model.Query())
	assert.Equal(t, []int{0, 2}, model.VisibleSegments())

	// master off hides everything regardless of the query
	press(a, '0')
	assert.Empty(t, model.VisibleSegments())

	// q typed in the search box is text, not a close key
	press(a, '/')
	press(a, 'q')
	assert.True(t, p.isOpen())
}

func TestSpeakerRenameReloadsPreview(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)
	openDetailOf(t, a)
	pressKey(a, tcell.KeyEnter)
	pump(t, a)
	p := a.previewDialog()
	before := p.model()

	press(a, 'n')
	pump(t, a) // speakers listed, editor open
	require.Equal(t, 3, a.modals.Count())
	typeText(a, "Alice")
	pressKey(a, tcell.KeyEnter)
	pump(t, a)

	assert.Equal(t, map[string]string{"S1": "Alice"}, backend.renamed)
	after := p.model()
	require.NotNil(t, after)
	assert.NotSame(t, before, after, "view is rebuilt from the service")
	assert.Equal(t, "Alice", after.DisplayName("S1"))
	assert.Equal(t, "S1", before.DisplayName("S1"), "old model is not patched")
}

func TestDocumentPreview(t *testing.T) {
	a := loadedApp(t, newFakeBackend())
	openDetailOf(t, a)
	press(a, 'j')
	press(a, 'p')
	pump(t, a)

	p := a.previewDialog()
	require.NotNil(t, p.doc)
	assert.Nil(t, p.model())
	require.NotEmpty(t, p.doc.Lines)
	assert.Equal(t, "Note", p.doc.Lines[0].Text)
}

func TestChatConversation(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)
	openDetailOf(t, a)

	press(a, 't')
	pressKey(a, tcell.KeyEnter) // default provider
	pump(t, a)
	require.Equal(t, "session-1", a.session.SessionID())

	pressKey(a, tcell.KeyEnter)
	assert.Empty(t, backend.sent, "empty input is not sent")

	typeText(a, "hi")
	pressKey(a, tcell.KeyEnter)
	pump(t, a)

	messages := a.session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "reply to hi", messages[1].Text)
	assert.Equal(t, []string{"hi"}, backend.sent)
}

func TestChatStaysWithItsPodcast(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)
	openDetailOf(t, a)

	press(a, 't')
	pressKey(a, tcell.KeyEnter)
	pump(t, a)
	require.Equal(t, "1", a.session.PodcastID())

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.sendGate = gate
	backend.mu.Unlock()

	typeText(a, "first")
	pressKey(a, tcell.KeyEnter)
	require.Eventually(t, func() bool { return a.session.State() == chat.Sending },
		2*time.Second, 10*time.Millisecond)

	pressKey(a, tcell.KeyEscape)
	c := a.chatDialog()
	require.False(t, a.modals.IsOpen(c.handle))

	// the earlier conversation is still waiting on the service
	a.openChat("2", "B", "qwen")
	assert.False(t, a.modals.IsOpen(c.handle))
	assert.Contains(t, a.statusMessage, "busy")
	assert.Equal(t, "1", a.session.PodcastID())

	close(gate)
	pump(t, a) // dropped send result
	require.Equal(t, chat.Ready, a.session.State())

	a.openChat("2", "B", "qwen")
	require.True(t, a.modals.IsOpen(c.handle))

	// nothing is sent before the new conversation has started
	typeText(a, "early")
	pressKey(a, tcell.KeyEnter)
	assert.Equal(t, "early", c.input.Value())

	pump(t, a) // chat-init
	assert.Equal(t, "2", a.session.PodcastID())
	assert.Equal(t, "session-2", a.session.SessionID())
	assert.Empty(t, a.session.Messages())

	pressKey(a, tcell.KeyEnter)
	pump(t, a)
	assert.Equal(t, []string{"first", "early"}, backend.sent)
	assert.Equal(t, []string{"session-1", "session-2"}, backend.sentTo)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	press(a, 'd')
	require.Equal(t, 1, a.modals.Count())
	press(a, 'n')
	assert.Equal(t, 0, a.modals.Count())
	assert.Empty(t, backend.deleted)

	press(a, 'd')
	press(a, 'y')
	pump(t, a) // delete
	pump(t, a) // refresh
	assert.Equal(t, []string{"1"}, backend.deleted)
	assert.Equal(t, []string{"B", "C"}, listTitles(a))
}

func TestClearAllNeedsTwoConfirmations(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	press(a, 'X')
	press(a, 'y')
	require.Equal(t, 1, a.modals.Count(), "second confirmation")
	pressKey(a, tcell.KeyEscape)
	assert.False(t, backend.cleared)

	press(a, 'X')
	press(a, 'y')
	press(a, 'y')
	pump(t, a)
	pump(t, a)
	assert.True(t, backend.cleared)
	assert.Empty(t, listTitles(a))
}

func TestSubmitURL(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	press(a, 'a')
	typeText(a, "see https://example.com/ep1.mp3")
	pressKey(a, tcell.KeyTab)
	pressKey(a, tcell.KeyEnter)
	pump(t, a) // submitted
	pump(t, a) // refresh

	require.Len(t, backend.podcasts, 4)
	assert.Equal(t, "https://example.com/ep1.mp3", backend.podcasts[3].URL)
	assert.Equal(t, models.ContentDocumentary, backend.podcasts[3].ContentType)
	assert.Len(t, listTitles(a), 4)
	assert.Equal(t, 0, a.modals.Count())
}

func TestSubmitRejectsNonURL(t *testing.T) {
	backend := newFakeBackend()
	a := loadedApp(t, backend)

	press(a, 'a')
	typeText(a, "not a link")
	pressKey(a, tcell.KeyEnter)
	assert.True(t, a.statusError)
	assert.Len(t, backend.podcasts, 3)
}
