package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/oops"
)

// UnknownSpeaker stands in for segments without a speaker id
const UnknownSpeaker = "unknown"

// PaletteSize is the number of distinct speaker colors. Speakers past the
// end of the palette wrap around.
const PaletteSize = 8

var (
	ErrMalformedPayload = models.ErrMalformedTranscript
	ErrNoChanges        = errors.New("no speaker names to save")
)

// SpeakerRenamer persists speaker display names
type SpeakerRenamer interface {
	RenameSpeakers(ctx context.Context, transcriptID string, names map[string]string) error
}

// Exporter renders a transcript on the server
type Exporter interface {
	Export(ctx context.Context, transcriptID string, opts api.ExportOptions) (*api.Artifact, error)
}

// Model is the presentation state of one transcript preview. The payload is
// never modified; filters only change which segments are visible.
type Model struct {
	transcriptID string
	payload      *models.TranscriptPayload

	speakerOf []string // normalized speaker per segment
	lowerText []string
	speakers  []string // discovery order
	rank      map[string]int
	counts    map[string]int

	selected    map[string]bool
	allSelected bool
	query       string
	lowerQuery  string
}

// Parse decodes a transcript file and builds its model
func Parse(transcriptID string, data []byte) (*Model, error) {
	payload, err := models.ParseTranscript(data)
	if err != nil {
		return nil, oops.New(err, "failed to parse transcript %s", transcriptID)
	}
	return New(transcriptID, payload), nil
}

// New builds a model with every speaker selected and no search query
func New(transcriptID string, payload *models.TranscriptPayload) *Model {
	if payload == nil {
		payload = &models.TranscriptPayload{}
	}
	m := &Model{
		transcriptID: transcriptID,
		payload:      payload,
		speakerOf:    make([]string, len(payload.Segments)),
		lowerText:    make([]string, len(payload.Segments)),
		rank:         make(map[string]int),
		counts:       make(map[string]int),
		selected:     make(map[string]bool),
	}

	for i, seg := range payload.Segments {
		speaker := NormalizeSpeaker(seg.SpeakerID)
		m.speakerOf[i] = speaker
		m.lowerText[i] = strings.ToLower(seg.Text)
		if _, seen := m.rank[speaker]; !seen {
			m.rank[speaker] = len(m.speakers)
			m.speakers = append(m.speakers, speaker)
			m.selected[speaker] = true
		}
		m.counts[speaker]++
	}
	m.allSelected = true
	return m
}

// NormalizeSpeaker maps a raw speaker id to the key used for filtering and
// coloring. Missing or blank ids become UnknownSpeaker; any other id is kept
// exactly as sent, so it matches the speaker_names keys.
func NormalizeSpeaker(id *string) string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return UnknownSpeaker
	}
	return *id
}

func (m *Model) TranscriptID() string {
	return m.transcriptID
}

func (m *Model) Len() int {
	return len(m.payload.Segments)
}

func (m *Model) Segment(i int) models.Segment {
	return m.payload.Segments[i]
}

// Speakers returns the distinct speakers in first-seen order
func (m *Model) Speakers() []string {
	out := make([]string, len(m.speakers))
	copy(out, m.speakers)
	return out
}

func (m *Model) SpeakerOf(i int) string {
	return m.speakerOf[i]
}

// ColorIndex returns the palette slot of a speaker, or -1 when the speaker
// does not occur in the transcript
func (m *Model) ColorIndex(speaker string) int {
	rank, ok := m.rank[speaker]
	if !ok {
		return -1
	}
	return rank % PaletteSize
}

// DisplayName returns the custom name of a speaker, falling back to its id
func (m *Model) DisplayName(speaker string) string {
	if name := strings.TrimSpace(m.payload.SpeakerNames[speaker]); name != "" {
		return name
	}
	return speaker
}

// SpeakerNames returns a copy of the id -> display name mapping
func (m *Model) SpeakerNames() map[string]string {
	out := make(map[string]string, len(m.payload.SpeakerNames))
	for k, v := range m.payload.SpeakerNames {
		out[k] = v
	}
	return out
}

// SpeakerCounts returns how many segments each speaker has
func (m *Model) SpeakerCounts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// SetQuery sets the search text. Matching is a case-insensitive substring test.
func (m *Model) SetQuery(query string) {
	m.query = query
	m.lowerQuery = strings.ToLower(query)
}

func (m *Model) Query() string {
	return m.query
}

func (m *Model) IsSelected(speaker string) bool {
	return m.selected[speaker]
}

// SelectSpeaker changes one speaker's selection and recomputes the master
// state from the individual ones
func (m *Model) SelectSpeaker(speaker string, selected bool) {
	if _, ok := m.rank[speaker]; !ok {
		return
	}
	m.selected[speaker] = selected
	m.recomputeAll()
}

func (m *Model) ToggleSpeaker(speaker string) {
	m.SelectSpeaker(speaker, !m.selected[speaker])
}

// SetAll drives every individual speaker to the given state
func (m *Model) SetAll(selected bool) {
	for _, speaker := range m.speakers {
		m.selected[speaker] = selected
	}
	m.recomputeAll()
}

// ToggleAll flips the master control
func (m *Model) ToggleAll() {
	m.SetAll(!m.allSelected)
}

func (m *Model) recomputeAll() {
	all := true
	for _, speaker := range m.speakers {
		all = all && m.selected[speaker]
	}
	m.allSelected = all
}

// AllSelected is the master control's state: true iff every speaker is
// selected
func (m *Model) AllSelected() bool {
	return m.allSelected
}

// Matches reports whether segment i passes the search filter alone
func (m *Model) Matches(i int) bool {
	return m.lowerQuery == "" || strings.Contains(m.lowerText[i], m.lowerQuery)
}

// Visible reports whether segment i passes both the speaker and the search
// filter
func (m *Model) Visible(i int) bool {
	return m.selected[m.speakerOf[i]] && m.Matches(i)
}

// VisibleSegments returns the indices of the visible segments in order
func (m *Model) VisibleSegments() []int {
	out := []int{}
	for i := range m.payload.Segments {
		if m.Visible(i) {
			out = append(out, i)
		}
	}
	return out
}

// Rename submits new display names. The model is not patched; on success
// reload is called so the view is rebuilt from the server's copy.
func (m *Model) Rename(ctx context.Context, renamer SpeakerRenamer, names map[string]string, reload func(ctx context.Context) error) error {
	changes := make(map[string]string)
	for id, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || name == m.payload.SpeakerNames[id] {
			continue
		}
		changes[id] = name
	}
	if len(changes) == 0 {
		return ErrNoChanges
	}

	logging.Debug().Str("transcript", m.transcriptID).Int("speakers", len(changes)).Msg("renaming speakers")
	if err := renamer.RenameSpeakers(ctx, m.transcriptID, changes); err != nil {
		return oops.New(err, "failed to rename speakers")
	}
	if reload == nil {
		return nil
	}
	if err := reload(ctx); err != nil {
		return oops.New(err, "speakers renamed but reload failed")
	}
	return nil
}

// Export asks the server to render the transcript. The returned artifact
// always has a file name.
func (m *Model) Export(ctx context.Context, exporter Exporter, opts api.ExportOptions) (*api.Artifact, error) {
	switch opts.Format {
	case api.FormatText, api.FormatMarkdown, api.FormatSubtitle:
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}

	artifact, err := exporter.Export(ctx, m.transcriptID, opts)
	if err != nil {
		return nil, oops.New(err, "failed to export transcript as %s", opts.Format.Label())
	}
	if artifact.Filename == "" {
		artifact.Filename = api.DefaultExportName(opts.Format)
	}
	return artifact, nil
}
