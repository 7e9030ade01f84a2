package overlay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/models"
)

// StorageKey is the key the hidden-notes mapping is stored under
const StorageKey = "hiddenNotes"

// Store is the device-local record of notes the user has hidden, per podcast.
// It never fails towards the caller: unreadable or corrupt storage behaves as
// an empty overlay and write failures are only logged.
type Store struct {
	mu     sync.Mutex
	path   string
	hidden map[string]map[string]struct{}
}

// storeData represents the persisted structure
type storeData struct {
	HiddenNotes map[string][]string `json:"hiddenNotes"`
}

// NewStore creates a store backed by the file at path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		hidden: make(map[string]map[string]struct{}),
	}
}

// Key coerces an identifier to the string form used for storage and
// comparison, so 7 and "7" name the same podcast or note
func Key(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.FlexID:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Load replaces the in-memory overlay with the persisted one
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadUnsafe()
}

func (s *Store) loadUnsafe() {
	s.hidden = make(map[string]map[string]struct{})

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", s.path).Msg("failed to read hidden notes, using empty overlay")
		}
		return
	}

	hidden, err := decode(data)
	if err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("corrupt hidden notes, using empty overlay")
		return
	}
	s.hidden = hidden
}

// refreshUnsafe picks up the persisted overlay before a modification. Memory
// is only replaced when the file was read and decoded, so a failing store
// never forgets earlier hides.
func (s *Store) refreshUnsafe() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	hidden, err := decode(data)
	if err != nil {
		return
	}
	s.hidden = hidden
}

// decode is tolerant of foreign shapes: non-list entries are skipped and
// numeric ids are coerced to strings
func decode(data []byte) (map[string]map[string]struct{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root map[string]json.RawMessage
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	var entries map[string]json.RawMessage
	if raw, ok := root[StorageKey]; ok {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
	}

	hidden := make(map[string]map[string]struct{})
	for podcastID, raw := range entries {
		listDec := json.NewDecoder(bytes.NewReader(raw))
		listDec.UseNumber()
		var ids []interface{}
		if err := listDec.Decode(&ids); err != nil {
			continue
		}
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			switch id.(type) {
			case string, json.Number:
				set[Key(id)] = struct{}{}
			}
		}
		if len(set) > 0 {
			hidden[podcastID] = set
		}
	}
	return hidden, nil
}

// Save writes the in-memory overlay to disk
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveUnsafe()
}

func (s *Store) saveUnsafe() {
	out := storeData{HiddenNotes: make(map[string][]string, len(s.hidden))}
	for podcastID, set := range s.hidden {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out.HiddenNotes[podcastID] = ids
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logging.Warn().Err(err).Msg("failed to encode hidden notes")
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("failed to create hidden notes directory")
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("failed to write hidden notes")
	}
}

// Hide adds noteID to podcastID's hidden set and persists it. Hiding twice is
// a no-op.
func (s *Store) Hide(podcastID, noteID interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshUnsafe()
	pk := Key(podcastID)
	set, ok := s.hidden[pk]
	if !ok {
		set = make(map[string]struct{})
		s.hidden[pk] = set
	}
	set[Key(noteID)] = struct{}{}
	s.saveUnsafe()
}

// IsHidden reports whether noteID is hidden for podcastID
func (s *Store) IsHidden(podcastID, noteID interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.hidden[Key(podcastID)][Key(noteID)]
	return ok
}

// Clear drops the whole entry for podcastID and persists the change
func (s *Store) Clear(podcastID interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshUnsafe()
	delete(s.hidden, Key(podcastID))
	s.saveUnsafe()
}

// HiddenCount returns how many notes are hidden for podcastID
func (s *Store) HiddenCount(podcastID interface{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hidden[Key(podcastID)])
}

// Filter returns notes minus the ones hidden for podcastID, preserving order
func (s *Store) Filter(podcastID interface{}, notes []models.NoteRecord) []models.NoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.hidden[Key(podcastID)]
	visible := make([]models.NoteRecord, 0, len(notes))
	for _, note := range notes {
		if _, hidden := set[Key(note.ID)]; hidden {
			continue
		}
		visible = append(visible, note)
	}
	return visible
}
