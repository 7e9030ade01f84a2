package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/oops"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotReady     = errors.New("chat session is not ready")
	ErrNoSession    = errors.New("no active chat session")
	ErrBusy         = errors.New("chat session is busy")
)

// AI providers the service can chat with
const (
	ProviderQwen     = "qwen"
	ProviderDeepSeek = "deepseek"
)

// Providers lists the known providers in menu order
var Providers = []string{ProviderQwen, ProviderDeepSeek}

func ValidProvider(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

func ProviderLabel(provider string) string {
	switch provider {
	case ProviderQwen:
		return "Qwen"
	case ProviderDeepSeek:
		return "DeepSeek"
	default:
		return provider
	}
}

type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Sending
	Clearing
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Sending:
		return "sending"
	case Clearing:
		return "clearing"
	default:
		return "unknown"
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RolePending   Role = "pending"
	RoleError     Role = "error"
)

type Message struct {
	Role Role
	Text string
	At   time.Time
}

// Backend is the service side of a conversation
type Backend interface {
	InitChat(ctx context.Context, podcastID, provider string) (string, error)
	SendChat(ctx context.Context, sessionID, message string) (string, error)
	ClearChat(ctx context.Context, sessionID string) error
}

/*
 * Session is the controller of the one conversation shown in the chat dialog.
 *
 * Uninitialized -> Initializing -> Ready <-> Sending
 *                                   Ready <-> Clearing
 *
 * Network round trips happen outside the lock, so the UI can read State and
 * Messages while a worker goroutine waits for the service. Starting a new
 * conversation while one is Ready replaces the old session id without telling
 * the service.
 */
type Session struct {
	backend Backend

	mu        sync.Mutex
	state     State
	sessionID string
	podcastID string
	provider  string
	messages  []Message
	onChange  func()
}

func NewSession(backend Backend) *Session {
	return &Session{backend: backend}
}

// SetOnChange registers fn to be called, outside the lock, after every
// change to state or messages
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Begin opens a conversation about podcastID. On failure the session is left
// Uninitialized with no session id.
func (s *Session) Begin(ctx context.Context, podcastID, provider string) error {
	s.mu.Lock()
	if s.state == Initializing || s.state == Sending || s.state == Clearing {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.sessionID != "" {
		logging.Debug().Str("session", s.sessionID).Msg("abandoning previous chat session")
	}
	s.state = Initializing
	s.sessionID = ""
	s.podcastID = podcastID
	s.provider = provider
	s.messages = nil
	s.mu.Unlock()
	s.changed()

	sessionID, err := s.backend.InitChat(ctx, podcastID, provider)

	s.mu.Lock()
	if err != nil {
		s.state = Uninitialized
	} else {
		s.state = Ready
		s.sessionID = sessionID
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		logging.Error().Err(err).Str("podcast", podcastID).Str("provider", provider).Msg("failed to start chat")
		return oops.New(err, "failed to start chat")
	}
	logging.Info().Str("session", sessionID).Str("podcast", podcastID).Msg("chat session started")
	return nil
}

// Send posts a user message. The message and a pending placeholder appear
// immediately; the placeholder is then replaced by the reply or by an inline
// error, and the session goes back to Ready either way.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == Clearing {
		s.mu.Unlock()
		return "", ErrBusy
	}
	if s.state != Ready {
		s.mu.Unlock()
		return "", ErrNotReady
	}
	sessionID := s.sessionID
	now := time.Now()
	s.messages = append(s.messages,
		Message{Role: RoleUser, Text: message, At: now},
		Message{Role: RolePending, At: now},
	)
	pending := len(s.messages) - 1
	s.state = Sending
	s.mu.Unlock()
	s.changed()

	reply, err := s.backend.SendChat(ctx, sessionID, message)

	s.mu.Lock()
	msg := Message{Role: RoleAssistant, Text: reply, At: time.Now()}
	if err != nil {
		msg = Message{Role: RoleError, Text: err.Error(), At: time.Now()}
	}
	if pending < len(s.messages) && s.messages[pending].Role == RolePending {
		s.messages[pending] = msg
	} else {
		s.messages = append(s.messages, msg)
	}
	s.state = Ready
	s.mu.Unlock()
	s.changed()

	if err != nil {
		logging.Error().Err(err).Str("session", sessionID).Msg("chat message failed")
		return "", oops.New(err, "failed to send message")
	}
	return reply, nil
}

// Clear resets the conversation on the service and, only if that worked,
// locally. Sends are refused until the service has answered.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.sessionID == "" {
		s.mu.Unlock()
		return ErrNoSession
	}
	if s.state != Ready {
		s.mu.Unlock()
		return ErrBusy
	}
	sessionID := s.sessionID
	s.state = Clearing
	s.mu.Unlock()
	s.changed()

	err := s.backend.ClearChat(ctx, sessionID)

	s.mu.Lock()
	s.state = Ready
	if err == nil {
		s.messages = nil
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		logging.Error().Err(err).Str("session", sessionID).Msg("failed to clear chat")
		return oops.New(err, "failed to clear chat")
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Session) PodcastID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.podcastID
}

func (s *Session) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// Messages returns a copy of the conversation so far
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
