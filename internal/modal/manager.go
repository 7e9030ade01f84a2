package modal

import (
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/google/uuid"
)

// Reason tells how a surface was dismissed
type Reason int

const (
	ReasonExplicit     Reason = iota // close key or button
	ReasonBackdrop                   // click outside the surface
	ReasonProgrammatic               // hidden by code, e.g. after an action finished
)

func (r Reason) String() string {
	switch r {
	case ReasonExplicit:
		return "explicit"
	case ReasonBackdrop:
		return "backdrop"
	case ReasonProgrammatic:
		return "programmatic"
	default:
		return "unknown"
	}
}

// Surface is one dismissible dialog
type Surface interface {
	Show()
	Hide()
	IsVisible() bool
}

// Handle identifies a surface known to the manager
type Handle struct {
	ID   string
	Name string

	surface Surface
	dispose func()
	dynamic bool
}

func (h *Handle) Surface() Surface {
	return h.surface
}

// Dynamic reports whether the handle goes away when its surface is dismissed
func (h *Handle) Dynamic() bool {
	return h.dynamic
}

/*
 * Manager tracks which surfaces are open, in stacking order, and keeps the
 * page's blocking artifacts in step: they exist iff at least one surface is
 * visible. Every dismissal re-checks this, and when nothing is left visible
 * all backdrops are removed, including ones that were never registered here.
 *
 * Static surfaces (detail, preview) are created once and reused through
 * GetOrCreate. Dynamic ones (provider chooser, speaker editor, prompts) are
 * registered when they are built and forgotten when dismissed.
 *
 * A Manager belongs to the UI event loop and is not safe for concurrent use.
 */
type Manager struct {
	page    *Page
	stack   []*Handle
	static  map[string]*Handle
	dynamic map[string]*Handle
}

func NewManager(page *Page) *Manager {
	if page == nil {
		page = NewPage()
	}
	return &Manager{
		page:    page,
		static:  make(map[string]*Handle),
		dynamic: make(map[string]*Handle),
	}
}

func (m *Manager) Page() *Page {
	return m.page
}

// Register adds a one-off surface. dispose, if set, runs once when it is
// dismissed.
func (m *Manager) Register(name string, surface Surface, dispose func()) *Handle {
	h := &Handle{
		ID:      uuid.NewString(),
		Name:    name,
		surface: surface,
		dispose: dispose,
		dynamic: true,
	}
	m.dynamic[h.ID] = h
	return h
}

// GetOrCreate returns the static surface called name, building it with
// factory the first time
func (m *Manager) GetOrCreate(name string, factory func() Surface) *Handle {
	if h, ok := m.static[name]; ok {
		return h
	}
	h := &Handle{
		ID:      name,
		Name:    name,
		surface: factory(),
	}
	m.static[name] = h
	return h
}

// SetDispose sets the cleanup run each time a static surface is dismissed
func (h *Handle) SetDispose(dispose func()) {
	h.dispose = dispose
}

// Show makes the surface visible and puts it on top of the stack
func (m *Manager) Show(h *Handle) {
	if h == nil {
		return
	}
	m.remove(h)
	m.stack = append(m.stack, h)
	h.surface.Show()
	m.page.AddBackdrop(h.ID)
	logging.Trace().Str("surface", h.Name).Int("open", len(m.stack)).Msg("surface shown")
}

// Dismiss hides the surface, releases what it owns and re-establishes the
// page invariant
func (m *Manager) Dismiss(h *Handle, reason Reason) {
	if h != nil {
		m.remove(h)
		if h.surface.IsVisible() {
			h.surface.Hide()
		}
		m.page.RemoveBackdrop(h.ID)
		if h.dispose != nil {
			h.dispose()
		}
		if h.dynamic {
			delete(m.dynamic, h.ID)
			h.dispose = nil
		}
		logging.Trace().Str("surface", h.Name).Str("reason", reason.String()).Msg("surface dismissed")
	}
	m.enforce()
}

// DismissTop dismisses the topmost surface, reporting whether there was one
func (m *Manager) DismissTop(reason Reason) bool {
	top := m.Top()
	if top == nil {
		m.enforce()
		return false
	}
	m.Dismiss(top, reason)
	return true
}

// Sweep forgets surfaces that hid themselves without going through Dismiss
// and re-establishes the page invariant
func (m *Manager) Sweep() {
	for _, h := range append([]*Handle(nil), m.stack...) {
		if !h.surface.IsVisible() {
			m.Dismiss(h, ReasonProgrammatic)
		}
	}
	m.enforce()
}

func (m *Manager) enforce() {
	if m.Count() == 0 && m.page.Active() {
		m.page.ClearAll()
		logging.Trace().Msg("no surfaces open, page artifacts cleared")
	}
}

func (m *Manager) remove(h *Handle) {
	for i, open := range m.stack {
		if open == h {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			return
		}
	}
}

// Top returns the topmost visible surface, or nil
func (m *Manager) Top() *Handle {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].surface.IsVisible() {
			return m.stack[i]
		}
	}
	return nil
}

// Visible returns the visible surfaces bottom to top
func (m *Manager) Visible() []*Handle {
	out := make([]*Handle, 0, len(m.stack))
	for _, h := range m.stack {
		if h.surface.IsVisible() {
			out = append(out, h)
		}
	}
	return out
}

// Count returns the number of visible surfaces
func (m *Manager) Count() int {
	n := 0
	for _, h := range m.stack {
		if h.surface.IsVisible() {
			n++
		}
	}
	return n
}

// IsOpen reports whether h is on the stack and visible
func (m *Manager) IsOpen(h *Handle) bool {
	if h == nil || !h.surface.IsVisible() {
		return false
	}
	for _, open := range m.stack {
		if open == h {
			return true
		}
	}
	return false
}

// Registered returns the number of live dynamic surfaces
func (m *Manager) Registered() int {
	return len(m.dynamic)
}
