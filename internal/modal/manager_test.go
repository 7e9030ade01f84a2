package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	visible bool
	shows   int
}

func (f *fakeSurface) Show()           { f.visible = true; f.shows++ }
func (f *fakeSurface) Hide()           { f.visible = false }
func (f *fakeSurface) IsVisible() bool { return f.visible }

func TestShowAddsBackdropAndLock(t *testing.T) {
	m := NewManager(nil)
	h := m.Register("prompt", &fakeSurface{}, nil)

	m.Show(h)

	assert.Equal(t, 1, m.Count())
	assert.Equal(t, h, m.Top())
	assert.True(t, m.Page().Locked())
	assert.Equal(t, []string{h.ID}, m.Page().Backdrops())
}

func TestDismissLastClearsAllBackdrops(t *testing.T) {
	for _, reason := range []Reason{ReasonExplicit, ReasonBackdrop, ReasonProgrammatic} {
		t.Run(reason.String(), func(t *testing.T) {
			m := NewManager(nil)
			h := m.Register("chooser", &fakeSurface{}, nil)
			m.Show(h)

			// a dialog that put up its own backdrop outside the manager
			m.Page().AddBackdrop("stray")

			m.Dismiss(h, reason)

			assert.Equal(t, 0, m.Count())
			assert.Empty(t, m.Page().Backdrops())
			assert.False(t, m.Page().Locked())
			assert.False(t, m.Page().Active())
		})
	}
}

func TestDismissNonLastKeepsBackdrops(t *testing.T) {
	m := NewManager(nil)
	detail := m.GetOrCreate("detail", func() Surface { return &fakeSurface{} })
	chooser := m.Register("chooser", &fakeSurface{}, nil)
	m.Show(detail)
	m.Show(chooser)
	m.Page().AddBackdrop("stray")

	m.Dismiss(chooser, ReasonExplicit)

	assert.Equal(t, 1, m.Count())
	assert.Equal(t, detail, m.Top())
	assert.True(t, m.Page().Locked())
	assert.Equal(t, []string{"detail", "stray"}, m.Page().Backdrops())
}

func TestDynamicSurfaceUnregistersAndDisposes(t *testing.T) {
	m := NewManager(nil)
	disposed := 0
	h := m.Register("speakers", &fakeSurface{}, func() { disposed++ })
	assert.Equal(t, 1, m.Registered())
	m.Show(h)

	m.Dismiss(h, ReasonExplicit)
	assert.Equal(t, 1, disposed)
	assert.Equal(t, 0, m.Registered())

	// a second dismissal must not dispose again
	m.Dismiss(h, ReasonProgrammatic)
	assert.Equal(t, 1, disposed)
}

func TestStaticSurfaceIsReused(t *testing.T) {
	m := NewManager(nil)
	built := 0
	factory := func() Surface { built++; return &fakeSurface{} }
	disposed := 0

	h1 := m.GetOrCreate("preview", factory)
	h1.SetDispose(func() { disposed++ })
	m.Show(h1)
	m.Dismiss(h1, ReasonBackdrop)

	h2 := m.GetOrCreate("preview", factory)
	require.Same(t, h1, h2)
	assert.Equal(t, 1, built)
	m.Show(h2)
	assert.Equal(t, 2, h2.Surface().(*fakeSurface).shows)

	m.Dismiss(h2, ReasonExplicit)
	assert.Equal(t, 2, disposed, "static dispose runs on every close")
}

func TestShowAgainMovesToTop(t *testing.T) {
	m := NewManager(nil)
	a := m.Register("a", &fakeSurface{}, nil)
	b := m.Register("b", &fakeSurface{}, nil)
	m.Show(a)
	m.Show(b)
	m.Show(a)

	assert.Equal(t, a, m.Top())
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []*Handle{b, a}, m.Visible())
}

func TestDismissTop(t *testing.T) {
	m := NewManager(nil)
	assert.False(t, m.DismissTop(ReasonExplicit))

	a := m.Register("a", &fakeSurface{}, nil)
	b := m.Register("b", &fakeSurface{}, nil)
	m.Show(a)
	m.Show(b)

	assert.True(t, m.DismissTop(ReasonExplicit))
	assert.Equal(t, a, m.Top())
	assert.True(t, m.DismissTop(ReasonExplicit))
	assert.Nil(t, m.Top())
	assert.False(t, m.Page().Active())
}

func TestSweepCatchesSelfHiddenSurfaces(t *testing.T) {
	m := NewManager(nil)
	s := &fakeSurface{}
	h := m.Register("loading", s, nil)
	m.Show(h)

	// hidden directly, bypassing Dismiss
	s.Hide()
	assert.True(t, m.Page().Active())

	m.Sweep()
	assert.False(t, m.Page().Active())
	assert.Equal(t, 0, m.Registered())
	assert.False(t, m.IsOpen(h))
}

func TestDismissNilStillEnforces(t *testing.T) {
	m := NewManager(nil)
	m.Page().AddBackdrop("orphan")

	m.Dismiss(nil, ReasonProgrammatic)

	assert.False(t, m.Page().Active())
}

func TestIsOpen(t *testing.T) {
	m := NewManager(nil)
	h := m.Register("a", &fakeSurface{}, nil)
	assert.False(t, m.IsOpen(h))
	m.Show(h)
	assert.True(t, m.IsOpen(h))
	m.Dismiss(h, ReasonExplicit)
	assert.False(t, m.IsOpen(h))
	assert.False(t, m.IsOpen(nil))
}

func TestPageRemoveBackdropKeepsLock(t *testing.T) {
	p := NewPage()
	p.AddBackdrop("a")
	p.RemoveBackdrop("a")

	assert.False(t, p.HasBackdrop())
	assert.True(t, p.Locked())
	assert.True(t, p.Active())

	p.ClearAll()
	assert.False(t, p.Active())
}
