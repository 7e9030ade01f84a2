package modal

import "sort"

// Page holds the screen-wide artifacts that block the base view while any
// surface is open: the dimmed backdrop layers and the input lock.
type Page struct {
	backdrops map[string]struct{}
	locked    bool
}

func NewPage() *Page {
	return &Page{backdrops: make(map[string]struct{})}
}

// AddBackdrop records a backdrop owned by owner and locks the base view
func (p *Page) AddBackdrop(owner string) {
	p.backdrops[owner] = struct{}{}
	p.locked = true
}

// RemoveBackdrop drops owner's backdrop. The lock stays until ClearAll.
func (p *Page) RemoveBackdrop(owner string) {
	delete(p.backdrops, owner)
}

// Backdrops lists the current owners in sorted order
func (p *Page) Backdrops() []string {
	owners := make([]string, 0, len(p.backdrops))
	for owner := range p.backdrops {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

func (p *Page) HasBackdrop() bool {
	return len(p.backdrops) > 0
}

// Locked reports whether the base view must ignore input
func (p *Page) Locked() bool {
	return p.locked
}

// Active reports whether any blocking artifact is present
func (p *Page) Active() bool {
	return p.locked || len(p.backdrops) > 0
}

// ClearAll removes every backdrop, whoever owns it, and releases the lock
func (p *Page) ClearAll() {
	p.backdrops = make(map[string]struct{})
	p.locked = false
}
