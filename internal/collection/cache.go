package collection

import (
	"context"
	"sort"
	"sync"

	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/oops"
)

// Fetcher returns the full, current list of podcasts
type Fetcher interface {
	ListPodcasts(ctx context.Context) ([]models.PodcastSummary, error)
}

// Cache holds the session's podcast list. It is only ever replaced wholesale.
type Cache struct {
	fetcher Fetcher

	mu       sync.RWMutex
	podcasts []models.PodcastSummary
	loaded   bool
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher}
}

// Refresh fetches the list and replaces the cache with it. On failure the
// previous list is kept and the error is returned for display.
func (c *Cache) Refresh(ctx context.Context) ([]models.PodcastSummary, error) {
	podcasts, err := c.fetcher.ListPodcasts(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("podcast refresh failed, keeping previous list")
		return c.All(), oops.New(err, "failed to refresh podcasts")
	}
	if podcasts == nil {
		podcasts = []models.PodcastSummary{}
	}

	c.mu.Lock()
	c.podcasts = podcasts
	c.loaded = true
	c.mu.Unlock()

	logging.Debug().Int("count", len(podcasts)).Msg("podcast list refreshed")
	return c.All(), nil
}

// Loaded reports whether a refresh has ever succeeded
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// All returns a copy of the cached list in server order
func (c *Cache) All() []models.PodcastSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.PodcastSummary, len(c.podcasts))
	copy(out, c.podcasts)
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.podcasts)
}

// Categories derives the sorted set of distinct non-empty categories from the
// current list
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range c.podcasts {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories
}

// Filter returns the podcasts whose category equals *category, in list order.
// A nil category returns everything.
func (c *Cache) Filter(category *string) []models.PodcastSummary {
	if category == nil {
		return c.All()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []models.PodcastSummary{}
	for _, p := range c.podcasts {
		if p.Category == *category {
			out = append(out, p)
		}
	}
	return out
}

// Get looks up a cached podcast by id
func (c *Cache) Get(id string) (models.PodcastSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.podcasts {
		if string(p.ID) == id {
			return p, true
		}
	}
	return models.PodcastSummary{}, false
}
