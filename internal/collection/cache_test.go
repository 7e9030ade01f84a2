package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/csams/transcript-tui/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	podcasts []models.PodcastSummary
	err      error
	calls    int
}

func (s *stubFetcher) ListPodcasts(ctx context.Context) ([]models.PodcastSummary, error) {
	s.calls++
	return s.podcasts, s.err
}

func podcast(id, category string) models.PodcastSummary {
	return models.PodcastSummary{ID: models.FlexID(id), Title: "title " + id, Category: category}
}

func ids(podcasts []models.PodcastSummary) []string {
	out := make([]string, len(podcasts))
	for i, p := range podcasts {
		out[i] = string(p.ID)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestRefreshReplacesWholesale(t *testing.T) {
	fetcher := &stubFetcher{podcasts: []models.PodcastSummary{podcast("a", ""), podcast("b", "")}}
	cache := NewCache(fetcher)
	assert.False(t, cache.Loaded())

	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.Loaded())
	assert.Equal(t, []string{"a", "b"}, ids(cache.All()))

	fetcher.podcasts = []models.PodcastSummary{podcast("c", "")}
	got, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(got))
	assert.Equal(t, 1, cache.Len())
}

func TestRefreshFailureKeepsPreviousList(t *testing.T) {
	fetcher := &stubFetcher{podcasts: []models.PodcastSummary{podcast("a", "X")}}
	cache := NewCache(fetcher)
	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	boom := errors.New("connection refused")
	fetcher.podcasts = nil
	fetcher.err = boom

	got, err := cache.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, ids(got))
	assert.Equal(t, []string{"a"}, ids(cache.All()))
}

func TestRefreshNilListIsEmpty(t *testing.T) {
	cache := NewCache(&stubFetcher{})
	got, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter(t *testing.T) {
	fetcher := &stubFetcher{podcasts: []models.PodcastSummary{
		podcast("A", "X"),
		podcast("B", "Y"),
		podcast("C", "X"),
	}}
	cache := NewCache(fetcher)
	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		category *string
		want     []string
	}{
		{"none returns everything", nil, []string{"A", "B", "C"}},
		{"exact match keeps order", strPtr("X"), []string{"A", "C"}},
		{"single", strPtr("Y"), []string{"B"}},
		{"no match", strPtr("Z"), []string{}},
		{"case sensitive", strPtr("x"), []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(cache.Filter(tc.category)))
		})
	}
}

func TestCategories(t *testing.T) {
	fetcher := &stubFetcher{podcasts: []models.PodcastSummary{
		podcast("1", "tech"),
		podcast("2", ""),
		podcast("3", "history"),
		podcast("4", "tech"),
	}}
	cache := NewCache(fetcher)
	assert.Empty(t, cache.Categories())

	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"history", "tech"}, cache.Categories())

	// derived fresh from whatever the cache holds now
	fetcher.podcasts = []models.PodcastSummary{podcast("5", "music")}
	_, err = cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"music"}, cache.Categories())
}

func TestGet(t *testing.T) {
	cache := NewCache(&stubFetcher{podcasts: []models.PodcastSummary{podcast("7", "")}})
	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	p, ok := cache.Get("7")
	assert.True(t, ok)
	assert.Equal(t, "title 7", p.Title)

	_, ok = cache.Get("8")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	cache := NewCache(&stubFetcher{podcasts: []models.PodcastSummary{podcast("1", "")}})
	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	all := cache.All()
	all[0].Title = "mutated"

	p, _ := cache.Get("1")
	assert.Equal(t, "title 1", p.Title)
}
