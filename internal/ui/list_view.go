package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/csams/transcript-tui/internal/models"
	"github.com/gdamore/tcell/v2"
	"mvdan.cc/xurls/v2"
)

type podcastRow struct {
	podcast models.PodcastSummary
}

func (r podcastRow) GetCell(columnIndex int) string {
	p := r.podcast
	switch columnIndex {
	case 0:
		return p.DisplayTitle()
	case 1:
		return p.Status.Label()
	case 2:
		if p.Category == "" {
			return "-"
		}
		return p.Category
	case 3:
		return p.ContentType.Label()
	case 4:
		if p.CreatedAt.IsZero() {
			return ""
		}
		return p.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	return ""
}

func (r podcastRow) GetCellStyle(columnIndex int, selected bool) *tcell.Style {
	base := styleBase
	if selected {
		base = styleSelected
	}
	var style tcell.Style
	switch columnIndex {
	case 1:
		style = base.Foreground(StatusColor(r.podcast.Status))
	case 2, 4:
		style = base.Foreground(ColorDimmed)
	default:
		return nil
	}
	return &style
}

// ListView is the base page: every podcast known to the service, filtered by
// category
type ListView struct {
	app        *App
	table      *Table
	category   *string
	refreshing bool
}

func NewListView(a *App) *ListView {
	table := NewTable()
	table.SetColumns([]TableColumn{
		{Title: "Title", FlexWeight: 3, MinWidth: 20},
		{Title: "Status", Width: 12},
		{Title: "Category", FlexWeight: 1, MinWidth: 10, MaxWidth: 24},
		{Title: "Type", Width: 11},
		{Title: "Created", Width: 16},
	})
	return &ListView{app: a, table: table}
}

// Selected returns the highlighted podcast
func (v *ListView) Selected() (models.PodcastSummary, bool) {
	row, ok := v.table.GetSelectedRow().(podcastRow)
	if !ok {
		return models.PodcastSummary{}, false
	}
	return row.podcast, true
}

// reload rebuilds the rows from the cache, keeping the selection on the same
// podcast when it is still listed
func (v *ListView) reload() {
	var selectedID models.FlexID
	if p, ok := v.Selected(); ok {
		selectedID = p.ID
	}

	if v.category != nil && !slices.Contains(v.app.collection.Categories(), *v.category) {
		v.category = nil
	}

	podcasts := v.app.collection.Filter(v.category)
	rows := make([]TableRow, len(podcasts))
	selected := -1
	for i, p := range podcasts {
		rows[i] = podcastRow{podcast: p}
		if p.ID == selectedID {
			selected = i
		}
	}
	v.table.SetRows(rows)
	v.table.Select(selected)
}

// Refresh replaces the list with the service's. A failed refresh keeps the
// list as it was.
func (v *ListView) Refresh() {
	v.refreshing = true
	v.app.setStatus("Refreshing...")
	spawn(v.app, nil, "refresh", v.app.collection.Refresh, func(podcasts []models.PodcastSummary, err error) {
		v.refreshing = false
		v.reload()
		if err != nil {
			v.app.showError(err, "Refresh failed")
			return
		}
		v.app.setStatus("%d items", len(podcasts))
	})
}

// CycleCategory steps the filter through all, then each category in order
func (v *ListView) CycleCategory() {
	categories := v.app.collection.Categories()
	switch {
	case len(categories) == 0:
		v.category = nil
	case v.category == nil:
		v.category = &categories[0]
	default:
		next := slices.Index(categories, *v.category) + 1
		if next >= len(categories) {
			v.category = nil
		} else {
			v.category = &categories[next]
		}
	}
	v.reload()
	v.table.SelectFirst()
}

func (v *ListView) HandleKey(ev *tcell.EventKey) bool {
	if v.table.HandleKey(ev) {
		return true
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		if p, ok := v.Selected(); ok {
			v.app.openDetail(p.ID.String())
		}
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'c':
			v.CycleCategory()
			return true
		case 'r':
			v.Refresh()
			return true
		case 'a':
			v.promptSubmit()
			return true
		case 'u':
			v.promptUpload()
			return true
		case 'd':
			v.confirmDelete()
			return true
		case 'X':
			v.confirmClearAll()
			return true
		}
	}
	return false
}

func (v *ListView) promptSubmit() {
	v.app.prompt("Submit URL", "Media URL (podcast episode or video page):", "", true, func(value string, contentType models.ContentType) {
		mediaURL := xurls.Strict().FindString(strings.TrimSpace(value))
		if mediaURL == "" {
			v.app.showError(fmt.Errorf("not a valid URL: %q", value), "Submit failed")
			return
		}

		loading := v.app.showLoading("Submitting " + mediaURL)
		spawn(v.app, nil, "submit", func(ctx context.Context) (string, error) {
			return v.app.backend.SubmitURL(ctx, mediaURL, contentType)
		}, func(id string, err error) {
			loading.finish()
			if err != nil {
				v.app.showError(err, "Submit failed")
				return
			}
			v.app.setStatus("Submitted %s (id %s)", contentType.Label(), id)
			v.Refresh()
		})
	})
}

func (v *ListView) promptUpload() {
	v.app.prompt("Upload File", "Path of an audio or video file:", "", true, func(value string, contentType models.ContentType) {
		path, err := expandPath(strings.TrimSpace(value))
		if err != nil {
			v.app.showError(err, "Upload failed")
			return
		}

		loading := v.app.showLoading("Uploading " + filepath.Base(path))
		progress := func(sent, total int64) {
			v.app.post(func() { loading.SetProgress(sent, total) })
		}
		spawn(v.app, nil, "upload", func(ctx context.Context) (string, error) {
			return v.app.backend.UploadFile(ctx, path, contentType, progress)
		}, func(id string, err error) {
			loading.finish()
			if err != nil {
				v.app.showError(err, "Upload failed")
				return
			}
			v.app.setStatus("Uploaded %s (id %s)", filepath.Base(path), id)
			v.Refresh()
		})
	})
}

func (v *ListView) confirmDelete() {
	p, ok := v.Selected()
	if !ok {
		return
	}
	id := p.ID.String()
	v.app.confirm("Delete", fmt.Sprintf("Delete %q with its transcripts and notes?", p.DisplayTitle()), func() {
		spawn(v.app, nil, "delete", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, v.app.backend.DeletePodcast(ctx, id)
		}, func(_ struct{}, err error) {
			if err != nil {
				v.app.showError(err, "Delete failed")
				return
			}
			v.app.overlay.Clear(id)
			v.app.setStatus("Deleted %q", p.DisplayTitle())
			v.Refresh()
		})
	}, nil)
}

func (v *ListView) confirmClearAll() {
	v.app.confirm("Delete Everything", "Delete ALL podcasts, transcripts and notes?", func() {
		v.app.confirm("Are You Sure?", "This cannot be undone. Really delete everything?", func() {
			spawn(v.app, nil, "clear-all", v.app.backend.ClearAll, func(count int, err error) {
				if err != nil {
					v.app.showError(err, "Delete failed")
					return
				}
				v.app.setStatus("Deleted %d items", count)
				v.Refresh()
			})
		}, nil)
	}, nil)
}

func (v *ListView) Draw(s tcell.Screen, r rect) {
	if r.h < 3 {
		return
	}

	filter := "all"
	if v.category != nil {
		filter = *v.category
	}
	title := fmt.Sprintf(" Transcripts  [category: %s]", filter)
	x := drawText(s, r.x, r.y, styleBase.Foreground(ColorHeader).Bold(true), title)
	if first, last, total := v.table.GetScrollInfo(); total > 0 {
		drawText(s, x+2, r.y, styleBase.Foreground(ColorDimmed), fmt.Sprintf("%d-%d of %d", first, last, total))
	} else if v.refreshing {
		drawText(s, x+2, r.y, styleBase.Foreground(ColorDimmed), "loading...")
	}

	v.table.SetBounds(r.x, r.y+2, r.w, r.h-2)
	v.table.Draw(s)

	if v.table.Len() == 0 && !v.refreshing {
		msg := "Nothing here yet. Press a to submit a URL or u to upload a file."
		if v.category != nil {
			msg = "No podcasts in this category. Press c to change the filter."
		}
		drawTextClipped(s, r.x+2, r.y+4, r.w-4, styleBase.Foreground(ColorDimmed), msg)
	}
}

// expandPath resolves ~ and makes sure the file exists
func expandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no file given")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}
