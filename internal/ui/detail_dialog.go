package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/modal"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/gdamore/tcell/v2"
)

// detailItem is a selectable file of the detail dialog: a transcript or a
// note
type detailItem struct {
	transcript *models.TranscriptRecord
	note       *models.NoteRecord
}

func (it detailItem) filePath() string {
	if it.transcript != nil {
		return it.transcript.FilePath
	}
	return it.note.FilePath
}

func (it detailItem) label() string {
	if t := it.transcript; t != nil {
		label := fmt.Sprintf("%s  %d words", formatTime(t.CreatedAt), t.WordCount)
		if t.ModelVersion != "" {
			label += "  (" + t.ModelVersion + ")"
		}
		return label
	}
	n := it.note
	label := fmt.Sprintf("%s  %s note", formatTime(n.CreatedAt), n.NoteType.Label())
	if n.ModelName != "" {
		label += "  (" + n.ModelName + ")"
	}
	return label
}

// DetailDialog shows one podcast with its transcripts and notes. The detail
// is fetched each time the dialog opens and dropped when it closes.
type DetailDialog struct {
	dialogBase
	tasks taskGroup

	podcastID string
	detail    *models.PodcastDetail
	err       error
	loading   bool

	items    []detailItem
	hidden   int
	selected int
	scroll   scroller
}

func (a *App) detailDialog() *DetailDialog {
	h := a.modals.GetOrCreate(surfaceDetail, func() modal.Surface {
		return &DetailDialog{dialogBase: dialogBase{app: a}}
	})
	d := h.Surface().(*DetailDialog)
	if d.handle == nil {
		d.bind(h)
		h.SetDispose(d.dispose)
	}
	return d
}

func (a *App) openDetail(podcastID string) {
	a.detailDialog().open(podcastID)
}

func (d *DetailDialog) open(podcastID string) {
	d.podcastID = podcastID
	d.selected = 0
	d.scroll.top()
	d.app.modals.Show(d.handle)
	d.load()
}

// dispose runs every time the dialog closes
func (d *DetailDialog) dispose() {
	d.tasks.discardAll()
	d.detail = nil
	d.items = nil
	d.err = nil
	d.loading = false
}

func (d *DetailDialog) load() {
	d.loading = true
	id := d.podcastID
	d.tasks.add(spawn(d.app, d.handle, "detail", func(ctx context.Context) (*models.PodcastDetail, error) {
		return d.app.backend.GetPodcast(ctx, id)
	}, func(detail *models.PodcastDetail, err error) {
		d.loading = false
		if err != nil {
			logging.Error().Err(err).Str("podcast", id).Msg("failed to load podcast detail")
			d.detail = nil
			d.items = nil
			d.err = err
			return
		}
		d.err = nil
		d.detail = detail
		d.rebuild()
	}))
}

// rebuild recomputes the selectable items, leaving out hidden notes
func (d *DetailDialog) rebuild() {
	d.items = d.items[:0]
	if d.detail == nil {
		return
	}
	for i := range d.detail.Transcripts {
		d.items = append(d.items, detailItem{transcript: &d.detail.Transcripts[i]})
	}
	notes := d.app.overlay.Filter(d.podcastID, d.detail.Notes)
	for i := range notes {
		d.items = append(d.items, detailItem{note: &notes[i]})
	}
	d.hidden = len(d.detail.Notes) - len(notes)

	if d.selected >= len(d.items) {
		d.selected = len(d.items) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

func (d *DetailDialog) selectedItem() (detailItem, bool) {
	if d.selected < 0 || d.selected >= len(d.items) {
		return detailItem{}, false
	}
	return d.items[d.selected], true
}

func (d *DetailDialog) title() string {
	if d.detail != nil {
		return d.detail.Podcast.DisplayTitle()
	}
	if p, ok := d.app.collection.Get(d.podcastID); ok {
		return p.DisplayTitle()
	}
	return "Details"
}

func (d *DetailDialog) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Rune() == 'r' {
		d.load()
		return true
	}
	if d.detail == nil {
		return ev.Key() != tcell.KeyEscape && ev.Rune() != 'q'
	}

	switch ev.Key() {
	case tcell.KeyUp:
		d.move(-1)
		return true
	case tcell.KeyDown:
		d.move(1)
		return true
	case tcell.KeyEnter:
		d.previewSelected()
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			d.move(-1)
		case 'j':
			d.move(1)
		case 'p':
			d.previewSelected()
		case 'D':
			if item, ok := d.selectedItem(); ok {
				d.app.downloadFile(item.filePath())
			}
		case 'h':
			d.hideSelected()
		case 'H':
			d.restoreHidden()
		case 'g':
			d.app.chooseProvider("Generate AI Note", func(provider string) {
				d.generate(models.NoteAI, provider)
			})
		case 'G':
			d.generate(models.NoteAuto, "")
		case 'R':
			d.promptRename()
		case 'C':
			d.promptCategory()
		case 't':
			podcast := d.detail.Podcast
			d.app.chooseProvider("Chat Provider", func(provider string) {
				d.app.openChat(podcast.ID.String(), podcast.DisplayTitle(), provider)
			})
		default:
			return false
		}
		return true
	}
	return false
}

func (d *DetailDialog) move(delta int) {
	d.selected += delta
	if d.selected >= len(d.items) {
		d.selected = len(d.items) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

func (d *DetailDialog) previewSelected() {
	item, ok := d.selectedItem()
	if !ok {
		return
	}
	transcriptID := ""
	if item.transcript != nil {
		transcriptID = item.transcript.ID.String()
	}
	d.app.openPreview(d.podcastID, d.title(), item.filePath(), transcriptID)
}

func (d *DetailDialog) hideSelected() {
	item, ok := d.selectedItem()
	if !ok || item.note == nil {
		d.app.setStatus("Only notes can be hidden")
		return
	}
	d.app.overlay.Hide(d.podcastID, item.note.ID)
	d.rebuild()
	d.app.setStatus("Note hidden on this device (H to restore)")
}

func (d *DetailDialog) restoreHidden() {
	if d.app.overlay.HiddenCount(d.podcastID) == 0 {
		d.app.setStatus("No hidden notes")
		return
	}
	d.app.overlay.Clear(d.podcastID)
	d.rebuild()
	d.app.setStatus("Hidden notes restored")
}

func (d *DetailDialog) generate(noteType models.NoteType, provider string) {
	what := noteType.Label() + " note"
	if provider != "" {
		what += " with " + chat.ProviderLabel(provider)
	}
	loading := d.app.showLoading("Generating " + what + "...")
	id := d.podcastID
	d.tasks.add(spawn(d.app, d.handle, "generate-note", func(ctx context.Context) (string, error) {
		return d.app.backend.GenerateNote(ctx, id, noteType, provider)
	}, func(path string, err error) {
		loading.finish()
		if err != nil {
			d.app.showError(err, "Note generation failed")
			return
		}
		logging.Info().Str("podcast", id).Str("file", path).Msg("note generated")
		d.app.setStatus("Generated %s", what)
		d.load()
	}))
}

func (d *DetailDialog) promptRename() {
	id := d.podcastID
	d.app.prompt("Rename", "Title:", d.detail.Podcast.Title, false, func(value string, _ models.ContentType) {
		title := strings.TrimSpace(value)
		if title == "" {
			d.app.setStatus("Title unchanged")
			return
		}
		d.tasks.add(spawn(d.app, d.handle, "rename", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.app.backend.RenamePodcast(ctx, id, title)
		}, d.afterEdit("Rename failed", "Renamed")))
	})
}

func (d *DetailDialog) promptCategory() {
	id := d.podcastID
	label := "Category (empty to clear):"
	if categories := d.app.collection.Categories(); len(categories) > 0 {
		label = "Category (" + strings.Join(categories, ", ") + "):"
	}
	d.app.prompt("Set Category", label, d.detail.Podcast.Category, false, func(value string, _ models.ContentType) {
		category := strings.TrimSpace(value)
		d.tasks.add(spawn(d.app, d.handle, "set-category", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.app.backend.SetCategory(ctx, id, category)
		}, d.afterEdit("Category change failed", "Category updated")))
	})
}

// afterEdit reloads the dialog and the list after a change to the podcast
func (d *DetailDialog) afterEdit(failure, success string) func(struct{}, error) {
	return func(_ struct{}, err error) {
		if err != nil {
			d.app.showError(err, failure)
			return
		}
		d.app.setStatus("%s", success)
		d.load()
		d.app.list.Refresh()
	}
}

// detailLine is one drawn line; item is the index of the file it shows, or
// -1
type detailLine struct {
	text  string
	style tcell.Style
	item  int
}

func (d *DetailDialog) lines(width int) []detailLine {
	plain := func(text string, style tcell.Style) detailLine {
		return detailLine{text: text, style: style, item: -1}
	}
	header := styleDialog.Foreground(ColorHeader).Bold(true)
	dim := styleDialog.Foreground(ColorDimmed)

	if d.detail == nil {
		if d.err != nil {
			out := []detailLine{plain("Failed to load details:", styleDialog.Foreground(ColorError).Bold(true))}
			for _, l := range wrapText(errorText(d.err), width) {
				out = append(out, plain(l, styleDialog.Foreground(ColorError)))
			}
			return append(out, plain("", styleDialog), plain("Press r to retry.", dim))
		}
		return []detailLine{plain("Loading...", dim)}
	}

	p := d.detail.Podcast
	var out []detailLine
	field := func(name, value string, style tcell.Style) {
		if value == "" {
			return
		}
		for i, l := range wrapText(value, width-12) {
			prefix := strings.Repeat(" ", 12)
			if i == 0 {
				prefix = fmt.Sprintf("%-12s", name)
			}
			out = append(out, plain(prefix+l, style))
		}
	}
	field("Status", p.Status.Label(), styleDialog.Foreground(StatusColor(p.Status)).Bold(true))
	field("Type", p.ContentType.Label(), styleDialog)
	field("Category", p.Category, styleDialog)
	if !p.CreatedAt.IsZero() {
		field("Created", formatTime(p.CreatedAt), styleDialog)
	}
	if p.Duration > 0 {
		field("Duration", models.FormatDuration(p.Duration), styleDialog)
	}
	if p.FileSize > 0 {
		field("Size", models.FormatFileSize(p.FileSize), styleDialog)
	}
	field("File", p.OriginalFilename, styleDialog)
	field("URL", p.URL, styleDialog.Foreground(ColorCyan))
	field("Error", p.ErrorMessage, styleDialog.Foreground(ColorError))

	out = append(out, plain("", styleDialog), plain(fmt.Sprintf("Transcripts (%d)", len(d.detail.Transcripts)), header))
	if len(d.detail.Transcripts) == 0 {
		msg := "  No transcripts yet"
		if !p.Status.Done() {
			msg = "  Processing: " + p.Status.Label()
		}
		out = append(out, plain(msg, dim))
	}
	for i, item := range d.items {
		if item.transcript == nil {
			continue
		}
		out = append(out, detailLine{text: "  " + item.label(), style: styleDialog, item: i})
	}

	notesHeader := fmt.Sprintf("Notes (%d)", len(d.items)-len(d.detail.Transcripts))
	if d.hidden > 0 {
		notesHeader += fmt.Sprintf("  %d hidden, H to restore", d.hidden)
	}
	out = append(out, plain("", styleDialog), plain(notesHeader, header))
	noteCount := 0
	for i, item := range d.items {
		if item.note == nil {
			continue
		}
		style := styleDialog
		if item.note.NoteType == models.NoteAI {
			style = style.Foreground(ColorMagenta)
		}
		out = append(out, detailLine{text: "  " + item.label(), style: style, item: i})
		noteCount++
	}
	if noteCount == 0 {
		out = append(out, plain("  No notes. Press g or G to generate one.", dim))
	}
	return out
}

func (d *DetailDialog) Draw(s tcell.Screen) {
	sw, sh := s.Size()
	width := sw - 8
	if width > 100 {
		width = 100
	}
	title := d.title()
	if d.loading && d.detail != nil {
		title += " (refreshing)"
	}
	inner := d.frame(s, width, sh-4, title)

	lines := d.lines(inner.w)
	visible := inner.h - 1

	selectedLine := -1
	for i, l := range lines {
		if l.item >= 0 && l.item == d.selected {
			selectedLine = i
		}
	}
	if selectedLine >= 0 {
		if selectedLine < d.scroll.offset {
			d.scroll.offset = selectedLine
		} else if selectedLine >= d.scroll.offset+visible {
			d.scroll.offset = selectedLine - visible + 1
		}
	}
	d.scroll.update(visible, len(lines))

	for i := 0; i < visible && i+d.scroll.offset < len(lines); i++ {
		idx := i + d.scroll.offset
		l := lines[idx]
		style := l.style
		if idx == selectedLine {
			style = styleSelected.Bold(true)
			fillRect(s, inner.x, inner.y+i, inner.w, 1, style)
		}
		drawTextClipped(s, inner.x, inner.y+i, inner.w, style, l.text)
	}

	drawHints(s, inner, "enter: preview  D: download  h/H: hide/restore  g/G: note  R: rename  C: category  t: chat  r: reload")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
