package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// TableColumn defines a column in the table
type TableColumn struct {
	Title      string
	Width      int     // 0 means flexible width
	MinWidth   int     // Minimum width for flexible columns
	MaxWidth   int     // Maximum width for flexible columns (0 = no limit)
	FlexWeight float64 // Weight for distributing available space
	Align      Alignment
}

// Alignment specifies text alignment within a cell
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// TableRow represents a single row of data
type TableRow interface {
	// GetCell returns the content for a specific column index
	GetCell(columnIndex int) string
	// GetCellStyle returns the style for a specific cell (nil for default)
	GetCellStyle(columnIndex int, selected bool) *tcell.Style
}

// Table is a scrollable list of rows with a header
type Table struct {
	columns      []TableColumn
	rows         []TableRow
	selectedIdx  int
	scrollOffset int

	x, y          int
	width, height int
	showHeader    bool

	selectionIndicator string

	headerStyle   tcell.Style
	defaultStyle  tcell.Style
	selectedStyle tcell.Style

	columnWidths []int
}

func NewTable() *Table {
	return &Table{
		showHeader:         true,
		selectionIndicator: "> ",
		headerStyle:        styleBase.Bold(true).Foreground(ColorHeader),
		defaultStyle:       styleBase,
		selectedStyle:      styleSelected,
	}
}

func (t *Table) SetColumns(columns []TableColumn) {
	t.columns = columns
	t.calculateColumnWidths()
}

// SetRows replaces the rows, keeping the selection index in range
func (t *Table) SetRows(rows []TableRow) {
	t.rows = rows
	t.adjustSelection()
}

func (t *Table) SetBounds(x, y, width, height int) {
	t.x, t.y = x, y
	t.width, t.height = width, height
	t.calculateColumnWidths()
	t.ensureVisible()
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) GetSelectedIndex() int {
	return t.selectedIdx
}

// Select moves the selection to idx if it is in range
func (t *Table) Select(idx int) {
	if idx >= 0 && idx < len(t.rows) {
		t.selectedIdx = idx
		t.ensureVisible()
	}
}

// GetSelectedRow returns the currently selected row
func (t *Table) GetSelectedRow() TableRow {
	if t.selectedIdx >= 0 && t.selectedIdx < len(t.rows) {
		return t.rows[t.selectedIdx]
	}
	return nil
}

// HandleKey handles navigation keys
func (t *Table) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		return t.SelectPrevious()
	case tcell.KeyDown:
		return t.SelectNext()
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		return t.PageDown()
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		return t.PageUp()
	case tcell.KeyHome:
		t.SelectFirst()
		return true
	case tcell.KeyEnd:
		t.SelectLast()
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			return t.SelectNext()
		case 'k':
			return t.SelectPrevious()
		case 'g':
			t.SelectFirst()
			return true
		case 'G':
			t.SelectLast()
			return true
		}
	}
	return false
}

func (t *Table) SelectNext() bool {
	if t.selectedIdx < len(t.rows)-1 {
		t.selectedIdx++
		t.ensureVisible()
		return true
	}
	return false
}

func (t *Table) SelectPrevious() bool {
	if t.selectedIdx > 0 {
		t.selectedIdx--
		t.ensureVisible()
		return true
	}
	return false
}

func (t *Table) SelectFirst() {
	t.selectedIdx = 0
	t.scrollOffset = 0
}

func (t *Table) SelectLast() {
	if len(t.rows) > 0 {
		t.selectedIdx = len(t.rows) - 1
		t.ensureVisible()
	}
}

// PageDown moves selection down by one page
func (t *Table) PageDown() bool {
	return t.moveBy(t.pageSize())
}

// PageUp moves selection up by one page
func (t *Table) PageUp() bool {
	return t.moveBy(-t.pageSize())
}

func (t *Table) pageSize() int {
	if size := t.getVisibleHeight() - 1; size > 1 {
		return size
	}
	return 1
}

func (t *Table) moveBy(delta int) bool {
	if len(t.rows) == 0 {
		return false
	}
	newIdx := t.selectedIdx + delta
	if newIdx >= len(t.rows) {
		newIdx = len(t.rows) - 1
	}
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx == t.selectedIdx {
		return false
	}
	t.selectedIdx = newIdx
	t.ensureVisible()
	return true
}

// Draw renders the table to the screen
func (t *Table) Draw(s tcell.Screen) {
	if t.width <= 0 || t.height <= 0 {
		return
	}
	fillRect(s, t.x, t.y, t.width, t.height, t.defaultStyle)

	currentY := t.y
	if t.showHeader {
		t.drawHeader(s, currentY)
		currentY++
	}

	visibleHeight := t.getVisibleHeight()
	for i := 0; i < visibleHeight && i+t.scrollOffset < len(t.rows); i++ {
		rowIdx := i + t.scrollOffset
		t.drawRow(s, currentY+i, t.rows[rowIdx], rowIdx == t.selectedIdx)
	}
}

// GetScrollInfo returns the 1-based range of visible rows and the total
func (t *Table) GetScrollInfo() (firstVisible, lastVisible, total int) {
	firstVisible = t.scrollOffset + 1
	lastVisible = t.scrollOffset + t.getVisibleHeight()
	if lastVisible > len(t.rows) {
		lastVisible = len(t.rows)
	}
	return firstVisible, lastVisible, len(t.rows)
}

func (t *Table) getVisibleHeight() int {
	height := t.height
	if t.showHeader {
		height--
	}
	if height < 0 {
		return 0
	}
	return height
}

func (t *Table) ensureVisible() {
	visibleHeight := t.getVisibleHeight()
	if visibleHeight <= 0 {
		return
	}
	if t.selectedIdx < t.scrollOffset {
		t.scrollOffset = t.selectedIdx
	} else if t.selectedIdx >= t.scrollOffset+visibleHeight {
		t.scrollOffset = t.selectedIdx - visibleHeight + 1
	}
	maxOffset := len(t.rows) - visibleHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.scrollOffset > maxOffset {
		t.scrollOffset = maxOffset
	}
	if t.scrollOffset < 0 {
		t.scrollOffset = 0
	}
}

func (t *Table) adjustSelection() {
	if len(t.rows) == 0 {
		t.selectedIdx = 0
		t.scrollOffset = 0
		return
	}
	if t.selectedIdx >= len(t.rows) {
		t.selectedIdx = len(t.rows) - 1
	}
	if t.selectedIdx < 0 {
		t.selectedIdx = 0
	}
	t.ensureVisible()
}

func (t *Table) calculateColumnWidths() {
	if len(t.columns) == 0 || t.width <= 0 {
		return
	}
	t.columnWidths = make([]int, len(t.columns))

	indicatorWidth := textWidth(t.selectionIndicator)
	fixedWidth := indicatorWidth
	totalFlexWeight := 0.0
	for i, col := range t.columns {
		if col.Width > 0 {
			t.columnWidths[i] = col.Width
			fixedWidth += col.Width
			continue
		}
		if col.FlexWeight > 0 {
			totalFlexWeight += col.FlexWeight
		} else {
			totalFlexWeight += 1.0
		}
	}

	padding := len(t.columns) - 1
	availableWidth := t.width - fixedWidth - padding
	if availableWidth <= 0 || totalFlexWeight == 0 {
		return
	}
	for i, col := range t.columns {
		if col.Width > 0 {
			continue
		}
		weight := col.FlexWeight
		if weight <= 0 {
			weight = 1.0
		}
		width := int(float64(availableWidth) * (weight / totalFlexWeight))
		if col.MinWidth > 0 && width < col.MinWidth {
			width = col.MinWidth
		}
		if col.MaxWidth > 0 && width > col.MaxWidth {
			width = col.MaxWidth
		}
		t.columnWidths[i] = width
	}
}

func (t *Table) drawHeader(s tcell.Screen, y int) {
	x := t.x + textWidth(t.selectionIndicator)
	for i, col := range t.columns {
		if i > 0 {
			x++
		}
		if col.Title != "" {
			t.drawCell(s, x, y, t.columnWidths[i], col.Title, t.headerStyle, col.Align)
		}
		x += t.columnWidths[i]
	}
}

func (t *Table) drawRow(s tcell.Screen, y int, row TableRow, selected bool) {
	rowStyle := t.defaultStyle
	if selected {
		rowStyle = t.selectedStyle
		fillRect(s, t.x, y, t.width, 1, rowStyle)
	}

	indicator := strings.Repeat(" ", textWidth(t.selectionIndicator))
	if selected {
		indicator = t.selectionIndicator
	}
	x := drawText(s, t.x, y, rowStyle, indicator)

	for i, col := range t.columns {
		if i > 0 {
			x++
		}
		style := rowStyle
		if cellStyle := row.GetCellStyle(i, selected); cellStyle != nil {
			style = *cellStyle
		}
		t.drawCell(s, x, y, t.columnWidths[i], row.GetCell(i), style, col.Align)
		x += t.columnWidths[i]
	}
}

func (t *Table) drawCell(s tcell.Screen, x, y, width int, text string, style tcell.Style, align Alignment) {
	if width <= 0 {
		return
	}
	text = truncate(text, width)

	startX := x
	if w := textWidth(text); w < width {
		switch align {
		case AlignCenter:
			startX = x + (width-w)/2
		case AlignRight:
			startX = x + width - w
		}
	}
	drawText(s, startX, y, style, text)
}
