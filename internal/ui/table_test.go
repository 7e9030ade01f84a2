package ui

import (
	"strconv"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

type textRow string

func (r textRow) GetCell(int) string                  { return string(r) }
func (r textRow) GetCellStyle(int, bool) *tcell.Style { return nil }

func numberedRows(n int) []TableRow {
	rows := make([]TableRow, n)
	for i := range rows {
		rows[i] = textRow("row " + strconv.Itoa(i))
	}
	return rows
}

func newTestTable(n int) *Table {
	table := NewTable()
	table.SetColumns([]TableColumn{{Title: "Name"}})
	table.SetRows(numberedRows(n))
	// header plus five rows
	table.SetBounds(0, 0, 40, 6)
	return table
}

func TestTableNavigation(t *testing.T) {
	table := newTestTable(20)

	assert.True(t, table.SelectNext())
	assert.Equal(t, 1, table.GetSelectedIndex())
	assert.True(t, table.SelectPrevious())
	assert.False(t, table.SelectPrevious())

	table.SelectLast()
	assert.Equal(t, 19, table.GetSelectedIndex())
	first, last, total := table.GetScrollInfo()
	assert.Equal(t, 16, first)
	assert.Equal(t, 20, last)
	assert.Equal(t, 20, total)
	assert.False(t, table.SelectNext())

	table.SelectFirst()
	first, _, _ = table.GetScrollInfo()
	assert.Equal(t, 1, first)
}

func TestTablePaging(t *testing.T) {
	table := newTestTable(20)

	assert.True(t, table.PageDown())
	assert.Equal(t, 4, table.GetSelectedIndex())
	assert.True(t, table.PageUp())
	assert.Equal(t, 0, table.GetSelectedIndex())
	assert.False(t, table.PageUp())
}

func TestTableKeys(t *testing.T) {
	table := newTestTable(3)

	assert.True(t, table.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone)))
	assert.Equal(t, 2, table.GetSelectedIndex())
	assert.True(t, table.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone)))
	assert.Equal(t, 1, table.GetSelectedIndex())
	assert.False(t, table.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestTableSetRowsClampsSelection(t *testing.T) {
	table := newTestTable(10)
	table.SelectLast()

	table.SetRows(numberedRows(3))
	assert.Equal(t, 2, table.GetSelectedIndex())
	assert.Equal(t, textRow("row 2"), table.GetSelectedRow())

	table.SetRows(nil)
	assert.Nil(t, table.GetSelectedRow())

	// out of range selections are ignored
	table.SetRows(numberedRows(3))
	table.Select(7)
	assert.Equal(t, 0, table.GetSelectedIndex())
}

func TestTableDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 6)

	table := newTestTable(3)
	table.SelectNext()
	table.Draw(screen)

	r, _, _, _ := screen.GetContent(2, 0)
	assert.Equal(t, 'N', r)
	r, _, _, _ = screen.GetContent(0, 2)
	assert.Equal(t, '>', r)
	r, _, _, _ = screen.GetContent(2, 2)
	assert.Equal(t, 'r', r)
}
