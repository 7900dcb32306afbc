package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ztop/dataset"
	"ztop/view"
)

const (
	accentTag   = "[red]"
	accentReset = "[-]"
)

// TableOptions controls the colors of the header row.
type TableOptions struct {
	HeaderColor   tcell.Color
	SelectedColor tcell.Color
}

// Table draws frames onto a tcell screen: a key help line, the dataset table,
// and a status footer.
type Table struct {
	screen tcell.Screen
	help   *tview.TextView
	table  *tview.Table
	footer *tview.TextView
	opts   TableOptions
}

func NewTable(screen tcell.Screen, opts TableOptions) *Table {
	if opts.HeaderColor == tcell.ColorDefault {
		opts.HeaderColor = tcell.ColorRed
	}
	t := &Table{
		screen: screen,
		help:   tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		table:  tview.NewTable().SetBorders(false).SetFixed(1, 0).SetSelectable(false, false),
		footer: tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		opts:   opts,
	}
	t.help.SetText(helpLine())
	return t
}

func (t *Table) Draw(f Frame) error {
	width, height := t.screen.Size()
	t.screen.Clear()
	if height < 3 || width < 1 {
		t.screen.Show()
		return nil
	}
	t.fill(f)
	t.footer.SetText(statusLine(f))

	t.help.SetRect(0, 0, width, 1)
	t.table.SetRect(0, 1, width, height-2)
	t.footer.SetRect(0, height-1, width, 1)
	t.help.Draw(t.screen)
	t.table.Draw(t.screen)
	t.footer.Draw(t.screen)
	t.screen.Show()
	return nil
}

func (t *Table) fill(f Frame) {
	t.table.Clear()
	header := tcell.StyleDefault.Foreground(t.opts.HeaderColor).Background(tcell.ColorBlue)
	for _, c := range view.Columns() {
		style := header
		if c == f.Sort {
			style = style.Reverse(true)
			if t.opts.SelectedColor != tcell.ColorDefault {
				style = style.Foreground(t.opts.SelectedColor)
			}
		}
		cell := tview.NewTableCell(tview.Escape(c.Header())).
			SetStyle(style).
			SetSelectable(false)
		if c == view.Name {
			cell.SetExpansion(1)
		} else {
			cell.SetAlign(tview.AlignRight)
		}
		t.table.SetCell(0, c.Index(), cell)
	}
	for i, e := range f.Rows {
		cells := rowCells(e)
		for _, c := range view.Columns() {
			cell := tview.NewTableCell(cells[c.Index()])
			if c == view.Name {
				cell.SetExpansion(1)
			} else {
				cell.SetAlign(tview.AlignRight)
			}
			t.table.SetCell(i+1, c.Index(), cell)
		}
	}
}

func rowCells(e dataset.Element) []string {
	return []string{
		fmt.Sprintf("%6.0f", e.ReadOps),
		fmt.Sprintf("%7.0f", e.ReadBytes/1024),
		fmt.Sprintf("%6.0f", e.WriteOps),
		fmt.Sprintf("%7.0f", e.WriteBytes/1024),
		fmt.Sprintf("%6.0f", e.DeleteOps),
		fmt.Sprintf("%7.0f", e.DeleteBytes/1024),
		tview.Escape(e.Name),
	}
}

func helpLine() string {
	keys := []struct{ key, what string }{
		{"q", "quit"}, {"a", "auto"}, {"c", "children"}, {"d/D", "depth"},
		{"+/-", "sort"}, {"r", "reverse"}, {"f/F", "filter"}, {"</>", "interval"},
	}
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(accentTag + tview.Escape(k.key) + accentReset + " " + k.what)
	}
	return b.String()
}

// statusLine is the footer text for f, with tview color tags.
func statusLine(f Frame) string {
	if f.Editing {
		s := "filter: " + tview.Escape(f.EditText) + "_"
		if f.EditError != "" {
			s += "  " + accentTag + tview.Escape(f.EditError) + accentReset
		}
		return s
	}
	parts := []string{"every " + f.Interval.String()}
	if f.Auto {
		parts = append(parts, "auto")
	}
	if f.Children {
		parts = append(parts, "children")
	}
	if f.Depth > 0 {
		parts = append(parts, fmt.Sprintf("depth %d", f.Depth))
	}
	if f.Filter != "" {
		parts = append(parts, "filter "+tview.Escape(f.Filter))
	}
	if f.Sort != view.NoColumn {
		dir := "asc"
		if f.Reverse {
			dir = "desc"
		}
		parts = append(parts, "sort "+tview.Escape(f.Sort.Header())+" "+dir)
	}
	var r, w, d float64
	for _, e := range f.Rows {
		r += e.ReadBytes
		w += e.WriteBytes
		d += e.DeleteBytes
	}
	parts = append(parts,
		humanize.Comma(int64(len(f.Rows)))+" datasets",
		fmt.Sprintf("r %s/s w %s/s d %s/s", rate(r), rate(w), rate(d)),
	)
	if f.Refresh.N > 0 {
		parts = append(parts, fmt.Sprintf("sample p50 %s p99 %s", f.Refresh.P50, f.Refresh.P99))
	}
	return strings.Join(parts, " | ")
}

func rate(bytes float64) string {
	if bytes <= 0 {
		return humanize.IBytes(0)
	}
	return humanize.IBytes(uint64(bytes))
}
