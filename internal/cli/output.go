package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table provides aligned column output.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row, padding missing cells and dropping extra ones.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, cell := range row {
		if w := lipgloss.Width(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder

	last := len(t.headers) - 1
	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == last {
			b.WriteString(Header(h))
		} else {
			b.WriteString(Header(padRight(h, t.widths[i])))
		}
	}
	b.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("─", w)))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == last {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, t.widths[i]))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// ListStyle determines how a list item marker is rendered.
type ListStyle int

const (
	ListStyleNormal ListStyle = iota
	ListStyleSuccess
	ListStyleError
)

// ListItem is one entry of a List. Detail is printed indented below it.
type ListItem struct {
	Content string
	Detail  string
	Style   ListStyle
}

// List renders marked items, one per line.
type List struct {
	items  []ListItem
	indent int
}

// NewList creates an empty list.
func NewList() *List {
	return &List{indent: 2}
}

// Add adds a plain item.
func (l *List) Add(content string) {
	l.items = append(l.items, ListItem{Content: content})
}

// AddSuccess adds a passing item.
func (l *List) AddSuccess(content string) {
	l.items = append(l.items, ListItem{Content: content, Style: ListStyleSuccess})
}

// AddError adds a failing item with an optional detail line.
func (l *List) AddError(content, detail string) {
	l.items = append(l.items, ListItem{Content: content, Detail: detail, Style: ListStyleError})
}

// String renders the list.
func (l *List) String() string {
	var b strings.Builder
	indent := strings.Repeat(" ", l.indent)

	for _, item := range l.items {
		b.WriteString(indent)
		switch item.Style {
		case ListStyleSuccess:
			b.WriteString(Pass("✓"))
		case ListStyleError:
			b.WriteString(Fail("✗"))
		default:
			b.WriteString("•")
		}
		b.WriteString(" ")
		b.WriteString(item.Content)
		b.WriteString("\n")

		if item.Detail != "" {
			b.WriteString(Indent(Dim(item.Detail), l.indent+2))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Indent indents all non-empty lines in content by the given amount.
func Indent(content string, spaces int) string {
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
