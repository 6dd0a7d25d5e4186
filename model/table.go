package model

import (
	"strings"

	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Table represents a table with cells organized in rows
type Table struct {
	StyleName string
	Style     *style.Table
	Rows      []*Row

	owner *Container
}

func (t *Table) Type() ElementType { return ElementTypeTable }

// GetText returns the table text with tab-separated cells, one row per line.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			sb.WriteString(strings.TrimRight(cell.ExtractText(), "\n"))
			if j < len(row.Cells)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Context returns the identifier namespace the table's cells allocate in.
func (t *Table) Context() resource.Context { return t.owner.ctx }

// AddRow appends a row.
func (t *Table) AddRow(styleName string, inline *style.Row) *Row {
	t.owner.doc.mustBuild()
	r := &Row{StyleName: styleName, Style: inline, table: t}
	t.Rows = append(t.Rows, r)
	return r
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of grid columns, counting spans, of the widest row
func (t *Table) ColCount() int {
	cols := 0
	for _, r := range t.Rows {
		n := 0
		for _, c := range r.Cells {
			n += c.Span()
		}
		if n > cols {
			cols = n
		}
	}
	return cols
}

// GetCell returns the cell at the given row and cell position (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	cells := t.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(r *Row) {
		for _, cell := range r.Cells {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(strings.TrimSpace(cell.ExtractText()), "\n", " "))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Rows[0])
	for range t.Rows[0].Cells {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")
	for _, r := range t.Rows[1:] {
		writeRow(r)
	}
	return sb.String()
}

// ToCSV converts the table to CSV format
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			// Escape quotes and wrap in quotes if necessary
			text := strings.TrimRight(cell.ExtractText(), "\n")
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row.Cells)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Row is a table row.
type Row struct {
	StyleName string
	Style     *style.Row
	Cells     []*Cell

	table *Table
}

func (r *Row) Type() ElementType { return ElementTypeRow }

// AddCell appends a cell. Cells share the table's resource context.
func (r *Row) AddCell(styleName string, inline *style.Cell) *Cell {
	owner := r.table.owner
	owner.doc.mustBuild()
	c := &Cell{
		Container: newContainer(owner.doc, owner.ctx),
		StyleName: styleName,
		Style:     inline,
	}
	r.Cells = append(r.Cells, c)
	return c
}

// Cell is a table cell; it holds block elements like any container.
type Cell struct {
	Container
	StyleName string
	Style     *style.Cell
}

func (c *Cell) Type() ElementType { return ElementTypeCell }

// Span returns the number of grid columns the cell covers.
func (c *Cell) Span() int {
	if c.Style != nil && c.Style.GridSpan != nil && *c.Style.GridSpan > 1 {
		return *c.Style.GridSpan
	}
	return 1
}
