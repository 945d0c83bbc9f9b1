package applications

import (
	"strings"
	"unicode"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/table"
)

// Header is a located header cell
type Header struct {
	Field Field
	Label string
	Cell  *table.Cell
}

// Headers holds the header cells found on one page
type Headers map[Field]Header

// Lookup returns the header of field
func (h Headers) Lookup(field Field) (Header, bool) {
	header, ok := h[field]
	return header, ok
}

// FindHeaders locates every header of layout on grid. Headers that are not
// on the page are absent from the result.
func FindHeaders(layout *Layout, grid *table.Grid) Headers {
	headers := make(Headers, len(layout.Labels))
	for _, label := range layout.Labels {
		var (
			cell *table.Cell
			ok   bool
		)
		if label.Compact {
			want := compact(label.Label)
			cell, ok = layout.Matcher.FindFunc(grid, func(text string) bool {
				return compact(text) == want
			})
		} else {
			cell, ok = layout.Matcher.Find(grid, label.Label)
		}
		if ok {
			headers[label.Field] = Header{Field: label.Field, Label: label.Label, Cell: cell}
		}
	}
	return headers
}

// CellFor returns the row cell in the column of field's header
func (h Headers) CellFor(row table.Row, field Field) (*table.Cell, bool) {
	header, ok := h.Lookup(field)
	if !ok {
		return nil, false
	}
	for _, c := range row {
		if geometry.HorizontalOverlapPercentage(&c.Rect, &header.Cell.Rect) > table.ColumnAlignmentPercentage {
			return c, true
		}
	}
	return nil, false
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
