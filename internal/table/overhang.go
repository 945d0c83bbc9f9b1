package table

import (
	"math"
	"regexp"
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

const (
	// Elements of one cell within this Y distance form one overhang group
	overhangGroupTolerance = 5.0

	// A cell belongs to a header's column above this horizontal overlap
	ColumnAlignmentPercentage = 90.0
)

// The text layer joins far-apart glyph runs with three or more spaces
var columnSeparator = regexp.MustCompile(`\s{3,}`)

// SplitColumn names a header whose column can hold merged text and the
// number of adjacent columns that text is spread over
type SplitColumn struct {
	Label    string
	Capacity int
}

// OverhangSplitter redistributes text that the text layer merged across
// several columns. A group is only split in a column aligned with one of
// Columns.
type OverhangSplitter struct {
	Matcher HeaderMatcher
	Columns []SplitColumn
}

type headerColumn struct {
	rect     geometry.Rectangle
	capacity int
}

// removal drops the listed element indices from a cell
type removal struct {
	cell    *Cell
	indices map[int]bool
}

// insertion adds a fabricated element to a cell
type insertion struct {
	cell    *Cell
	element Element
}

// Split plans every redistribution against the unmodified grid, then applies
// the plan, then re-sorts every cell's elements.
func (s *OverhangSplitter) Split(grid *Grid) {
	var columns []headerColumn
	for _, col := range s.Columns {
		if c, ok := s.Matcher.Find(grid, col.Label); ok {
			columns = append(columns, headerColumn{rect: c.Rect, capacity: col.Capacity})
		}
	}

	var removals []removal
	var insertions []insertion
	for _, row := range grid.Rows {
		for ci, c := range row {
			capacity := capacityOf(c, columns)
			if capacity == 0 {
				continue
			}
			r, ins := planCell(row, ci, capacity)
			if len(ins) > 0 {
				removals = append(removals, r)
				insertions = append(insertions, ins...)
			}
		}
	}

	for _, r := range removals {
		kept := r.cell.Elements[:0:0]
		for i, e := range r.cell.Elements {
			if !r.indices[i] {
				kept = append(kept, e)
			}
		}
		r.cell.Elements = kept
	}
	for _, ins := range insertions {
		ins.cell.Elements = append(ins.cell.Elements, ins.element)
	}

	for _, c := range grid.Cells {
		SortElements(c.Elements)
	}
}

func capacityOf(c *Cell, columns []headerColumn) int {
	for _, col := range columns {
		if geometry.HorizontalOverlapPercentage(&c.Rect, &col.rect) > ColumnAlignmentPercentage {
			return col.capacity
		}
	}
	return 0
}

// planCell groups every overhanging element of row[ci] with its same-line
// neighbours and computes the replacement elements
func planCell(row Row, ci, capacity int) (removal, []insertion) {
	cell := row[ci]
	r := removal{cell: cell, indices: make(map[int]bool)}
	var out []insertion

	for i, e := range cell.Elements {
		if r.indices[i] || geometry.Contains(cell.Rect, e.Rect) {
			continue
		}

		var texts []string
		left, top, bottom := math.Inf(1), math.Inf(1), math.Inf(-1)
		for j, other := range cell.Elements {
			if r.indices[j] || math.Abs(other.Rect.Y-e.Rect.Y) >= overhangGroupTolerance {
				continue
			}
			r.indices[j] = true
			texts = append(texts, other.Text)
			left = math.Min(left, other.Rect.X)
			top = math.Min(top, other.Rect.Y)
			bottom = math.Max(bottom, other.Rect.Bottom())
		}

		// cells missing to the right keep the remaining text in the last one
		tokens := splitTokens(strings.Join(texts, " "), min(capacity, len(row)-ci))
		for k, token := range tokens {
			target := cell
			x := left
			if k > 0 {
				target = row[ci+k]
				x = target.Rect.X
			}
			out = append(out, insertion{
				cell: target,
				element: Element{
					Text: token,
					Rect: geometry.Rectangle{
						X:      x,
						Y:      top,
						Width:  target.Rect.Right() - x,
						Height: bottom - top,
					},
				},
			})
		}
	}

	return r, out
}

// splitTokens splits on column separators, folding tokens beyond capacity
// into the last one
func splitTokens(text string, capacity int) []string {
	var tokens []string
	for _, t := range columnSeparator.Split(strings.TrimSpace(text), -1) {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) > capacity {
		folded := strings.Join(tokens[capacity-1:], " ")
		tokens = append(tokens[:capacity-1], folded)
	}
	return tokens
}
