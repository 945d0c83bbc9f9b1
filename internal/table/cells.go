package table

import (
	"sort"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

// Minimum share of an element's area that must fall in a cell for the
// majority rule
const majorityPercentage = 50.0

// Assigner distributes text elements over sorted cells and returns the
// elements no cell accepted
type Assigner interface {
	Assign(cells []*Cell, elements []Element) []Element
}

// MajorityAssigner gives an element to the first cell holding more than half
// of its area
type MajorityAssigner struct{}

// Assign implements Assigner
func (MajorityAssigner) Assign(cells []*Cell, elements []Element) []Element {
	return assign(cells, elements, func(e Element, c *Cell) bool {
		return geometry.PercentageOfElementInCell(e.Rect, c.Rect) > majorityPercentage
	})
}

// LeftmostAssigner gives an element to the first cell it overlaps at all.
// Cells are sorted left to right, so an element straddling a boundary binds
// to the left cell.
type LeftmostAssigner struct{}

// Assign implements Assigner
func (LeftmostAssigner) Assign(cells []*Cell, elements []Element) []Element {
	return assign(cells, elements, func(e Element, c *Cell) bool {
		return geometry.Area(geometry.Intersect(e.Rect, c.Rect)) > 0
	})
}

func assign(cells []*Cell, elements []Element, owns func(Element, *Cell) bool) []Element {
	var unassigned []Element
	for _, e := range elements {
		placed := false
		for _, c := range cells {
			if owns(e, c) {
				c.Elements = append(c.Elements, e)
				placed = true
				break
			}
		}
		if !placed {
			unassigned = append(unassigned, e)
		}
	}
	return unassigned
}

// GroupRows collects sorted cells into rows. A cell joins the current row
// when its Y is within tolerance of the row's first cell.
func GroupRows(cells []*Cell) []Row {
	var rows []Row
	for _, c := range cells {
		joined := false
		for i := range rows {
			if sameRow(rows[i][0], c) {
				rows[i] = append(rows[i], c)
				joined = true
				break
			}
		}
		if !joined {
			rows = append(rows, Row{c})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0].Rect.Y < rows[j][0].Rect.Y
	})
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Rect.X < row[j].Rect.X
		})
	}
	return rows
}

func sameRow(first, c *Cell) bool {
	d := c.Rect.Y - first.Rect.Y
	return d <= cellRowTolerance && d >= -cellRowTolerance
}
