// Package table reconstructs the ruled grid of a register page from its
// drawing and text primitives and assigns text to the grid's cells.
package table

import (
	"sort"
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

// Orientation of a grid line
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns a string representation of the Orientation
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Line is a thin rectangle in page space forming part of the table rules
type Line struct {
	Rect        geometry.Rectangle `json:"rect"`
	Orientation Orientation        `json:"orientation"`
}

// Element is a positioned text fragment in page space
type Element struct {
	Text string             `json:"text"`
	Rect geometry.Rectangle `json:"rect"`
}

// Cell is a grid rectangle and the text elements assigned to it
type Cell struct {
	Rect     geometry.Rectangle `json:"rect"`
	Elements []Element          `json:"elements"`
}

// Text joins the cell's element texts with sep and trims the result
func (c *Cell) Text(sep string) string {
	if c == nil {
		return ""
	}
	texts := make([]string, 0, len(c.Elements))
	for _, e := range c.Elements {
		texts = append(texts, e.Text)
	}
	return strings.TrimSpace(strings.Join(texts, sep))
}

// Row is a left to right sequence of cells sharing a Y coordinate
type Row []*Cell

// Grid is the reconstructed table of one page
type Grid struct {
	Cells      []*Cell   `json:"cells"`
	Rows       []Row     `json:"rows"`
	Elements   []Element `json:"elements"`
	Unassigned []Element `json:"unassigned,omitempty"`
}

// Texts returns the text of every element on the page, for diagnostics
func (g *Grid) Texts() []string {
	texts := make([]string, 0, len(g.Elements))
	for _, e := range g.Elements {
		texts = append(texts, e.Text)
	}
	return texts
}

const (
	// Y tolerance for ordering cells into rows
	cellRowTolerance = 2.0

	// Y tolerance for ordering text elements into lines
	elementLineTolerance = 1.0
)

// SortRects orders rectangles top to bottom by Y bucket, then left to right
func SortRects(rects []geometry.Rectangle) {
	sort.SliceStable(rects, func(i, j int) bool {
		return before(rects[i], rects[j], cellRowTolerance)
	})
}

// SortElements orders elements top to bottom by line, then left to right
func SortElements(elements []Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		return before(elements[i].Rect, elements[j].Rect, elementLineTolerance)
	})
}

func before(a, b geometry.Rectangle, tolerance float64) bool {
	if !geometry.SameBucket(a.Y, b.Y, tolerance) {
		return a.Y < b.Y
	}
	return a.X < b.X
}
