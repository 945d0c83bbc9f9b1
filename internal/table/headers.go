package table

import (
	"regexp"
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// HeaderMatcher locates header cells by the literal text of one of their
// elements
type HeaderMatcher struct {
	// CollapseWhitespace compares texts with internal whitespace runs
	// reduced to a single space
	CollapseWhitespace bool

	// RequireContainment ignores elements that overhang the cell, so a
	// neighbour's fragment never identifies a header
	RequireContainment bool
}

// Normalize returns text the way the matcher compares it
func (m HeaderMatcher) Normalize(text string) string {
	text = strings.TrimSpace(text)
	if m.CollapseWhitespace {
		text = whitespaceRun.ReplaceAllString(text, " ")
	}
	return text
}

// Find returns the first cell, in row order, holding an element whose
// normalized text equals label
func (m HeaderMatcher) Find(grid *Grid, label string) (*Cell, bool) {
	want := m.Normalize(label)
	return m.FindFunc(grid, func(text string) bool {
		return m.Normalize(text) == want
	})
}

// FindFunc returns the first cell holding an element whose raw text
// satisfies match
func (m HeaderMatcher) FindFunc(grid *Grid, match func(text string) bool) (*Cell, bool) {
	for _, row := range grid.Rows {
		for _, c := range row {
			for _, e := range c.Elements {
				if m.RequireContainment && !geometry.Contains(c.Rect, e.Rect) {
					continue
				}
				if match(e.Text) {
					return c, true
				}
			}
		}
	}
	return nil, false
}
