package table

import (
	"fmt"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
)

// TableGridExtractor reconstructs the populated grid of one page
type TableGridExtractor interface {
	Extract(page content.Page) (*Grid, error)
}

// Layout is one register generation's combination of geometry strategies
type Layout struct {
	Name         string
	Lines        LineExtractor
	Grid         GridBuilder
	Assigner     Assigner
	Splitter     *OverhangSplitter
	SortElements bool
}

// Extract implements TableGridExtractor
func (l *Layout) Extract(page content.Page) (*Grid, error) {
	if page.Height <= 0 {
		return nil, fmt.Errorf("page %d has no height", page.Number)
	}

	lines := l.Lines.ExtractLines(page.Instructions, page.Height)
	rects := l.Grid.BuildCells(lines)

	grid := &Grid{
		Cells:    make([]*Cell, len(rects)),
		Elements: ExtractElements(page.TextRuns, page.Height),
	}
	for i, r := range rects {
		grid.Cells[i] = &Cell{Rect: r}
	}

	if l.SortElements {
		SortElements(grid.Elements)
	}

	grid.Unassigned = l.Assigner.Assign(grid.Cells, grid.Elements)
	grid.Rows = GroupRows(grid.Cells)

	if l.Splitter != nil {
		l.Splitter.Split(grid)
	}

	return grid, nil
}

// Ruled returns the first generation layout: fully ruled tables drawn with
// filled rectangles
func Ruled() *Layout {
	return &Layout{
		Name:     "v1",
		Lines:    FillLineExtractor{},
		Grid:     IntersectionGridBuilder{},
		Assigner: MajorityAssigner{},
	}
}

// Segmented returns the later layout: rules drawn as open segments ending at
// every cell corner, with text runs that overhang their columns
func Segmented(name string, columns []SplitColumn) *Layout {
	return &Layout{
		Name:     name,
		Lines:    PathLineExtractor{},
		Grid:     PointGraphGridBuilder{},
		Assigner: LeftmostAssigner{},
		Splitter: &OverhangSplitter{
			Matcher: HeaderMatcher{RequireContainment: true},
			Columns: columns,
		},
		SortElements: true,
	}
}
