package table

import (
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
)

// ExtractElements positions every non-blank text run in Y-down page space.
// The height comes from the run's rendering matrix rather than the font
// descriptor, which overstates glyph height for the register fonts.
func ExtractElements(runs []content.TextRun, pageHeight float64) []Element {
	elements := make([]Element, 0, len(runs))
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}

		height := run.Transform.VerticalScale()
		origin := geometry.Viewport(pageHeight).Apply(geometry.Point{X: run.Transform[4], Y: run.Transform[5]})

		elements = append(elements, Element{
			Text: run.Text,
			Rect: geometry.Rectangle{
				X:      origin.X,
				Y:      origin.Y - height,
				Width:  run.Width,
				Height: height,
			}.Normalize(),
		})
	}
	return elements
}
