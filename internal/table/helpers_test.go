package table

import (
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
)

const testPageHeight = 100.0

// filledRule draws a filled rectangle given in Y-down page coordinates
func filledRule(x, y, w, h float64) []content.Instruction {
	return []content.Instruction{
		content.Rectangle{X: x, Y: testPageHeight - y - h, Width: w, Height: h},
		content.Fill{},
	}
}

// segment strokes a straight line given in Y-down page coordinates
func segment(x0, y0, x1, y1 float64) []content.Instruction {
	return []content.Instruction{
		content.MoveTo{X: x0, Y: testPageHeight - y0},
		content.LineTo{X: x1, Y: testPageHeight - y1},
		content.Stroke{},
	}
}

// ruledGrid draws full-width filled rules at every row and column position
func ruledGrid(rowsY, colsX []float64) []content.Instruction {
	var out []content.Instruction
	left, right := colsX[0], colsX[len(colsX)-1]
	top, bottom := rowsY[0], rowsY[len(rowsY)-1]
	for _, y := range rowsY {
		out = append(out, filledRule(left, y, right-left, 0.5)...)
	}
	for _, x := range colsX {
		out = append(out, filledRule(x, top, 0.5, bottom-top)...)
	}
	return out
}

// segmentedGrid draws one stroked segment per cell edge
func segmentedGrid(rowsY, colsX []float64) []content.Instruction {
	var out []content.Instruction
	for _, y := range rowsY {
		for i := 0; i+1 < len(colsX); i++ {
			out = append(out, segment(colsX[i], y, colsX[i+1], y)...)
		}
	}
	for _, x := range colsX {
		for i := 0; i+1 < len(rowsY); i++ {
			out = append(out, segment(x, rowsY[i], x, rowsY[i+1])...)
		}
	}
	return out
}

// run places text whose Y-down bounding box starts at (x, y)
func run(text string, x, y, width float64) content.TextRun {
	const size = 10.0
	return content.TextRun{
		Text:      text,
		Transform: geometry.Matrix{size, 0, 0, size, x, testPageHeight - y - size},
		Width:     width,
	}
}

func cellTexts(row Row) []string {
	texts := make([]string, len(row))
	for i, c := range row {
		texts[i] = c.Text(" ")
	}
	return texts
}
