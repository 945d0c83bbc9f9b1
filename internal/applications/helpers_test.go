package applications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
)

const (
	testPageHeight = 100.0
	testInfoURL    = "https://www.dcgrant.sa.gov.au/register.pdf"
	testCommentURL = "mailto:info@dcgrant.sa.gov.au"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func testGazetteer() *gazetteer.Gazetteer {
	return gazetteer.New(gazetteer.Data{
		Streets: map[string][]string{
			"SMITH STREET": {"GRANT"},
			"PENOLA ROAD":  {"MOUNT GAMBIER", "TARPEENA"},
		},
		Suffixes: map[string]string{"ST": "STREET", "RD": "ROAD"},
		Suburbs: map[string]string{
			"GRANT":         "GRANT SA 5XXX",
			"MOUNT GAMBIER": "Mount Gambier SA 5290",
			"TARPEENA":      "Tarpeena SA 5277",
		},
		Hundreds: map[string][]string{
			"GRANT": {"GRANT", "OB FLAT"},
			"YOUNG": {"TARPEENA"},
		},
	})
}

func newTestMapper(t *testing.T, layout string) *Mapper {
	t.Helper()
	m, err := NewMapper(testGazetteer(), Options{
		Layout:     layout,
		CommentURL: testCommentURL,
		Address:    address.DefaultOptions(),
	}, nil)
	require.NoError(t, err)
	m.now = func() time.Time { return testNow }
	return m
}

// filledRule draws a filled rectangle given in Y-down page coordinates
func filledRule(x, y, w, h float64) []content.Instruction {
	return []content.Instruction{
		content.Rectangle{X: x, Y: testPageHeight - y - h, Width: w, Height: h},
		content.Fill{},
	}
}

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

// segmentedGrid strokes one open segment per cell edge
func segmentedGrid(rowsY, colsX []float64) []content.Instruction {
	var out []content.Instruction
	line := func(x0, y0, x1, y1 float64) {
		out = append(out,
			content.MoveTo{X: x0, Y: testPageHeight - y0},
			content.LineTo{X: x1, Y: testPageHeight - y1},
			content.Stroke{},
		)
	}
	for _, y := range rowsY {
		for i := 0; i+1 < len(colsX); i++ {
			line(colsX[i], y, colsX[i+1], y)
		}
	}
	for _, x := range colsX {
		for i := 0; i+1 < len(rowsY); i++ {
			line(x, rowsY[i], x, rowsY[i+1])
		}
	}
	return out
}

// run places 10pt text whose Y-down bounding box starts at (x, y)
func run(text string, x, y, width float64) content.TextRun {
	const size = 10.0
	return content.TextRun{
		Text:      text,
		Transform: geometry.Matrix{size, 0, 0, size, x, testPageHeight - y - size},
		Width:     width,
	}
}

func page(instructions []content.Instruction, runs ...content.TextRun) content.Page {
	return content.Page{
		Number:       1,
		Width:        500,
		Height:       testPageHeight,
		Instructions: instructions,
		TextRuns:     runs,
	}
}

// ruledPage is the smallest readable first generation page: an application
// and an address column with one heading row and one data row
func ruledPage() content.Page {
	return page(ruledGrid([]float64{0, 20, 40}, []float64{0, 50, 100}),
		run("APPLICATION", 5, 5, 40),
		run("PROPERTY ADDRESS", 52, 5, 45),
		run("123/20", 5, 25, 30),
		run("123 SMITH ST, HD GRANT, GRANT", 52, 25, 45),
	)
}

// segmentedPage is a later generation page whose applicant and description
// runs overhang into the columns to their right
func segmentedPage(applicant string) content.Page {
	return segmentedPageAt(applicant, "7 SMITH ST", "GRANT", "HD GRANT")
}

// segmentedPageAt is segmentedPage with the address written one run per line
func segmentedPageAt(applicant string, addressLines ...string) content.Page {
	runs := []content.TextRun{
		run("APPLICANT", 2, 5, 50),
		run("ASSESS", 62, 5, 40),
		run("APPLICATION", 122, 5, 50),
		run("PROPERTY ADDRESS", 182, 5, 100),
		run("DESCRIPTION", 302, 5, 60),
		run("DECISION", 402, 5, 50),
		run(applicant, 2, 25, 170),
	}
	for i, line := range addressLines {
		runs = append(runs, run(line, 182, 22+10*float64(i), 60))
	}
	runs = append(runs, run("DWELLING - BUILDING RULES ONLY   12/03/2018", 302, 25, 150))
	return page(segmentedGrid([]float64{0, 20, 60}, []float64{0, 60, 120, 180, 300, 400, 460}), runs...)
}
