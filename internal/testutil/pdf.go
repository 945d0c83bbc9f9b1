// Package testutil builds small PDF documents for tests
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PageHeight is the MediaBox height of pages produced by BuildPDF
const PageHeight = 792.0

// BuildPDF returns a well-formed PDF with one page per content stream. Every
// page shares a Helvetica font resource named /F1 and a 612x792 MediaBox.
func BuildPDF(pages ...string) []byte {
	var objects []string

	// 1 catalog, 2 page tree, 3 font, then page/content pairs
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)

	for i, stream := range pages {
		pageObj := 4 + i*2
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 %d] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", int(PageHeight), pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// RegisterPage returns a content stream for a ruled register page: filled
// 1pt rules for the given horizontal Y and vertical X positions (in Y-down
// page space) and one text run per cell text keyed by its Y-down baseline
// box origin.
func RegisterPage(rowsY, colsX []float64, texts []PlacedText) string {
	var b strings.Builder

	left, right := colsX[0], colsX[len(colsX)-1]
	top, bottom := rowsY[0], rowsY[len(rowsY)-1]

	for _, y := range rowsY {
		fmt.Fprintf(&b, "%.2f %.2f %.2f 0.5 re f\n", left, PageHeight-y, right-left)
	}
	for _, x := range colsX {
		fmt.Fprintf(&b, "%.2f %.2f 0.5 %.2f re f\n", x, PageHeight-bottom, bottom-top)
	}

	for _, t := range texts {
		fmt.Fprintf(&b, "BT /F1 %.2f Tf 1 0 0 1 %.2f %.2f Tm (%s) Tj ET\n",
			t.Size, t.X, PageHeight-t.Y-t.Size, escape(t.Text))
	}

	return b.String()
}

// PlacedText is a string whose Y-down bounding box starts at (X, Y)
type PlacedText struct {
	Text string
	X, Y float64
	Size float64
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
