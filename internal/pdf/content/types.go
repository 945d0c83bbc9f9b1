package content

import (
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

// Instruction is one drawing operation from a page's content stream. The set
// of implementations is closed: MoveTo, LineTo, Rectangle, Save, Restore,
// Transform, Fill, Stroke and EndPath.
type Instruction interface {
	instruction()
}

// MoveTo begins a new subpath at (X, Y) in user space ("m")
type MoveTo struct {
	X, Y float64
}

// LineTo appends a straight segment to the current subpath ("l")
type LineTo struct {
	X, Y float64
}

// Rectangle appends a rectangle subpath ("re")
type Rectangle struct {
	X, Y, Width, Height float64
}

// Save pushes the graphics state ("q")
type Save struct{}

// Restore pops the graphics state ("Q")
type Restore struct{}

// Transform composes Matrix onto the current transformation matrix ("cm")
type Transform struct {
	Matrix geometry.Matrix
}

// Fill paints the current path's interior ("f", "F", "f*", "B", "B*", "b", "b*")
type Fill struct{}

// Stroke paints the current path's outline only ("S", "s")
type Stroke struct{}

// EndPath ends the current path without painting it ("n")
type EndPath struct{}

func (MoveTo) instruction()    {}
func (LineTo) instruction()    {}
func (Rectangle) instruction() {}
func (Save) instruction()      {}
func (Restore) instruction()   {}
func (Transform) instruction() {}
func (Fill) instruction()      {}
func (Stroke) instruction()    {}
func (EndPath) instruction()   {}

// TextRun is a decoded string shown by a single text operator, with its
// full rendering matrix (font size, text matrix and CTM composed) and its
// advance width in page units
type TextRun struct {
	Text      string          `json:"text"`
	Transform geometry.Matrix `json:"transform"`
	Width     float64         `json:"width"`
}

// Page holds the primitives of one PDF page needed by the table engine
type Page struct {
	Number       int           `json:"number"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Instructions []Instruction `json:"-"`
	TextRuns     []TextRun     `json:"text_runs"`
}
