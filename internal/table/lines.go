package table

import (
	"math"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
)

const (
	// A rule is at most this thick
	maxLineThickness = 2.0

	// and at least this long
	minLineLength = 10.0

	// Filled rectangles this wide or tall are banners; their top and bottom
	// edges become horizontal rules
	bannerSize = 200.0
)

// LineExtractor recovers table rules from a page's drawing instructions
type LineExtractor interface {
	ExtractLines(instructions []content.Instruction, pageHeight float64) []Line
}

// transformStack tracks the current transformation matrix across q/Q/cm
type transformStack struct {
	current  geometry.Matrix
	saved    []geometry.Matrix
	viewport geometry.Matrix
}

func newTransformStack(pageHeight float64) *transformStack {
	return &transformStack{
		current:  geometry.Identity(),
		viewport: geometry.Viewport(pageHeight),
	}
}

// apply handles the state instructions and reports whether ins was one
func (s *transformStack) apply(ins content.Instruction) bool {
	switch ins := ins.(type) {
	case content.Save:
		s.saved = append(s.saved, s.current)
	case content.Restore:
		if n := len(s.saved); n > 0 {
			s.current = s.saved[n-1]
			s.saved = s.saved[:n-1]
		}
	case content.Transform:
		s.current = ins.Matrix.Multiply(s.current)
	default:
		return false
	}
	return true
}

// toPage maps a user space rectangle into Y-down page space
func (s *transformStack) toPage(r geometry.Rectangle) geometry.Rectangle {
	return s.viewport.TransformRect(s.current.TransformRect(r)).Normalize()
}

// FillLineExtractor treats filled thin rectangles as rules. Rectangles are
// only considered once a Fill paints them.
type FillLineExtractor struct{}

// ExtractLines implements LineExtractor
func (FillLineExtractor) ExtractLines(instructions []content.Instruction, pageHeight float64) []Line {
	stack := newTransformStack(pageHeight)
	var pending []geometry.Rectangle
	var lines []Line

	for _, ins := range instructions {
		if stack.apply(ins) {
			continue
		}

		switch ins := ins.(type) {
		case content.Rectangle:
			pending = append(pending, stack.toPage(geometry.Rectangle{
				X: ins.X, Y: ins.Y, Width: ins.Width, Height: ins.Height,
			}))
		case content.Fill:
			for _, r := range pending {
				lines = append(lines, classifyFilled(r)...)
			}
			pending = nil
		case content.Stroke, content.EndPath:
			pending = nil
		case content.MoveTo, content.LineTo:
			// open paths are never rules in filled layouts
		}
	}

	return lines
}

func classifyFilled(r geometry.Rectangle) []Line {
	switch {
	case r.Height <= maxLineThickness && r.Width >= minLineLength:
		return []Line{{Rect: r, Orientation: Horizontal}}
	case r.Width <= maxLineThickness && r.Height >= minLineLength:
		return []Line{{Rect: r, Orientation: Vertical}}
	case r.Width >= bannerSize || r.Height >= bannerSize:
		return []Line{
			{Rect: geometry.Rectangle{X: r.X, Y: r.Y, Width: r.Width}, Orientation: Horizontal},
			{Rect: geometry.Rectangle{X: r.X, Y: r.Bottom(), Width: r.Width}, Orientation: Horizontal},
		}
	default:
		return nil
	}
}

// PathLineExtractor reads rules from path construction alone, whether or not
// the path is later filled. Axis-aligned MoveTo/LineTo segments count too.
type PathLineExtractor struct{}

// ExtractLines implements LineExtractor
func (PathLineExtractor) ExtractLines(instructions []content.Instruction, pageHeight float64) []Line {
	stack := newTransformStack(pageHeight)
	var lines []Line
	var cursor *geometry.Point

	for _, ins := range instructions {
		if stack.apply(ins) {
			continue
		}

		switch ins := ins.(type) {
		case content.Rectangle:
			r := stack.toPage(geometry.Rectangle{X: ins.X, Y: ins.Y, Width: ins.Width, Height: ins.Height})
			if line, ok := classifyPath(r); ok {
				lines = append(lines, line)
			}
		case content.MoveTo:
			cursor = &geometry.Point{X: ins.X, Y: ins.Y}
		case content.LineTo:
			to := geometry.Point{X: ins.X, Y: ins.Y}
			if cursor != nil && (cursor.X == to.X || cursor.Y == to.Y) {
				r := stack.toPage(geometry.Rectangle{
					X: cursor.X, Y: cursor.Y, Width: to.X - cursor.X, Height: to.Y - cursor.Y,
				})
				if line, ok := classifyPath(r); ok {
					lines = append(lines, line)
				}
			}
			cursor = &to
		case content.Fill, content.Stroke, content.EndPath:
			cursor = nil
		}
	}

	return lines
}

func classifyPath(r geometry.Rectangle) (Line, bool) {
	orientation := Vertical
	if r.Height <= maxLineThickness {
		orientation = Horizontal
	}

	long, short := math.Max(r.Width, r.Height), math.Min(r.Width, r.Height)
	if long < minLineLength || short > maxLineThickness {
		return Line{}, false
	}

	return Line{Rect: r, Orientation: orientation}, true
}
