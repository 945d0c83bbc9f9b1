package geometry

import "math"

// Matrix is a PDF affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Viewport returns the matrix that flips PDF user space (Y up) into the
// Y-down page space used by the table engine.
func Viewport(pageHeight float64) Matrix {
	return Matrix{1, 0, 0, -1, 0, pageHeight}
}

// Multiply returns m × other. Composing a "cm" operand onto the current
// transform is operand.Multiply(current).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Apply transforms a point
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect transforms all four corners of r and returns their
// normalized bounding box.
func (m Matrix) TransformRect(r Rectangle) Rectangle {
	corners := [4]Point{
		m.Apply(Point{X: r.X, Y: r.Y}),
		m.Apply(Point{X: r.X + r.Width, Y: r.Y}),
		m.Apply(Point{X: r.X, Y: r.Y + r.Height}),
		m.Apply(Point{X: r.X + r.Width, Y: r.Y + r.Height}),
	}

	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}

	return Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// VerticalScale returns the length of the matrix's transformed unit Y vector,
// sqrt(c² + d²). For unrotated text this equals sqrt(a² + b²).
func (m Matrix) VerticalScale() float64 {
	return math.Hypot(m[2], m[3])
}

// HorizontalScale returns sqrt(a² + b²)
func (m Matrix) HorizontalScale() float64 {
	return math.Hypot(m[0], m[1])
}
