package geometry

import "math"

// Point represents a 2D coordinate in page space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceSquared returns the squared Euclidean distance to another point
func (p Point) DistanceSquared(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Rectangle is an axis-aligned rectangle in a Y-down page coordinate space.
// Width and Height may be negative while a rectangle is being built; call
// Normalize before using it in area or overlap calculations.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Zero is the rectangle returned when two rectangles do not intersect
var Zero = Rectangle{}

// Right returns the right edge X coordinate
func (r Rectangle) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge Y coordinate (Y grows downwards)
func (r Rectangle) Bottom() float64 {
	return r.Y + r.Height
}

// Normalize returns an equivalent rectangle with non-negative width and height
func (r Rectangle) Normalize() Rectangle {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// IsZero reports whether the rectangle has no area
func (r Rectangle) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

// Intersect returns the overlapping rectangle of r1 and r2, or the zero
// rectangle when they are disjoint.
func Intersect(r1, r2 Rectangle) Rectangle {
	r1 = r1.Normalize()
	r2 = r2.Normalize()

	x1 := math.Max(r1.X, r2.X)
	y1 := math.Max(r1.Y, r2.Y)
	x2 := math.Min(r1.Right(), r2.Right())
	y2 := math.Min(r1.Bottom(), r2.Bottom())

	if x2 < x1 || y2 < y1 {
		return Zero
	}

	return Rectangle{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Area returns the area of the rectangle
func Area(r Rectangle) float64 {
	r = r.Normalize()
	return r.Width * r.Height
}

// PercentageOfElementInCell returns the percentage (0 to 100) of the element's
// area that lies inside the cell.
func PercentageOfElementInCell(element, cell Rectangle) float64 {
	elementArea := Area(element)
	if elementArea == 0 {
		return 0
	}
	return Area(Intersect(element, cell)) / elementArea * 100
}

// HorizontalOverlapPercentage returns the overlap of the X spans of r1 and r2
// as a percentage (0 to 100) of the union of both spans. Missing rectangles,
// zero widths and disjoint spans all give 0.
func HorizontalOverlapPercentage(r1, r2 *Rectangle) float64 {
	if r1 == nil || r2 == nil {
		return 0
	}

	a := r1.Normalize()
	b := r2.Normalize()
	if a.Width == 0 || b.Width == 0 {
		return 0
	}

	startMax := math.Max(a.X, b.X)
	endMin := math.Min(a.Right(), b.Right())
	if endMin <= startMax {
		return 0
	}

	startMin := math.Min(a.X, b.X)
	endMax := math.Max(a.Right(), b.Right())

	return (endMin - startMax) / (endMax - startMin) * 100
}

// Contains reports whether inner lies within outer on all four edges. An
// inner edge lying on an outer edge counts as inside, so a run cut at a cell
// boundary is contained by that cell.
func Contains(outer, inner Rectangle) bool {
	outer = outer.Normalize()
	inner = inner.Normalize()
	return inner.X >= outer.X &&
		inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() &&
		inner.Bottom() <= outer.Bottom()
}

// SameBucket reports whether two coordinates fall within tolerance of each other
func SameBucket(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
