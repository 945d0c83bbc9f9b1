package table

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/geometry"
)

const (
	// Rule coordinates closer than this are the same grid line
	ruleMergeTolerance = 1.0

	// Endpoints closer than this (squared distance) are the same grid point
	pointMergeDistanceSquared = 1.0

	// Neighbour search tolerance across the axis of travel
	neighbourTolerance = 1.0
)

// GridBuilder turns table rules into sorted cell rectangles
type GridBuilder interface {
	BuildCells(lines []Line) []geometry.Rectangle
}

// IntersectionGridBuilder builds a dense grid from every pair of adjacent
// horizontal and adjacent vertical rules. It is only correct for fully ruled
// tables.
type IntersectionGridBuilder struct{}

// BuildCells implements GridBuilder
func (IntersectionGridBuilder) BuildCells(lines []Line) []geometry.Rectangle {
	var ys, xs []float64
	for _, l := range lines {
		if l.Orientation == Horizontal {
			ys = append(ys, l.Rect.Y)
		} else {
			xs = append(xs, l.Rect.X)
		}
	}

	ys = distinct(ys)
	xs = distinct(xs)

	var cells []geometry.Rectangle
	for i := 0; i+1 < len(ys); i++ {
		for j := 0; j+1 < len(xs); j++ {
			cells = append(cells, geometry.Rectangle{
				X:      xs[j],
				Y:      ys[i],
				Width:  xs[j+1] - xs[j],
				Height: ys[i+1] - ys[i],
			})
		}
	}

	SortRects(cells)
	return cells
}

// distinct sorts values and drops any within ruleMergeTolerance of the
// previous kept value
func distinct(values []float64) []float64 {
	sort.Float64s(values)
	var out []float64
	for _, v := range values {
		if len(out) > 0 && v-out[len(out)-1] < ruleMergeTolerance {
			continue
		}
		out = append(out, v)
	}
	return out
}

// PointGraphGridBuilder builds cells from rule endpoints. Each point is
// paired with its nearest neighbour to the right and nearest neighbour below;
// together they span a cell. Partially ruled tables, where rules stop at
// every cell corner, come out correctly.
type PointGraphGridBuilder struct{}

// BuildCells implements GridBuilder
func (PointGraphGridBuilder) BuildCells(lines []Line) []geometry.Rectangle {
	var tr rtree.RTreeG[geometry.Point]
	var points []geometry.Point

	for _, l := range lines {
		for _, p := range endpoints(l) {
			if nearby(&tr, p) {
				continue
			}
			tr.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, p)
			points = append(points, p)
		}
	}

	var cells []geometry.Rectangle
	for _, p := range points {
		right, ok := nearestRight(&tr, p)
		if !ok {
			continue
		}
		down, ok := nearestBelow(&tr, p)
		if !ok {
			continue
		}
		cells = append(cells, geometry.Rectangle{
			X:      p.X,
			Y:      p.Y,
			Width:  right.X - p.X,
			Height: down.Y - p.Y,
		})
	}

	SortRects(cells)
	return cells
}

func endpoints(l Line) [2]geometry.Point {
	if l.Orientation == Horizontal {
		return [2]geometry.Point{{X: l.Rect.X, Y: l.Rect.Y}, {X: l.Rect.Right(), Y: l.Rect.Y}}
	}
	return [2]geometry.Point{{X: l.Rect.X, Y: l.Rect.Y}, {X: l.Rect.X, Y: l.Rect.Bottom()}}
}

func nearby(tr *rtree.RTreeG[geometry.Point], p geometry.Point) bool {
	found := false
	tr.Search([2]float64{p.X - 1, p.Y - 1}, [2]float64{p.X + 1, p.Y + 1},
		func(_, _ [2]float64, q geometry.Point) bool {
			if p.DistanceSquared(q) < pointMergeDistanceSquared {
				found = true
				return false
			}
			return true
		})
	return found
}

func nearestRight(tr *rtree.RTreeG[geometry.Point], p geometry.Point) (geometry.Point, bool) {
	var best geometry.Point
	found := false
	tr.Search([2]float64{p.X, p.Y - neighbourTolerance}, [2]float64{math.MaxFloat64, p.Y + neighbourTolerance},
		func(_, _ [2]float64, q geometry.Point) bool {
			if q.X <= p.X || math.Abs(q.Y-p.Y) >= neighbourTolerance {
				return true
			}
			if !found || q.X < best.X || (q.X == best.X && q.Y < best.Y) {
				best, found = q, true
			}
			return true
		})
	return best, found
}

func nearestBelow(tr *rtree.RTreeG[geometry.Point], p geometry.Point) (geometry.Point, bool) {
	var best geometry.Point
	found := false
	tr.Search([2]float64{p.X - neighbourTolerance, p.Y}, [2]float64{p.X + neighbourTolerance, math.MaxFloat64},
		func(_, _ [2]float64, q geometry.Point) bool {
			if q.Y <= p.Y || math.Abs(q.X-p.X) >= neighbourTolerance {
				return true
			}
			if !found || q.Y < best.Y || (q.Y == best.Y && q.X < best.X) {
				best, found = q, true
			}
			return true
		})
	return best, found
}
