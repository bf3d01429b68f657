package kdnn

import (
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kdnn/index"
)

// Coord is a 2-D coordinate.
type Coord = index.Coord

// Neighbor is a single query result.
type Neighbor = index.Neighbor

// Point is a labeled coordinate.
type Point struct {
	X     float64
	Y     float64
	Label uint32
}

// Coord returns the coordinate part of p.
func (p Point) Coord() Coord {
	return Coord{X: p.X, Y: p.Y}
}

// Rect is an axis-aligned rectangle with inclusive bounds.
type Rect struct {
	Min Coord
	Max Coord
}

// Contains reports whether c lies inside r or on its boundary.
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// Width returns the extent along x.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the extent along y.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Pad grows r by frac of its extent on every side. A degenerate axis is
// padded by frac instead, so a single point still yields a usable area.
func (r Rect) Pad(frac float64) Rect {
	dx := r.Width() * frac
	if dx == 0 {
		dx = frac
	}
	dy := r.Height() * frac
	if dy == 0 {
		dy = frac
	}
	return Rect{
		Min: Coord{X: r.Min.X - dx, Y: r.Min.Y - dy},
		Max: Coord{X: r.Max.X + dx, Y: r.Max.Y + dy},
	}
}

// PointSet is an immutable, ordered collection of labeled points.
// The position of a point is its identity in query results.
type PointSet struct {
	coords []Coord
	labels []uint32

	postings map[uint32]*roaring.Bitmap
	bounds   Rect
}

// NewPointSet copies points into a new PointSet.
func NewPointSet(points []Point) (*PointSet, error) {
	coords := make([]Coord, len(points))
	labels := make([]uint32, len(points))

	for i, p := range points {
		c := p.Coord()
		if !c.IsFinite() {
			return nil, &InvalidArgumentError{Name: "points[" + strconv.Itoa(i) + "]", Value: c.String()}
		}
		coords[i] = c
		labels[i] = p.Label
	}

	return newPointSet(coords, labels), nil
}

// newPointSet takes ownership of coords and labels, which must have equal
// length and finite coordinates.
func newPointSet(coords []Coord, labels []uint32) *PointSet {
	ps := &PointSet{
		coords:   coords,
		labels:   labels,
		postings: make(map[uint32]*roaring.Bitmap),
	}

	for i, l := range labels {
		bm, ok := ps.postings[l]
		if !ok {
			bm = roaring.New()
			ps.postings[l] = bm
		}
		bm.Add(uint32(i))
	}
	for _, bm := range ps.postings {
		bm.RunOptimize()
	}

	if len(coords) > 0 {
		b := Rect{
			Min: Coord{X: math.Inf(1), Y: math.Inf(1)},
			Max: Coord{X: math.Inf(-1), Y: math.Inf(-1)},
		}
		for _, c := range coords {
			b.Min.X = min(b.Min.X, c.X)
			b.Min.Y = min(b.Min.Y, c.Y)
			b.Max.X = max(b.Max.X, c.X)
			b.Max.Y = max(b.Max.Y, c.Y)
		}
		ps.bounds = b
	}

	return ps
}

// Len returns the number of points.
func (ps *PointSet) Len() int {
	return len(ps.coords)
}

func (ps *PointSet) check(i int) error {
	if i < 0 || i >= len(ps.coords) {
		return &IndexError{Index: i, Len: len(ps.coords)}
	}
	return nil
}

// Coord returns the coordinate of point i.
func (ps *PointSet) Coord(i int) (Coord, error) {
	if err := ps.check(i); err != nil {
		return Coord{}, err
	}
	return ps.coords[i], nil
}

// Label returns the label of point i.
func (ps *PointSet) Label(i int) (uint32, error) {
	if err := ps.check(i); err != nil {
		return 0, err
	}
	return ps.labels[i], nil
}

// Point returns point i.
func (ps *PointSet) Point(i int) (Point, error) {
	if err := ps.check(i); err != nil {
		return Point{}, err
	}
	c := ps.coords[i]
	return Point{X: c.X, Y: c.Y, Label: ps.labels[i]}, nil
}

// All iterates over the points in index order.
func (ps *PointSet) All() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i, c := range ps.coords {
			if !yield(i, Point{X: c.X, Y: c.Y, Label: ps.labels[i]}) {
				return
			}
		}
	}
}

// Bounds returns the smallest rectangle containing every point.
// It reports false for an empty set.
func (ps *PointSet) Bounds() (Rect, bool) {
	return ps.bounds, len(ps.coords) > 0
}

// Labels returns the distinct labels in ascending order.
func (ps *PointSet) Labels() []uint32 {
	return slices.Sorted(maps.Keys(ps.postings))
}

// LabelCount returns the number of points carrying label.
func (ps *PointSet) LabelCount(label uint32) int {
	if bm, ok := ps.postings[label]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// IndicesWithLabel returns the indices of the points carrying label.
// The bitmap is a copy and may be modified.
func (ps *PointSet) IndicesWithLabel(label uint32) *roaring.Bitmap {
	if bm, ok := ps.postings[label]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// labelFilter returns a membership test for points carrying any of labels.
func (ps *PointSet) labelFilter(labels []uint32) index.Filter {
	bms := make([]*roaring.Bitmap, 0, len(labels))
	for _, l := range labels {
		if bm, ok := ps.postings[l]; ok {
			bms = append(bms, bm)
		}
	}

	union := roaring.FastOr(bms...)
	return func(i int) bool {
		return union.ContainsInt(i)
	}
}

// MemoryUsage returns the bytes held by coordinates and labels.
func (ps *PointSet) MemoryUsage() int64 {
	return int64(cap(ps.coords))*16 + int64(cap(ps.labels))*4
}
