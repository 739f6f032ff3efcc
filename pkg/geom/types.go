package geom

// Unit conversion constants
// Coordinates are normalized to mils (thousandths of an inch) on parse.
const (
	MilsPerMillimeter = 39.37     // 1 mm = 39.37 mil
	MillimetersPerMil = 1 / 39.37 // Convert mil to mm (multiply by this)
)

// Point represents a 2D coordinate in mils
// Points are comparable and are used directly as map keys, so equality is
// exact-value based. Snap before comparing when a tolerance is wanted.
type Point struct {
	X float64 // X coordinate in mils
	Y float64 // Y coordinate in mils
}

// Snap rounds both coordinates to the nearest multiple of grid.
// A grid of zero (or less) returns the point unchanged.
func (p Point) Snap(grid float64) Point {
	if grid <= 0 {
		return p
	}
	return Point{X: snap(p.X, grid), Y: snap(p.Y, grid)}
}

// Less orders points by X, then Y
func (p Point) Less(other Point) bool {
	if p.X != other.X {
		return p.X < other.X
	}
	return p.Y < other.Y
}

// Segment represents one straight copper line read from a layout file
type Segment struct {
	A    Point  // First endpoint
	B    Point  // Second endpoint
	Line int    // 1-based source line number (0 if not read from a file)
	Text string // Source text the segment was parsed from
}

// NewSegment creates a segment from raw coordinates in mils
func NewSegment(x1, y1, x2, y2 float64) Segment {
	return Segment{
		A: Point{X: x1, Y: y1},
		B: Point{X: x2, Y: y2},
	}
}

// Endpoints returns both endpoints in A, B order
func (s Segment) Endpoints() [2]Point {
	return [2]Point{s.A, s.B}
}

// Length returns the Euclidean length of the segment in mils.
// Computed on every call; segments do not cache derived values.
func (s Segment) Length() float64 {
	return Length(s.A.X, s.A.Y, s.B.X, s.B.Y)
}

// Other returns the endpoint opposite to p, comparing on the given grid.
// The second return value is false when p is not an endpoint of s.
func (s Segment) Other(p Point, grid float64) (Point, bool) {
	key := p.Snap(grid)
	switch key {
	case s.A.Snap(grid):
		return s.B, true
	case s.B.Snap(grid):
		return s.A, true
	}
	return Point{}, false
}

// Bounds returns the bounding box of the segment
func (s Segment) Bounds() BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(s.A)
	bb.Expand(s.B)
	return bb
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Point // Minimum corner
	Max Point // Maximum corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: 1e9, Y: 1e9},   // Start with very large values
		Max: Point{X: -1e9, Y: -1e9}, // Start with very small values
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a point
func (bb *BoundingBox) Expand(p Point) {
	if p.X < bb.Min.X {
		bb.Min.X = p.X
	}
	if p.Y < bb.Min.Y {
		bb.Min.Y = p.Y
	}
	if p.X > bb.Max.X {
		bb.Max.X = p.X
	}
	if p.Y > bb.Max.Y {
		bb.Max.Y = p.Y
	}
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}
