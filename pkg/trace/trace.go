package trace

import (
	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

// DefaultGrid is the endpoint snapping grid in mils. Endpoints closer than
// roughly half a grid step compare equal.
const DefaultGrid = 1e-4

// Trace is a run of connected segments representing one conductor
type Trace struct {
	Index    int            // 1-based display index in discovery order
	Segments []geom.Segment // Segments in discovery order
}

// Length returns the total trace length in mils
func (t Trace) Length() float64 {
	return geom.TotalLength(t.Segments)
}

// Bounds returns the bounding box enclosing every segment of the trace
func (t Trace) Bounds() geom.BoundingBox {
	bb := geom.NewBoundingBox()
	for _, s := range t.Segments {
		bb.ExpandBox(s.Bounds())
	}
	return bb
}

// Lines returns the source line numbers of the trace's segments
func (t Trace) Lines() []int {
	lines := make([]int, len(t.Segments))
	for i, s := range t.Segments {
		lines[i] = s.Line
	}
	return lines
}
