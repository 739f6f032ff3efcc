package trace

import (
	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

// Options controls trace assembly
type Options struct {
	// Grid is the endpoint snapping grid in mils. Zero compares endpoints
	// by exact float equality.
	Grid float64
}

// DefaultOptions returns assembly options with the default snapping grid
func DefaultOptions() Options {
	return Options{Grid: DefaultGrid}
}

// Assemble partitions segments into connected traces.
//
// Each trace starts from the first unassigned segment in input order. Its
// two endpoints seed a FIFO of pending endpoints; for each pending endpoint
// the first unassigned segment in input order sharing it joins the trace
// and contributes its opposite endpoint. A trace is complete when no
// endpoints are pending.
//
// Only one segment is claimed per pending endpoint, so at a junction of
// three or more segments the extra branches start traces of their own.
// Which branch is followed depends on input order only.
func Assemble(segments []geom.Segment, opts Options) []Trace {
	ws := newWorkingSet(segments, opts.Grid)

	var traces []Trace
	for {
		start, ok := ws.takeFirst()
		if !ok {
			break
		}

		seed := segments[start]
		tr := Trace{
			Index:    len(traces) + 1,
			Segments: []geom.Segment{seed},
		}

		pending := newEndpointQueue()
		pending.push(seed.A.Snap(opts.Grid))
		pending.push(seed.B.Snap(opts.Grid))

		for pending.len() > 0 {
			p := pending.pop()

			i, found := ws.findConnected(p)
			if !found {
				continue
			}
			ws.take(i)

			next := segments[i]
			tr.Segments = append(tr.Segments, next)

			if other, ok := next.Other(p, opts.Grid); ok {
				pending.push(other.Snap(opts.Grid))
			}
		}

		traces = append(traces, tr)
	}

	return traces
}

// workingSet is the pool of segments not yet assigned to a trace
type workingSet struct {
	assigned   []bool
	cursor     int                  // No unassigned segment before this index
	byEndpoint map[geom.Point][]int // Snapped endpoint -> segment indices in input order
}

func newWorkingSet(segments []geom.Segment, grid float64) *workingSet {
	ws := &workingSet{
		assigned:   make([]bool, len(segments)),
		byEndpoint: make(map[geom.Point][]int, 2*len(segments)),
	}

	for i, s := range segments {
		a := s.A.Snap(grid)
		b := s.B.Snap(grid)
		ws.byEndpoint[a] = append(ws.byEndpoint[a], i)
		if b != a {
			ws.byEndpoint[b] = append(ws.byEndpoint[b], i)
		}
	}

	return ws
}

// takeFirst claims the first unassigned segment in input order
func (ws *workingSet) takeFirst() (int, bool) {
	for ws.cursor < len(ws.assigned) && ws.assigned[ws.cursor] {
		ws.cursor++
	}
	if ws.cursor == len(ws.assigned) {
		return 0, false
	}
	ws.take(ws.cursor)
	return ws.cursor, true
}

func (ws *workingSet) take(i int) {
	ws.assigned[i] = true
}

// findConnected returns the first unassigned segment touching p
func (ws *workingSet) findConnected(p geom.Point) (int, bool) {
	for _, i := range ws.byEndpoint[p] {
		if !ws.assigned[i] {
			return i, true
		}
	}
	return 0, false
}

// endpointQueue is a FIFO of endpoints that never holds duplicates
type endpointQueue struct {
	items   []geom.Point
	members map[geom.Point]struct{}
}

func newEndpointQueue() *endpointQueue {
	return &endpointQueue{members: make(map[geom.Point]struct{})}
}

func (q *endpointQueue) push(p geom.Point) {
	if _, ok := q.members[p]; ok {
		return
	}
	q.members[p] = struct{}{}
	q.items = append(q.items, p)
}

func (q *endpointQueue) pop() geom.Point {
	p := q.items[0]
	q.items = q.items[1:]
	delete(q.members, p)
	return p
}

func (q *endpointQueue) len() int {
	return len(q.items)
}
