package trace

import (
	"math"
	"sort"
	"testing"

	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

const epsilon = 1e-9

// seg builds a segment tagged with a line number so tests can follow it
func seg(line int, x1, y1, x2, y2 float64) geom.Segment {
	s := geom.NewSegment(x1, y1, x2, y2)
	s.Line = line
	return s
}

// assertPartition checks that every input segment appears in exactly one trace
func assertPartition(t *testing.T, segments []geom.Segment, traces []Trace) {
	t.Helper()

	var got []int
	for _, tr := range traces {
		got = append(got, tr.Lines()...)
	}
	want := make([]int, len(segments))
	for i, s := range segments {
		want[i] = s.Line
	}

	sort.Ints(got)
	sort.Ints(want)
	if len(got) != len(want) {
		t.Fatalf("traces hold %d segments, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("traces hold lines %v, want %v", got, want)
		}
	}
}

func TestAssembleEmpty(t *testing.T) {
	traces := Assemble(nil, DefaultOptions())
	if len(traces) != 0 {
		t.Errorf("expected no traces, got %d", len(traces))
	}
}

func TestAssembleSingleSegment(t *testing.T) {
	segments := []geom.Segment{seg(1, 0, 0, 3, 4)}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	if traces[0].Index != 1 {
		t.Errorf("Index = %d, want 1", traces[0].Index)
	}
	if math.Abs(traces[0].Length()-5) > epsilon {
		t.Errorf("Length() = %v, want 5", traces[0].Length())
	}
}

func TestAssembleDisjointSegments(t *testing.T) {
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 0, 10, 10, 10),
		seg(3, 0, 20, 10, 20),
		seg(4, 100, 100, 100, 200),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != len(segments) {
		t.Fatalf("expected %d traces, got %d", len(segments), len(traces))
	}
	for i, tr := range traces {
		if len(tr.Segments) != 1 {
			t.Errorf("trace %d has %d segments, want 1", i+1, len(tr.Segments))
		}
		if tr.Index != i+1 {
			t.Errorf("trace %d has Index %d", i+1, tr.Index)
		}
		if tr.Segments[0].Line != segments[i].Line {
			t.Errorf("trace %d holds line %d, want %d (input order)", i+1, tr.Segments[0].Line, segments[i].Line)
		}
	}
	assertPartition(t, segments, traces)
}

func TestAssembleTwoSegmentExample(t *testing.T) {
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 10, 10),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	if math.Abs(traces[0].Length()-20) > epsilon {
		t.Errorf("Length() = %v, want 20", traces[0].Length())
	}
}

func TestAssembleChainIsOrderInvariant(t *testing.T) {
	// A staircase chain of six segments, each sharing one endpoint with the next
	chain := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 10, 5),
		seg(3, 10, 5, 20, 5),
		seg(4, 20, 5, 20, 15),
		seg(5, 20, 15, 23, 19),
		seg(6, 23, 19, 30, 19),
	}
	want := geom.TotalLength(chain)

	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 5, 1, 4, 3},
		{3, 5, 1, 0, 2, 4},
	}

	for _, order := range orders {
		segments := make([]geom.Segment, len(order))
		for i, idx := range order {
			segments[i] = chain[idx]
		}

		traces := Assemble(segments, DefaultOptions())

		if len(traces) != 1 {
			t.Errorf("order %v: expected 1 trace, got %d", order, len(traces))
			continue
		}
		if len(traces[0].Segments) != len(chain) {
			t.Errorf("order %v: trace has %d segments, want %d", order, len(traces[0].Segments), len(chain))
		}
		if math.Abs(traces[0].Length()-want) > 1e-9 {
			t.Errorf("order %v: Length() = %v, want %v", order, traces[0].Length(), want)
		}
		assertPartition(t, segments, traces)
	}
}

func TestAssembleReversedSegments(t *testing.T) {
	// Neighbours sharing B-B and A-A endpoints still connect
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 20, 0, 10, 0),
		seg(3, 20, 0, 30, 0),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	if math.Abs(traces[0].Length()-30) > epsilon {
		t.Errorf("Length() = %v, want 30", traces[0].Length())
	}
}

func TestAssembleClosedLoop(t *testing.T) {
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 10, 10),
		seg(3, 10, 10, 0, 10),
		seg(4, 0, 10, 0, 0),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	if math.Abs(traces[0].Length()-40) > epsilon {
		t.Errorf("Length() = %v, want 40", traces[0].Length())
	}
	assertPartition(t, segments, traces)
}

func TestAssembleTwoSegmentLoop(t *testing.T) {
	// Two segments joining the same pair of points must not oscillate
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 0, 0),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 || len(traces[0].Segments) != 2 {
		t.Fatalf("expected 1 trace of 2 segments, got %d traces", len(traces))
	}
}

func TestAssembleZeroLengthSegment(t *testing.T) {
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 10, 0),
		seg(3, 10, 0, 20, 0),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	if math.Abs(traces[0].Length()-20) > epsilon {
		t.Errorf("Length() = %v, want 20", traces[0].Length())
	}
	assertPartition(t, segments, traces)
}

func TestAssembleBranchFollowsInputOrder(t *testing.T) {
	// Y junction at (10,0): the trunk continues along the first listed branch
	segments := []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 20, 0),
		seg(3, 10, 0, 10, 10),
	}

	traces := Assemble(segments, DefaultOptions())

	if len(traces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(traces))
	}
	if got := traces[0].Lines(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("trace 1 lines = %v, want [1 2]", got)
	}
	if got := traces[1].Lines(); len(got) != 1 || got[0] != 3 {
		t.Errorf("trace 2 lines = %v, want [3]", got)
	}
	assertPartition(t, segments, traces)

	// Swapping the branches swaps the result
	segments[1], segments[2] = segments[2], segments[1]
	traces = Assemble(segments, DefaultOptions())
	if got := traces[0].Lines(); len(got) != 2 || got[1] != 3 {
		t.Errorf("swapped trace 1 lines = %v, want [1 3]", got)
	}
}

func TestAssembleGrid(t *testing.T) {
	// Endpoints that differ only by float noise from unit conversion
	segments := []geom.Segment{
		seg(1, 0, 0, 1*geom.MilsPerMillimeter, 0),
		seg(2, 39.370000000001, 0, 39.370000000001, 50),
	}

	t.Run("exact", func(t *testing.T) {
		traces := Assemble(segments, Options{Grid: 0})
		if len(traces) != 2 {
			t.Errorf("exact comparison: expected 2 traces, got %d", len(traces))
		}
	})

	t.Run("snapped", func(t *testing.T) {
		traces := Assemble(segments, DefaultOptions())
		if len(traces) != 1 {
			t.Fatalf("snapped comparison: expected 1 trace, got %d", len(traces))
		}
		// Lengths use the unsnapped coordinates
		want := segments[0].Length() + segments[1].Length()
		if math.Abs(traces[0].Length()-want) > epsilon {
			t.Errorf("Length() = %v, want %v", traces[0].Length(), want)
		}
	})
}

func TestTraceBounds(t *testing.T) {
	tr := Trace{Segments: []geom.Segment{
		seg(1, 0, 0, 10, 0),
		seg(2, 10, 0, 10, 25),
	}}

	bb := tr.Bounds()
	if bb.Width() != 10 || bb.Height() != 25 {
		t.Errorf("Bounds() = %vx%v, want 10x25", bb.Width(), bb.Height())
	}
}
