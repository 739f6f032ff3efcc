package trace

import (
	"sort"

	"github.com/OpenTraceLab/tracelen/pkg/geom"
)

// Island is a maximal set of segments joined through shared endpoints,
// regardless of how the assembler walked them.
type Island struct {
	ID       int            // 1-based, ordered by first segment in input order
	Segments []geom.Segment // Segments in input order
}

// Netlist tracks copper connectivity between endpoints using a union-find
// data structure. It is used to cross-check assembled traces: the
// assembler's greedy walk can split a branching island into several traces.
type Netlist struct {
	// Union-find data structures
	parent map[geom.Point]geom.Point // Maps snapped endpoint to parent endpoint
	rank   map[geom.Point]int        // Rank for union-by-rank optimization

	grid     float64
	segments []geom.Segment
	degree   map[geom.Point]int // Segments touching each endpoint

	// Final islands after calling Finalize()
	Islands []*Island
}

// NewNetlist builds a netlist from segments, connecting the two endpoints
// of every segment. Endpoints are snapped to grid first.
func NewNetlist(segments []geom.Segment, grid float64) *Netlist {
	nl := &Netlist{
		parent:   make(map[geom.Point]geom.Point),
		rank:     make(map[geom.Point]int),
		grid:     grid,
		segments: make([]geom.Segment, len(segments)),
		degree:   make(map[geom.Point]int),
	}

	copy(nl.segments, segments)

	for _, s := range segments {
		a := s.A.Snap(grid)
		b := s.B.Snap(grid)
		nl.add(a)
		nl.add(b)
		nl.degree[a]++
		if b != a {
			nl.degree[b]++
		}
		nl.Connect(a, b)
	}

	return nl
}

func (nl *Netlist) add(p geom.Point) {
	if _, ok := nl.parent[p]; !ok {
		nl.parent[p] = p
		nl.rank[p] = 0
	}
}

// Connect marks two endpoints as electrically connected.
func (nl *Netlist) Connect(a, b geom.Point) {
	rootA := nl.Find(a)
	rootB := nl.Find(b)

	if rootA == rootB {
		return // Already in the same island
	}

	// Union by rank
	if nl.rank[rootA] < nl.rank[rootB] {
		nl.parent[rootA] = rootB
	} else if nl.rank[rootA] > nl.rank[rootB] {
		nl.parent[rootB] = rootA
	} else {
		nl.parent[rootB] = rootA
		nl.rank[rootA]++
	}
}

// Find returns the representative endpoint of the island containing p.
// Unknown endpoints are their own representative.
func (nl *Netlist) Find(p geom.Point) geom.Point {
	key := p.Snap(nl.grid)
	if _, ok := nl.parent[key]; !ok {
		return key
	}

	// Find root
	root := key
	for nl.parent[root] != root {
		root = nl.parent[root]
	}

	// Path compression
	current := key
	for current != root {
		next := nl.parent[current]
		nl.parent[current] = root
		current = next
	}

	return root
}

// Finalize groups segments into islands.
// This should be called after all Connect() operations are complete.
func (nl *Netlist) Finalize() {
	byRoot := make(map[geom.Point]*Island)
	nl.Islands = make([]*Island, 0)

	for _, s := range nl.segments {
		root := nl.Find(s.A)
		island, ok := byRoot[root]
		if !ok {
			island = &Island{ID: len(nl.Islands) + 1}
			byRoot[root] = island
			nl.Islands = append(nl.Islands, island)
		}
		island.Segments = append(island.Segments, s)
	}
}

// IslandCount returns the number of islands.
// Only valid after calling Finalize().
func (nl *Netlist) IslandCount() int {
	return len(nl.Islands)
}

// Junctions returns snapped endpoints shared by three or more segments,
// sorted by X then Y.
func (nl *Netlist) Junctions() []geom.Point {
	var junctions []geom.Point
	for p, n := range nl.degree {
		if n >= 3 {
			junctions = append(junctions, p)
		}
	}

	sort.Slice(junctions, func(i, j int) bool {
		return junctions[i].Less(junctions[j])
	})

	return junctions
}

// SplitIslands returns the islands that were assembled into more than one
// trace. Only valid after calling Finalize().
func (nl *Netlist) SplitIslands(traces []Trace) []*Island {
	counts := make(map[geom.Point]int)
	for _, tr := range traces {
		if len(tr.Segments) == 0 {
			continue
		}
		counts[nl.Find(tr.Segments[0].A)]++
	}

	var split []*Island
	for _, island := range nl.Islands {
		if counts[nl.Find(island.Segments[0].A)] > 1 {
			split = append(split, island)
		}
	}
	return split
}
