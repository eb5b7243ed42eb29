package reduce

import (
	"sort"

	"github.com/plank-ts/plank/domain"
)

// ReExportCycleDetector finds strongly connected components in a
// module-level re-export graph, using Tarjan's algorithm. Grounded on
// the teacher's CircularDependencyDetector
// (internal/analyzer/circular_detector.go), generalized from a JS-file
// import graph keyed by string node IDs to a re-export graph keyed by
// domain.CanonPath: the Tarjan bookkeeping (index/lowlink/stack/onStack)
// is unchanged, only the node identifier type and edge source differ.
// Consumed by `plank graph` to flag modules sitting in a re-export cycle
// (spec.md §6); reduce.Reduce itself stays cycle-safe via the
// recursion-stack guard in surface, independently of this detector.
type ReExportCycleDetector struct {
	index    int
	stack    []domain.CanonPath
	indices  map[domain.CanonPath]int
	lowlinks map[domain.CanonPath]int
	onStack  map[domain.CanonPath]bool
	sccs     [][]domain.CanonPath
}

// NewReExportCycleDetector creates a detector ready for one Detect call.
func NewReExportCycleDetector() *ReExportCycleDetector {
	return &ReExportCycleDetector{}
}

// ReExportGraph collapses a module graph's Named and All export edges
// into plain module -> module arcs, discarding per-key detail: all that
// matters for cycle detection is which modules re-export from which.
func ReExportGraph(g *domain.ModuleGraph) map[domain.CanonPath][]domain.CanonPath {
	out := make(map[domain.CanonPath][]domain.CanonPath, len(g.Nodes))
	for path := range g.Nodes {
		out[path] = nil
	}
	for path, edges := range g.ExportEdges {
		seen := make(map[domain.CanonPath]bool)
		for _, edge := range edges {
			if edge.Source == "" || seen[edge.Source] {
				continue
			}
			seen[edge.Source] = true
			out[path] = append(out[path], edge.Source)
		}
	}
	return out
}

// Detect returns every strongly connected component of size greater
// than one: the modules participating in a re-export cycle. A module
// that only re-exports itself trivially (no edge at all) never appears.
func (d *ReExportCycleDetector) Detect(graph map[domain.CanonPath][]domain.CanonPath) [][]domain.CanonPath {
	d.index = 0
	d.stack = nil
	d.indices = make(map[domain.CanonPath]int)
	d.lowlinks = make(map[domain.CanonPath]int)
	d.onStack = make(map[domain.CanonPath]bool)
	d.sccs = nil

	nodes := make([]domain.CanonPath, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, n := range nodes {
		if _, visited := d.indices[n]; !visited {
			d.strongconnect(n, graph)
		}
	}

	var cycles [][]domain.CanonPath
	for _, scc := range d.sccs {
		if len(scc) > 1 {
			sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
			cycles = append(cycles, scc)
		}
	}
	return cycles
}

func (d *ReExportCycleDetector) strongconnect(v domain.CanonPath, graph map[domain.CanonPath][]domain.CanonPath) {
	d.indices[v] = d.index
	d.lowlinks[v] = d.index
	d.index++
	d.stack = append(d.stack, v)
	d.onStack[v] = true

	for _, w := range graph[v] {
		if _, ok := graph[w]; !ok {
			continue
		}
		if _, visited := d.indices[w]; !visited {
			d.strongconnect(w, graph)
			if d.lowlinks[w] < d.lowlinks[v] {
				d.lowlinks[v] = d.lowlinks[w]
			}
		} else if d.onStack[w] {
			if d.indices[w] < d.lowlinks[v] {
				d.lowlinks[v] = d.indices[w]
			}
		}
	}

	if d.lowlinks[v] == d.indices[v] {
		var scc []domain.CanonPath
		for {
			n := len(d.stack) - 1
			w := d.stack[n]
			d.stack = d.stack[:n]
			d.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		d.sccs = append(d.sccs, scc)
	}
}
