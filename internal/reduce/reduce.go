// Package reduce eliminates `All` re-export edges and resolves every
// `Named` edge to a specific namespace, so every edge surviving
// reduction points directly at a rooted declaration (spec.md §4.3).
package reduce

import (
	"sort"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/diag"
	"github.com/plank-ts/plank/internal/parser"
)

const stageName = "reduce"

// pairKey identifies one export key within one namespace.
type pairKey struct {
	name string
	ns   domain.Namespace
}

// ref is the ultimate rooted location an export key resolves to: module
// equal to the declaring module, key equal to the name it is rooted
// under there.
type ref struct {
	module domain.CanonPath
	key    string
}

// reducer holds the memoization and cycle-guard state for one Reduce
// call. Grounded on the teacher's CircularDependencyDetector's
// instance-scoped Tarjan state (internal/analyzer/circular_detector.go):
// one reducer is built per Reduce invocation and discarded afterward,
// never a package-level singleton (spec.md §5).
type reducer struct {
	g *domain.ModuleGraph
	c *diag.Collector

	inProgress map[domain.CanonPath]bool
	surfaces   map[domain.CanonPath]map[pairKey]ref
	orders     map[domain.CanonPath][]pairKey
	edges      map[domain.CanonPath][]domain.ExportEdge
}

// Reduce computes the fully resolved binding graph: every surviving
// export edge is NamedType or NamedValue, and every rooted set is
// unchanged from g.
func Reduce(g *domain.ModuleGraph) (*domain.ModuleGraph, *diag.Collector, error) {
	col := diag.New()
	r := &reducer{
		g:          g,
		c:          col,
		inProgress: make(map[domain.CanonPath]bool),
		surfaces:   make(map[domain.CanonPath]map[pairKey]ref),
		orders:     make(map[domain.CanonPath][]pairKey),
		edges:      make(map[domain.CanonPath][]domain.ExportEdge),
	}

	paths := make([]domain.CanonPath, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, p := range paths {
		r.surface(p)
	}

	out := domain.NewModuleGraph()
	for p, node := range g.Nodes {
		out.Nodes[p] = node
	}
	for p := range g.Nodes {
		out.ExportEdges[p] = r.edges[p]
		out.ImportEdges[p] = g.ImportEdges[p]
	}

	return out, col, nil
}

// surface computes, once per module (memoized), the complete externally
// visible (key, namespace) -> ultimate-rooted-location mapping for path,
// combining its rooted declarations with its resolved Named/All edges,
// and as a side effect records path's reduced ExportEdges. A module
// currently being resolved higher up the call stack (a re-export cycle)
// contributes nothing to its own resolution (spec.md §4.3 step 3, I4):
// the empty result is not memoized, so a later, unrelated query for the
// same module still resolves normally.
func (r *reducer) surface(path domain.CanonPath) (map[pairKey]ref, []pairKey) {
	if res, ok := r.surfaces[path]; ok {
		return res, r.orders[path]
	}
	if r.inProgress[path] {
		return map[pairKey]ref{}, nil
	}
	r.inProgress[path] = true
	defer delete(r.inProgress, path)

	result := map[pairKey]ref{}
	var order []pairKey
	var outputEdges []domain.ExportEdge

	claim := func(name string, ns domain.Namespace, target ref) bool {
		pk := pairKey{name, ns}
		if _, exists := result[pk]; exists {
			return false
		}
		result[pk] = target
		order = append(order, pk)
		return true
	}

	if node, ok := r.g.Nodes[path]; ok {
		for _, k := range node.RootedExportValueOrder {
			claim(k, domain.ValueNamespace, ref{path, k})
		}
		for _, k := range node.RootedExportTypeOrder {
			claim(k, domain.TypeNamespace, ref{path, k})
		}
	}

	// reservedByNamed holds every pairKey an explicit Named/NamedType/
	// NamedValue edge claims, gathered up front regardless of its
	// position among path's export edges. Per spec.md §4.3 step 1, a
	// named re-export shadows a star re-export unconditionally, not just
	// when the named edge happens to be processed first in source order
	// -- without this pre-scan, an ExportAll edge encountered earlier in
	// r.g.ExportEdges[path] would claim the key before the later-seen
	// Named edge gets a chance to.
	reservedByNamed := map[pairKey]bool{}
	for _, edge := range r.g.ExportEdges[path] {
		switch edge.Kind {
		case domain.ExportNamedType:
			reservedByNamed[pairKey{edge.ExportKey, domain.TypeNamespace}] = true
		case domain.ExportNamedValue:
			reservedByNamed[pairKey{edge.ExportKey, domain.ValueNamespace}] = true
		case domain.ExportNamed:
			reservedByNamed[pairKey{edge.ExportKey, domain.ValueNamespace}] = true
			reservedByNamed[pairKey{edge.ExportKey, domain.TypeNamespace}] = true
		}
	}

	// resolveNamed reports whether edge's key is available in ns, either
	// already claimed by path itself or resolved through edge.Source.
	resolveNamed := func(edge domain.ExportEdge, ns domain.Namespace) bool {
		pk := pairKey{edge.ExportKey, ns}
		if _, exists := result[pk]; exists {
			return true
		}
		srcResult, _ := r.surface(edge.Source)
		target, ok := srcResult[pairKey{edge.SrcKey, ns}]
		if !ok {
			return false
		}
		claim(edge.ExportKey, ns, target)
		outputEdges = append(outputEdges, namedEdge(ns, target, edge.ExportKey, edge.Span))
		return true
	}
	dangling := func(edge domain.ExportEdge) {
		r.c.Add(domain.NewDanglingExportError(stageName, path, edge.ExportKey))
	}

	for _, edge := range r.g.ExportEdges[path] {
		switch edge.Kind {
		case domain.ExportNamedType:
			if !resolveNamed(edge, domain.TypeNamespace) {
				dangling(edge)
			}
		case domain.ExportNamedValue:
			if !resolveNamed(edge, domain.ValueNamespace) {
				dangling(edge)
			}
		case domain.ExportNamed:
			// Each namespace resolves independently; the edge dangles only
			// when neither does.
			inValue := resolveNamed(edge, domain.ValueNamespace)
			inType := resolveNamed(edge, domain.TypeNamespace)
			if !inValue && !inType {
				dangling(edge)
			}
		case domain.ExportAll:
			srcResult, srcOrder := r.surface(edge.Source)
			for _, pk := range srcOrder {
				if reservedByNamed[pk] {
					continue
				}
				target := srcResult[pk]
				if !claim(pk.name, pk.ns, target) {
					continue
				}
				outputEdges = append(outputEdges, namedEdge(pk.ns, target, pk.name, edge.Span))
			}
		}
	}

	r.surfaces[path] = result
	r.orders[path] = order
	r.edges[path] = outputEdges
	return result, order
}

func namedEdge(ns domain.Namespace, target ref, exportKey string, span parser.Location) domain.ExportEdge {
	kind := domain.ExportNamedValue
	if ns == domain.TypeNamespace {
		kind = domain.ExportNamedType
	}
	return domain.ExportEdge{Kind: kind, Source: target.module, SrcKey: target.key, ExportKey: exportKey, Span: span}
}
