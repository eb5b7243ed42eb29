// Package bindgraph performs a single ordered walk of every cached
// module's top-level items, populating the value/type scopes and the
// ordered import/export edge lists that internal/reduce consumes.
// Grounded on the teacher's module_analyzer.go (AnalyzeFile's
// extractImports/extractExports single-pass walker), generalized from
// "collect JS import/export facts for reporting" to "collect TS scope
// entries and binding-graph edges for reduction."
package bindgraph

import (
	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/diag"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/parser"
)

const stageName = "bindgraph"

// scope holds the two independent per-module namespaces (spec.md §4.2 /
// Design Note "Two-namespace scoping"). Built fresh per module and
// discarded once that module's walk completes; Init's only durable
// output is the ModuleGraph's edges and rooted sets.
type scope struct {
	values map[string]domain.ItemState
	types  map[string]domain.ItemState
}

func newScope() *scope {
	return &scope{values: make(map[string]domain.ItemState), types: make(map[string]domain.ItemState)}
}

// insert records name -> state in ns if name is not already present
// (first-declaration-wins, spec.md §4.2 "Scope collision policy").
func (s *scope) insert(ns domain.Namespace, name string, state domain.ItemState) {
	m := s.values
	if ns == domain.TypeNamespace {
		m = s.types
	}
	if _, exists := m[name]; exists {
		return
	}
	m[name] = state
}

func (s *scope) lookup(ns domain.Namespace, name string) (domain.ItemState, bool) {
	m := s.values
	if ns == domain.TypeNamespace {
		m = s.types
	}
	st, ok := m[name]
	return st, ok
}

// walker carries the per-module state a single top-level walk needs: the
// module being walked, its resolved dependency map, the scope being
// built, and the shared graph/collector every module's walk contributes
// to. One walker is constructed per module; nothing here is shared
// across goroutines or retained past Init.
type walker struct {
	path  domain.CanonPath
	deps  map[string]domain.CanonPath
	node  *domain.ModuleNode
	scope *scope
	graph *domain.ModuleGraph
	col   *diag.Collector
}

// Init builds a domain.ModuleGraph from every module in cache.
func Init(cache *modcache.Cache) (*domain.ModuleGraph, *diag.Collector, error) {
	col := diag.New()
	graph := domain.NewModuleGraph()

	for _, path := range cache.Order {
		data := cache.Modules[path]
		w := &walker{
			path:  path,
			deps:  data.Dependencies,
			node:  graph.EnsureNode(path),
			scope: newScope(),
			graph: graph,
			col:   col,
		}
		for _, item := range data.AST.Children {
			if err := w.walkItem(item); err != nil {
				return graph, col, err
			}
		}
	}

	return graph, col, nil
}

func (w *walker) walkItem(item *parser.Node) error {
	switch item.Type {
	case parser.NodeImportDeclaration:
		w.walkImport(item)

	case parser.NodeExportNamedDeclaration:
		switch {
		case item.Source != nil:
			w.walkExportFrom(item)
		case item.Declaration != nil:
			return w.walkLocalDeclaration(item.Declaration, true)
		default:
			w.walkExportSpecifiers(item)
		}

	case parser.NodeExportAllDeclaration:
		if item.Source == nil {
			return nil
		}
		source, ok := w.resolveSource(item.Source)
		if !ok {
			return nil
		}
		edge := domain.ExportEdge{Kind: domain.ExportAll, Source: source, Span: item.Location}
		w.graph.ExportEdges[w.path] = append(w.graph.ExportEdges[w.path], edge)

	default:
		if item.IsDeclaration() {
			// A bare top-level declaration with no `export` keyword is
			// module-local: it still populates the scope (so a sibling
			// export's type annotation can reference it) but must not
			// surface as a rooted export itself.
			return w.walkLocalDeclaration(item, false)
		}
	}
	return nil
}

// walkImport handles one `import ... from "m"` statement: each named
// specifier becomes an Imported scope entry in both namespaces (spec.md
// §4.2: "the disambiguation is deferred"); `import type { X }` restricts
// the entry to the type namespace alone. Default/namespace specifiers
// were already rejected during module-cache construction (§4.1), so they
// never reach here.
func (w *walker) walkImport(item *parser.Node) {
	if item.Source == nil {
		return
	}
	source, ok := w.resolveSource(item.Source)
	if !ok {
		return
	}

	for _, spec := range item.Specifiers {
		if spec.Type != parser.NodeImportSpecifier {
			continue
		}
		srcKey := spec.Name
		if spec.Imported != nil {
			srcKey = spec.Imported.Name
		}
		local := spec.Name
		if spec.Local != nil {
			local = spec.Local.Name
		}

		state := domain.Imported(source, srcKey, local)
		kind := domain.ImportNamed
		if item.IsTypeOnly || spec.IsTypeOnly {
			w.scope.insert(domain.TypeNamespace, local, state)
			kind = domain.ImportNamedType
		} else {
			w.scope.insert(domain.ValueNamespace, local, state)
			w.scope.insert(domain.TypeNamespace, local, state)
		}
		edge := domain.ImportEdge{Kind: kind, Source: source, SrcKey: srcKey, Span: item.Location}
		w.graph.ImportEdges[w.path] = append(w.graph.ImportEdges[w.path], edge)
	}
}

// walkExportFrom handles `export { X } from "m"` (combined Named, spec.md
// §4.2) where the source module's namespace for each key is not yet
// knowable.
func (w *walker) walkExportFrom(item *parser.Node) {
	source, ok := w.resolveSource(item.Source)
	if !ok {
		return
	}
	for _, spec := range item.Specifiers {
		// extractExportClause puts the source-side (pre-`as`) name in
		// spec.Local and the consumer-facing alias in spec.Name; a bare
		// specifier with no `as` sets both to the same identifier.
		srcKey := spec.Name
		if spec.Local != nil {
			srcKey = spec.Local.Name
		}
		exportKey := spec.Name
		edge := domain.ExportEdge{Kind: domain.ExportNamed, Source: source, SrcKey: srcKey, ExportKey: exportKey, Span: item.Location}
		w.graph.ExportEdges[w.path] = append(w.graph.ExportEdges[w.path], edge)
	}
}

// walkExportSpecifiers handles `export { X, Y as Z };` with no `from`
// clause: each specifier is looked up in both scopes independently,
// producing up to two edges/rooted insertions (spec.md §4.2).
func (w *walker) walkExportSpecifiers(item *parser.Node) {
	for _, spec := range item.Specifiers {
		original := spec.Name
		if spec.Local != nil {
			original = spec.Local.Name
		}
		alias := spec.Name

		if st, ok := w.scope.lookup(domain.ValueNamespace, original); ok {
			w.applyExportFromScope(st, alias, domain.ValueNamespace, item.Location)
		}
		if st, ok := w.scope.lookup(domain.TypeNamespace, original); ok {
			w.applyExportFromScope(st, alias, domain.TypeNamespace, item.Location)
		}
	}
}

func (w *walker) applyExportFromScope(st domain.ItemState, alias string, ns domain.Namespace, loc parser.Location) {
	switch st.Kind {
	case domain.ItemRooted:
		if ns == domain.TypeNamespace {
			w.node.AddRootedType(alias)
		} else {
			w.node.AddRootedValue(alias)
		}
	case domain.ItemImported:
		kind := domain.ExportNamedValue
		if ns == domain.TypeNamespace {
			kind = domain.ExportNamedType
		}
		edge := domain.ExportEdge{Kind: kind, Source: st.Source, SrcKey: st.SrcKey, ExportKey: alias, Span: loc}
		w.graph.ExportEdges[w.path] = append(w.graph.ExportEdges[w.path], edge)
	}
}

// walkLocalDeclaration classifies and roots a non-import, non-export-from
// top-level declaration (spec.md §4.2 "Local declarations"). exported is
// true when decl is the inner declaration of an `export` wrapper, in
// which case its names are additionally marked as rooted exports,
// matching "process the inner declaration ... and additionally mark its
// introduced symbols as rooted exports." A bare (non-exported) top-level
// declaration still populates the scope, since a sibling export's type
// annotation may reference it, but contributes nothing to the module's
// rooted-export sets.
func (w *walker) walkLocalDeclaration(decl *parser.Node, exported bool) error {
	switch decl.Type {
	case parser.NodeClassDeclaration:
		w.scope.insert(domain.ValueNamespace, decl.Name, domain.Rooted())
		w.scope.insert(domain.TypeNamespace, decl.Name, domain.Rooted())
		if exported {
			w.node.AddRootedValue(decl.Name)
			w.node.AddRootedType(decl.Name)
		}

	case parser.NodeFunctionDeclaration:
		w.scope.insert(domain.ValueNamespace, decl.Name, domain.Rooted())
		if exported {
			w.node.AddRootedValue(decl.Name)
		}

	case parser.NodeVariableDeclaration:
		for _, d := range decl.Declarations {
			if d.Name == "" {
				err := domain.NewUnsupportedFeatureError(stageName, w.path, spanOf(d), domain.FeatureDestructuredVar)
				w.col.Add(err)
				return err
			}
			w.scope.insert(domain.ValueNamespace, d.Name, domain.Rooted())
			if exported {
				w.node.AddRootedValue(d.Name)
			}
		}

	case parser.NodeInterfaceDeclaration, parser.NodeTypeAliasDeclaration, parser.NodeEnumDeclaration:
		w.scope.insert(domain.TypeNamespace, decl.Name, domain.Rooted())
		if exported {
			w.node.AddRootedType(decl.Name)
		}

	case parser.NodeNamespaceDeclaration:
		err := domain.NewUnsupportedFeatureError(stageName, w.path, spanOf(decl), domain.FeatureTsNamespace)
		w.col.Add(err)
		return err
	}
	return nil
}

// resolveSource looks the statement's source specifier up in the owning
// module's already-resolved dependency map (built during §4.1); every
// specifier reaching bindgraph was already validated to resolve there, so
// a miss here would indicate a modcache/bindgraph desync rather than a
// user-facing error, and is treated as "no edge" rather than panicking.
func (w *walker) resolveSource(sourceNode *parser.Node) (domain.CanonPath, bool) {
	canon, ok := w.deps[sourceNode.StringValue()]
	return canon, ok
}

func spanOf(n *parser.Node) *domain.Span {
	if n == nil {
		return nil
	}
	return &domain.Span{
		StartLine: n.Location.StartLine,
		StartCol:  n.Location.StartCol,
		EndLine:   n.Location.EndLine,
		EndCol:    n.Location.EndCol,
	}
}
