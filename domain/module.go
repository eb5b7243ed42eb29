package domain

import "github.com/plank-ts/plank/internal/parser"

// Namespace is the TypeScript value-or-type classification of a binding.
// The two namespaces are independent: the same identifier may be rooted
// (or imported) under one, the other, or both.
type Namespace int

const (
	ValueNamespace Namespace = iota
	TypeNamespace
)

func (n Namespace) String() string {
	if n == TypeNamespace {
		return "type"
	}
	return "value"
}

// ModuleData is an immutable module-cache entry: a parsed module plus its
// resolved import-specifier map. Never mutated after construction.
type ModuleData struct {
	Path CanonPath

	// AST is the parsed module body (an ordered sequence of top-level
	// items), built by internal/parser.
	AST *parser.Node

	// Dependencies maps the literal import-specifier string as written in
	// the source to the canonical path of the resolved dependency.
	Dependencies map[string]CanonPath
}

// ItemStateKind discriminates domain.ItemState.
type ItemStateKind int

const (
	// ItemRooted means the symbol is declared locally in this module.
	ItemRooted ItemStateKind = iota
	// ItemImported means the symbol was imported from another module.
	ItemImported
)

// ItemState is a per-symbol scope entry: either Rooted, or Imported with
// the defining module, its export key, and this module's local alias.
type ItemState struct {
	Kind ItemStateKind

	// Source is the canonical path of the defining module (Imported only).
	Source CanonPath
	// SrcKey is the name under which Source exports the symbol (Imported only).
	SrcKey string
	// AsKey is the local alias in the importing module (Imported only).
	AsKey string
}

// Rooted constructs an ItemState for a locally declared symbol.
func Rooted() ItemState {
	return ItemState{Kind: ItemRooted}
}

// Imported constructs an ItemState for an imported symbol.
func Imported(source CanonPath, srcKey, asKey string) ItemState {
	return ItemState{Kind: ItemImported, Source: source, SrcKey: srcKey, AsKey: asKey}
}

// ModuleNode is a vertex in the binding graph: the module's canonical path
// plus the export keys it declares locally (as opposed to re-exporting).
type ModuleNode struct {
	Path CanonPath

	// RootedExportTypes/RootedExportValues record which export keys this
	// module declares itself. Order is tracked separately
	// (RootedExportTypeOrder/RootedExportValueOrder) since Go maps do not
	// preserve insertion order and I5 requires it.
	RootedExportTypes      map[string]bool
	RootedExportValues     map[string]bool
	RootedExportTypeOrder  []string
	RootedExportValueOrder []string
}

// NewModuleNode creates an empty ModuleNode for path.
func NewModuleNode(path CanonPath) *ModuleNode {
	return &ModuleNode{
		Path:               path,
		RootedExportTypes:  make(map[string]bool),
		RootedExportValues: make(map[string]bool),
	}
}

// AddRootedType records key as a locally declared type export, preserving
// first-insertion order and the first-declaration-wins scope policy.
func (n *ModuleNode) AddRootedType(key string) {
	if n.RootedExportTypes[key] {
		return
	}
	n.RootedExportTypes[key] = true
	n.RootedExportTypeOrder = append(n.RootedExportTypeOrder, key)
}

// AddRootedValue records key as a locally declared value export.
func (n *ModuleNode) AddRootedValue(key string) {
	if n.RootedExportValues[key] {
		return
	}
	n.RootedExportValues[key] = true
	n.RootedExportValueOrder = append(n.RootedExportValueOrder, key)
}

// ExportEdgeKind discriminates domain.ExportEdge.
type ExportEdgeKind int

const (
	ExportNamedType ExportEdgeKind = iota
	ExportNamedValue
	// ExportNamed is a re-export whose namespace is undetermined at
	// graph-init time (graph-init cannot see into the source module yet).
	ExportNamed
	// ExportAll is `export * from "m"`; eliminated during reduction.
	ExportAll
)

func (k ExportEdgeKind) String() string {
	switch k {
	case ExportNamedType:
		return "named_type"
	case ExportNamedValue:
		return "named_value"
	case ExportNamed:
		return "named"
	case ExportAll:
		return "all"
	default:
		return "unknown"
	}
}

// ExportEdge is one ordered outgoing re-export relation of a module.
type ExportEdge struct {
	Kind ExportEdgeKind

	Source CanonPath
	// SrcKey is the name as published by Source (unset for ExportAll).
	SrcKey string
	// ExportKey is the name as seen by consumers of the exporting module
	// (unset for ExportAll).
	ExportKey string

	Span parser.Location
}

// ImportEdgeKind discriminates domain.ImportEdge. Mirrors ExportEdgeKind
// minus the All variant: imports are retained for diagnostics only,
// typification consults scope entries rather than import edges.
type ImportEdgeKind int

const (
	ImportNamedType ImportEdgeKind = iota
	ImportNamedValue
	ImportNamed
)

// ImportEdge is one ordered incoming import relation of a module.
type ImportEdge struct {
	Kind   ImportEdgeKind
	Source CanonPath
	SrcKey string
	Span   parser.Location
}

// ModuleGraph is the binding graph: one ModuleNode plus ordered import and
// export edge lists per module. Produced by internal/bindgraph, consumed
// (and replaced) by internal/reduce, then by internal/typify.
type ModuleGraph struct {
	Nodes       map[CanonPath]*ModuleNode
	ExportEdges map[CanonPath][]ExportEdge
	ImportEdges map[CanonPath][]ImportEdge
}

// NewModuleGraph creates an empty ModuleGraph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		Nodes:       make(map[CanonPath]*ModuleNode),
		ExportEdges: make(map[CanonPath][]ExportEdge),
		ImportEdges: make(map[CanonPath][]ImportEdge),
	}
}

// EnsureNode returns the ModuleNode for path, creating it if absent.
func (g *ModuleGraph) EnsureNode(path CanonPath) *ModuleNode {
	if n, ok := g.Nodes[path]; ok {
		return n
	}
	n := NewModuleNode(path)
	g.Nodes[path] = n
	return n
}
