package typify

import (
	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/parser"
)

// scopeEntry is typify's own per-symbol scope record: either a pointer to
// the declaring AST node (rooted) or the defining module's canonical path
// and export key (imported). Grounded on internal/bindgraph's ItemState,
// but typify rebuilds scope independently rather than consuming
// bindgraph's (ephemeral, export-edge-only) scopes directly: a type
// annotation may reference a declaration that was never exported from its
// own module (spec.md §3: "every module maintains two such scopes",
// unconditionally, not just for its export surface), and typify needs the
// declaration's AST node to build a descriptor from, not just a
// rooted/imported flag.
type scopeEntry struct {
	rooted bool
	node   *parser.Node

	source domain.CanonPath
	srcKey string
}

type moduleScope struct {
	values map[string]scopeEntry
	types  map[string]scopeEntry
}

func newModuleScope() *moduleScope {
	return &moduleScope{values: make(map[string]scopeEntry), types: make(map[string]scopeEntry)}
}

func insertScope(m map[string]scopeEntry, name string, e scopeEntry) {
	if name == "" {
		return
	}
	if _, exists := m[name]; exists {
		return
	}
	m[name] = e
}

// scopeFor returns (building and memoizing on first use) the value/type
// scopes for path, derived from its cached AST and resolved dependency
// map. Unlike internal/bindgraph's walker, this never rejects a
// declaration: the module-level unsupported-feature checks already ran
// during modcache/bindgraph construction. Member-level checks (call and
// construct signatures) happen later, in collectFields.
func (t *Typifier) scopeFor(path domain.CanonPath) *moduleScope {
	if s, ok := t.scopes[path]; ok {
		return s
	}
	s := newModuleScope()
	t.scopes[path] = s

	data, ok := t.cache.Modules[path]
	if !ok {
		return s
	}
	for _, item := range data.AST.Children {
		walkScopeItem(s, data, item)
	}
	return s
}

func walkScopeItem(s *moduleScope, data *domain.ModuleData, item *parser.Node) {
	switch item.Type {
	case parser.NodeImportDeclaration:
		walkScopeImport(s, data, item)
	case parser.NodeExportNamedDeclaration:
		if item.Declaration != nil {
			rootDeclaration(s, item.Declaration)
		}
	default:
		if item.IsDeclaration() {
			rootDeclaration(s, item)
		}
	}
}

func walkScopeImport(s *moduleScope, data *domain.ModuleData, item *parser.Node) {
	if item.Source == nil {
		return
	}
	source, ok := data.Dependencies[item.Source.StringValue()]
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
		entry := scopeEntry{source: source, srcKey: srcKey}
		if item.IsTypeOnly || spec.IsTypeOnly {
			insertScope(s.types, local, entry)
		} else {
			insertScope(s.values, local, entry)
			insertScope(s.types, local, entry)
		}
	}
}

// rootDeclaration classifies a top-level declaration into the value
// and/or type scope, regardless of whether it was written with an
// `export` keyword: typification needs to resolve references to
// module-private declarations too (spec.md §4.4 step 1: "Look up N in
// the current module's type scope").
func rootDeclaration(s *moduleScope, decl *parser.Node) {
	switch decl.Type {
	case parser.NodeClassDeclaration:
		insertScope(s.values, decl.Name, scopeEntry{rooted: true, node: decl})
		insertScope(s.types, decl.Name, scopeEntry{rooted: true, node: decl})

	case parser.NodeFunctionDeclaration:
		insertScope(s.values, decl.Name, scopeEntry{rooted: true, node: decl})

	case parser.NodeVariableDeclaration:
		for _, d := range decl.Declarations {
			if d.Name == "" {
				continue
			}
			insertScope(s.values, d.Name, scopeEntry{rooted: true, node: d})
		}

	case parser.NodeInterfaceDeclaration, parser.NodeTypeAliasDeclaration, parser.NodeEnumDeclaration:
		insertScope(s.types, decl.Name, scopeEntry{rooted: true, node: decl})
	}
}
