// Package typify walks the reduced binding graph's rooted declarations and
// produces a closed, arena-addressed TypeDescriptor for every exported
// symbol. Grounded on internal/bindgraph's single-pass-per-module walker
// for structure, and on the teacher's internal/analyzer node-arena
// bookkeeping (index-addressed storage instead of pointer trees) for the
// handle-allocation discipline that makes recursive types terminate.
package typify

import (
	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/diag"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/parser"
)

const stageName = "typify"

// key identifies one (module, symbol, namespace) typification result.
// Never evicted: unlike internal/resolve's bounded LRU, dropping an entry
// here would break the cycle-termination guarantee for recursive types.
type key struct {
	Path domain.CanonPath
	Name string
	NS   domain.Namespace
}

// Typifier carries the state one Typify call threads through every
// module: the arena every descriptor is allocated into, the memo table
// keyed by symbol identity, an in-flight set guarding against import
// cycles that slipped past reduction, and per-module scopes rebuilt
// lazily on first reference.
type Typifier struct {
	cache *modcache.Cache
	arena *domain.TypeArena

	memo     map[key]domain.TypeHandle
	visiting map[key]bool
	scopes   map[domain.CanonPath]*moduleScope

	col    *diag.Collector
	strict bool
}

// Typify builds a TypedModuleGraph and its backing arena from cache and
// the already-reduced binding graph. Every export edge in reduced points
// directly at a rooted declaration (internal/reduce's job), so typify's
// only work is: for each module, for each of its resolved export keys,
// resolve the underlying declaration to a descriptor and record the
// handle. When strict is set, an unsupported type form collapsing to Any
// (spec.md §4.4 step 6) is recorded as a diagnostic instead of passing
// silently.
func Typify(cache *modcache.Cache, reduced *domain.ModuleGraph, strict bool) (*domain.TypedModuleGraph, *domain.TypeArena, *diag.Collector, error) {
	t := &Typifier{
		cache:    cache,
		arena:    domain.NewTypeArena(),
		memo:     make(map[key]domain.TypeHandle),
		visiting: make(map[key]bool),
		scopes:   make(map[domain.CanonPath]*moduleScope),
		col:      diag.New(),
		strict:   strict,
	}

	tg := domain.NewTypedModuleGraph(cache.Root)

	for _, path := range cache.Order {
		node, ok := reduced.Nodes[path]
		if !ok {
			continue
		}
		tn := tg.EnsureNode(path)

		for _, exportKey := range node.RootedExportValueOrder {
			h, err := t.typifyValue(path, exportKey)
			if err != nil {
				return tg, t.arena, t.col, err
			}
			tn.SetValue(exportKey, h)
		}
		for _, exportKey := range node.RootedExportTypeOrder {
			h, err := t.typifyType(path, exportKey)
			if err != nil {
				return tg, t.arena, t.col, err
			}
			tn.SetType(exportKey, h)
		}
		for _, edge := range reduced.ExportEdges[path] {
			switch edge.Kind {
			case domain.ExportNamedValue:
				h, err := t.typifyValue(edge.Source, edge.SrcKey)
				if err != nil {
					return tg, t.arena, t.col, err
				}
				tn.SetValue(edge.ExportKey, h)
			case domain.ExportNamedType:
				h, err := t.typifyType(edge.Source, edge.SrcKey)
				if err != nil {
					return tg, t.arena, t.col, err
				}
				tn.SetType(edge.ExportKey, h)
			}
		}
	}

	return tg, t.arena, t.col, nil
}

func (t *Typifier) anyHandle() domain.TypeHandle {
	return t.arena.Primitive(domain.PrimAny)
}

// typifyValue resolves the value-namespace entry name in path's scope to
// a TypeHandle, memoizing on (path, name, ValueNamespace) so re-exports of
// the same rooted declaration share one descriptor.
func (t *Typifier) typifyValue(path domain.CanonPath, name string) (domain.TypeHandle, error) {
	k := key{Path: path, Name: name, NS: domain.ValueNamespace}
	if h, ok := t.memo[k]; ok {
		return h, nil
	}
	if t.visiting[k] {
		t.col.Add(domain.NewDanglingExportError(stageName, path, name))
		return t.anyHandle(), nil
	}
	t.visiting[k] = true
	defer delete(t.visiting, k)

	entry, ok := t.scopeFor(path).values[name]
	if !ok {
		t.col.Add(domain.NewDanglingExportError(stageName, path, name))
		return t.anyHandle(), nil
	}
	if !entry.rooted {
		h, err := t.typifyValue(entry.source, entry.srcKey)
		if err != nil {
			return domain.InvalidHandle, err
		}
		t.memo[k] = h
		return h, nil
	}

	h := t.arena.Alloc()
	t.memo[k] = h
	desc, err := t.buildValueDescriptor(path, entry.node)
	if err != nil {
		return domain.InvalidHandle, err
	}
	t.arena.Set(h, desc)
	return h, nil
}

// typifyType is typifyValue's type-namespace counterpart.
func (t *Typifier) typifyType(path domain.CanonPath, name string) (domain.TypeHandle, error) {
	k := key{Path: path, Name: name, NS: domain.TypeNamespace}
	if h, ok := t.memo[k]; ok {
		return h, nil
	}
	if t.visiting[k] {
		t.col.Add(domain.NewDanglingExportError(stageName, path, name))
		return t.anyHandle(), nil
	}
	t.visiting[k] = true
	defer delete(t.visiting, k)

	entry, ok := t.scopeFor(path).types[name]
	if !ok {
		t.col.Add(domain.NewDanglingExportError(stageName, path, name))
		return t.anyHandle(), nil
	}
	if !entry.rooted {
		h, err := t.typifyType(entry.source, entry.srcKey)
		if err != nil {
			return domain.InvalidHandle, err
		}
		t.memo[k] = h
		return h, nil
	}

	h := t.arena.Alloc()
	t.memo[k] = h
	desc, err := t.buildTypeDescriptor(path, entry.node)
	if err != nil {
		return domain.InvalidHandle, err
	}
	t.arena.Set(h, desc)
	return h, nil
}

// convertType converts a type-expression node reached from a param,
// return, field or array-element position into a handle. A bare
// identifier reference shares its target's handle directly (typifyType);
// every other shape allocates a fresh descriptor.
func (t *Typifier) convertType(path domain.CanonPath, node *parser.Node) (domain.TypeHandle, error) {
	if node == nil {
		return t.anyHandle(), nil
	}

	switch node.Type {
	case parser.NodeTypeReference:
		return t.typifyType(path, node.Name)

	case parser.NodeTypePredefined:
		return t.arena.Primitive(predefinedKind(node.Name)), nil

	case parser.NodeTypeArray:
		rank := 0
		cur := node
		for cur != nil && cur.Type == parser.NodeTypeArray {
			rank++
			cur = cur.ElemType
		}
		elem, err := t.convertType(path, cur)
		if err != nil {
			return domain.InvalidHandle, err
		}
		return t.arena.Push(domain.TypeDescriptor{Kind: domain.KindArray, ArrayElem: elem, ArrayRank: rank}), nil

	case parser.NodeTypeObject:
		fields, order, err := t.collectFields(path, node.Body, nil, false)
		if err != nil {
			return domain.InvalidHandle, err
		}
		return t.arena.Push(domain.TypeDescriptor{
			Kind:                domain.KindInterface,
			InterfaceOrigin:     path,
			InterfaceFields:     fields,
			InterfaceFieldOrder: order,
		}), nil

	default:
		// Generics, unions, intersections, tuples, bare function-type
		// literals outside parameter position, conditional/mapped/template
		// types, typeof queries: spec.md §4.4 step 6, collapse to Any, with
		// a diagnostic when strictness is enabled.
		if t.strict {
			t.col.Add(domain.NewUnsupportedFeatureError(stageName, path, spanOf(node), domain.FeatureGenericOrUnion))
		}
		return t.anyHandle(), nil
	}
}

var predefinedKinds = map[string]domain.PrimitiveKind{
	"boolean": domain.PrimBoolean,
	"number":  domain.PrimNumber,
	"string":  domain.PrimString,
	"void":    domain.PrimVoid,
	"object":  domain.PrimObject,
	"any":     domain.PrimAny,
	"never":   domain.PrimNever,
}

// predefinedKind maps a keyword type's literal text to a PrimitiveKind.
// Keywords outside the closed PrimitiveKind set (symbol, unknown,
// undefined, null, bigint) collapse to Any.
func predefinedKind(name string) domain.PrimitiveKind {
	if k, ok := predefinedKinds[name]; ok {
		return k
	}
	return domain.PrimAny
}
