package typify

import (
	"strings"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/parser"
)

// buildValueDescriptor builds the TypeDescriptor for a rooted value-scope
// declaration node (spec.md §4.4's "per rooted value export" rules).
func (t *Typifier) buildValueDescriptor(path domain.CanonPath, decl *parser.Node) (domain.TypeDescriptor, error) {
	switch decl.Type {
	case parser.NodeFunctionDeclaration:
		return t.buildFnDescriptor(path, decl.Params, decl.ReturnType)

	case parser.NodeVariableDeclarator:
		if decl.TypeAnnotation == nil {
			return domain.TypeDescriptor{Kind: domain.KindPrimitive, Primitive: domain.PrimAny}, nil
		}
		h, err := t.convertType(path, decl.TypeAnnotation)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		return t.arena.Get(h), nil

	case parser.NodeClassDeclaration:
		ctor := findConstructor(decl.Body)
		var params []domain.TypeHandle
		if ctor != nil {
			for _, p := range ctor.Params {
				h, err := t.convertType(path, p.TypeAnnotation)
				if err != nil {
					return domain.TypeDescriptor{}, err
				}
				params = append(params, h)
			}
		}
		classHandle, err := t.typifyType(path, decl.Name)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		return domain.TypeDescriptor{Kind: domain.KindFn, FnOrigin: path, FnParams: params, FnReturn: classHandle}, nil

	default:
		return domain.TypeDescriptor{Kind: domain.KindPrimitive, Primitive: domain.PrimAny}, nil
	}
}

// buildTypeDescriptor builds the TypeDescriptor for a rooted type-scope
// declaration node.
func (t *Typifier) buildTypeDescriptor(path domain.CanonPath, decl *parser.Node) (domain.TypeDescriptor, error) {
	switch decl.Type {
	case parser.NodeInterfaceDeclaration:
		fields, order, err := t.collectFields(path, decl.Body, decl.Extends, false)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		return domain.TypeDescriptor{
			Kind:                domain.KindInterface,
			InterfaceOrigin:     path,
			InterfaceFields:     fields,
			InterfaceFieldOrder: order,
		}, nil

	case parser.NodeClassDeclaration:
		fields, order, err := t.collectFields(path, decl.Body, decl.Extends, true)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		ctorFn, err := t.buildFnDescriptor(path, ctorParams(decl.Body), nil)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		ctorHandle := t.arena.Push(ctorFn)
		return domain.TypeDescriptor{
			Kind:             domain.KindClass,
			ClassName:        decl.Name,
			ClassOrigin:      path,
			ClassConstructor: ctorHandle,
			ClassFields:      fields,
			ClassFieldOrder:  order,
		}, nil

	case parser.NodeTypeAliasDeclaration:
		if decl.TypeAnnotation == nil {
			return domain.TypeDescriptor{Kind: domain.KindPrimitive, Primitive: domain.PrimAny}, nil
		}
		h, err := t.convertType(path, decl.TypeAnnotation)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		// The alias name is discarded: its descriptor is inlined at every
		// use site by copying the RHS's content into the alias's own
		// handle, rather than aliasing the handle itself, so a use site
		// that asks "what is Foo" gets Foo's own independent descriptor.
		return t.arena.Get(h), nil

	case parser.NodeEnumDeclaration:
		return domain.TypeDescriptor{Kind: domain.KindPrimitive, Primitive: enumHomogeneity(decl.Body), EnumOrigin: true}, nil

	default:
		return domain.TypeDescriptor{Kind: domain.KindPrimitive, Primitive: domain.PrimAny}, nil
	}
}

func (t *Typifier) buildFnDescriptor(path domain.CanonPath, params []*parser.Node, returnType *parser.Node) (domain.TypeDescriptor, error) {
	var handles []domain.TypeHandle
	for _, p := range params {
		h, err := t.convertType(path, p.TypeAnnotation)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		handles = append(handles, h)
	}
	var ret domain.TypeHandle
	if returnType == nil {
		ret = t.arena.Primitive(domain.PrimVoid)
	} else {
		h, err := t.convertType(path, returnType)
		if err != nil {
			return domain.TypeDescriptor{}, err
		}
		ret = h
	}
	return domain.TypeDescriptor{Kind: domain.KindFn, FnOrigin: path, FnParams: handles, FnReturn: ret}, nil
}

// collectFields builds a class/interface's field map: every ancestor
// named in extends is resolved first (so its fields establish the base
// order), then this declaration's own members are applied, overwriting
// an inherited entry of the same name in place ("conflicts resolve in
// favor of the child", spec.md §4.4). skipConstructor excludes the
// class's own constructor method, which is surfaced separately via
// ClassConstructor rather than as a field.
func (t *Typifier) collectFields(path domain.CanonPath, body []*parser.Node, extends []string, skipConstructor bool) (map[string]domain.TypeHandle, []string, error) {
	fields := make(map[string]domain.TypeHandle)
	var order []string
	add := func(name string, h domain.TypeHandle) {
		if _, exists := fields[name]; !exists {
			order = append(order, name)
		}
		fields[name] = h
	}

	for _, base := range extends {
		bh, err := t.typifyType(path, base)
		if err != nil {
			return nil, nil, err
		}
		bd := t.arena.Get(bh)
		switch bd.Kind {
		case domain.KindInterface:
			for _, k := range bd.InterfaceFieldOrder {
				add(k, bd.InterfaceFields[k])
			}
		case domain.KindClass:
			for _, k := range bd.ClassFieldOrder {
				add(k, bd.ClassFields[k])
			}
		}
	}

	for _, member := range body {
		if member.Static || member.Accessibility == "private" || member.Accessibility == "protected" {
			continue
		}
		if skipConstructor && member.Type == parser.NodeMethodDefinition && member.Name == "constructor" {
			continue
		}
		switch member.Type {
		case parser.NodeCallSignature, parser.NodeConstructSignature:
			return nil, nil, domain.NewUnsupportedFeatureError(stageName, path, spanOf(member), domain.FeatureCallConstructSig)

		case parser.NodeMethodDefinition, parser.NodeMethodSignature:
			fn, err := t.buildFnDescriptor(path, member.Params, member.ReturnType)
			if err != nil {
				return nil, nil, err
			}
			add(member.Name, t.arena.Push(fn))

		case parser.NodePublicFieldDefinition, parser.NodePropertySignature:
			h, err := t.convertType(path, member.TypeAnnotation)
			if err != nil {
				return nil, nil, err
			}
			add(member.Name, h)

		default:
			// Index signatures and other unnamed members contribute no
			// field key.
		}
	}

	return fields, order, nil
}

func findConstructor(body []*parser.Node) *parser.Node {
	for _, m := range body {
		if m.Type == parser.NodeMethodDefinition && m.Name == "constructor" {
			return m
		}
	}
	return nil
}

func ctorParams(body []*parser.Node) []*parser.Node {
	if ctor := findConstructor(body); ctor != nil {
		return ctor.Params
	}
	return nil
}

// enumHomogeneity classifies an enum by its members' initializers
// (spec.md §4.4: "enum -> Primitive(Number)/Primitive(String)/Any by
// member homogeneity"). A member with no initializer behaves like a
// numeric enum member (TypeScript auto-increments it), so it counts
// toward numeric homogeneity but breaks string homogeneity. An enum with
// no members is vacuously numeric.
func enumHomogeneity(body []*parser.Node) domain.PrimitiveKind {
	allNumeric, allString := true, true
	for _, m := range body {
		if m.Value == nil {
			allString = false
			continue
		}
		if m.Value.Type != parser.NodeLiteral {
			allNumeric, allString = false, false
			continue
		}
		if isQuotedLiteral(m.Value.RawText) {
			allNumeric = false
		} else {
			allString = false
		}
	}
	switch {
	case allNumeric:
		return domain.PrimNumber
	case allString:
		return domain.PrimString
	default:
		return domain.PrimAny
	}
}

func isQuotedLiteral(raw string) bool {
	if len(raw) < 2 {
		return false
	}
	return strings.HasPrefix(raw, `"`) || strings.HasPrefix(raw, "'") || strings.HasPrefix(raw, "`")
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
