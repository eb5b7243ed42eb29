package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder converts a tree-sitter concrete syntax tree for a TypeScript
// declaration file into the internal AST. Statement and expression
// productions that cannot carry a rooted type or value declaration are
// collapsed through buildGenericNode rather than given dedicated
// builders, since they never contribute an exported symbol.
type ASTBuilder struct {
	filename string
	source   []byte
}

// NewASTBuilder creates a new AST builder.
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{filename: filename, source: source}
}

// Build builds the AST from a tree-sitter root node.
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to an internal AST node.
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildProgram(tsNode)

	case "import_statement":
		return b.buildImportStatement(tsNode)
	case "import_alias", "import_require_clause":
		return b.buildImportEquals(tsNode)
	case "export_statement":
		return b.buildExportStatement(tsNode)
	case "export_assignment":
		return b.buildExportEquals(tsNode)

	case "ambient_declaration":
		return b.buildAmbientDeclaration(tsNode)

	case "function_signature", "function_declaration":
		return b.buildFunctionDeclaration(tsNode)
	case "lexical_declaration", "variable_declaration":
		return b.buildVariableDeclaration(tsNode)
	case "variable_declarator", "required_parameter", "optional_parameter":
		return b.buildVariableLike(tsNode)

	case "class_declaration", "abstract_class_declaration":
		return b.buildClassDeclaration(tsNode)
	case "method_definition", "method_signature", "abstract_method_signature":
		return b.buildMethodLike(tsNode)
	case "public_field_definition", "property_signature":
		return b.buildFieldLike(tsNode)
	case "call_signature", "construct_signature", "index_signature":
		return b.buildSignatureOnly(tsNode)

	case "interface_declaration":
		return b.buildInterfaceDeclaration(tsNode)
	case "type_alias_declaration":
		return b.buildTypeAliasDeclaration(tsNode)
	case "enum_declaration":
		return b.buildEnumDeclaration(tsNode)
	case "enum_assignment", "property_identifier":
		// property_identifier only reaches here as a bare enum member;
		// anywhere else it's handled by the parent builder directly.
		return b.buildEnumMember(tsNode)
	case "internal_module", "module", "ambient_module_declaration":
		return b.buildNamespaceDeclaration(tsNode)

	case "identifier", "type_identifier", "nested_type_identifier", "shorthand_property_identifier":
		return b.buildIdentifier(tsNode)
	case "string", "number", "true", "false", "null":
		return b.buildLiteral(tsNode)

	case "type_annotation", "opting_type_annotation":
		return b.buildTypeAnnotation(tsNode)
	case "predefined_type":
		return b.buildPredefinedType(tsNode)
	case "array_type":
		return b.buildArrayType(tsNode)
	case "union_type":
		return b.buildTypeCombinator(tsNode, NodeTypeUnion)
	case "intersection_type":
		return b.buildTypeCombinator(tsNode, NodeTypeIntersection)
	case "tuple_type":
		return b.buildTypeCombinator(tsNode, NodeTypeTuple)
	case "function_type":
		return b.buildFunctionType(tsNode)
	case "object_type":
		return b.buildObjectType(tsNode)
	case "generic_type":
		return b.buildGenericType(tsNode)
	case "literal_type":
		return b.buildUnsupportedType(tsNode, NodeTypeLiteralType)
	case "import_type":
		return b.buildUnsupportedType(tsNode, NodeImportType)
	case "conditional_type":
		return b.buildUnsupportedType(tsNode, NodeTypeConditional)
	case "mapped_type_clause", "mapped_type":
		return b.buildUnsupportedType(tsNode, NodeTypeMapped)
	case "template_literal_type":
		return b.buildUnsupportedType(tsNode, NodeTypeTemplate)
	case "type_query":
		return b.buildUnsupportedType(tsNode, NodeTypeQuery)
	case "parenthesized_type":
		return b.buildParenthesizedType(tsNode)

	default:
		return b.buildGenericNode(tsNode)
	}
}

// buildProgram builds the top-level node, keeping only child statements
// that can introduce or re-export a symbol.
func (b *ASTBuilder) buildProgram(tsNode *sitter.Node) *Node {
	node := NewNode(NodeProgram)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		stmt := b.buildNode(child)
		if stmt != nil {
			node.AddChild(stmt)
		}
	}

	return node
}

// buildAmbientDeclaration unwraps a `declare ...` wrapper: a plank module
// never distinguishes an ambient context from top-level .d.ts content, so
// the wrapped declaration is returned directly.
func (b *ASTBuilder) buildAmbientDeclaration(tsNode *sitter.Node) *Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) || child.Type() == "declare" {
			continue
		}
		return b.buildNode(child)
	}
	return nil
}

// --- Module system -----------------------------------------------------

func (b *ASTBuilder) buildImportStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeImportDeclaration)
	node.Location = b.getLocation(tsNode)

	if sourceNode := b.getChildByFieldName(tsNode, "source"); sourceNode != nil {
		node.Source = b.buildNode(sourceNode)
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "type":
			node.IsTypeOnly = true
		case "import_clause":
			b.extractImportClause(child, node)
		case "import_require_clause", "import_alias":
			// import x = require("m"); handled separately as ImportEquals,
			// never reaches here from buildNode's switch, kept for safety.
		}
	}

	return node
}

// buildImportEquals covers `import X = require("m")` and
// `import X = Namespace.Member`: always unsupported, retained as a tagged
// node so internal/modcache can emit ImportEquals.
func (b *ASTBuilder) buildImportEquals(tsNode *sitter.Node) *Node {
	node := NewNode(NodeImportEquals)
	node.Location = b.getLocation(tsNode)
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	return node
}

func (b *ASTBuilder) extractImportClause(clauseNode *sitter.Node, node *Node) {
	for i := 0; i < int(clauseNode.ChildCount()); i++ {
		child := clauseNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			spec := NewNode(NodeImportDefaultSpecifier)
			spec.Location = b.getLocation(child)
			spec.Name = child.Content(b.source)
			node.Specifiers = append(node.Specifiers, spec)

		case "namespace_import":
			spec := NewNode(NodeImportNamespaceSpecifier)
			spec.Location = b.getLocation(child)
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc != nil && gc.Type() == "identifier" {
					spec.Name = gc.Content(b.source)
				}
			}
			node.Specifiers = append(node.Specifiers, spec)

		case "named_imports":
			for j := 0; j < int(child.ChildCount()); j++ {
				importSpec := child.Child(j)
				if importSpec != nil && importSpec.Type() == "import_specifier" {
					spec := b.buildImportSpecifier(importSpec)
					if spec != nil {
						node.Specifiers = append(node.Specifiers, spec)
					}
				}
			}
		}
	}
}

func (b *ASTBuilder) buildImportSpecifier(tsNode *sitter.Node) *Node {
	spec := NewNode(NodeImportSpecifier)
	spec.Location = b.getLocation(tsNode)

	var identifiers []*sitter.Node
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier", "type_identifier":
			identifiers = append(identifiers, child)
		case "type":
			spec.IsTypeOnly = true
		}
	}

	switch len(identifiers) {
	case 1:
		spec.Name = identifiers[0].Content(b.source)
		spec.Imported = &Node{Type: NodeIdentifier, Name: spec.Name}
	case 2:
		spec.Imported = &Node{Type: NodeIdentifier, Name: identifiers[0].Content(b.source)}
		spec.Name = identifiers[1].Content(b.source)
	}

	return spec
}

func (b *ASTBuilder) buildExportStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeExportNamedDeclaration)
	node.Location = b.getLocation(tsNode)

	hasDefault := false
	hasWildcard := false
	var wildcardAlias string

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "default":
			hasDefault = true
		case "*":
			hasWildcard = true
		case "type":
			node.IsTypeOnly = true
		case "export_clause":
			b.extractExportClause(child, node)
		case "identifier":
			// Only reachable here for `export * as ns from "m"`: the
			// namespace alias sits as a direct sibling of `*`/`as`/`from`.
			wildcardAlias = child.Content(b.source)
		}
	}

	if hasDefault {
		node.Type = NodeExportDefaultDeclaration
	} else if hasWildcard {
		node.Type = NodeExportAllDeclaration
		node.Name = wildcardAlias // non-empty marks `export * as ns from`, FeatureNamespaceExport
	}

	if declNode := b.getChildByFieldName(tsNode, "declaration"); declNode != nil {
		node.Declaration = b.buildNode(declNode)
	}
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.Declaration = b.buildNode(valueNode)
	}
	if sourceNode := b.getChildByFieldName(tsNode, "source"); sourceNode != nil {
		node.Source = b.buildNode(sourceNode)
	}

	return node
}

// buildExportEquals covers `export = X`: unsupported (ExportEquals), kept
// as a tagged marker node rather than dropped silently.
func (b *ASTBuilder) buildExportEquals(tsNode *sitter.Node) *Node {
	node := NewNode(NodeExportEquals)
	node.Location = b.getLocation(tsNode)
	return node
}

func (b *ASTBuilder) extractExportClause(clauseNode *sitter.Node, node *Node) {
	for i := 0; i < int(clauseNode.ChildCount()); i++ {
		child := clauseNode.Child(i)
		if child == nil || child.Type() != "export_specifier" {
			continue
		}

		spec := NewNode(NodeExportSpecifier)
		spec.Location = b.getLocation(child)

		var identifiers []*sitter.Node
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			if gc == nil {
				continue
			}
			if gc.Type() == "identifier" || gc.Type() == "type_identifier" {
				identifiers = append(identifiers, gc)
			}
		}

		switch len(identifiers) {
		case 1:
			spec.Name = identifiers[0].Content(b.source)
			spec.Local = &Node{Type: NodeIdentifier, Name: spec.Name}
		case 2:
			spec.Local = &Node{Type: NodeIdentifier, Name: identifiers[0].Content(b.source)}
			spec.Name = identifiers[1].Content(b.source)
		}

		node.Specifiers = append(node.Specifiers, spec)
	}
}

// --- Function / variable declarations -----------------------------------

func (b *ASTBuilder) buildFunctionDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFunctionDeclaration)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}
	if retNode := b.getChildByFieldName(tsNode, "return_type"); retNode != nil {
		node.ReturnType = b.buildReturnType(retNode)
	}

	return node
}

func (b *ASTBuilder) buildVariableDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeVariableDeclaration)
	node.Location = b.getLocation(tsNode)

	node.Kind = "var"
	if tsNode.Type() == "lexical_declaration" && tsNode.ChildCount() > 0 {
		if first := tsNode.Child(0); first != nil {
			if k := first.Content(b.source); k == "let" || k == "const" {
				node.Kind = k
			}
		}
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "variable_declarator" {
			if decl := b.buildNode(child); decl != nil {
				node.Declarations = append(node.Declarations, decl)
			}
		}
	}

	return node
}

// buildVariableLike handles variable_declarator, required_parameter and
// optional_parameter: all three share the (pattern, type, value?) shape.
func (b *ASTBuilder) buildVariableLike(tsNode *sitter.Node) *Node {
	node := NewNode(NodeVariableDeclarator)
	node.Location = b.getLocation(tsNode)

	if tsNode.Type() == "optional_parameter" {
		node.Optional = true
	}

	if patternNode := b.getChildByFieldName(tsNode, "pattern"); patternNode != nil {
		node.Name = b.identifierText(patternNode)
	} else if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = b.identifierText(nameNode)
	}

	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.TypeAnnotation = b.buildTypeAnnotation(typeNode)
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() == "?" {
			node.Optional = true
		}
	}

	return node
}

// identifierText returns the source text of a pattern node without
// building a full Node; destructuring patterns (object/array) report as
// unsupported at the bindgraph stage via a sentinel marker.
func (b *ASTBuilder) identifierText(tsNode *sitter.Node) string {
	switch tsNode.Type() {
	case "identifier", "property_identifier":
		return tsNode.Content(b.source)
	case "object_pattern", "array_pattern":
		return "" // unsupported: DestructuredVar
	default:
		return tsNode.Content(b.source)
	}
}

// --- Class / interface ---------------------------------------------------

func (b *ASTBuilder) buildClassDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeClassDeclaration)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_heritage":
			node.Extends = b.extractHeritage(child)
		case "class_body":
			for j := 0; j < int(child.ChildCount()); j++ {
				member := child.Child(j)
				if member == nil || b.isTrivia(member) {
					continue
				}
				switch member.Type() {
				case "{", "}", ";":
				default:
					if m := b.buildNode(member); m != nil {
						node.Body = append(node.Body, m)
					}
				}
			}
		}
	}

	return node
}

// extractHeritage pulls the base type name out of `extends T` (and
// ignores `implements ...`, which a .d.ts consumer never needs: it names
// no exported symbol of its own).
func (b *ASTBuilder) extractHeritage(heritageNode *sitter.Node) []string {
	var bases []string
	for i := 0; i < int(heritageNode.ChildCount()); i++ {
		clause := heritageNode.Child(i)
		if clause == nil || clause.Type() != "extends_clause" {
			continue
		}
		if valueNode := b.getChildByFieldName(clause, "value"); valueNode != nil {
			bases = append(bases, b.baseTypeName(valueNode))
		} else {
			for j := 0; j < int(clause.ChildCount()); j++ {
				gc := clause.Child(j)
				if gc != nil && (gc.Type() == "type_identifier" || gc.Type() == "identifier" || gc.Type() == "generic_type") {
					bases = append(bases, b.baseTypeName(gc))
				}
			}
		}
	}
	return bases
}

func (b *ASTBuilder) baseTypeName(tsNode *sitter.Node) string {
	if tsNode.Type() == "generic_type" {
		if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
			return nameNode.Content(b.source)
		}
	}
	return tsNode.Content(b.source)
}

func (b *ASTBuilder) buildInterfaceDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeInterfaceDeclaration)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "extends_type_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc != nil && (gc.Type() == "type_identifier" || gc.Type() == "generic_type") {
					node.Extends = append(node.Extends, b.baseTypeName(gc))
				}
			}
		case "interface_body", "object_type":
			node.Body = b.buildInterfaceMembers(child)
		}
	}

	return node
}

func (b *ASTBuilder) buildInterfaceMembers(bodyNode *sitter.Node) []*Node {
	var members []*Node
	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		member := bodyNode.Child(i)
		if member == nil || b.isTrivia(member) {
			continue
		}
		switch member.Type() {
		case "{", "}", ",", ";":
			continue
		}
		if m := b.buildNode(member); m != nil {
			members = append(members, m)
		}
	}
	return members
}

// buildObjectType handles an anonymous `{ ... }` type literal the same
// way as an interface body: it produces a node whose Body is the member
// list, which internal/typify treats as an unnamed interface descriptor.
func (b *ASTBuilder) buildObjectType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeObject)
	node.Location = b.getLocation(tsNode)
	node.Body = b.buildInterfaceMembers(tsNode)
	return node
}

func (b *ASTBuilder) buildMethodLike(tsNode *sitter.Node) *Node {
	kind := NodeMethodDefinition
	if tsNode.Type() != "method_definition" {
		kind = NodeMethodSignature
	}
	node := NewNode(kind)
	node.Location = b.getLocation(tsNode)
	node.Accessibility = "public"

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "accessibility_modifier":
			node.Accessibility = child.Content(b.source)
		case "static":
			node.Static = true
		case "?":
			node.Optional = true
		}
	}

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}
	if retNode := b.getChildByFieldName(tsNode, "return_type"); retNode != nil {
		node.ReturnType = b.buildReturnType(retNode)
	}

	return node
}

func (b *ASTBuilder) buildFieldLike(tsNode *sitter.Node) *Node {
	kind := NodePublicFieldDefinition
	if tsNode.Type() == "property_signature" {
		kind = NodePropertySignature
	}
	node := NewNode(kind)
	node.Location = b.getLocation(tsNode)
	node.Accessibility = "public"

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "accessibility_modifier":
			node.Accessibility = child.Content(b.source)
		case "static":
			node.Static = true
		case "readonly":
			node.Readonly = true
		case "?":
			node.Optional = true
		}
	}

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if typeNode := b.getChildByFieldName(tsNode, "type"); typeNode != nil {
		node.TypeAnnotation = b.buildTypeAnnotation(typeNode)
	}

	return node
}

// buildSignatureOnly handles call/construct/index signatures: captured
// and tagged so internal/typify can diagnose
// ErrUnsupportedFeature(CallConstructSignature) rather than silently
// dropping the member.
func (b *ASTBuilder) buildSignatureOnly(tsNode *sitter.Node) *Node {
	kind := NodeCallSignature
	switch tsNode.Type() {
	case "construct_signature":
		kind = NodeConstructSignature
	case "index_signature":
		kind = NodeIndexSignature
	}
	node := NewNode(kind)
	node.Location = b.getLocation(tsNode)
	return node
}

func (b *ASTBuilder) buildTypeAliasDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeAliasDeclaration)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if typeParams := b.getChildByFieldName(tsNode, "type_parameters"); typeParams != nil {
		node.TypeArgs = append(node.TypeArgs, NewNode(NodeUnknown)) // marks "has generics"
	}
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.TypeAnnotation = b.buildNode(valueNode)
	}

	return node
}

func (b *ASTBuilder) buildEnumDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeEnumDeclaration)
	node.Location = b.getLocation(tsNode)

	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			member := bodyNode.Child(i)
			if member == nil || b.isTrivia(member) {
				continue
			}
			switch member.Type() {
			case "{", "}", ",":
				continue
			}
			if m := b.buildNode(member); m != nil {
				node.Body = append(node.Body, m)
			}
		}
	}

	return node
}

func (b *ASTBuilder) buildEnumMember(tsNode *sitter.Node) *Node {
	node := NewNode(NodeEnumMember)
	node.Location = b.getLocation(tsNode)
	if tsNode.Type() == "property_identifier" {
		node.Name = tsNode.Content(b.source)
		return node
	}
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if valueNode := b.getChildByFieldName(tsNode, "value"); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}
	return node
}

// buildNamespaceDeclaration marks a TS namespace/module block as a
// rejected construct (FeatureTsNamespace); its members are never walked
// since plank does not support the TS-namespace merging semantics.
func (b *ASTBuilder) buildNamespaceDeclaration(tsNode *sitter.Node) *Node {
	node := NewNode(NodeNamespaceDeclaration)
	node.Location = b.getLocation(tsNode)
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	return node
}

// --- Type expressions ------------------------------------------------------

func (b *ASTBuilder) buildTypeAnnotation(tsNode *sitter.Node) *Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() != ":" {
			return b.buildNode(child)
		}
	}
	return nil
}

// buildReturnType mirrors buildTypeAnnotation but accepts either a
// type_annotation wrapper or a bare type node, matching how the grammar
// attaches `return_type` on function-like declarations.
func (b *ASTBuilder) buildReturnType(tsNode *sitter.Node) *Node {
	if tsNode.Type() == "type_annotation" {
		return b.buildTypeAnnotation(tsNode)
	}
	return b.buildNode(tsNode)
}

func (b *ASTBuilder) buildPredefinedType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypePredefined)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Content(b.source)
	return node
}

// buildArrayType builds T[] as an ArrayType wrapping one element; nested
// array_type children (T[][]) compose through ElemType rather than this
// builder tracking Rank itself, since the tree-sitter grammar nests one
// array_type per `[]` suffix.
func (b *ASTBuilder) buildArrayType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeArray)
	node.Location = b.getLocation(tsNode)
	node.Rank = 1

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || child.Type() == "[" || child.Type() == "]" {
			continue
		}
		node.ElemType = b.buildNode(child)
		break
	}

	return node
}

func (b *ASTBuilder) buildTypeCombinator(tsNode *sitter.Node, kind NodeType) *Node {
	node := NewNode(kind)
	node.Location = b.getLocation(tsNode)
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "|", "&", ",", "[", "]":
			continue
		}
		if member := b.buildNode(child); member != nil {
			node.TypeArgs = append(node.TypeArgs, member)
		}
	}
	return node
}

func (b *ASTBuilder) buildFunctionType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeFunction)
	node.Location = b.getLocation(tsNode)
	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}
	if retNode := b.getChildByFieldName(tsNode, "return_type"); retNode != nil {
		node.ReturnType = b.buildReturnType(retNode)
	}
	return node
}

func (b *ASTBuilder) buildGenericType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeTypeGeneric)
	node.Location = b.getLocation(tsNode)
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if argsNode := b.getChildByFieldName(tsNode, "type_arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.ChildCount()); i++ {
			arg := argsNode.Child(i)
			if arg == nil || arg.Type() == "<" || arg.Type() == ">" || arg.Type() == "," {
				continue
			}
			if a := b.buildNode(arg); a != nil {
				node.TypeArgs = append(node.TypeArgs, a)
			}
		}
	}
	return node
}

// buildParenthesizedType unwraps `(T)` to its inner type.
func (b *ASTBuilder) buildParenthesizedType(tsNode *sitter.Node) *Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.Type() != "(" && child.Type() != ")" {
			return b.buildNode(child)
		}
	}
	return nil
}

// buildUnsupportedType produces a tagged marker node for a type-expression
// form plank deliberately does not model structurally (literal types,
// conditional/mapped/template-literal types, typeof queries, import
// types). internal/typify maps every one of these to PrimAny.
func (b *ASTBuilder) buildUnsupportedType(tsNode *sitter.Node, kind NodeType) *Node {
	node := NewNode(kind)
	node.Location = b.getLocation(tsNode)
	node.RawText = tsNode.Content(b.source)
	return node
}

// --- Leaves ----------------------------------------------------------------

func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIdentifier)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Content(b.source)
	if tsNode.Type() == "type_identifier" || tsNode.Type() == "nested_type_identifier" {
		node.Type = NodeTypeReference
	}
	return node
}

func (b *ASTBuilder) buildLiteral(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLiteral)
	node.Location = b.getLocation(tsNode)
	node.RawText = tsNode.Content(b.source)
	return node
}

// --- Shared helpers ----------------------------------------------------

// buildGenericNode handles every grammar production without executable
// or declarative relevance (statement/expression bodies that cannot
// appear, punctuation, and anything the grammar adds that this builder
// does not yet recognize). Children are still walked so a declaration
// nested in an unexpected position is not silently lost.
func (b *ASTBuilder) buildGenericNode(tsNode *sitter.Node) *Node {
	node := NewNode(NodeType(tsNode.Type()))
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) {
			if c := b.buildNode(child); c != nil {
				node.AddChild(c)
			}
		}
	}

	return node
}

// buildParameters builds a parameter list from a formal_parameters node.
func (b *ASTBuilder) buildParameters(tsNode *sitter.Node) []*Node {
	var params []*Node
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		switch child.Type() {
		case "(", ")", ",":
			continue
		}
		if p := b.buildNode(child); p != nil {
			params = append(params, p)
		}
	}
	return params
}

func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

func (b *ASTBuilder) getChildByFieldName(tsNode *sitter.Node, fieldName string) *sitter.Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && tsNode.FieldNameForChild(i) == fieldName {
			return child
		}
	}
	return nil
}

func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	t := tsNode.Type()
	return t == "comment" || t == "line_comment" || t == "block_comment" || t == ""
}
