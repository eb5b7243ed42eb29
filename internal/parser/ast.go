// Package parser builds a declaration-focused AST from a TypeScript
// `.d.ts`-style source file. Only the subset of the grammar that can
// appear in a top-level declaration module is modeled: imports, exports,
// classes, interfaces, type aliases, enums, ambient function/variable
// signatures, and the type-expression grammar reachable from them.
// Executable statement/expression forms (if/for/calls/...) have no
// business in a declaration module and are not represented.
package parser

import "fmt"

// NodeType represents the kind of an AST node.
type NodeType string

const (
	NodeProgram NodeType = "Program"

	// Module system
	NodeImportDeclaration        NodeType = "ImportDeclaration"
	NodeImportSpecifier          NodeType = "ImportSpecifier"
	NodeImportNamespaceSpecifier NodeType = "ImportNamespaceSpecifier"
	NodeImportDefaultSpecifier   NodeType = "ImportDefaultSpecifier"
	NodeImportEquals             NodeType = "ImportEqualsDeclaration"
	NodeExportNamedDeclaration   NodeType = "ExportNamedDeclaration"
	NodeExportDefaultDeclaration NodeType = "ExportDefaultDeclaration"
	NodeExportAllDeclaration     NodeType = "ExportAllDeclaration"
	NodeExportSpecifier          NodeType = "ExportSpecifier"
	NodeExportEquals             NodeType = "ExportEqualsDeclaration"

	// Declarations
	NodeFunctionDeclaration  NodeType = "FunctionDeclaration"
	NodeVariableDeclaration  NodeType = "VariableDeclaration"
	NodeVariableDeclarator   NodeType = "VariableDeclarator"
	NodeClassDeclaration     NodeType = "ClassDeclaration"
	NodeInterfaceDeclaration NodeType = "InterfaceDeclaration"
	NodeTypeAliasDeclaration NodeType = "TypeAliasDeclaration"
	NodeEnumDeclaration      NodeType = "EnumDeclaration"
	NodeEnumMember           NodeType = "EnumMember"
	NodeNamespaceDeclaration NodeType = "NamespaceDeclaration"

	// Class / interface members
	NodeMethodDefinition      NodeType = "MethodDefinition"
	NodePublicFieldDefinition NodeType = "PublicFieldDefinition"
	NodePropertySignature     NodeType = "PropertySignature"
	NodeMethodSignature       NodeType = "MethodSignature"
	NodeCallSignature         NodeType = "CallSignature"
	NodeConstructSignature    NodeType = "ConstructSignature"
	NodeIndexSignature        NodeType = "IndexSignature"

	NodeIdentifier NodeType = "Identifier"
	NodeLiteral    NodeType = "Literal"

	// Type expressions
	NodeTypePredefined   NodeType = "PredefinedType"
	NodeTypeReference    NodeType = "TypeReference"
	NodeTypeArray        NodeType = "ArrayType"
	NodeTypeUnion        NodeType = "UnionType"
	NodeTypeIntersection NodeType = "IntersectionType"
	NodeTypeTuple        NodeType = "TupleType"
	NodeTypeFunction     NodeType = "FunctionType"
	NodeTypeObject       NodeType = "ObjectType"
	NodeTypeGeneric      NodeType = "GenericType"
	NodeTypeLiteralType  NodeType = "LiteralType"
	NodeImportType       NodeType = "ImportType"
	NodeTypeConditional  NodeType = "ConditionalType"
	NodeTypeMapped       NodeType = "MappedType"
	NodeTypeTemplate     NodeType = "TemplateLiteralType"
	NodeTypeQuery        NodeType = "TypeQuery"
	NodeUnknown          NodeType = "Unknown"
)

// Location is the position of a node in its source file.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node is an AST node. Fields are a superset across every node kind this
// package builds; a given kind only populates the fields relevant to it,
// the same flat-struct-with-implied-field-usage layout the teacher uses
// for its broader JS/TS AST.
type Node struct {
	Type     NodeType
	Name     string
	Location Location
	Children []*Node
	Parent   *Node

	// Declarations
	Params     []*Node // function/method parameters
	ReturnType *Node
	Body       []*Node // class/interface/enum member list

	// Modifiers
	Static        bool
	Accessibility string // "public" (default), "private", "protected"
	Optional      bool
	Readonly      bool
	IsTypeOnly    bool

	// Variable declarations
	Kind         string // "const" | "let" | "var"
	Declarations []*Node

	// Class / interface heritage: base type names. A generic base's type
	// arguments are not modeled, matching the Non-goal on generics.
	Extends []string

	// Import / export
	Source      *Node // string literal naming the module specifier
	Specifiers  []*Node
	Declaration *Node // inner declaration of an export/ambient wrapper
	Imported    *Node // ImportSpecifier/ExportSpecifier: source-side name
	Local       *Node // ImportSpecifier/ExportSpecifier: local-side name

	// Type annotation carried by a parameter/variable/field/signature.
	TypeAnnotation *Node

	// Type-expression fields
	ElemType *Node   // ArrayType element
	Rank     int     // ArrayType nesting depth
	TypeArgs []*Node // GenericType arguments, captured but never resolved

	// Value is the initializer expression of an EnumMember (`Name = value`),
	// nil when the member has no explicit initializer.
	Value *Node

	RawText string // verbatim source text, for diagnostics on unhandled forms
}

// NewNode allocates a zero-value node of the given kind.
func NewNode(t NodeType) *Node {
	return &Node{Type: t}
}

// AddChild appends child and sets its Parent.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first, calling visitor for each node. If
// visitor returns false, that node's descendants are skipped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(visitor)
	}
	for _, p := range n.Params {
		p.Walk(visitor)
	}
	for _, s := range n.Body {
		s.Walk(visitor)
	}
	for _, d := range n.Declarations {
		d.Walk(visitor)
	}
	for _, s := range n.Specifiers {
		s.Walk(visitor)
	}
	for _, a := range n.TypeArgs {
		a.Walk(visitor)
	}
	if n.ReturnType != nil {
		n.ReturnType.Walk(visitor)
	}
	if n.Declaration != nil {
		n.Declaration.Walk(visitor)
	}
	if n.TypeAnnotation != nil {
		n.TypeAnnotation.Walk(visitor)
	}
	if n.ElemType != nil {
		n.ElemType.Walk(visitor)
	}
	if n.Source != nil {
		n.Source.Walk(visitor)
	}
}

// String renders a short human-readable form for diagnostics.
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsTypeExpression reports whether n is one of the type-expression node
// kinds (as opposed to a declaration or module-system node).
func (n *Node) IsTypeExpression() bool {
	switch n.Type {
	case NodeTypePredefined, NodeTypeReference, NodeTypeArray, NodeTypeUnion,
		NodeTypeIntersection, NodeTypeTuple, NodeTypeFunction, NodeTypeObject,
		NodeTypeGeneric, NodeTypeLiteralType, NodeImportType, NodeTypeConditional,
		NodeTypeMapped, NodeTypeTemplate, NodeTypeQuery:
		return true
	}
	return false
}

// StringValue returns the unquoted text of a string-literal node (an
// import/export source specifier). Returns RawText unchanged if it is not
// quote-delimited.
func (n *Node) StringValue() string {
	s := n.RawText
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// IsDeclaration reports whether n introduces a rooted symbol.
func (n *Node) IsDeclaration() bool {
	switch n.Type {
	case NodeFunctionDeclaration, NodeVariableDeclaration, NodeClassDeclaration,
		NodeInterfaceDeclaration, NodeTypeAliasDeclaration, NodeEnumDeclaration,
		NodeNamespaceDeclaration:
		return true
	}
	return false
}
