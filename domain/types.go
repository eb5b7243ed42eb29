package domain

// PrimitiveKind enumerates the built-in primitive descriptors.
type PrimitiveKind int

const (
	PrimBoolean PrimitiveKind = iota
	PrimNumber
	PrimString
	PrimVoid
	PrimObject
	PrimAny
	PrimNever
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBoolean:
		return "boolean"
	case PrimNumber:
		return "number"
	case PrimString:
		return "string"
	case PrimVoid:
		return "void"
	case PrimObject:
		return "object"
	case PrimAny:
		return "any"
	case PrimNever:
		return "never"
	default:
		return "unknown"
	}
}

// TypeKind discriminates domain.TypeDescriptor.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindArray
	KindFn
	KindClass
	KindInterface
)

// TypeHandle is an integer index into a TypeArena. Descriptors reference
// each other by handle rather than by pointer so that mutually recursive
// interfaces and classes never require a cycle-aware allocator: a handle
// into the arena is always valid once allocated, even while the
// descriptor it names is still being constructed (see internal/typify's
// memoization discipline).
type TypeHandle int

// InvalidHandle is returned by lookups that find nothing.
const InvalidHandle TypeHandle = -1

// TypeDescriptor is the closed, self-contained sum produced by
// typification. It never references the source AST.
type TypeDescriptor struct {
	Kind TypeKind

	// Primitive (KindPrimitive only)
	Primitive PrimitiveKind
	// EnumOrigin marks a primitive produced by collapsing an enum's member
	// homogeneity (spec.md §4.4) rather than a genuine primitive type
	// annotation. The enum's own identity is otherwise fully erased, but
	// internal/flavor's FeatureEnum needs this one bit to remain
	// observable post-typification.
	EnumOrigin bool

	// Array (KindArray only)
	ArrayElem TypeHandle
	ArrayRank int

	// Fn (KindFn only)
	FnOrigin CanonPath
	FnParams []TypeHandle
	// FnReturn is InvalidHandle when the function returns void and no
	// explicit handle was allocated (use KindPrimitive/PrimVoid instead in
	// practice; FnReturn is always a valid handle in a fully typified
	// graph).
	FnReturn TypeHandle

	// Class (KindClass only)
	ClassName        string
	ClassOrigin      CanonPath
	ClassConstructor TypeHandle
	ClassFields      map[string]TypeHandle
	// ClassFieldOrder preserves declaration order for deterministic emission.
	ClassFieldOrder []string

	// Interface (KindInterface only)
	InterfaceOrigin     CanonPath
	InterfaceFields     map[string]TypeHandle
	InterfaceFieldOrder []string
}

// TypeArena owns every TypeDescriptor allocated during typification,
// addressed by integer TypeHandle. This breaks ownership cycles in
// recursive type graphs without reference counting and gives cheap
// equality via handle identity when memoized (see SPEC_FULL.md §4.5).
type TypeArena struct {
	descriptors []TypeDescriptor
}

// NewTypeArena creates an empty arena.
func NewTypeArena() *TypeArena {
	return &TypeArena{}
}

// Alloc reserves a handle for a descriptor under construction, so a
// self-referential type can record its own handle before recursing into
// its body. The slot starts zero-valued; call Set once the descriptor is
// complete.
func (a *TypeArena) Alloc() TypeHandle {
	a.descriptors = append(a.descriptors, TypeDescriptor{})
	return TypeHandle(len(a.descriptors) - 1)
}

// Set finalizes the descriptor at handle h.
func (a *TypeArena) Set(h TypeHandle, d TypeDescriptor) {
	a.descriptors[int(h)] = d
}

// Push allocates and finalizes a descriptor in one step.
func (a *TypeArena) Push(d TypeDescriptor) TypeHandle {
	h := a.Alloc()
	a.Set(h, d)
	return h
}

// Get dereferences a handle.
func (a *TypeArena) Get(h TypeHandle) TypeDescriptor {
	return a.descriptors[int(h)]
}

// Len returns the number of allocated descriptors.
func (a *TypeArena) Len() int {
	return len(a.descriptors)
}

// Primitive interns (non-deduplicated, allocated fresh each call — callers
// that want sharing should memoize themselves) a primitive descriptor.
func (a *TypeArena) Primitive(kind PrimitiveKind) TypeHandle {
	return a.Push(TypeDescriptor{Kind: KindPrimitive, Primitive: kind})
}

// TypedModuleNode is the typification-stage counterpart to ModuleNode: the
// two rooted sets become ordered mappings from export key to type handle.
type TypedModuleNode struct {
	Path CanonPath

	ExportedTypes      map[string]TypeHandle
	ExportedTypeOrder  []string
	ExportedValues     map[string]TypeHandle
	ExportedValueOrder []string
}

// NewTypedModuleNode creates an empty TypedModuleNode for path.
func NewTypedModuleNode(path CanonPath) *TypedModuleNode {
	return &TypedModuleNode{
		Path:           path,
		ExportedTypes:  make(map[string]TypeHandle),
		ExportedValues: make(map[string]TypeHandle),
	}
}

// SetType records key -> h, preserving first-insertion order.
func (n *TypedModuleNode) SetType(key string, h TypeHandle) {
	if _, exists := n.ExportedTypes[key]; !exists {
		n.ExportedTypeOrder = append(n.ExportedTypeOrder, key)
	}
	n.ExportedTypes[key] = h
}

// SetValue records key -> h, preserving first-insertion order.
func (n *TypedModuleNode) SetValue(key string, h TypeHandle) {
	if _, exists := n.ExportedValues[key]; !exists {
		n.ExportedValueOrder = append(n.ExportedValueOrder, key)
	}
	n.ExportedValues[key] = h
}

// TypedModuleGraph is the final output of the pipeline's core: every
// rooted symbol reachable from the root module, fully typed.
type TypedModuleGraph struct {
	Root  CanonPath
	Nodes map[CanonPath]*TypedModuleNode
}

// NewTypedModuleGraph creates an empty graph rooted at root.
func NewTypedModuleGraph(root CanonPath) *TypedModuleGraph {
	return &TypedModuleGraph{Root: root, Nodes: make(map[CanonPath]*TypedModuleNode)}
}

// EnsureNode returns the TypedModuleNode for path, creating it if absent.
func (g *TypedModuleGraph) EnsureNode(path CanonPath) *TypedModuleNode {
	if n, ok := g.Nodes[path]; ok {
		return n
	}
	n := NewTypedModuleNode(path)
	g.Nodes[path] = n
	return n
}
