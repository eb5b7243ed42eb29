package emit

import (
	"encoding/json"
	"io"

	"github.com/plank-ts/plank/domain"
)

// document is the top-level `<stem>.arr.json` shape. Rather than inlining
// each descriptor at every use site (which cannot terminate for a
// recursive interface — spec.md §8's "recursive interface termination"
// scenario has a field whose type is the interface itself), descriptors
// are emitted once each, addressed by their own arena handle; "types" and
// "values" per module are handle indices into that flat array. This keeps
// the artifact finite and acyclic-on-the-wire while still letting a
// consumer walk the exact same graph shape typify produced, with shared
// handles staying shared (a field used in three classes appears three
// times as an index to the same descriptor, not three copies of it).
type document struct {
	Root        string                `json:"root"`
	Modules     map[string]moduleJSON `json:"modules"`
	Descriptors []wrapped             `json:"descriptors"`
}

type moduleJSON struct {
	Types  map[string]domain.TypeHandle `json:"types"`
	Values map[string]domain.TypeHandle `json:"values"`
}

// wrapped adapts a domain.TypeDescriptor to encoding/json with a
// kind-discriminated shape, the way OutputFormatterImpl's response
// wrappers tag each analysis kind for its JSON form.
type wrapped domain.TypeDescriptor

func (w wrapped) MarshalJSON() ([]byte, error) {
	d := domain.TypeDescriptor(w)
	switch d.Kind {
	case domain.KindPrimitive:
		return json.Marshal(struct {
			Kind       string `json:"kind"`
			Primitive  string `json:"primitive"`
			EnumOrigin bool   `json:"enumOrigin,omitempty"`
		}{"primitive", d.Primitive.String(), d.EnumOrigin})

	case domain.KindArray:
		return json.Marshal(struct {
			Kind string           `json:"kind"`
			Elem domain.TypeHandle `json:"elem"`
			Rank int              `json:"rank"`
		}{"array", d.ArrayElem, d.ArrayRank})

	case domain.KindFn:
		params := d.FnParams
		if params == nil {
			params = []domain.TypeHandle{}
		}
		return json.Marshal(struct {
			Kind   string              `json:"kind"`
			Origin string              `json:"origin"`
			Params []domain.TypeHandle `json:"params"`
			Return domain.TypeHandle   `json:"return"`
		}{"fn", string(d.FnOrigin), params, d.FnReturn})

	case domain.KindClass:
		return json.Marshal(struct {
			Kind        string                       `json:"kind"`
			Name        string                       `json:"name"`
			Origin      string                       `json:"origin"`
			Constructor domain.TypeHandle             `json:"constructor"`
			Fields      map[string]domain.TypeHandle  `json:"fields"`
			FieldOrder  []string                      `json:"fieldOrder"`
		}{"class", d.ClassName, string(d.ClassOrigin), d.ClassConstructor, d.ClassFields, d.ClassFieldOrder})

	case domain.KindInterface:
		return json.Marshal(struct {
			Kind       string                      `json:"kind"`
			Origin     string                      `json:"origin"`
			Fields     map[string]domain.TypeHandle `json:"fields"`
			FieldOrder []string                     `json:"fieldOrder"`
		}{"interface", string(d.InterfaceOrigin), d.InterfaceFields, d.InterfaceFieldOrder})

	default:
		return []byte("null"), nil
	}
}

// JSON writes the `<stem>.arr.json` artifact for tg/arena to w.
func JSON(w io.Writer, tg *domain.TypedModuleGraph, arena *domain.TypeArena) error {
	doc := document{
		Root:        string(tg.Root),
		Modules:     make(map[string]moduleJSON, len(tg.Nodes)),
		Descriptors: make([]wrapped, arena.Len()),
	}
	for i := 0; i < arena.Len(); i++ {
		doc.Descriptors[i] = wrapped(arena.Get(domain.TypeHandle(i)))
	}
	for path, node := range tg.Nodes {
		doc.Modules[string(path)] = moduleJSON{Types: node.ExportedTypes, Values: node.ExportedValues}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return domain.NewEmitError("emit", tg.Root, "encoding JSON artifact: %v", err)
	}
	return nil
}
