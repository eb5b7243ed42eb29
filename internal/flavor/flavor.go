// Package flavor detects which type-system features a typed module graph
// actually uses and checks that set against a named target's allow-list.
// Grounded on the teacher's internal/config Strictness/Flavor idiom for
// the named-preset shape, and on service/dependency_graph_service.go's
// depth-first-with-visited-set traversal style for Detect's walk.
package flavor

import "github.com/plank-ts/plank/domain"

// Feature is the closed set of type-system features a build can use.
// String values match internal/config's FlavorPreset.Features entries
// directly, so a config-driven Target can be built without a translation
// table.
type Feature string

const (
	FeatureFn        Feature = "fn"
	FeatureClass     Feature = "class"
	FeatureInterface Feature = "interface"
	FeatureArray     Feature = "array"
	FeatureEnum      Feature = "enum"

	FeaturePrimitiveBoolean Feature = "primitive:boolean"
	FeaturePrimitiveNumber  Feature = "primitive:number"
	FeaturePrimitiveString  Feature = "primitive:string"
	FeaturePrimitiveVoid    Feature = "primitive:void"
	FeaturePrimitiveObject  Feature = "primitive:object"
	FeaturePrimitiveAny     Feature = "primitive:any"
	FeaturePrimitiveNever   Feature = "primitive:never"
)

// Features is a set of Feature values.
type Features map[Feature]bool

// Has reports whether f occurs in the set.
func (s Features) Has(f Feature) bool { return s[f] }

func (s Features) add(f Feature) { s[f] = true }

// Target is a named allow-list a detected Features set is checked
// against (internal/config ships "minimal", "standard" and "full").
type Target struct {
	Name      string
	Supported Features
}

// NewTarget builds a Target from a name and the string feature names
// internal/config's FlavorPreset carries; this package has no built-in
// allow-lists of its own.
func NewTarget(name string, features []string) Target {
	supported := make(Features, len(features))
	for _, f := range features {
		supported[Feature(f)] = true
	}
	return Target{Name: name, Supported: supported}
}

var primitiveFeatures = map[domain.PrimitiveKind]Feature{
	domain.PrimBoolean: FeaturePrimitiveBoolean,
	domain.PrimNumber:  FeaturePrimitiveNumber,
	domain.PrimString:  FeaturePrimitiveString,
	domain.PrimVoid:    FeaturePrimitiveVoid,
	domain.PrimObject:  FeaturePrimitiveObject,
	domain.PrimAny:     FeaturePrimitiveAny,
	domain.PrimNever:   FeaturePrimitiveNever,
}

// Detect walks every descriptor reachable from tg's exported types and
// values, once each (visited set keyed by handle), recording which
// Features occur.
func Detect(tg *domain.TypedModuleGraph, arena *domain.TypeArena) Features {
	features := make(Features)
	visited := make(map[domain.TypeHandle]bool)

	var walk func(h domain.TypeHandle)
	walk = func(h domain.TypeHandle) {
		if visited[h] {
			return
		}
		visited[h] = true

		d := arena.Get(h)
		switch d.Kind {
		case domain.KindPrimitive:
			if d.EnumOrigin {
				features.add(FeatureEnum)
			}
			features.add(primitiveFeatures[d.Primitive])

		case domain.KindArray:
			features.add(FeatureArray)
			walk(d.ArrayElem)

		case domain.KindFn:
			features.add(FeatureFn)
			for _, p := range d.FnParams {
				walk(p)
			}
			if d.FnReturn != domain.InvalidHandle {
				walk(d.FnReturn)
			}

		case domain.KindClass:
			features.add(FeatureClass)
			if d.ClassConstructor != domain.InvalidHandle {
				walk(d.ClassConstructor)
			}
			for _, k := range d.ClassFieldOrder {
				walk(d.ClassFields[k])
			}

		case domain.KindInterface:
			features.add(FeatureInterface)
			for _, k := range d.InterfaceFieldOrder {
				walk(d.InterfaceFields[k])
			}
		}
	}

	for _, node := range tg.Nodes {
		for _, h := range node.ExportedTypes {
			walk(h)
		}
		for _, h := range node.ExportedValues {
			walk(h)
		}
	}

	return features
}

// Compatible returns a domain.CompatibilityError for every feature in
// detected that target does not support. Pure function: no side effects,
// no diagnostics collector (the caller decides whether these abort the
// pipeline, per spec.md §4.5/§7).
func Compatible(detected Features, target Target) []*domain.Error {
	var errs []*domain.Error
	for f := range detected {
		if !target.Supported.Has(f) {
			errs = append(errs, domain.NewCompatibilityError("flavor", "", domain.Feature(f)))
		}
	}
	return errs
}
