package typify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/bindgraph"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/reduce"
	"github.com/plank-ts/plank/internal/resolve"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

// pipeline runs every stage up through typify, the way cmd/plank's build
// command will, and fails the test on any fatal stage error.
func pipeline(t *testing.T, dir, root string) (*modcache.Cache, *domain.TypedModuleGraph, *domain.TypeArena) {
	t.Helper()
	cache, col, err := modcache.Build(context.Background(), filepath.Join(dir, root), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("modcache.Build: %v (warnings: %v)", err, col.All())
	}
	graph, _, err := bindgraph.Init(cache)
	if err != nil {
		t.Fatalf("bindgraph.Init: %v", err)
	}
	reduced, _, err := reduce.Reduce(graph)
	if err != nil {
		t.Fatalf("reduce.Reduce: %v", err)
	}
	tg, arena, col, err := Typify(cache, reduced, false)
	if err != nil {
		t.Fatalf("Typify: %v (warnings: %v)", err, col.All())
	}
	return cache, tg, arena
}

func TestTypifyFunctionDeclaration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare function add(a: number, b: number): number;`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]

	h, ok := node.ExportedValues["add"]
	if !ok {
		t.Fatal("expected add in exported values")
	}
	d := arena.Get(h)
	if d.Kind != domain.KindFn {
		t.Fatalf("expected KindFn, got %v", d.Kind)
	}
	if len(d.FnParams) != 2 {
		t.Fatalf("expected 2 params, got %d", len(d.FnParams))
	}
	for i, p := range d.FnParams {
		if pd := arena.Get(p); pd.Kind != domain.KindPrimitive || pd.Primitive != domain.PrimNumber {
			t.Errorf("param %d: expected number, got %+v", i, pd)
		}
	}
	ret := arena.Get(d.FnReturn)
	if ret.Kind != domain.KindPrimitive || ret.Primitive != domain.PrimNumber {
		t.Errorf("expected number return, got %+v", ret)
	}
}

func TestTypifyMissingReturnIsVoid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare function log(msg: string);`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedValues["log"]
	d := arena.Get(h)
	ret := arena.Get(d.FnReturn)
	if ret.Kind != domain.KindPrimitive || ret.Primitive != domain.PrimVoid {
		t.Errorf("expected void return, got %+v", ret)
	}
}

func TestTypifyClassBothSides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export class Widget {
			constructor(label: string);
			label: string;
			private secret: number;
			static count: number;
			resize(factor: number): void;
		}
	`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]

	valueHandle, ok := node.ExportedValues["Widget"]
	if !ok {
		t.Fatal("expected Widget in exported values")
	}
	valueDesc := arena.Get(valueHandle)
	if valueDesc.Kind != domain.KindFn {
		t.Fatalf("expected value-side Widget to be Fn, got %v", valueDesc.Kind)
	}
	if len(valueDesc.FnParams) != 1 {
		t.Fatalf("expected 1 ctor param, got %d", len(valueDesc.FnParams))
	}

	typeHandle, ok := node.ExportedTypes["Widget"]
	if !ok {
		t.Fatal("expected Widget in exported types")
	}
	typeDesc := arena.Get(typeHandle)
	if typeDesc.Kind != domain.KindClass {
		t.Fatalf("expected type-side Widget to be Class, got %v", typeDesc.Kind)
	}
	if _, ok := typeDesc.ClassFields["secret"]; ok {
		t.Error("private field secret should be excluded")
	}
	if _, ok := typeDesc.ClassFields["count"]; ok {
		t.Error("static field count should be excluded")
	}
	if _, ok := typeDesc.ClassFields["resize"]; !ok {
		t.Error("expected public method resize in fields")
	}
	if _, ok := typeDesc.ClassFields["label"]; !ok {
		t.Error("expected public field label in fields")
	}

	ctorReturn := arena.Get(valueDesc.FnReturn)
	if ctorReturn.Kind != domain.KindClass || ctorReturn.ClassName != "Widget" {
		t.Errorf("expected ctor to return the Widget class descriptor, got %+v", ctorReturn)
	}
}

func TestTypifyInterfaceExtendsChildWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export interface Base { a: number; shared: string; }
		export interface Derived extends Base { b: string; shared: number; }
	`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]

	h := node.ExportedTypes["Derived"]
	d := arena.Get(h)
	if d.Kind != domain.KindInterface {
		t.Fatalf("expected Interface, got %v", d.Kind)
	}
	if _, ok := d.InterfaceFields["a"]; !ok {
		t.Error("expected inherited field a")
	}
	sharedDesc := arena.Get(d.InterfaceFields["shared"])
	if sharedDesc.Primitive != domain.PrimNumber {
		t.Errorf("expected child's shared:number to win, got %+v", sharedDesc)
	}
}

func TestTypifyTypeAliasInlined(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export type ID = string;`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedTypes["ID"]
	d := arena.Get(h)
	if d.Kind != domain.KindPrimitive || d.Primitive != domain.PrimString {
		t.Errorf("expected alias inlined to string primitive, got %+v", d)
	}
}

func TestTypifyArrayRankFlattensNesting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare const matrix: number[][];`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedValues["matrix"]
	d := arena.Get(h)
	if d.Kind != domain.KindArray {
		t.Fatalf("expected Array, got %v", d.Kind)
	}
	if d.ArrayRank != 2 {
		t.Errorf("expected rank 2, got %d", d.ArrayRank)
	}
	elem := arena.Get(d.ArrayElem)
	if elem.Primitive != domain.PrimNumber {
		t.Errorf("expected number element, got %+v", elem)
	}
}

func TestTypifyNumericEnum(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export enum Level { Low, Mid, High = 10 }`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedTypes["Level"]
	d := arena.Get(h)
	if d.Kind != domain.KindPrimitive || d.Primitive != domain.PrimNumber {
		t.Errorf("expected numeric enum, got %+v", d)
	}
}

func TestTypifyStringEnum(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export enum Color { Red = "red", Blue = "blue" }`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedTypes["Color"]
	d := arena.Get(h)
	if d.Kind != domain.KindPrimitive || d.Primitive != domain.PrimString {
		t.Errorf("expected string enum, got %+v", d)
	}
}

func TestTypifyMixedEnumIsAny(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export enum Mixed { A = "a", B = 2 }`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedTypes["Mixed"]
	d := arena.Get(h)
	if d.Kind != domain.KindPrimitive || d.Primitive != domain.PrimAny {
		t.Errorf("expected mixed enum to collapse to Any, got %+v", d)
	}
}

func TestTypifyReExportChainSharesDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export interface Shape { sides: number; }`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export { Shape } from "./a";`)
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export { Shape } from "./b";`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h, ok := node.ExportedTypes["Shape"]
	if !ok {
		t.Fatal("expected Shape re-exported through the chain")
	}
	d := arena.Get(h)
	if d.Kind != domain.KindInterface {
		t.Fatalf("expected Interface, got %v", d.Kind)
	}
	if _, ok := d.InterfaceFields["sides"]; !ok {
		t.Error("expected sides field to survive the re-export chain")
	}
}

func TestTypifyRecursiveInterfaceTerminates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export interface Node {
			value: number;
			next: Node;
		}
	`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedTypes["Node"]
	d := arena.Get(h)
	if d.Kind != domain.KindInterface {
		t.Fatalf("expected Interface, got %v", d.Kind)
	}
	nextHandle, ok := d.InterfaceFields["next"]
	if !ok {
		t.Fatal("expected next field")
	}
	if nextHandle != h {
		t.Errorf("expected self-reference to share the same handle, got %d vs %d", nextHandle, h)
	}
}

func TestTypifyDanglingReferenceBecomesAny(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare const x: Missing;`)

	cache, tg, arena := pipeline(t, dir, "root.d.ts")
	node := tg.Nodes[cache.Root]
	h := node.ExportedValues["x"]
	d := arena.Get(h)
	if d.Kind != domain.KindPrimitive || d.Primitive != domain.PrimAny {
		t.Errorf("expected dangling type reference to collapse to Any, got %+v", d)
	}
}
