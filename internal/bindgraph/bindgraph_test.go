package bindgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/modcache"
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

func buildCache(t *testing.T, dir string, root string) *modcache.Cache {
	t.Helper()
	cache, col, err := modcache.Build(context.Background(), filepath.Join(dir, root), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("modcache.Build: %v (warnings: %v)", err, col.All())
	}
	return cache
}

func TestInitRootsClassInBothNamespaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export class Foo { constructor(x: number); bar(s: string): void; }`)

	cache := buildCache(t, dir, "root.d.ts")
	graph, col, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !col.Empty() {
		t.Fatalf("unexpected diagnostics: %v", col.All())
	}

	node := graph.Nodes[cache.Root]
	if !node.RootedExportValues["Foo"] {
		t.Error("expected Foo rooted in value namespace")
	}
	if !node.RootedExportTypes["Foo"] {
		t.Error("expected Foo rooted in type namespace")
	}
}

func TestInitExportFromProducesNamedEdge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export { I } from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export interface I { n: number; }`)

	cache := buildCache(t, dir, "root.d.ts")
	graph, _, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	edges := graph.ExportEdges[cache.Root]
	if len(edges) != 1 {
		t.Fatalf("expected 1 export edge, got %d", len(edges))
	}
	if edges[0].Kind != domain.ExportNamed || edges[0].SrcKey != "I" || edges[0].ExportKey != "I" {
		t.Errorf("unexpected edge: %+v", edges[0])
	}
}

func TestInitExportAllProducesAllEdge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export * from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const x: number;`)

	cache := buildCache(t, dir, "root.d.ts")
	graph, _, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	edges := graph.ExportEdges[cache.Root]
	if len(edges) != 1 || edges[0].Kind != domain.ExportAll {
		t.Fatalf("expected 1 All edge, got %+v", edges)
	}
}

func TestInitBareExportOfImportProducesNamedEdges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		import { Shared } from "./a";
		export { Shared };
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const Shared: number;`)

	cache := buildCache(t, dir, "root.d.ts")
	graph, _, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	edges := graph.ExportEdges[cache.Root]
	if len(edges) != 2 {
		t.Fatalf("expected 2 export edges (the import occupies both scopes), got %d: %+v", len(edges), edges)
	}
	if edges[0].Kind != domain.ExportNamedValue || edges[0].SrcKey != "Shared" || edges[0].ExportKey != "Shared" {
		t.Errorf("unexpected value edge: %+v", edges[0])
	}
	if edges[1].Kind != domain.ExportNamedType || edges[1].SrcKey != "Shared" || edges[1].ExportKey != "Shared" {
		t.Errorf("unexpected type edge: %+v", edges[1])
	}
}

func TestInitAcceptsSimpleIdentifierVariable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare const x: number;`)

	cache := buildCache(t, dir, "root.d.ts")
	_, col, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !col.Empty() {
		t.Fatalf("expected no diagnostics for a simple identifier, got %v", col.All())
	}
}

func TestInitFirstDeclarationWinsOnCollision(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export interface Dup { a: number; }
		export interface Dup { b: string; }
	`)

	cache := buildCache(t, dir, "root.d.ts")
	graph, _, err := Init(cache)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	node := graph.Nodes[cache.Root]
	if len(node.RootedExportTypeOrder) != 1 || node.RootedExportTypeOrder[0] != "Dup" {
		t.Errorf("expected Dup rooted exactly once, got %+v", node.RootedExportTypeOrder)
	}
}
