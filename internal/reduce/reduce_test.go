package reduce

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/bindgraph"
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

func buildGraph(t *testing.T, dir, root string) (*domain.ModuleGraph, domain.CanonPath) {
	t.Helper()
	cache, col, err := modcache.Build(context.Background(), filepath.Join(dir, root), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("modcache.Build: %v (warnings: %v)", err, col.All())
	}
	graph, col, err := bindgraph.Init(cache)
	if err != nil {
		t.Fatalf("bindgraph.Init: %v (warnings: %v)", err, col.All())
	}
	return graph, cache.Root
}

func TestReduceResolvesExportFromToNamedValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export { x } from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const x: number;`)

	graph, root := buildGraph(t, dir, "root.d.ts")
	reduced, col, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !col.Empty() {
		t.Fatalf("unexpected diagnostics: %v", col.All())
	}

	edges := reduced.ExportEdges[root]
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %+v", edges)
	}
	a := domain.CanonPath(filepath.Join(dir, "a.d.ts"))
	if edges[0].Kind != domain.ExportNamedValue || edges[0].Source != a || edges[0].SrcKey != "x" || edges[0].ExportKey != "x" {
		t.Errorf("unexpected edge: %+v", edges[0])
	}
}

func TestReduceLocalShadowsStarReexport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export * from "./a";
		export declare const x: string;
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const x: number;`)

	graph, root := buildGraph(t, dir, "root.d.ts")
	reduced, _, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	node := reduced.Nodes[root]
	if !node.RootedExportValues["x"] {
		t.Fatal("expected x to remain rooted locally")
	}
	for _, e := range reduced.ExportEdges[root] {
		if e.ExportKey == "x" {
			t.Errorf("expected no synthesized edge for shadowed key x, got %+v", e)
		}
	}
}

func TestReduceNamedShadowsTextuallyEarlierStarReexport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export * from "./a";
		export { x } from "./b";
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const x: number;`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export declare const x: string;`)

	graph, root := buildGraph(t, dir, "root.d.ts")
	reduced, col, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !col.Empty() {
		t.Fatalf("unexpected diagnostics: %v", col.All())
	}

	b := domain.CanonPath(filepath.Join(dir, "b.d.ts"))
	var xEdges []domain.ExportEdge
	for _, e := range reduced.ExportEdges[root] {
		if e.ExportKey == "x" {
			xEdges = append(xEdges, e)
		}
	}
	if len(xEdges) != 1 {
		t.Fatalf("expected exactly one edge for x, got %+v", xEdges)
	}
	if xEdges[0].Source != b || xEdges[0].SrcKey != "x" {
		t.Errorf("expected the named re-export from b to win over the textually-earlier star re-export from a, got %+v", xEdges[0])
	}
}

func TestReduceExpandsStarToEveryUnshadowedKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export * from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `
		export declare const x: number;
		export interface I { n: number; }
	`)

	graph, root := buildGraph(t, dir, "root.d.ts")
	reduced, col, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !col.Empty() {
		t.Fatalf("unexpected diagnostics: %v", col.All())
	}

	edges := reduced.ExportEdges[root]
	if len(edges) != 2 {
		t.Fatalf("expected 2 synthesized edges, got %+v", edges)
	}
	var sawValue, sawType bool
	for _, e := range edges {
		if e.ExportKey == "x" && e.Kind == domain.ExportNamedValue {
			sawValue = true
		}
		if e.ExportKey == "I" && e.Kind == domain.ExportNamedType {
			sawType = true
		}
	}
	if !sawValue || !sawType {
		t.Errorf("expected both x (value) and I (type) synthesized, got %+v", edges)
	}
}

func TestReduceMutualReexportCycleYieldsDanglingExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export { X } from "./a";
		export declare const anchor: number;
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export { X } from "./b";`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export { X } from "./a";`)

	graph, root := buildGraph(t, dir, "root.d.ts")
	reduced, col, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	node := reduced.Nodes[root]
	if !node.RootedExportValues["anchor"] {
		t.Fatal("expected the module's own rooted export to survive the unrelated cycle")
	}
	if len(reduced.ExportEdges[root]) != 0 {
		t.Errorf("expected the cyclic X re-export to be dropped, got %+v", reduced.ExportEdges[root])
	}

	foundDangling := false
	for _, e := range col.All() {
		if e.Kind == domain.ErrDanglingExport {
			foundDangling = true
		}
	}
	if !foundDangling {
		t.Error("expected a dangling-export diagnostic for the unresolved cycle")
	}
}

func TestReduceIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		export * from "./a";
		export { y as z } from "./b";
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const x: number;`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export declare const y: string;`)

	graph, _ := buildGraph(t, dir, "root.d.ts")
	once, _, err := Reduce(graph)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	twice, _, err := Reduce(once)
	if err != nil {
		t.Fatalf("Reduce (second pass): %v", err)
	}

	if diff := cmp.Diff(once.ExportEdges, twice.ExportEdges); diff != "" {
		t.Errorf("Reduce was not idempotent on edges (-once +twice):\n%s", diff)
	}
}

func TestReExportCycleDetectorFindsMutualCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export { X } from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export { X } from "./b";`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export { X } from "./a";`)

	graph, _ := buildGraph(t, dir, "root.d.ts")
	reGraph := ReExportGraph(graph)
	cycles := NewReExportCycleDetector().Detect(reGraph)
	if len(cycles) != 1 || len(cycles[0]) != 2 {
		t.Fatalf("expected exactly one 2-module cycle, got %+v", cycles)
	}
}
