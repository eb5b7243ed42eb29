package emit

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/resolve"
)

func buildCache(t *testing.T, dir, root string) *modcache.Cache {
	t.Helper()
	cache, col, err := modcache.Build(context.Background(), filepath.Join(dir, root), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("modcache.Build: %v (%v)", err, col.All())
	}
	return cache
}

func TestWriteModuleGraphDOTRendersNodesAndEdges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `import { helper } from "./helper"; export declare function use(): void;`)
	writeFile(t, filepath.Join(dir, "helper.d.ts"), `export declare function helper(): void;`)
	cache := buildCache(t, dir, "root.d.ts")

	var buf bytes.Buffer
	if err := WriteModuleGraphDOT(&buf, cache, nil, nil); err != nil {
		t.Fatalf("WriteModuleGraphDOT: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "/*") {
		t.Errorf("expected a leading comment, got:\n%s", out)
	}
	if !strings.Contains(out, "digraph modules {") {
		t.Errorf("expected digraph header, got:\n%s", out)
	}
	if !strings.Contains(out, "rankdir=TB") {
		t.Errorf("expected default rankdir TB, got:\n%s", out)
	}
	if !strings.Contains(out, "->") {
		t.Errorf("expected at least one edge, got:\n%s", out)
	}
	if !strings.Contains(out, "Legend") {
		t.Errorf("expected a legend by default, got:\n%s", out)
	}
}

func TestWriteModuleGraphDOTHighlightsCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare function use(): void;`)
	cache := buildCache(t, dir, "root.d.ts")

	var root domain.CanonPath
	for p := range cache.Modules {
		root = p
	}

	var buf bytes.Buffer
	cycles := [][]domain.CanonPath{{root}}
	if err := WriteModuleGraphDOT(&buf, cache, cycles, nil); err != nil {
		t.Fatalf("WriteModuleGraphDOT: %v", err)
	}
	if !strings.Contains(buf.String(), "#FF6B6B") {
		t.Errorf("expected the cycle fill color to appear, got:\n%s", buf.String())
	}
}

func TestWriteModuleGraphDOTRejectsInvalidRankDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export declare const x: number;`)
	cache := buildCache(t, dir, "root.d.ts")

	err := WriteModuleGraphDOT(&bytes.Buffer{}, cache, nil, &DOTConfig{RankDir: "DIAGONAL"})
	if err == nil {
		t.Fatal("expected an error for an invalid rank direction")
	}
}

func TestDotIDEscapesSpecialCharacters(t *testing.T) {
	id := dotID(domain.CanonPath("/a/b-c.d@e.ts"))
	if strings.ContainsAny(id, "/-.@") {
		t.Errorf("expected all special characters escaped, got %q", id)
	}
	if !isValidDOTIDStart(id[0]) {
		t.Errorf("expected a valid identifier start, got %q", id)
	}
}

func TestShortModuleNameTrimsToBaseName(t *testing.T) {
	if got := shortModuleName(domain.CanonPath("/a/b/c.d.ts")); got != "c.d.ts" {
		t.Errorf("expected c.d.ts, got %q", got)
	}
}
