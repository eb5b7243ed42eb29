package modcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plank-ts/plank/domain"
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

func TestBuildFollowsImportsAndExportFrom(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		import { A } from "./a";
		export { B } from "./b";
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const a: number;`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `export declare const b: string;`)

	cache, col, err := Build(context.Background(), filepath.Join(dir, "root.d.ts"), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("Build: %v (warnings: %v)", err, col.All())
	}
	if len(cache.Modules) != 3 {
		t.Fatalf("expected 3 modules in cache, got %d: %v", len(cache.Modules), cache.Order)
	}
	if !col.Empty() {
		t.Errorf("expected no diagnostics, got %v", col.All())
	}
}

func TestBuildDeduplicatesDiamondDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `
		import { A } from "./a";
		import { B } from "./b";
	`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `import { Shared } from "./shared"; export declare const a: number;`)
	writeFile(t, filepath.Join(dir, "b.d.ts"), `import { Shared } from "./shared"; export declare const b: number;`)
	writeFile(t, filepath.Join(dir, "shared.d.ts"), `export declare const s: number;`)

	cache, _, err := Build(context.Background(), filepath.Join(dir, "root.d.ts"), resolve.NewDefaultResolver(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cache.Modules) != 4 {
		t.Fatalf("expected 4 distinct modules, got %d", len(cache.Modules))
	}
}

func TestBuildReportsUnresolvedImportAsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `import { A } from "./missing";`)

	_, col, err := Build(context.Background(), filepath.Join(dir, "root.d.ts"), resolve.NewDefaultResolver(), nil)
	if err == nil {
		t.Fatal("expected a fatal resolve error")
	}
	perr, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if perr.Kind != domain.ErrResolve {
		t.Errorf("expected ErrResolve, got %v", perr.Kind)
	}
	if col.Fatal() == nil {
		t.Error("expected collector to also report the fatal error")
	}
}

func TestBuildRejectsDefaultExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `export default function f(): void {}`)

	_, _, err := Build(context.Background(), filepath.Join(dir, "root.d.ts"), resolve.NewDefaultResolver(), nil)
	if err == nil {
		t.Fatal("expected a fatal unsupported-feature error")
	}
	perr, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if perr.Kind != domain.ErrUnsupportedFeature || perr.Feature != domain.FeatureDefaultExport {
		t.Errorf("expected DefaultExport unsupported-feature error, got %+v", perr)
	}
}

func TestBuildRejectsNonexistentRoot(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Build(context.Background(), filepath.Join(dir, "nope.d.ts"), resolve.NewDefaultResolver(), nil)
	if err == nil {
		t.Fatal("expected an IO error for a missing root")
	}
}

type countingTask struct {
	incs int
	done bool
}

func (c *countingTask) Increment(n int) { c.incs += n }
func (c *countingTask) Complete()       { c.done = true }

type countingProgress struct {
	tasks []*countingTask
}

func (p *countingProgress) StartTask(desc string, total int) Task {
	task := &countingTask{}
	p.tasks = append(p.tasks, task)
	return task
}

func TestBuildReportsProgressPerFrontier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.d.ts"), `import { A } from "./a";`)
	writeFile(t, filepath.Join(dir, "a.d.ts"), `export declare const a: number;`)

	progress := &countingProgress{}
	_, _, err := Build(context.Background(), filepath.Join(dir, "root.d.ts"), resolve.NewDefaultResolver(), progress)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(progress.tasks) != 2 {
		t.Fatalf("expected 2 BFS frontiers tracked, got %d", len(progress.tasks))
	}
	for _, task := range progress.tasks {
		if !task.done {
			t.Error("expected every task to be completed")
		}
	}
}
