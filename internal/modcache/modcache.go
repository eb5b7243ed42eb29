// Package modcache builds the closed set of modules reachable from a root
// declaration file by following import specifiers and re-export sources
// (spec.md §4.1). Grounded on service/parallel_executor.go's errgroup
// fan-out idiom: independent modules within one BFS frontier are parsed
// concurrently, but merged back into the cache on the calling goroutine in
// frontier order so the result — and any diagnostics it produces — never
// depends on goroutine scheduling (spec.md §5: "parallelism is a valid
// implementation choice per stage... but must not be observable in
// outputs").
package modcache

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/diag"
	"github.com/plank-ts/plank/internal/parser"
	"github.com/plank-ts/plank/internal/resolve"
	"github.com/plank-ts/plank/internal/respath"
)

const stageName = "modcache"

// Cache is the module cache: every domain.ModuleData reachable from Root,
// keyed by canonical path, plus the BFS discovery order (used by bindgraph,
// typify and tests that want a deterministic traversal without recomputing
// one).
type Cache struct {
	Root    domain.CanonPath
	Modules map[domain.CanonPath]*domain.ModuleData
	Order   []domain.CanonPath
}

// Get returns the ModuleData for path, if present.
func (c *Cache) Get(path domain.CanonPath) (*domain.ModuleData, bool) {
	m, ok := c.Modules[path]
	return m, ok
}

// Task reports incremental progress for one phase of Build.
type Task interface {
	Increment(n int)
	Complete()
}

// Progress starts a Task for a named phase with a known total. A nil
// Progress passed to Build is treated as NoOpProgress.
type Progress interface {
	StartTask(description string, total int) Task
}

// NoOpProgress implements Progress with no observable behavior, the
// default when a caller (such as a test, or `plank check`) does not want
// a progress bar.
type NoOpProgress struct{}

func (NoOpProgress) StartTask(string, int) Task { return noOpTask{} }

type noOpTask struct{}

func (noOpTask) Increment(int) {}
func (noOpTask) Complete()     {}

// Build performs the breadth-first traversal described in spec.md §4.1,
// seeded by rootPath. A fatal error (IO, Parse, Resolve, or
// UnsupportedFeature) aborts the traversal immediately: the returned
// Cache reflects only modules merged before the failure, and the
// returned error is also the Collector's Fatal().
func Build(ctx context.Context, rootPath string, resolver resolve.Resolver, progress Progress) (*Cache, *diag.Collector, error) {
	if progress == nil {
		progress = NoOpProgress{}
	}
	col := diag.New()

	root, err := respath.Canonicalize(rootPath)
	if err != nil {
		ioErr := domain.NewIOError(stageName, domain.CanonPath(rootPath), "%v", err)
		col.Add(ioErr)
		return nil, col, ioErr
	}

	cache := &Cache{Root: root, Modules: make(map[domain.CanonPath]*domain.ModuleData)}
	visited := map[domain.CanonPath]bool{root: true}
	frontier := []domain.CanonPath{root}

	for len(frontier) > 0 {
		results := make([]parseResult, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for i, p := range frontier {
			i, p := i, p
			g.Go(func() error {
				data, errs := parseModule(gctx, p, resolver)
				results[i] = parseResult{path: p, data: data, errs: errs}
				return nil
			})
		}
		_ = g.Wait()

		task := progress.StartTask("parsing modules", len(frontier))
		var next []domain.CanonPath
		for _, r := range results {
			task.Increment(1)
			for _, e := range r.errs {
				col.Add(e)
			}
			if fatal := col.Fatal(); fatal != nil {
				task.Complete()
				return cache, col, fatal
			}
			if r.data == nil {
				continue
			}
			cache.Modules[r.path] = r.data
			cache.Order = append(cache.Order, r.path)
			for _, dep := range r.data.Dependencies {
				if !visited[dep] {
					visited[dep] = true
					next = append(next, dep)
				}
			}
		}
		task.Complete()
		frontier = next
	}

	return cache, col, nil
}

type parseResult struct {
	path domain.CanonPath
	data *domain.ModuleData
	errs []*domain.Error
}

// parseModule reads, parses, and scans one module: collecting its
// dependency map and the stage-1 unsupported-feature rejections (spec.md
// §4.1: default export, export =, import =, namespace import/export,
// declare namespace/module).
func parseModule(ctx context.Context, path domain.CanonPath, resolver resolve.Resolver) (*domain.ModuleData, []*domain.Error) {
	select {
	case <-ctx.Done():
		return nil, []*domain.Error{domain.NewIOError(stageName, path, "%v", ctx.Err())}
	default:
	}

	src, err := os.ReadFile(string(path))
	if err != nil {
		return nil, []*domain.Error{domain.NewIOError(stageName, path, "%v", err)}
	}

	ast, err := parser.ParseForLanguage(string(path), src)
	if err != nil {
		return nil, []*domain.Error{domain.NewParseError(stageName, path, "%v", err)}
	}

	dir := respath.Dir(path)
	deps := make(map[string]domain.CanonPath)
	var errs []*domain.Error

	resolveDep := func(sourceNode *parser.Node) {
		if sourceNode == nil {
			return
		}
		spec := sourceNode.StringValue()
		if _, ok := deps[spec]; ok {
			return
		}
		canon, rerr := resolver.Resolve(dir, spec)
		if rerr != nil {
			errs = append(errs, domain.NewResolveError(stageName, path, spanOf(sourceNode), "%v", rerr))
			return
		}
		deps[spec] = canon
	}

	for _, item := range ast.Children {
		switch item.Type {
		case parser.NodeImportDeclaration:
			resolveDep(item.Source)
			for _, spec := range item.Specifiers {
				switch spec.Type {
				case parser.NodeImportDefaultSpecifier:
					errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(spec), domain.FeatureDefaultImport))
				case parser.NodeImportNamespaceSpecifier:
					errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(spec), domain.FeatureNamespaceImport))
				}
			}

		case parser.NodeImportEquals:
			errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(item), domain.FeatureImportEquals))

		case parser.NodeExportDefaultDeclaration:
			errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(item), domain.FeatureDefaultExport))

		case parser.NodeExportAllDeclaration:
			if item.Name != "" {
				errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(item), domain.FeatureNamespaceExport))
				continue
			}
			resolveDep(item.Source)

		case parser.NodeExportNamedDeclaration:
			resolveDep(item.Source)

		case parser.NodeExportEquals:
			errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(item), domain.FeatureExportEquals))

		case parser.NodeNamespaceDeclaration:
			errs = append(errs, domain.NewUnsupportedFeatureError(stageName, path, spanOf(item), domain.FeatureTsNamespace))
		}
	}

	return &domain.ModuleData{Path: path, AST: ast, Dependencies: deps}, errs
}

func spanOf(n *parser.Node) *domain.Span {
	if n == nil {
		return nil
	}
	return &domain.Span{
		StartLine: n.Location.StartLine,
		StartCol:  n.Location.StartCol,
		EndLine:   n.Location.EndLine,
		EndCol:    n.Location.EndCol,
	}
}
