// Package resolve maps an import specifier, as written in a declaration
// module, to the canonical path of the module it names. spec.md §9 Design
// Notes flags the exact bare-specifier/extension-precedence rules as an
// Open Question ("implementers should make the resolver pluggable");
// this package resolves that by shipping a relative-only DefaultResolver
// plus a HookResolver seam for bare specifiers (SPEC_FULL.md §12 decision
// 1: bare specifiers are rejected unless a hook is supplied).
package resolve

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/respath"
)

// extensionOrder is tried, in order, against a relative specifier that
// does not already resolve to an existing file (spec.md §6: "Extension
// inference appends .d.ts then .ts then (for directories) /index.d.ts").
var extensionOrder = []string{"", ".d.ts", ".ts", "/index.d.ts"}

// Resolver maps a specifier, relative to fromDir, to a canonical path.
type Resolver interface {
	Resolve(fromDir, specifier string) (domain.CanonPath, error)
}

// BareSpecifierHook resolves a non-relative specifier (a bare package
// name) to a filesystem path. ok is false when the hook has no opinion,
// in which case the caller falls back to domain.ResolveError.
type BareSpecifierHook func(fromDir, specifier string) (path string, ok bool)

type cacheKey struct {
	fromDir   string
	specifier string
}

// DefaultResolver resolves relative specifiers (./x, ../x) against the
// importing module's directory, per spec.md §6. Non-relative specifiers
// are rejected unless a BareSpecifierHook is installed.
//
// Resolution results are memoized in a size-bounded LRU
// (github.com/hashicorp/golang-lru/v2, grounded on gnana997-uispec's use
// of the same library for its own resolution caches): resolving a
// specifier is a pure, idempotent filesystem lookup, so an eviction only
// costs a recompute, never a correctness issue — unlike internal/typify's
// memo table, which must never evict (SPEC_FULL.md §4.1).
type DefaultResolver struct {
	hook  BareSpecifierHook
	cache *lru.Cache[cacheKey, domain.CanonPath]
}

// defaultCacheSize bounds the resolver's LRU; resolution is cheap to redo,
// so this only trades a little memory for a few extra stat calls on a
// cold entry.
const defaultCacheSize = 4096

// NewDefaultResolver creates a resolver with no bare-specifier hook.
func NewDefaultResolver() *DefaultResolver {
	c, _ := lru.New[cacheKey, domain.CanonPath](defaultCacheSize)
	return &DefaultResolver{cache: c}
}

// NewHookResolver creates a resolver that falls back to hook for
// non-relative specifiers.
func NewHookResolver(hook BareSpecifierHook) *DefaultResolver {
	r := NewDefaultResolver()
	r.hook = hook
	return r
}

// Resolve implements Resolver.
func (r *DefaultResolver) Resolve(fromDir, specifier string) (domain.CanonPath, error) {
	key := cacheKey{fromDir: fromDir, specifier: specifier}
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached, nil
		}
	}

	resolved, err := r.resolveUncached(fromDir, specifier)
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.Add(key, resolved)
	}
	return resolved, nil
}

func (r *DefaultResolver) resolveUncached(fromDir, specifier string) (domain.CanonPath, error) {
	if !isRelative(specifier) {
		if r.hook != nil {
			if path, ok := r.hook(fromDir, specifier); ok {
				return respath.Canonicalize(path)
			}
		}
		return "", fmt.Errorf("bare specifier %q is not supported without a resolver hook", specifier)
	}

	base := filepath.Join(fromDir, specifier)
	for _, suffix := range extensionOrder {
		candidate := base + suffix
		if respath.Exists(candidate) {
			return respath.Canonicalize(candidate)
		}
	}
	return "", fmt.Errorf("could not resolve %q from %q: tried %v", specifier, fromDir, withBase(base, extensionOrder))
}

func withBase(base string, suffixes []string) []string {
	out := make([]string, len(suffixes))
	for i, s := range suffixes {
		out[i] = base + s
	}
	return out
}

func isRelative(specifier string) bool {
	return len(specifier) > 0 && (specifier[0] == '.' || specifier[0] == '/')
}
