// Package respath canonicalizes filesystem paths into the identity used
// throughout the pipeline.
package respath

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/plank-ts/plank/domain"
)

// Canonicalize resolves path to an absolute, symlink-resolved form and
// wraps it as a domain.CanonPath. Two canonical paths are equal iff they
// denote the same on-disk file.
func Canonicalize(path string) (domain.CanonPath, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The file may not exist yet on disk (e.g. a probe during extension
		// inference); fall back to the absolute form so callers can still
		// stat it and report ENOENT with a sensible path.
		if os.IsNotExist(err) {
			return domain.CanonPath(filepath.Clean(abs)), err
		}
		return "", err
	}

	return domain.CanonPath(filepath.Clean(resolved)), nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Dir returns the canonical directory containing p.
func Dir(p domain.CanonPath) string {
	return filepath.Dir(string(p))
}

// isDeclarationFile reports whether path names a TypeScript declaration
// file (".d.ts" or one of its module-kind variants).
func isDeclarationFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts")
}

// isExcluded reports whether path matches any exclude glob, either against
// its base name or as a substring anywhere in the full path (so a pattern
// like "node_modules" excludes the whole subtree without a trailing glob).
func isExcluded(path string, excludePatterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range excludePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// loadGitIgnore loads root/.gitignore, returning nil if it does not exist
// or cannot be parsed.
func loadGitIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// CollectDeclarationFiles resolves paths into a flat list of `.d.ts` root
// candidates: a path naming a file is taken as-is, a path naming a
// directory is walked recursively, honoring that directory's .gitignore
// and excludePatterns (glob, matched against both base name and full
// path). includePatterns is currently unused by the walk itself -- it
// exists for a future non-extension-based selection rule -- and is
// accepted so callers don't need two code paths depending on whether a
// root is a file or a directory.
func CollectDeclarationFiles(paths []string, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if isDeclarationFile(path) && !isExcluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		gi := loadGitIgnore(path)
		err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if gi != nil {
				if rel, relErr := filepath.Rel(path, filePath); relErr == nil && gi.MatchesPath(rel) {
					if info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
			if info.IsDir() {
				dirName := filepath.Base(filePath)
				for _, pattern := range excludePatterns {
					if pattern == dirName {
						return filepath.SkipDir
					}
					if matched, err := filepath.Match(pattern, dirName); err == nil && matched {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if isDeclarationFile(filePath) && !isExcluded(filePath, excludePatterns) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
