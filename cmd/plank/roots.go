package main

import (
	"os"

	"github.com/plank-ts/plank/internal/config"
	"github.com/plank-ts/plank/internal/respath"
)

// collectRoots resolves the -i argument into one or more root module
// paths: a file is taken as-is, a directory is scanned per cfg.Analysis
// (exclude globs and Recursive; only a recursive walk also honors the
// directory's .gitignore, and include globs are not applied).
func collectRoots(input string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}
	paths := []string{input}
	if !cfg.Analysis.Recursive {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		paths = paths[:0]
		for _, e := range entries {
			if !e.IsDir() {
				paths = append(paths, input+string(os.PathSeparator)+e.Name())
			}
		}
	}
	return respath.CollectDeclarationFiles(paths, cfg.Analysis.IncludePatterns, cfg.Analysis.ExcludePatterns)
}
