package emit

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/version"
)

// DOTConfig controls Graphviz DOT rendering of a module graph. Grounded
// on service/dot_formatter.go's DOTFormatterConfig, trimmed to the
// options that still make sense once "dependency" means "import
// specifier resolved to a canonical path" rather than jscan's richer
// import/dynamic-import/type-only/re-export edge taxonomy.
type DOTConfig struct {
	// ShowLegend includes a legend subgraph.
	ShowLegend bool
	// RankDir is the Graphviz layout direction: TB, LR, BT, RL.
	RankDir string
}

// DefaultDOTConfig returns a DOTConfig with sensible defaults.
func DefaultDOTConfig() *DOTConfig {
	return &DOTConfig{ShowLegend: true, RankDir: "TB"}
}

var validRankDirs = map[string]bool{"TB": true, "LR": true, "BT": true, "RL": true}

// WriteModuleGraphDOT renders cache's import graph as Graphviz DOT,
// highlighting modules that participate in a re-export cycle (cycles,
// from internal/reduce.ReExportCycleDetector.Detect on the unreduced
// binding graph's re-export edges).
func WriteModuleGraphDOT(w io.Writer, cache *modcache.Cache, cycles [][]domain.CanonPath, cfg *DOTConfig) error {
	if cfg == nil {
		cfg = DefaultDOTConfig()
	}
	if !validRankDirs[cfg.RankDir] {
		return fmt.Errorf("invalid rank direction %q: must be one of TB, LR, BT, RL", cfg.RankDir)
	}

	inCycle := make(map[domain.CanonPath]bool)
	for _, scc := range cycles {
		for _, p := range scc {
			inCycle[p] = true
		}
	}

	fmt.Fprintf(w, "/* plank module graph - version %s */\n", version.GetVersion())
	fmt.Fprintln(w, "digraph modules {")
	fmt.Fprintf(w, "    rankdir=%s;\n", cfg.RankDir)
	fmt.Fprintln(w, "    node [shape=box, style=filled, fontname=\"Helvetica\", fillcolor=\"#90EE90\", color=\"#228B22\"];")
	fmt.Fprintln(w, "    edge [fontname=\"Helvetica\", fontsize=10];")
	fmt.Fprintln(w)

	var paths []domain.CanonPath
	for p := range cache.Modules {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, p := range paths {
		id := dotID(p)
		label := escapeDOTLabel(shortModuleName(p))
		if inCycle[p] {
			fmt.Fprintf(w, "    %s [label=%q, fillcolor=\"#FF6B6B\", color=\"#DC143C\"];\n", id, label)
		} else {
			fmt.Fprintf(w, "    %s [label=%q];\n", id, label)
		}
	}
	fmt.Fprintln(w)

	for _, p := range paths {
		deps := cache.Modules[p].Dependencies
		var specs []string
		for s := range deps {
			specs = append(specs, s)
		}
		sort.Strings(specs)
		for _, s := range specs {
			to := deps[s]
			if _, ok := cache.Modules[to]; !ok {
				continue
			}
			style := ""
			if inCycle[p] && inCycle[to] {
				style = " [penwidth=2, color=\"#DC143C\"]"
			}
			fmt.Fprintf(w, "    %s -> %s%s;\n", dotID(p), dotID(to), style)
		}
	}

	if cfg.ShowLegend {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "    subgraph cluster_legend {")
		fmt.Fprintln(w, "        label=\"Legend\"; style=filled; fillcolor=\"#F5F5F5\"; color=\"#CCCCCC\"; fontsize=10;")
		fmt.Fprintln(w, "        legend_ok [label=\"module\", fillcolor=\"#90EE90\", color=\"#228B22\"];")
		fmt.Fprintln(w, "        legend_cycle [label=\"in re-export cycle\", fillcolor=\"#FF6B6B\", color=\"#DC143C\"];")
		fmt.Fprintln(w, "    }")
	}

	fmt.Fprintln(w, "}")
	return nil
}

var dotIDReplacer = strings.NewReplacer(
	"/", "__", ".", "_", "-", "_", "@", "_at_", " ", "_", ":", "_",
	"(", "_", ")", "_", "[", "_", "]", "_", "{", "_", "}", "_",
)

func dotID(p domain.CanonPath) string {
	id := dotIDReplacer.Replace(string(p))
	if id == "" || !isValidDOTIDStart(id[0]) {
		id = "_" + id
	}
	return id
}

func isValidDOTIDStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

var dotLabelReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "", "\t", `\t`)

func escapeDOTLabel(label string) string {
	return dotLabelReplacer.Replace(label)
}

func shortModuleName(p domain.CanonPath) string {
	s := string(p)
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}
