package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/plank-ts/plank/internal/bindgraph"
	"github.com/plank-ts/plank/internal/emit"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/reduce"
	"github.com/plank-ts/plank/internal/resolve"
)

var (
	graphOutputPath string
	graphRankDir    string
	graphNoLegend   bool
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph -i <ROOT_MODULE>",
		Short: "Render a root module's import graph as Graphviz DOT",
		Long: `graph builds the module cache for a root declaration file and
writes its import graph in Graphviz DOT format, marking any module that
participates in a re-export cycle (spec.md §8, "cycle-safe" scenario).

Examples:
  plank graph -i root.d.ts | dot -Tsvg -o deps.svg
  plank graph -i root.d.ts -o deps.dot --rank-dir LR`,
		RunE: runGraph,
	}

	cmd.Flags().StringP("input", "i", "", "Path to the root declaration file (required)")
	cmd.Flags().StringVarP(&graphOutputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&graphRankDir, "rank-dir", "TB", "Layout direction: TB, LR, BT, RL")
	cmd.Flags().BoolVar(&graphNoLegend, "no-legend", false, "Disable the legend subgraph")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")

	ctx := context.Background()
	resolver := resolve.NewDefaultResolver()
	cache, col, err := modcache.Build(ctx, input, resolver, nil)
	if err != nil {
		return err
	}
	if fatal := col.Fatal(); fatal != nil {
		return fatal
	}
	for _, w := range col.Warnings() {
		printWarning(os.Stderr, w)
	}

	bgraph, col, err := bindgraph.Init(cache)
	if err != nil {
		return err
	}
	for _, w := range col.Warnings() {
		printWarning(os.Stderr, w)
	}

	reExport := reduce.ReExportGraph(bgraph)
	cycles := reduce.NewReExportCycleDetector().Detect(reExport)

	w := os.Stdout
	if graphOutputPath != "" {
		f, err := os.Create(graphOutputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return emit.WriteModuleGraphDOT(w, cache, cycles, &emit.DOTConfig{ShowLegend: !graphNoLegend, RankDir: graphRankDir})
}
