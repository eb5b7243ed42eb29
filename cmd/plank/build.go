package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plank-ts/plank/internal/batch"
	"github.com/plank-ts/plank/internal/config"
	"github.com/plank-ts/plank/internal/emit"
	"github.com/plank-ts/plank/internal/flavor"
	"github.com/plank-ts/plank/internal/modcache"
)

var (
	buildOutputDir  string
	buildConfigPath string
	buildFlavor     string
	buildEmitFlags  []string
	buildNoProgress bool
	buildStrict     bool
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build -i <ROOT_MODULE> -o <DIR_PATH>",
		Short: "Generate binding artifacts from a root declaration module",
		Long: `build runs the full export-resolution pipeline over a root .d.ts
module and its transitive imports, and writes the JSON descriptor dump
and/or the JS re-export shim into the output directory (spec.md §6).

Examples:
  plank build -i root.d.ts -o dist/
  plank build -i root.d.ts -o dist/ --emit json
  plank build -i src/ -o dist/ --flavor minimal`,
		RunE: runBuild,
	}

	cmd.Flags().StringP("input", "i", "", "Path to the root declaration file, or a directory to scan (required)")
	cmd.Flags().StringVarP(&buildOutputDir, "output", "o", "", "Output directory; must already exist (required)")
	cmd.Flags().StringVarP(&buildConfigPath, "config", "c", "", "Path to plank.config.yaml")
	cmd.Flags().StringVar(&buildFlavor, "flavor", "", "Target flavor: minimal, standard, or full (overrides config)")
	cmd.Flags().StringSliceVar(&buildEmitFlags, "emit", nil, "Artifacts to emit: json, js (overrides config)")
	cmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&buildStrict, "strict", false, "Emit a diagnostic for every type form that collapses to any (overrides config)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")

	info, err := os.Stat(buildOutputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("output directory %q does not exist", buildOutputDir)
	}

	cfg, err := config.LoadConfig(buildConfigPath, input)
	if err != nil {
		return err
	}
	if buildFlavor != "" {
		cfg.Flavor = config.Flavor(buildFlavor)
	}
	if len(buildEmitFlags) > 0 {
		cfg.Output.Emit = buildEmitFlags
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = buildStrict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	roots, err := collectRoots(input, cfg)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return fmt.Errorf("no declaration files found under %s", input)
	}

	preset := config.GetFlavorPresets()[cfg.Flavor]
	target := flavor.NewTarget(string(cfg.Flavor), preset.Features)

	ctx := context.Background()

	// A single root gets its own progress bar; a directory of roots runs
	// through internal/batch instead, each root silent and independent
	// (spec.md §5: a fatal error in one module graph must not be
	// observable as a failure of another).
	if len(roots) == 1 {
		outcome := buildOne(ctx, roots[0], newCLIProgress(!buildNoProgress), target, cfg.Output.Emit, cfg.Strict)
		reportBuildOutcome(outcome)
		if outcome.err != nil {
			return &checkExitError{Code: 1}
		}
		return nil
	}

	outcomes := make([]buildOutcome, len(roots))
	tasks := make([]batch.Task, len(roots))
	for i, root := range roots {
		i, root := i, root
		tasks[i] = batch.NewTaskFunc(root, func(taskCtx context.Context) error {
			outcomes[i] = buildOne(taskCtx, root, modcache.NoOpProgress{}, target, cfg.Output.Emit, cfg.Strict)
			return outcomes[i].err
		})
	}
	_ = batch.NewExecutor().Run(ctx, tasks)

	exitCode := 0
	for _, outcome := range outcomes {
		reportBuildOutcome(outcome)
		if outcome.err != nil {
			exitCode = 1
		}
	}
	if exitCode != 0 {
		return &checkExitError{Code: exitCode}
	}
	return nil
}

// buildOutcome is one root's result, reported after every root in the
// batch has finished so output order matches roots' order regardless of
// which goroutine finished first.
type buildOutcome struct {
	root string
	res  *pipelineResult
	err  error
}

func buildOne(ctx context.Context, root string, progress modcache.Progress, target flavor.Target, emitArtifacts []string, strict bool) buildOutcome {
	res, err := runPipeline(ctx, root, progress, strict)
	if err != nil {
		return buildOutcome{root: root, err: err}
	}
	if compatErrs := detectAndCheck(res, target); len(compatErrs) > 0 {
		return buildOutcome{root: root, res: res, err: compatErrs[0]}
	}

	stem := strings.TrimSuffix(filepath.Base(root), filepath.Ext(root))
	stem = strings.TrimSuffix(stem, ".d")
	if err := writeArtifacts(buildOutputDir, stem, emitArtifacts, res); err != nil {
		return buildOutcome{root: root, res: res, err: err}
	}
	return buildOutcome{root: root, res: res}
}

func reportBuildOutcome(o buildOutcome) {
	if o.res != nil {
		for _, w := range o.res.Warnings {
			printWarning(os.Stderr, w)
		}
	}
	if o.err != nil {
		printDiagnostic(os.Stderr, "build", o.err)
		return
	}
	fmt.Printf("wrote %s -> %s\n", o.root, buildOutputDir)
}

// writeArtifacts writes only the artifacts named in emitArtifacts,
// reusing emit.ToFile's naming convention for either-or selection rather
// than always producing both.
func writeArtifacts(dir, stem string, emitArtifacts []string, res *pipelineResult) error {
	wantJSON, wantJS := false, false
	for _, a := range emitArtifacts {
		switch a {
		case "json":
			wantJSON = true
		case "js":
			wantJS = true
		}
	}
	if wantJSON && wantJS {
		return emit.ToFile(dir, stem, res.Typed, res.Arena)
	}
	if wantJSON {
		f, err := os.Create(filepath.Join(dir, stem+".arr.json"))
		if err != nil {
			return err
		}
		defer f.Close()
		return emit.JSON(f, res.Typed, res.Arena)
	}
	if wantJS {
		f, err := os.Create(filepath.Join(dir, stem+".arr.js"))
		if err != nil {
			return err
		}
		defer f.Close()
		return emit.JSShim(f, res.Root, stem, res.Typed)
	}
	return nil
}
