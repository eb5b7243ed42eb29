package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plank-ts/plank/internal/config"
	"github.com/plank-ts/plank/internal/flavor"
)

// checkExitError carries a process exit code through cobra's error path,
// the way the teacher's cmd/jscan/check.go's CheckExitError lets a
// RunE-returning command pick a non-1 exit code without printing a
// duplicate "Error: ..." line for output the command already printed.
type checkExitError struct {
	Code    int
	Message string
}

func (e *checkExitError) Error() string { return e.Message }

var (
	checkConfigPath string
	checkFlavor     string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check -i <ROOT_MODULE>",
		Short: "Validate a module graph against a target flavor without emitting",
		Long: `check runs the pipeline through flavor detection (spec.md §4.5) and
reports any feature the root module's export surface uses that the
target flavor does not support, without writing any artifacts.

Exit codes:
  0 - compatible
  1 - incompatible
  2 - pipeline error (config, resolution, parsing, or typification failed
      before compatibility could even be evaluated)
`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("input", "i", "", "Path to the root declaration file, or a directory to scan (required)")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to plank.config.yaml")
	cmd.Flags().StringVar(&checkFlavor, "flavor", "", "Target flavor: minimal, standard, or full (overrides config)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")

	cfg, err := config.LoadConfig(checkConfigPath, input)
	if err != nil {
		return &checkExitError{Code: 2, Message: err.Error()}
	}
	if checkFlavor != "" {
		cfg.Flavor = config.Flavor(checkFlavor)
	}

	roots, err := collectRoots(input, cfg)
	if err != nil {
		return &checkExitError{Code: 2, Message: err.Error()}
	}
	if len(roots) == 0 {
		return &checkExitError{Code: 2, Message: "no declaration files found under " + input}
	}

	preset := config.GetFlavorPresets()[cfg.Flavor]
	target := flavor.NewTarget(string(cfg.Flavor), preset.Features)

	ctx := context.Background()
	pipelineErrors, incompatible := 0, 0
	for _, root := range roots {
		res, err := runPipeline(ctx, root, nil, cfg.Strict)
		if err != nil {
			printDiagnostic(os.Stderr, "check", err)
			pipelineErrors++
			continue
		}
		for _, w := range res.Warnings {
			printWarning(os.Stderr, w)
		}
		compatErrs := detectAndCheck(res, target)
		if len(compatErrs) == 0 {
			fmt.Printf("%s: compatible with %s\n", root, cfg.Flavor)
			continue
		}
		for _, e := range compatErrs {
			printDiagnostic(os.Stderr, "check", e)
		}
		incompatible++
	}

	// Exit codes follow SPEC_FULL.md §6: a pipeline error (parsing,
	// resolution, typification) takes precedence over a mere
	// incompatibility, since it means compatibility was never fully
	// evaluated for at least one root.
	if pipelineErrors > 0 {
		return &checkExitError{Code: 2}
	}
	if incompatible > 0 {
		return &checkExitError{Code: 1}
	}
	return nil
}
