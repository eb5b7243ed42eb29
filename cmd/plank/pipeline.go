package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/plank-ts/plank/domain"
	"github.com/plank-ts/plank/internal/bindgraph"
	"github.com/plank-ts/plank/internal/flavor"
	"github.com/plank-ts/plank/internal/modcache"
	"github.com/plank-ts/plank/internal/reduce"
	"github.com/plank-ts/plank/internal/resolve"
	"github.com/plank-ts/plank/internal/typify"
)

// pipelineResult is the terminal state of stages 2-5 (SPEC_FULL.md §2)
// for one root module.
type pipelineResult struct {
	Root     domain.CanonPath
	Cache    *modcache.Cache
	Typed    *domain.TypedModuleGraph
	Arena    *domain.TypeArena
	Warnings []*domain.Error
}

// runPipeline drives module cache construction through typification for
// one root module, stopping at the first fatal diagnostic. It never
// exits the process; callers decide how a fatal error maps to an exit
// code (build vs. check report it differently). strict enables the
// "diagnostic when strictness is enabled" branch of spec.md §4.4 step 6
// for an otherwise-silent Any-fallback type conversion.
func runPipeline(ctx context.Context, rootPath string, progress modcache.Progress, strict bool) (*pipelineResult, error) {
	resolver := resolve.NewDefaultResolver()

	cache, col, err := modcache.Build(ctx, rootPath, resolver, progress)
	if err != nil {
		return nil, err
	}
	if fatal := col.Fatal(); fatal != nil {
		return nil, fatal
	}

	graph, col, err := bindgraph.Init(cache)
	if err != nil {
		return nil, err
	}
	warnings := col.Warnings()

	reduced, col, err := reduce.Reduce(graph)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, col.Warnings()...)

	typed, arena, col, err := typify.Typify(cache, reduced, strict)
	if err != nil {
		return nil, err
	}
	// Every diagnostic typify records is advisory, strict-mode-only
	// commentary on a conversion it already resolved (to Any) rather than
	// aborted on -- col.All() instead of col.Warnings() so an
	// UnsupportedFeature diagnostic (Fatal() by kind) still reaches the
	// user instead of being dropped by the fatal/non-fatal split that
	// other stages use to decide whether to keep going.
	warnings = append(warnings, col.All()...)

	return &pipelineResult{Root: cache.Root, Cache: cache, Typed: typed, Arena: arena, Warnings: warnings}, nil
}

// printDiagnostic writes err to w in "<stage>: <path>[:span]: <kind>:
// <message>" form, colorized when w is a terminal (spec.md §6: "a
// human-readable diagnostic to standard error naming the stage, module,
// and span when available").
func printDiagnostic(w io.Writer, prefix string, err error) {
	label := prefix
	if colorOutput(w) {
		label = color.New(color.FgRed, color.Bold).Sprint(prefix)
	}
	fmt.Fprintf(w, "%s: %v\n", label, err)
}

func printWarning(w io.Writer, err *domain.Error) {
	label := "warning"
	if colorOutput(w) {
		label = color.New(color.FgYellow, color.Bold).Sprint("warning")
	}
	fmt.Fprintf(w, "%s: %v\n", label, err)
}

func colorOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// cliProgress adapts modcache.Progress to github.com/schollz/progressbar,
// shown only when stderr is a terminal. Grounded on
// service/progress_manager.go's ProgressManagerImpl/NoOpProgressManager
// split, generalized from jscan's four fixed analysis phases to
// modcache's single "parsing modules" phase per BFS frontier.
type cliProgress struct{}

func newCLIProgress(enabled bool) modcache.Progress {
	if enabled && term.IsTerminal(int(os.Stderr.Fd())) {
		return cliProgress{}
	}
	return modcache.NoOpProgress{}
}

func (cliProgress) StartTask(description string, total int) modcache.Task {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)
	return cliTask{bar: bar}
}

type cliTask struct {
	bar *progressbar.ProgressBar
}

func (t cliTask) Increment(n int) { _ = t.bar.Add(n) }
func (t cliTask) Complete()       { _ = t.bar.Finish() }

// detectAndCheck runs flavor detection and compatibility checking for
// res against the named target (spec.md §4.5). It only returns the
// compatibility errors and prints nothing; the caller's command (check
// vs. build) decides how to report them and whether they abort.
func detectAndCheck(res *pipelineResult, target flavor.Target) []*domain.Error {
	detected := flavor.Detect(res.Typed, res.Arena)
	return flavor.Compatible(detected, target)
}
