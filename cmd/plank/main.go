// Command plank turns a root TypeScript declaration module into a
// language-neutral export description plus a type-erased JS re-export
// shim, per spec.md §6. Grounded on the teacher's cmd/jscan/main.go
// (a bare cobra.Command tree registering one subcommand per file, a
// version command, and a single os.Exit(1) error path), generalized to
// plank's four subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plank-ts/plank/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plank",
		Short: "plank - TypeScript declaration binding generator",
		Long: `plank ingests a TypeScript declaration module (and its transitive
imports) and emits a language-neutral description of what it exports,
plus a thin JS shim re-exporting the original module under a normalized
surface.`,
		Version: version.Version,
	}

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*checkExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("plank version %s\n", version.GetVersion())
			}
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
