package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/plank-ts/plank/internal/config"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a plank configuration file",
		Long: `init generates a documented plank.config.yaml with sensible defaults.

Examples:
  # Create plank.config.yaml in the current directory
  plank init

  # Custom output path
  plank init --config custom.yaml

  # Overwrite an existing file
  plank init --force

  # Generate a smaller config with no comments
  plank init --minimal

  # Interactive setup wizard
  plank init --interactive`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "plank.config.yaml", "Output path for the config file")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	cmd.Flags().Bool("minimal", false, "Generate a minimal config with no comments")
	cmd.Flags().BoolP("interactive", "i", false, "Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	flavor := config.FlavorStandard

	if interactive {
		var err error
		flavor, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	content := config.GetConfigTemplate(flavor)
	if minimal {
		content = config.GetMinimalConfigTemplate(flavor)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if abs, err := filepath.Abs(configPath); err == nil {
		displayPath = abs
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'plank build -i <root.d.ts> -o <dir>' to generate bindings.")
	return nil
}

func runInteractiveSetup(defaultPath string) (config.Flavor, string, error) {
	fmt.Println()
	fmt.Println("plank Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	presets := config.GetFlavorPresets()
	flavors := []struct {
		Flavor      config.Flavor
		Description string
	}{
		{config.FlavorMinimal, presets[config.FlavorMinimal].Description},
		{config.FlavorStandard, presets[config.FlavorStandard].Description},
		{config.FlavorFull, presets[config.FlavorFull].Description},
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Flavor | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Flavor | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Flavor | green }}",
	}

	prompt := promptui.Select{
		Label:     "Which target flavor should plank check against?",
		Items:     flavors,
		Templates: templates,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("flavor selection cancelled: %w", err)
	}
	selected := flavors[idx].Flavor

	fmt.Println()
	pathPrompt := promptui.Prompt{Label: "Output file path", Default: defaultPath}
	outputPath, err := pathPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultPath
	}

	return selected, outputPath, nil
}
