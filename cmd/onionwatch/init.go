package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/onionwatch.yaml templates/seeds.txt templates/keywords.txt
var initTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize OnionWatch configuration files",
		Long: `Init creates a starter configuration file plus example seed and keyword
list files in the current directory.

The generated files include:
- .onionwatch.yaml with documented defaults
- seeds.txt with the expected onion URL format
- keywords.txt with example monitoring keywords

Examples:
  # Create starter files in the current directory
  onionwatch init

  # Write the config to a specific path (lists are placed alongside)
  onionwatch init -o configs/onionwatch.yaml

  # Force overwrite existing files
  onionwatch init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", ".onionwatch.yaml",
		"Output path for the configuration file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	targets := []struct {
		template string
		path     string
	}{
		{"templates/onionwatch.yaml", outputPath},
		{"templates/seeds.txt", filepath.Join(dir, "seeds.txt")},
		{"templates/keywords.txt", filepath.Join(dir, "keywords.txt")},
	}

	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	for _, t := range targets {
		if !force {
			if _, err := os.Stat(t.path); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", t.path)
			}
		}

		content, err := initTemplates.ReadFile(t.template)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		if err := os.WriteFile(t.path, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", t.path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit seeds.txt with the onion services to monitor and")
	fmt.Fprintln(cmd.OutOrStdout(), "keywords.txt with the terms to match, then run:")
	fmt.Fprintln(cmd.OutOrStdout(), "  onionwatch scan --seeds seeds.txt --keywords keywords.txt")

	return nil
}
