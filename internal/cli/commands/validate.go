package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/pkg/config"
	"github.com/talklog/talklog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a talklog configuration file without running analysis.

Checks:
  - YAML syntax
  - Required fields
  - Locale and report format values
  - Webhook URL and trigger settings
  - Export file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Sources:  %d pattern(s)\n", len(cfg.Sources))
	if cfg.Locale != "" {
		fmt.Printf("  Locale:   %s\n", cfg.Locale)
	} else {
		fmt.Printf("  Locale:   auto-detect\n")
	}
	fmt.Printf("  Format:   %s\n", reportFormat(cfg))
	if cfg.Store.Path != "" {
		fmt.Printf("  Store:    %s\n", cfg.Store.Path)
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Printf("\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Printf("  %d. %s (%s, trigger: %s)\n", i+1, name, wh.URL, wh.Trigger)
		}
	}

	// Check if export files exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Printf("\nWarning: Error expanding source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Printf("\nWarning: No files match source patterns\n")
	} else {
		fmt.Printf("\nExport files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Printf("  - %s\n", f)
		}
	}

	return nil
}

func reportFormat(cfg *config.Config) string {
	if cfg.Report.Format == "" {
		return config.DefaultReportFormat
	}
	return cfg.Report.Format
}
