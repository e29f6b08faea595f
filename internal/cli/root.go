// Package cli provides the command-line interface for talklog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/internal/cli/commands"
	"github.com/talklog/talklog/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		// Skip flags (start with -)
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				// Try to find and execute a plugin
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// Plugin not found - fall through to Cobra for the error
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		// Check if this was an unknown command that could be a plugin
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Format, configuration, or runtime error
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "talklog",
		Short: "Analyze exported KakaoTalk chat logs",
		Long: `talklog parses exported KakaoTalk chat-log text files into messages
and events, then reports descriptive statistics about the chatroom.

It understands:
  - English and Korean export locales (detected from the header)
  - Multi-line messages, date tags, invite/leave events
  - Rich content: photos, videos, files, links, stickers, calls

PLUGINS:
  talklog supports plugins for extended functionality. Plugins are
  standalone binaries named talklog-<command> that are automatically
  discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the talklog binary
    2. ~/.talklog/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewIndexCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
