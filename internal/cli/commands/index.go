package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/pkg/config"
	"github.com/talklog/talklog/pkg/parser"
	"github.com/talklog/talklog/pkg/stats"
	"github.com/talklog/talklog/pkg/store"
)

// IndexOptions holds command-line options for the index command.
type IndexOptions struct {
	Config string
	DB     string
	Locale string
	Quiet  bool
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	opts := &IndexOptions{}

	cmd := &cobra.Command{
		Use:   "index [export-file...]",
		Short: "Parse chat exports into a local SQLite database",
		Long: `Parse one or more exported chat logs and store their messages and
events in a SQLite database for later querying. Re-indexing the same
export file replaces its previous rows.

The database path is taken from --db, then the config file, then the
TALKLOG_DB environment variable, and defaults to ~/.talklog/talklog.db.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (optional)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path")
	cmd.Flags().StringVarP(&opts.Locale, "locale", "l", "", "Force export locale (en|ko)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only print the final totals")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string, opts *IndexOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}

	sources := args
	if len(sources) == 0 {
		sources = cfg.Sources
	}
	if len(sources) == 0 {
		return fmt.Errorf("no export files given (pass paths or set sources in a config file)")
	}

	files, err := parser.ExpandGlobs(sources)
	if err != nil {
		return fmt.Errorf("expanding export paths: %w", err)
	}

	p, err := newParser(opts.Locale, cfg)
	if err != nil {
		return err
	}

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath == "" {
		dbPath = config.DefaultStorePath()
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	for _, file := range files {
		room, err := p.ParseFile(ctx, file)
		if err != nil {
			return err
		}

		id, err := st.IndexChatroom(file, room)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", file, err)
		}

		if !opts.Quiet {
			s := stats.Collect(room)
			fmt.Printf("%s: indexed %d messages, %d events as %s\n",
				file, s.TotalMessages, len(room.Events), id)
			if len(room.Skipped) > 0 {
				fmt.Fprintf(os.Stderr, "%s: %d lines skipped\n", file, len(room.Skipped))
			}
		}
	}

	rooms, err := st.ChatroomCount()
	if err != nil {
		return err
	}
	msgs, err := st.MessageCount()
	if err != nil {
		return err
	}

	fmt.Printf("Store %s: %d chatroom(s), %d messages\n", dbPath, rooms, msgs)
	return nil
}
