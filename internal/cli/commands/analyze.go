package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/pkg/config"
	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/output"
	"github.com/talklog/talklog/pkg/parser"
	"github.com/talklog/talklog/pkg/stats"
	"github.com/talklog/talklog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Config  string
	Output  string
	Locale  string
	Top     int
	Verbose bool
	Quiet   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [export-file...]",
		Short: "Analyze chat exports and report statistics",
		Long: `Parse one or more exported KakaoTalk chat logs and report statistics:
message/word/character totals, per-participant activity, hourly and
weekday histograms, rich-content counts, and membership events.

Export files may be given as arguments or in a config file. The
locale (English or Korean) is detected from the export header unless
forced with --locale.

Exit codes:
  0 - Analysis completed
  2 - Format, configuration, or runtime error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (optional)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Locale, "locale", "l", "", "Force export locale (en|ko)")
	cmd.Flags().IntVar(&opts.Top, "top", 0, "Show only the N most active participants")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show histograms and skipped-line details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|on_skipped|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
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

	started := time.Now()
	chatrooms := make([]*output.ChatroomReport, 0, len(files))

	for _, file := range files {
		room, err := p.ParseFile(ctx, file)
		if err != nil {
			return err
		}

		if opts.Verbose {
			for _, sk := range room.Skipped {
				fmt.Fprintf(os.Stderr, "%s:%d: skipped: %s\n", file, sk.LineNum, sk.Reason)
			}
		}

		chatrooms = append(chatrooms, &output.ChatroomReport{
			Source: file,
			Stats:  stats.Collect(room),
		})
	}

	report := output.NewReport(chatrooms, started)

	formatter, err := createFormatter(opts, cfg)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, report)

	return nil
}

// loadConfig loads the given config file, or returns defaults when no
// path was given.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		return cfg, nil
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newParser builds a parser honoring the locale override chain:
// CLI flag, then config, then auto-detection.
func newParser(flagLocale string, cfg *config.Config) (*parser.Parser, error) {
	lc := flagLocale
	if lc == "" {
		lc = cfg.Locale
	}
	if lc == "" || lc == "auto" {
		return parser.New(), nil
	}
	if locale.Lookup(locale.DefaultTables(), locale.ID(lc)) == nil {
		return nil, fmt.Errorf("unsupported locale %q (use en or ko)", lc)
	}
	return parser.New(parser.WithLocale(locale.ID(lc))), nil
}

func createFormatter(opts *AnalyzeOptions, cfg *config.Config) (output.Formatter, error) {
	format := opts.Output
	if format == "" {
		format = cfg.Report.Format
	}
	if format == "" {
		format = config.DefaultReportFormat
	}

	top := opts.Top
	if top == 0 {
		top = cfg.Report.TopParticipants
	}

	formatOpts := output.FormatOptions{
		Verbose:         opts.Verbose,
		Quiet:           opts.Quiet,
		TopParticipants: top,
	}

	switch format {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)

	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.Summary.SkippedLines > 0) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerAlways
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire.
func shouldFireWebhook(trigger config.WebhookTrigger, hasSkipped bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnSkipped:
		return hasSkipped
	default:
		return true
	}
}
