package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output string
	Sample int
}

// DetectResult is what detect reports for a single export file.
type DetectResult struct {
	File        string         `json:"file"`
	Locale      locale.ID      `json:"locale"`
	Title       string         `json:"title"`
	SampleLines int            `json:"sample_lines"`
	Classified  map[string]int `json:"classified"`
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export-file...>",
		Short: "Detect the locale of chat exports",
		Long: `Identify which locale's export format a chat log uses by matching
its metadata header, then classify a sample of body lines to show
how well the detected pattern table fits.

Useful before indexing a large batch: a file whose body lines mostly
classify as continuations probably came from a different KakaoTalk
version than the header suggests.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.Sample, "sample", 200, "Number of body lines to classify")

	return cmd
}

func runDetect(args []string, opts *DetectOptions) error {
	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding export paths: %w", err)
	}

	results := make([]DetectResult, 0, len(files))
	for _, file := range files {
		res, err := detectFile(file, opts.Sample)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	switch opts.Output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
		printDetectResults(results)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func detectFile(path string, sample int) (DetectResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return DetectResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return DetectResult{}, fmt.Errorf("%s: %w", path, parser.ErrEmptyExport)
	}

	table, title, ok := locale.Detect(locale.DefaultTables(), scanner.Text())
	if !ok {
		return DetectResult{}, fmt.Errorf("%s: %w", path, parser.ErrLocaleNotRecognized)
	}

	res := DetectResult{
		File:       path,
		Locale:     table.ID,
		Title:      title,
		Classified: map[string]int{},
	}

	// Skip the saved-timestamp header line before sampling the body.
	scanner.Scan()

	classifier := parser.NewClassifier(table)
	for scanner.Scan() && res.SampleLines < sample {
		line := scanner.Text()
		if line == "" {
			continue
		}
		res.SampleLines++
		c := classifier.Classify(line)
		res.Classified[classLabel(c.Class)]++
	}
	if err := scanner.Err(); err != nil {
		return DetectResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return res, nil
}

func classLabel(c parser.LineClass) string {
	switch c {
	case parser.ClassMessage:
		return "message"
	case parser.ClassDateTag:
		return "date_tag"
	case parser.ClassEvent:
		return "event"
	default:
		return "continuation"
	}
}

func printDetectResults(results []DetectResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s\n", res.File)
		fmt.Printf("  Locale: %s\n", res.Locale)
		fmt.Printf("  Title:  %s\n", res.Title)
		if res.SampleLines > 0 {
			fmt.Printf("  Sampled %d lines:\n", res.SampleLines)
			for _, label := range []string{"message", "date_tag", "event", "continuation"} {
				if n := res.Classified[label]; n > 0 {
					fmt.Printf("    %-14s %d\n", label, n)
				}
			}
		}
	}

	// Ready-to-use config snippet when all files agree on a locale
	if len(results) > 0 {
		loc := results[0].Locale
		uniform := true
		for _, r := range results[1:] {
			if r.Locale != loc {
				uniform = false
				break
			}
		}
		if uniform {
			fmt.Println()
			fmt.Println("Config snippet:")
			fmt.Printf("  locale: %s\n", loc)
			fmt.Println("  sources:")
			for _, r := range results {
				fmt.Printf("    - %s\n", r.File)
			}
		}
	}
}
