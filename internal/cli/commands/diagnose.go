package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talklog/talklog/pkg/config"
	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Export file existence and accessibility
- Locale detection against actual export headers
- Webhook configuration validity

Example:
  talklog diagnose config.yaml
  talklog diagnose -v config.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 3. Check export sources
	sourceResults := checkSources(cfg)
	results = append(results, sourceResults...)

	// 4. Check locale detection against actual exports
	localeResults := checkLocale(cfg, opts)
	results = append(results, localeResults...)

	// 5. Check webhooks configuration
	webhookResults := checkWebhooks(cfg, opts)
	results = append(results, webhookResults...)

	printDiagnostics(results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'talklog detect <export-file>' to print a starter config snippet",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'talklog detect <export-file>' to print a starter config snippet",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(context.Background(), path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Sources: %d", len(cfg.Sources)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkSources(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Sources) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Sources",
			Status:  "error",
			Message: "No export sources defined",
			Suggests: []string{
				"Add a sources section to your config",
				"Example: sources:\n  - ~/Downloads/KakaoTalk_*.txt",
			},
		})
		return results
	}

	totalFiles := 0
	for _, source := range cfg.Sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Source: %s", source),
		}

		// Check if it's a glob pattern
		if strings.Contains(source, "*") || strings.Contains(source, "?") {
			matches, err := filepath.Glob(source)
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			} else if len(matches) == 0 {
				result.Status = "warning"
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the export files exist at this path",
					"Verify the glob pattern syntax",
				}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
				totalFiles += len(matches)
			}
		} else {
			// Direct file path
			info, err := os.Stat(source)
			if os.IsNotExist(err) {
				result.Status = "error"
				result.Message = "File does not exist"
				result.Suggests = []string{
					"Check if the export file path is correct",
				}
			} else if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			} else if info.IsDir() {
				result.Status = "error"
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{
					"Use a glob pattern to match files in directory",
					"Example: exports/*.txt",
				}
			} else if info.Size() == 0 {
				result.Status = "warning"
				result.Message = "File is empty (0 bytes)"
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
				totalFiles++
			}
		}
		results = append(results, result)
	}

	if totalFiles == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Export Files Summary",
			Status:  "error",
			Message: "No accessible export files found",
			Suggests: []string{
				"Ensure at least one export file exists and is readable",
			},
		})
	}

	return results
}

// checkLocale probes the first matching export file: detects its
// locale from the header, then classifies a handful of body lines
// so a mismatched or mangled export surfaces before analysis.
func checkLocale(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if cfg.Locale != "" {
		result := DiagnosticResult{Check: "Locale Setting"}
		if locale.Lookup(locale.DefaultTables(), locale.ID(cfg.Locale)) == nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Unknown locale %q", cfg.Locale)
			result.Suggests = []string{"Use en or ko, or remove the setting to auto-detect"}
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Forced locale: %s", cfg.Locale)
		}
		results = append(results, result)
	}

	for _, source := range cfg.Sources {
		files, _ := filepath.Glob(source)
		if len(files) == 0 {
			if _, err := os.Stat(source); err == nil {
				files = []string{source}
			}
		}
		if len(files) == 0 {
			continue
		}

		// Probe first file only
		exportFile := files[0]
		testResult := DiagnosticResult{
			Check: fmt.Sprintf("Header Test: %s", filepath.Base(exportFile)),
		}

		f, err := os.Open(exportFile) // #nosec G304 -- user-provided export paths from config
		if err != nil {
			testResult.Status = "warning"
			testResult.Message = fmt.Sprintf("Cannot read file: %v", err)
			results = append(results, testResult)
			continue
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		if !scanner.Scan() {
			f.Close()
			testResult.Status = "error"
			testResult.Message = "File is empty"
			results = append(results, testResult)
			continue
		}
		firstLine := scanner.Text()

		table, title, ok := locale.Detect(locale.DefaultTables(), firstLine)
		if !ok {
			f.Close()
			testResult.Status = "error"
			testResult.Message = "First line matches no known export header"
			testResult.Details = []string{
				"Sample line that didn't match:",
				truncate(firstLine, 80),
			}
			testResult.Suggests = []string{
				"Check the file is a KakaoTalk chat export, not a plain text file",
				"Exports from other apps are not supported",
			}
			results = append(results, testResult)
			break
		}

		if cfg.Locale != "" && locale.ID(cfg.Locale) != table.ID {
			testResult.Status = "warning"
			testResult.Message = fmt.Sprintf("Header looks like %s but config forces %s", table.ID, cfg.Locale)
			testResult.Suggests = []string{
				"Remove the locale setting to auto-detect, or fix it to match the export",
			}
			f.Close()
			results = append(results, testResult)
			break
		}

		// Classify a sample of body lines with the detected table
		classifier := parser.NewClassifier(table)
		sampled := 0
		matched := 0
		var sampleFail string
		for scanner.Scan() && sampled < 20 {
			line := scanner.Text()
			if line == "" {
				continue
			}
			sampled++
			if c := classifier.Classify(line); c.Class != parser.ClassNone {
				matched++
			} else if sampleFail == "" {
				sampleFail = line
			}
		}
		f.Close()

		if sampled == 0 {
			testResult.Status = "warning"
			testResult.Message = fmt.Sprintf("Detected %s (%q) but file has no body lines", table.ID, title)
		} else if matched == 0 {
			testResult.Status = "error"
			testResult.Message = fmt.Sprintf("Detected %s but no body line matches its patterns", table.ID)
			if sampleFail != "" {
				testResult.Details = []string{
					"Sample line that didn't match:",
					truncate(sampleFail, 80),
				}
			}
			testResult.Suggests = []string{
				"The export may come from an unsupported KakaoTalk version",
			}
		} else if matched < sampled/2 {
			testResult.Status = "warning"
			testResult.Message = fmt.Sprintf("Detected %s but only %d/%d sample lines match", table.ID, matched, sampled)
			if sampleFail != "" {
				testResult.Details = []string{
					"Sample line that didn't match:",
					truncate(sampleFail, 80),
				}
			}
			testResult.Suggests = []string{
				"Unmatched lines are treated as continuations of the previous message",
			}
		} else {
			testResult.Status = "ok"
			testResult.Message = fmt.Sprintf("Detected %s (%q), %d/%d sample lines match", table.ID, title, matched, sampled)
		}

		results = append(results, testResult)
		break // Only test first matching file
	}

	return results
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Println("=== talklog Configuration Diagnostics ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}

		fmt.Println()
	}

	// Summary
	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Println("\nConfiguration is usable but has warnings.")
	} else {
		fmt.Println("\nConfiguration looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		// Check URL
		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		// Check trigger
		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnSkipped, config.WebhookTriggerAlways, config.WebhookTriggerNever:
				// Valid
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_skipped, always, or never)", wh.Trigger))
			}
		}

		// Check if token looks like an unexpanded env var
		if strings.HasPrefix(wh.Token, "${") || strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	// Any response (even 4xx/5xx) means the server is reachable
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
