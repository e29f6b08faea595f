package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/stats"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "talklog: %d file(s), %d messages, %d events, %d skipped lines\n",
		report.Summary.FilesAnalyzed,
		report.Summary.TotalMessages,
		report.Summary.TotalEvents,
		report.Summary.SkippedLines)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	for _, c := range report.Chatrooms {
		if err := f.formatChatroom(c, w); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d file(s), %d messages, %d events, %d skipped lines\n",
		report.Summary.FilesAnalyzed,
		report.Summary.TotalMessages,
		report.Summary.TotalEvents,
		report.Summary.SkippedLines)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatChatroom(c *ChatroomReport, w io.Writer) error {
	s := c.Stats

	fmt.Fprintf(w, "=== %s ===\n", s.Title)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Source: %s\n", c.Source)
	fmt.Fprintf(w, "Locale: %s, saved %s\n", s.Locale, s.SavedAt.Format("2006-01-02 15:04:05"))

	if !s.StartDate.IsZero() {
		fmt.Fprintf(w, "Span: %s to %s (%d days)\n",
			s.StartDate.Format("2006-01-02"),
			s.EndDate.Format("2006-01-02"),
			s.SpanDays)
	}

	fmt.Fprintf(w, "Messages: %d (%d words, %d characters)\n",
		s.TotalMessages, s.TotalWords, s.TotalCharacters)
	fmt.Fprintf(w, "Events: %d invite(s), %d leave(s)\n", s.Invites, s.Leaves)

	if s.UndatedMessages > 0 {
		fmt.Fprintf(w, "Undated messages: %d (before the first date tag)\n", s.UndatedMessages)
	}
	if s.SkippedLines > 0 {
		fmt.Fprintf(w, "Skipped lines: %d\n", s.SkippedLines)
	}

	f.formatParticipants(s, w)
	f.formatRichContent(s, w)

	if s.MostActiveDay.Messages > 0 {
		fmt.Fprintf(w, "Most active day: %s (%d messages)\n",
			s.MostActiveDay.Date.Format("2006-01-02"), s.MostActiveDay.Messages)
	}

	if f.opts.Verbose {
		f.formatHourly(s, w)
	}

	fmt.Fprintln(w)
	return nil
}

func (f *TextFormatter) formatParticipants(s *stats.Summary, w io.Writer) {
	if len(s.Participants) == 0 {
		return
	}

	participants := s.Participants
	if f.opts.TopParticipants > 0 && len(participants) > f.opts.TopParticipants {
		participants = participants[:f.opts.TopParticipants]
	}

	fmt.Fprintln(w, "Participants:")
	for _, p := range participants {
		fmt.Fprintf(w, "  %-20s %6d messages (%.1f%%), %d words, %d characters\n",
			p.Name, p.Messages, p.MessageShare*100, p.Words, p.Characters)
	}
}

func (f *TextFormatter) formatRichContent(s *stats.Summary, w io.Writer) {
	if len(s.RichContent) == 0 {
		return
	}

	// Deterministic ordering for map iteration.
	types := make([]string, 0, len(s.RichContent))
	for t := range s.RichContent {
		types = append(types, string(t))
	}
	sort.Strings(types)

	fmt.Fprintln(w, "Rich content:")
	for _, t := range types {
		fmt.Fprintf(w, "  %-14s %d\n", t, s.RichContent[locale.RichContent(t)])
	}
	if s.CallSeconds > 0 {
		fmt.Fprintf(w, "  call time: %ds\n", s.CallSeconds)
	}
}

func (f *TextFormatter) formatHourly(s *stats.Summary, w io.Writer) {
	fmt.Fprintln(w, "Messages by hour:")
	for hour, count := range s.Hourly {
		if count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %02d:00  %d\n", hour, count)
	}
}
