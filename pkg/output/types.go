package output

import (
	"time"

	"github.com/talklog/talklog/pkg/stats"
)

// Report is the complete analysis output for one run.
type Report struct {
	// Summary provides aggregate statistics across all files.
	Summary Summary

	// Chatrooms holds one entry per analyzed export file.
	Chatrooms []*ChatroomReport

	// Metadata provides context about the run.
	Metadata Metadata
}

// ChatroomReport pairs one export file with its statistics.
type ChatroomReport struct {
	// Source is the export file path.
	Source string

	// Stats is the aggregated statistics for this chatroom.
	Stats *stats.Summary
}

// Summary provides aggregate statistics across files.
type Summary struct {
	FilesAnalyzed int
	TotalMessages int
	TotalEvents   int
	SkippedLines  int
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time

	// Duration is how long the analysis took.
	Duration time.Duration
}

// NewReport builds a Report from per-file results.
func NewReport(chatrooms []*ChatroomReport, started time.Time) *Report {
	report := &Report{
		Chatrooms: chatrooms,
		Metadata: Metadata{
			AnalyzedAt: time.Now(),
			Duration:   time.Since(started),
		},
	}

	for _, c := range chatrooms {
		report.Summary.FilesAnalyzed++
		report.Summary.TotalMessages += c.Stats.TotalMessages
		report.Summary.TotalEvents += c.Stats.Invites + c.Stats.Leaves
		report.Summary.SkippedLines += c.Stats.SkippedLines
	}

	return report
}
