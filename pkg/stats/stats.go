// Package stats aggregates descriptive statistics over a parsed
// chatroom.
package stats

import (
	"sort"
	"time"

	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/parser"
)

// ParticipantStats holds per-participant totals.
type ParticipantStats struct {
	Name       string
	Messages   int
	Words      int
	Characters int

	// MessageShare is this participant's fraction of all messages.
	MessageShare float64
}

// DayStats holds totals for one calendar day.
type DayStats struct {
	Date       time.Time
	Messages   int
	Words      int
	Characters int
}

// Summary is the complete statistics output for one chatroom.
type Summary struct {
	Title   string
	SavedAt time.Time
	Locale  locale.ID

	// StartDate and EndDate are the first and last date tags seen.
	StartDate time.Time
	EndDate   time.Time
	SpanDays  int

	TotalMessages   int
	TotalWords      int
	TotalCharacters int

	// UndatedMessages counts messages that appeared before any date
	// tag. They are excluded from the time histograms.
	UndatedMessages int

	// SkippedLines counts body lines dropped by the parser.
	SkippedLines int

	Invites int
	Leaves  int

	// Participants is sorted by message count descending.
	Participants []ParticipantStats

	// Hourly buckets messages by hour of day, Weekday by
	// time.Weekday (Sunday = 0).
	Hourly  [24]int
	Weekday [7]int

	// Daily holds per-day totals in ascending date order.
	Daily []DayStats

	// RichContent counts messages per rich-content type.
	RichContent map[locale.RichContent]int

	// CallSeconds is the summed duration of all calls and live
	// talks.
	CallSeconds int

	MostActiveDay DayStats

	WordsPerMessage      float64
	CharactersPerMessage float64
	MessagesPerDay       float64
}

// Collect aggregates a chatroom into a Summary in a single pass over
// its messages and events.
func Collect(room *parser.Chatroom) *Summary {
	s := &Summary{
		Title:        room.Title,
		SavedAt:      room.SavedAt,
		Locale:       room.Locale,
		StartDate:    room.StartDate,
		EndDate:      room.EndDate,
		SkippedLines: len(room.Skipped),
		RichContent:  make(map[locale.RichContent]int),
		Invites:      room.EventCount(locale.EventInvite),
		Leaves:       room.EventCount(locale.EventLeave),
	}

	// Span is inclusive: a single-day export spans one day.
	if !s.StartDate.IsZero() {
		s.SpanDays = int(dateOnly(s.EndDate).Sub(dateOnly(s.StartDate)).Hours()/24) + 1
	}

	byName := make(map[string]*ParticipantStats)
	byDay := make(map[time.Time]*DayStats)

	for _, msg := range room.Messages {
		words := msg.WordCount()
		chars := msg.CharacterCount()

		s.TotalMessages++
		s.TotalWords += words
		s.TotalCharacters += chars

		p := byName[msg.Author]
		if p == nil {
			p = &ParticipantStats{Name: msg.Author}
			byName[msg.Author] = p
		}
		p.Messages++
		p.Words += words
		p.Characters += chars

		if msg.Rich != "" {
			s.RichContent[msg.Rich]++
			s.CallSeconds += msg.DurationSeconds
		}

		if msg.Undated() {
			s.UndatedMessages++
			continue
		}

		s.Hourly[msg.Time.Hour()]++
		s.Weekday[msg.Time.Weekday()]++

		day := dateOnly(msg.Time)
		d := byDay[day]
		if d == nil {
			d = &DayStats{Date: day}
			byDay[day] = d
		}
		d.Messages++
		d.Words += words
		d.Characters += chars
	}

	s.Participants = sortParticipants(byName, s.TotalMessages)
	s.Daily = sortDays(byDay)

	for _, d := range s.Daily {
		if d.Messages > s.MostActiveDay.Messages {
			s.MostActiveDay = d
		}
	}

	if s.TotalMessages > 0 {
		s.WordsPerMessage = float64(s.TotalWords) / float64(s.TotalMessages)
		s.CharactersPerMessage = float64(s.TotalCharacters) / float64(s.TotalMessages)
	}
	if s.SpanDays > 0 {
		s.MessagesPerDay = float64(s.TotalMessages) / float64(s.SpanDays)
	}

	return s
}

func sortParticipants(byName map[string]*ParticipantStats, total int) []ParticipantStats {
	out := make([]ParticipantStats, 0, len(byName))
	for _, p := range byName {
		if total > 0 {
			p.MessageShare = float64(p.Messages) / float64(total)
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortDays(byDay map[time.Time]*DayStats) []DayStats {
	out := make([]DayStats, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
