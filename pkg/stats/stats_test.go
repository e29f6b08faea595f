package stats

import (
	"math"
	"testing"
	"time"

	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/parser"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func sampleRoom() *parser.Chatroom {
	return &parser.Chatroom{
		Title:     "Morning Crew",
		Locale:    locale.English,
		SavedAt:   at(2021, 5, 3, 22, 0),
		StartDate: day(2021, 5, 1),
		EndDate:   day(2021, 5, 3),
		Messages: []*parser.Message{
			{Time: at(2021, 5, 1, 9, 0), Author: "Alice", Content: "good morning everyone"},
			{Time: at(2021, 5, 1, 9, 5), Author: "Bob", Content: "morning"},
			{Time: at(2021, 5, 1, 21, 0), Author: "Alice", Content: "Photo", Rich: locale.RichPhoto},
			{Time: at(2021, 5, 3, 9, 0), Author: "Alice", Content: "Voice Call 05:30", Rich: locale.RichVoiceCall, DurationSeconds: 330},
			{Author: "Carol", Content: "undated hello"},
		},
		Events: []parser.Event{
			{Kind: locale.EventInvite, Actor: "Alice", Subject: "Carol"},
			{Kind: locale.EventLeave, Actor: "Dave"},
			{Kind: locale.EventLeave, Actor: "Erin"},
		},
		Skipped: []parser.SkippedLine{
			{LineNum: 42, Raw: "[x] [3:15 XM] bad", Reason: "unknown meridiem"},
		},
	}
}

func TestCollect_Totals(t *testing.T) {
	s := Collect(sampleRoom())

	if s.Title != "Morning Crew" || s.Locale != locale.English {
		t.Errorf("identity = %q/%s", s.Title, s.Locale)
	}
	if s.TotalMessages != 5 {
		t.Errorf("TotalMessages = %d, want 5", s.TotalMessages)
	}
	// 3+1+1+3+2 space-separated words
	if s.TotalWords != 10 {
		t.Errorf("TotalWords = %d, want 10", s.TotalWords)
	}
	if s.UndatedMessages != 1 {
		t.Errorf("UndatedMessages = %d, want 1", s.UndatedMessages)
	}
	if s.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", s.SkippedLines)
	}
	if s.Invites != 1 || s.Leaves != 2 {
		t.Errorf("events = %d invites, %d leaves", s.Invites, s.Leaves)
	}
	if s.SpanDays != 3 {
		t.Errorf("SpanDays = %d, want 3", s.SpanDays)
	}
}

func TestCollect_Participants(t *testing.T) {
	s := Collect(sampleRoom())

	if len(s.Participants) != 3 {
		t.Fatalf("got %d participants, want 3", len(s.Participants))
	}

	// Sorted by message count descending
	if s.Participants[0].Name != "Alice" || s.Participants[0].Messages != 3 {
		t.Errorf("top participant = %+v", s.Participants[0])
	}

	// Bob and Carol tie at one message; names break the tie
	if s.Participants[1].Name != "Bob" || s.Participants[2].Name != "Carol" {
		t.Errorf("tie order = %s, %s", s.Participants[1].Name, s.Participants[2].Name)
	}

	if got := s.Participants[0].MessageShare; math.Abs(got-0.6) > 1e-9 {
		t.Errorf("MessageShare = %f, want 0.6", got)
	}
}

func TestCollect_Histograms(t *testing.T) {
	s := Collect(sampleRoom())

	if s.Hourly[9] != 3 {
		t.Errorf("Hourly[9] = %d, want 3", s.Hourly[9])
	}
	if s.Hourly[21] != 1 {
		t.Errorf("Hourly[21] = %d, want 1", s.Hourly[21])
	}

	// 2021-05-01 was a Saturday, 2021-05-03 a Monday
	if s.Weekday[time.Saturday] != 3 {
		t.Errorf("Weekday[Sat] = %d, want 3", s.Weekday[time.Saturday])
	}
	if s.Weekday[time.Monday] != 1 {
		t.Errorf("Weekday[Mon] = %d, want 1", s.Weekday[time.Monday])
	}

	// The undated message lands in no time bucket
	total := 0
	for _, n := range s.Hourly {
		total += n
	}
	if total != 4 {
		t.Errorf("hourly total = %d, want 4", total)
	}
}

func TestCollect_Daily(t *testing.T) {
	s := Collect(sampleRoom())

	if len(s.Daily) != 2 {
		t.Fatalf("got %d daily buckets, want 2", len(s.Daily))
	}
	if !s.Daily[0].Date.Equal(day(2021, 5, 1)) || s.Daily[0].Messages != 3 {
		t.Errorf("Daily[0] = %+v", s.Daily[0])
	}
	if !s.Daily[1].Date.Equal(day(2021, 5, 3)) || s.Daily[1].Messages != 1 {
		t.Errorf("Daily[1] = %+v", s.Daily[1])
	}

	if !s.MostActiveDay.Date.Equal(day(2021, 5, 1)) {
		t.Errorf("MostActiveDay = %+v", s.MostActiveDay)
	}
}

func TestCollect_MostActiveDayTie(t *testing.T) {
	room := &parser.Chatroom{
		StartDate: day(2021, 5, 1),
		EndDate:   day(2021, 5, 2),
		Messages: []*parser.Message{
			{Time: at(2021, 5, 1, 9, 0), Author: "A", Content: "x"},
			{Time: at(2021, 5, 2, 9, 0), Author: "A", Content: "y"},
		},
	}

	s := Collect(room)
	// Strict greater-than: the earlier day wins a tie
	if !s.MostActiveDay.Date.Equal(day(2021, 5, 1)) {
		t.Errorf("MostActiveDay = %+v, want 2021-05-01", s.MostActiveDay)
	}
}

func TestCollect_RichContent(t *testing.T) {
	s := Collect(sampleRoom())

	if s.RichContent[locale.RichPhoto] != 1 {
		t.Errorf("photo count = %d", s.RichContent[locale.RichPhoto])
	}
	if s.RichContent[locale.RichVoiceCall] != 1 {
		t.Errorf("voice call count = %d", s.RichContent[locale.RichVoiceCall])
	}
	if s.CallSeconds != 330 {
		t.Errorf("CallSeconds = %d, want 330", s.CallSeconds)
	}
}

func TestCollect_Averages(t *testing.T) {
	s := Collect(sampleRoom())

	if got := s.WordsPerMessage; math.Abs(got-2.0) > 1e-9 {
		t.Errorf("WordsPerMessage = %f, want 2.0", got)
	}
	if got := s.MessagesPerDay; math.Abs(got-5.0/3.0) > 1e-9 {
		t.Errorf("MessagesPerDay = %f", got)
	}
}

func TestCollect_EmptyRoom(t *testing.T) {
	s := Collect(&parser.Chatroom{Title: "Quiet"})

	if s.TotalMessages != 0 || s.SpanDays != 0 {
		t.Errorf("totals = %d messages, %d span days", s.TotalMessages, s.SpanDays)
	}
	if len(s.Participants) != 0 || len(s.Daily) != 0 {
		t.Errorf("participants = %v, daily = %v", s.Participants, s.Daily)
	}
	if s.WordsPerMessage != 0 || s.MessagesPerDay != 0 {
		t.Errorf("averages should be zero")
	}
	if !s.MostActiveDay.Date.IsZero() {
		t.Errorf("MostActiveDay = %+v", s.MostActiveDay)
	}
}
