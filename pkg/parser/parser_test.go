package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talklog/talklog/pkg/locale"
)

const englishExport = `Morning Crew with KakaoTalk Chats
Date Saved: 2021-05-01 22:00:00

--------------- Saturday, May 1, 2021 ---------------
[Bob] [3:15 PM] Hello there
continued line
[Bob] [3:16 PM] Photo
Alice invited Carol.
Dave left.
`

func TestParse_English(t *testing.T) {
	p := New()
	room, err := p.Parse(context.Background(), strings.NewReader(englishExport))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if room.Title != "Morning Crew" {
		t.Errorf("Title = %q, want %q", room.Title, "Morning Crew")
	}
	if room.Locale != locale.English {
		t.Errorf("Locale = %s, want en", room.Locale)
	}
	wantSaved := time.Date(2021, 5, 1, 22, 0, 0, 0, time.UTC)
	if !room.SavedAt.Equal(wantSaved) {
		t.Errorf("SavedAt = %v, want %v", room.SavedAt, wantSaved)
	}

	if len(room.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(room.Messages))
	}

	first := room.Messages[0]
	if first.Author != "Bob" {
		t.Errorf("Author = %q, want Bob", first.Author)
	}
	if first.Content != "Hello there\ncontinued line" {
		t.Errorf("Content = %q", first.Content)
	}
	wantTime := time.Date(2021, 5, 1, 15, 15, 0, 0, time.UTC)
	if !first.Time.Equal(wantTime) {
		t.Errorf("Time = %v, want %v", first.Time, wantTime)
	}
	if first.Rich != "" {
		t.Errorf("Rich = %q, want plain text", first.Rich)
	}

	second := room.Messages[1]
	if second.Rich != locale.RichPhoto {
		t.Errorf("Rich = %q, want photo", second.Rich)
	}
	if !second.Time.Equal(time.Date(2021, 5, 1, 15, 16, 0, 0, time.UTC)) {
		t.Errorf("Time = %v", second.Time)
	}

	if len(room.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(room.Events))
	}
	if room.EventCount(locale.EventInvite) != 1 || room.EventCount(locale.EventLeave) != 1 {
		t.Errorf("event counts = %d invites, %d leaves",
			room.EventCount(locale.EventInvite), room.EventCount(locale.EventLeave))
	}
	if room.Events[0].Actor != "Alice" || room.Events[0].Subject != "Carol" {
		t.Errorf("invite = %+v", room.Events[0])
	}

	wantDate := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	if !room.StartDate.Equal(wantDate) || !room.EndDate.Equal(wantDate) {
		t.Errorf("dates = %v..%v, want %v", room.StartDate, room.EndDate, wantDate)
	}
	if len(room.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none", room.Skipped)
	}
}

func TestParse_Korean(t *testing.T) {
	export := `아침팀 님과 카카오톡 대화
저장한 날짜 : 2021-05-01 22:00:00

--------------- 2021년 5월 1일 토요일 ---------------
[철수] [오전 9:05] 굿모닝
[영희] [오후 11:59] 늦었네
철수님이 영희님을 초대하였습니다.
`

	room, err := New().Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if room.Locale != locale.Korean {
		t.Errorf("Locale = %s, want ko", room.Locale)
	}
	if room.Title != "아침팀" {
		t.Errorf("Title = %q", room.Title)
	}
	if len(room.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(room.Messages))
	}
	if got := room.Messages[0].Time.Hour(); got != 9 {
		t.Errorf("morning hour = %d, want 9", got)
	}
	if got := room.Messages[1].Time.Hour(); got != 23 {
		t.Errorf("evening hour = %d, want 23", got)
	}
	if len(room.Events) != 1 || room.Events[0].Kind != locale.EventInvite {
		t.Errorf("events = %+v", room.Events)
	}
}

func TestParse_TwelveHourDecoding(t *testing.T) {
	tests := []struct {
		line     string
		wantHour int
	}{
		{"[A] [12:05 AM] midnight", 0},
		{"[A] [1:05 AM] early", 1},
		{"[A] [11:59 AM] brunch", 11},
		{"[A] [12:00 PM] noon", 12},
		{"[A] [1:00 PM] afternoon", 13},
		{"[A] [11:59 PM] late", 23},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			export := "X with KakaoTalk Chats\n" +
				"Date Saved: 2021-05-01 10:00:00\n\n" +
				"--------------- Saturday, May 1, 2021 ---------------\n" +
				tt.line + "\n"

			room, err := New().Parse(context.Background(), strings.NewReader(export))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(room.Messages) != 1 {
				t.Fatalf("got %d messages, want 1", len(room.Messages))
			}
			if got := room.Messages[0].Time.Hour(); got != tt.wantHour {
				t.Errorf("hour = %d, want %d", got, tt.wantHour)
			}
		})
	}
}

func TestParse_UndatedMessages(t *testing.T) {
	export := `X with KakaoTalk Chats
Date Saved: 2021-05-01 10:00:00

[Alice] [3:15 PM] before any date tag
--------------- Saturday, May 1, 2021 ---------------
[Alice] [3:16 PM] after
`

	room, err := New().Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(room.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(room.Messages))
	}
	if !room.Messages[0].Undated() {
		t.Errorf("first message should be undated, Time = %v", room.Messages[0].Time)
	}
	if room.Messages[1].Undated() {
		t.Error("second message should be dated")
	}
}

func TestParse_UnknownMeridiemSkipped(t *testing.T) {
	export := `X with KakaoTalk Chats
Date Saved: 2021-05-01 10:00:00

--------------- Saturday, May 1, 2021 ---------------
[Alice] [3:15 XM] garbled time
[Alice] [3:16 PM] fine
`

	room, err := New().Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(room.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(room.Messages))
	}
	if len(room.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(room.Skipped))
	}
	if room.Skipped[0].LineNum != 5 {
		t.Errorf("skipped LineNum = %d, want 5", room.Skipped[0].LineNum)
	}
	if !strings.Contains(room.Skipped[0].Reason, "meridiem") {
		t.Errorf("Reason = %q", room.Skipped[0].Reason)
	}
}

func TestParse_ContinuationBeforeAnyMessageDropped(t *testing.T) {
	export := `X with KakaoTalk Chats
Date Saved: 2021-05-01 10:00:00

--------------- Saturday, May 1, 2021 ---------------
orphan line with nothing to attach to
[Alice] [3:15 PM] real message
`

	room, err := New().Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(room.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(room.Messages))
	}
	if room.Messages[0].Content != "real message" {
		t.Errorf("Content = %q", room.Messages[0].Content)
	}
}

func TestParse_MultiDayDates(t *testing.T) {
	export := `X with KakaoTalk Chats
Date Saved: 2021-05-03 10:00:00

--------------- Saturday, May 1, 2021 ---------------
[Alice] [9:00 AM] day one
--------------- Sunday, May 2, 2021 ---------------
[Alice] [9:00 AM] day two
`

	room, err := New().Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !room.StartDate.Equal(time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDate = %v", room.StartDate)
	}
	if !room.EndDate.Equal(time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EndDate = %v", room.EndDate)
	}
	if d := room.Messages[1].Time.Day(); d != 2 {
		t.Errorf("second message day = %d, want 2", d)
	}
}

func TestParse_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrEmptyExport,
		},
		{
			name:    "random prose header",
			input:   "Dear diary, today it rained.\nA lot.\n",
			wantErr: ErrLocaleNotRecognized,
		},
		{
			name:    "bad saved timestamp",
			input:   "X with KakaoTalk Chats\nDate Saved: yesterday-ish\n",
			wantErr: ErrMalformedMetadata,
		},
		{
			name:    "truncated after title",
			input:   "X with KakaoTalk Chats\n",
			wantErr: ErrMalformedMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := New().Parse(context.Background(), strings.NewReader(tt.input))
			if room != nil {
				t.Errorf("Parse() room = %+v, want nil", room)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("error %v is not a *FormatError", err)
			}
		})
	}
}

func TestParse_ForcedLocale(t *testing.T) {
	// A Korean export parsed with a forced English table must fail
	// at the header instead of misreading lines.
	export := "아침팀 님과 카카오톡 대화\n저장한 날짜 : 2021-05-01 10:00:00\n"

	p := New(WithLocale(locale.English))
	_, err := p.Parse(context.Background(), strings.NewReader(export))
	if !errors.Is(err, ErrLocaleNotRecognized) {
		t.Errorf("error = %v, want ErrLocaleNotRecognized", err)
	}

	p = New(WithLocale(locale.Korean))
	room, err := p.Parse(context.Background(), strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if room.Locale != locale.Korean {
		t.Errorf("Locale = %s", room.Locale)
	}
}

func TestParse_UnknownForcedLocale(t *testing.T) {
	p := New(WithLocale(locale.ID("fr")))
	_, err := p.Parse(context.Background(), strings.NewReader("x\n"))
	if err == nil {
		t.Fatal("expected error for unknown locale")
	}
}

func TestParse_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Parse(ctx, strings.NewReader(englishExport))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.txt")
	if err := os.WriteFile(path, []byte(englishExport), 0644); err != nil {
		t.Fatal(err)
	}

	room, err := New().ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(room.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(room.Messages))
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := New().ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMessage_Counts(t *testing.T) {
	tests := []struct {
		content   string
		wantWords int
		wantChars int
	}{
		{"Hello there", 2, 10},
		{"one", 1, 3},
		{"", 0, 0},
		{"안녕 하세요", 2, 5},
		{"a  b", 3, 2}, // double space yields an empty word
	}

	for _, tt := range tests {
		m := &Message{Content: tt.content}
		if got := m.WordCount(); got != tt.wantWords {
			t.Errorf("WordCount(%q) = %d, want %d", tt.content, got, tt.wantWords)
		}
		if got := m.CharacterCount(); got != tt.wantChars {
			t.Errorf("CharacterCount(%q) = %d, want %d", tt.content, got, tt.wantChars)
		}
	}
}
