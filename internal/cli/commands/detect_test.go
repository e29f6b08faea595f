package commands

import (
	"errors"
	"testing"

	"github.com/talklog/talklog/pkg/locale"
	"github.com/talklog/talklog/pkg/parser"
)

func TestDetectFile_English(t *testing.T) {
	path := writeExport(t)

	res, err := detectFile(path, 100)
	if err != nil {
		t.Fatalf("detectFile() error = %v", err)
	}

	if res.Locale != locale.English {
		t.Errorf("Locale = %s, want en", res.Locale)
	}
	if res.Title != "Morning Crew" {
		t.Errorf("Title = %q", res.Title)
	}
	// Body: 1 date tag, 2 messages, 2 events, 1 continuation
	if res.Classified["message"] != 2 {
		t.Errorf("messages = %d, want 2", res.Classified["message"])
	}
	if res.Classified["date_tag"] != 1 {
		t.Errorf("date tags = %d, want 1", res.Classified["date_tag"])
	}
	if res.Classified["event"] != 2 {
		t.Errorf("events = %d, want 2", res.Classified["event"])
	}
	if res.Classified["continuation"] != 1 {
		t.Errorf("continuations = %d, want 1", res.Classified["continuation"])
	}
}

func TestDetectFile_SampleCap(t *testing.T) {
	path := writeExport(t)

	res, err := detectFile(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.SampleLines != 3 {
		t.Errorf("SampleLines = %d, want 3", res.SampleLines)
	}
}

func TestDetectFile_UnknownFormat(t *testing.T) {
	path := writeFile(t, "notes.txt", "meeting notes\n- buy milk\n")

	_, err := detectFile(path, 100)
	if !errors.Is(err, parser.ErrLocaleNotRecognized) {
		t.Errorf("error = %v, want ErrLocaleNotRecognized", err)
	}
}

func TestDetectFile_Empty(t *testing.T) {
	path := writeFile(t, "empty.txt", "")

	_, err := detectFile(path, 100)
	if !errors.Is(err, parser.ErrEmptyExport) {
		t.Errorf("error = %v, want ErrEmptyExport", err)
	}
}

func TestClassLabel(t *testing.T) {
	tests := []struct {
		class parser.LineClass
		want  string
	}{
		{parser.ClassMessage, "message"},
		{parser.ClassDateTag, "date_tag"},
		{parser.ClassEvent, "event"},
		{parser.ClassNone, "continuation"},
	}

	for _, tt := range tests {
		if got := classLabel(tt.class); got != tt.want {
			t.Errorf("classLabel(%v) = %q, want %q", tt.class, got, tt.want)
		}
	}
}
