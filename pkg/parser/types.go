// Package parser turns a KakaoTalk chat export into typed records:
// chatroom metadata, messages, and membership events.
package parser

import (
	"strings"
	"time"

	"github.com/talklog/talklog/pkg/locale"
)

// Message is a single chat message. Content may span multiple lines;
// continuation lines are appended until the next structural line.
type Message struct {
	// Time is the message timestamp, combined from the active date
	// tag and the decoded clock time. Zero when the message appeared
	// before any date tag (see Undated).
	Time time.Time

	// Author is the participant name, at most 20 characters per the
	// export format.
	Author string

	// Content is the message body, possibly multi-line.
	Content string

	// Rich tags structured non-text content. Empty for plain text.
	Rich locale.RichContent

	// DurationSeconds is the call length for voice/video calls and
	// live talks, zero otherwise.
	DurationSeconds int

	// LineNum is the 1-based line number of the message head in the
	// source file.
	LineNum int
}

// Undated reports whether the message appeared before any date tag.
func (m *Message) Undated() bool {
	return m.Time.IsZero()
}

// AppendLine attaches a continuation line to the message body.
func (m *Message) AppendLine(line string) {
	m.Content = m.Content + "\n" + line
}

// Words splits the content on spaces. Empty content yields no words.
func (m *Message) Words() []string {
	if m.Content == "" {
		return nil
	}
	return strings.Split(m.Content, " ")
}

// WordCount returns the number of space-separated words.
func (m *Message) WordCount() int {
	return len(m.Words())
}

// CharacterCount returns the number of runes across all words,
// excluding the separating spaces.
func (m *Message) CharacterCount() int {
	count := 0
	for _, word := range m.Words() {
		count += len([]rune(word))
	}
	return count
}

// Event is a chatroom membership change.
type Event struct {
	// Kind is invite or leave.
	Kind locale.EventKind

	// Actor is the inviter (invite) or the departing participant
	// (leave).
	Actor string

	// Subject is the invitee name or names (invite only).
	Subject string

	// Raw is the matched line as it appeared in the export.
	Raw string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// SkippedLine records a body line that superficially matched a
// category but failed secondary parsing and was skipped.
type SkippedLine struct {
	LineNum int
	Raw     string
	Reason  string
}

// Chatroom is the parsed form of one export file.
type Chatroom struct {
	// Title is the chatroom title from the first header line.
	Title string

	// SavedAt is the export-saved timestamp from the second header
	// line.
	SavedAt time.Time

	// Locale is the detected export locale.
	Locale locale.ID

	// Messages holds all messages in emission order.
	Messages []*Message

	// Events holds all membership events in emission order.
	Events []Event

	// StartDate and EndDate are the first and last date-tag values
	// seen. Zero when the export contains no date tag.
	StartDate time.Time
	EndDate   time.Time

	// Skipped lists body lines dropped due to recoverable errors.
	Skipped []SkippedLine
}

// LastMessage returns the most recently emitted message, or nil.
func (c *Chatroom) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// EventCount returns the number of events of the given kind.
func (c *Chatroom) EventCount(kind locale.EventKind) int {
	n := 0
	for _, e := range c.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
