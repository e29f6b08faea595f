package parser

import (
	"fmt"
	"strconv"

	"github.com/talklog/talklog/pkg/locale"
)

// LineClass is the structural category of one export line.
type LineClass int

const (
	ClassNone LineClass = iota
	ClassMetadata1
	ClassMetadata2
	ClassDateTag
	ClassMessage
	ClassEvent
)

// MessageFields are the raw captures of a message line before time
// decoding. Hour and Minute are digit strings; Meridiem is the
// locale's AM/PM-equivalent token.
type MessageFields struct {
	Author   string
	Meridiem string
	Hour     string
	Minute   string
	Content  string
}

// EventFields are the captures of an event line.
type EventFields struct {
	Kind    locale.EventKind
	Actor   string
	Subject string
}

// Classification is the tagged result of classifying one line.
// Exactly one of the payload fields is meaningful, selected by Class.
type Classification struct {
	Class LineClass

	// Capture holds the single capture of metadata and date-tag
	// lines: the title, the saved-timestamp string, or the
	// date-tag string.
	Capture string

	Message MessageFields
	Event   EventFields
}

// RichMatch is the result of rich-content sub-classification.
type RichMatch struct {
	Type locale.RichContent

	// Seconds is the call duration for tier-three matches.
	Seconds int
}

// Classifier matches lines against a single locale table. Body lines
// are tried as message, then date tag, then invite, then leave; some
// event and message shapes textually overlap, so this order is part
// of the format semantics, not an optimization.
type Classifier struct {
	table *locale.Table
}

// NewClassifier creates a classifier for the given locale table.
func NewClassifier(t *locale.Table) *Classifier {
	return &Classifier{table: t}
}

// Table returns the active locale table.
func (c *Classifier) Table() *locale.Table {
	return c.table
}

// Classify determines the structural category of a body line and
// extracts its fields. Lines matching nothing yield ClassNone; the
// caller decides between continuation and silent drop.
func (c *Classifier) Classify(line string) Classification {
	if m := c.table.Message.FindStringSubmatch(line); m != nil {
		g := c.table.Groups
		return Classification{
			Class: ClassMessage,
			Message: MessageFields{
				Author:   m[g.Author],
				Meridiem: m[g.Meridiem],
				Hour:     m[g.Hour],
				Minute:   m[g.Minute],
				Content:  m[g.Content],
			},
		}
	}

	if m := c.table.DateTag.FindStringSubmatch(line); m != nil {
		return Classification{Class: ClassDateTag, Capture: m[1]}
	}

	if m := c.table.EventInvite.FindStringSubmatch(line); m != nil {
		return Classification{
			Class: ClassEvent,
			Event: EventFields{Kind: locale.EventInvite, Actor: m[1], Subject: m[2]},
		}
	}

	if m := c.table.EventLeave.FindStringSubmatch(line); m != nil {
		return Classification{
			Class: ClassEvent,
			Event: EventFields{Kind: locale.EventLeave, Actor: m[1]},
		}
	}

	return Classification{Class: ClassNone}
}

// RichContent sub-classifies message content. Three tiers are tried
// in order, first match wins: exact-string labels, presence regexes,
// then duration regexes. A nil match with nil error is a plain text
// message. A non-nil error means the content matched a duration
// pattern whose digits could not be converted.
func (c *Classifier) RichContent(content string) (*RichMatch, error) {
	for _, l := range c.table.Labels {
		if content == l.Text {
			return &RichMatch{Type: l.Type}, nil
		}
	}

	for _, p := range c.table.Presence {
		if p.Pattern.MatchString(content) {
			return &RichMatch{Type: p.Type}, nil
		}
	}

	for _, d := range c.table.Durations {
		m := d.Pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		secs, err := durationSeconds(m[1:], d.HourVariant)
		if err != nil {
			return nil, fmt.Errorf("%s duration: %w", d.Type, err)
		}
		return &RichMatch{Type: d.Type, Seconds: secs}, nil
	}

	return nil, nil
}

// durationSeconds converts captured duration groups to seconds:
// h*3600+m*60+s for hour variants, m*60+s otherwise.
func durationSeconds(groups []string, hourVariant bool) (int, error) {
	parts := make([]int, len(groups))
	for i, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, fmt.Errorf("malformed digits %q: %w", g, err)
		}
		parts[i] = n
	}

	if hourVariant {
		return parts[0]*3600 + parts[1]*60 + parts[2], nil
	}
	return parts[0]*60 + parts[1], nil
}
