package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talklog/talklog/pkg/locale"
)

// Parser drives line-by-line consumption of one export file. A
// single Parser may be reused across files; all per-parse state is
// freshly allocated inside Parse.
type Parser struct {
	tables []*locale.Table
	forced locale.ID
}

// Option configures the Parser.
type Option func(*Parser)

// WithTables replaces the built-in locale tables.
func WithTables(tables []*locale.Table) Option {
	return func(p *Parser) {
		if len(tables) > 0 {
			p.tables = tables
		}
	}
}

// WithLocale restricts detection to a single locale instead of
// trying every table against the header.
func WithLocale(id locale.ID) Option {
	return func(p *Parser) {
		p.forced = id
	}
}

// New creates a Parser with the default locale tables.
func New(opts ...Option) *Parser {
	p := &Parser{tables: locale.DefaultTables()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// parseState tracks header consumption. Once streaming, the state
// machine never goes back.
type parseState int

const (
	stateMetadata1 parseState = iota
	stateMetadata2
	stateBlankOrFirstContent
	stateStreaming
)

// ParseFile parses the export at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Chatroom, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	room, err := p.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return room, nil
}

// Parse consumes the export one line at a time and returns the
// populated chatroom. Header failures abort with a *FormatError;
// body-line failures are recorded on Chatroom.Skipped and parsing
// continues.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Chatroom, error) {
	tables := p.tables
	if p.forced != "" {
		t := locale.Lookup(p.tables, p.forced)
		if t == nil {
			return nil, fmt.Errorf("unknown locale %q", p.forced)
		}
		tables = []*locale.Table{t}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	var (
		room    *Chatroom
		cls     *Classifier
		state   = stateMetadata1
		lineNum = 0
	)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		lineNum++
		line := scanner.Text()

		switch state {
		case stateMetadata1:
			table, title, ok := locale.Detect(tables, line)
			if !ok {
				return nil, &FormatError{LineNum: lineNum, Err: ErrLocaleNotRecognized}
			}
			cls = NewClassifier(table)
			room = &Chatroom{Title: title, Locale: table.ID}
			state = stateMetadata2

		case stateMetadata2:
			m := cls.Table().Metadata2.FindStringSubmatch(line)
			if m == nil {
				return nil, &FormatError{LineNum: lineNum, Err: ErrMalformedMetadata}
			}
			saved, err := time.Parse(cls.Table().SavedLayout, m[1])
			if err != nil {
				return nil, &FormatError{LineNum: lineNum, Err: fmt.Errorf("%w: %v", ErrMalformedMetadata, err)}
			}
			room.SavedAt = saved
			state = stateBlankOrFirstContent

		case stateBlankOrFirstContent:
			state = stateStreaming
			if strings.TrimSpace(line) == "" {
				continue // blank separator after the header
			}
			consumeBody(room, cls, line, lineNum)

		case stateStreaming:
			consumeBody(room, cls, line, lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	if room == nil {
		return nil, &FormatError{Err: ErrEmptyExport}
	}
	if state == stateMetadata2 {
		// header truncated after the title line
		return nil, &FormatError{LineNum: lineNum, Err: ErrMalformedMetadata}
	}

	return room, nil
}

// consumeBody applies the streaming-state resolution order: message,
// date tag, event, continuation, silent drop.
func consumeBody(room *Chatroom, cls *Classifier, line string, lineNum int) {
	c := cls.Classify(line)

	switch c.Class {
	case ClassMessage:
		msg, reason := buildMessage(cls, c.Message, room.EndDate, lineNum)
		if reason != "" {
			room.Skipped = append(room.Skipped, SkippedLine{LineNum: lineNum, Raw: line, Reason: reason})
			return
		}
		room.Messages = append(room.Messages, msg)

	case ClassDateTag:
		date, err := time.Parse(cls.Table().DateLayout, c.Capture)
		if err != nil {
			room.Skipped = append(room.Skipped, SkippedLine{
				LineNum: lineNum,
				Raw:     line,
				Reason:  fmt.Sprintf("date tag: %v", err),
			})
			return
		}
		if room.StartDate.IsZero() {
			room.StartDate = date
		}
		room.EndDate = date

	case ClassEvent:
		room.Events = append(room.Events, Event{
			Kind:    c.Event.Kind,
			Actor:   c.Event.Actor,
			Subject: c.Event.Subject,
			Raw:     line,
			LineNum: lineNum,
		})

	default:
		// Continuation of the previous message, or nothing to
		// attach it to.
		if last := room.LastMessage(); last != nil {
			last.AppendLine(line)
		}
	}
}

// buildMessage decodes a classified message line. A non-empty reason
// marks the line as recoverably broken; the caller skips it.
func buildMessage(cls *Classifier, f MessageFields, date time.Time, lineNum int) (*Message, string) {
	offset, ok := cls.Table().HourOffset(f.Meridiem)
	if !ok {
		return nil, fmt.Sprintf("unknown meridiem token %q for locale %s", f.Meridiem, cls.Table().ID)
	}

	// Capture groups guarantee digits.
	hour, _ := strconv.Atoi(f.Hour)
	minute, _ := strconv.Atoi(f.Minute)

	// Standard 12-hour semantics: 12:xx AM is 00:xx, 12:xx PM is
	// 12:xx.
	if hour == 12 {
		hour = 0
	}
	hour += offset

	msg := &Message{
		Author:  f.Author,
		Content: f.Content,
		LineNum: lineNum,
	}

	// Messages before the first date tag stay explicitly undated.
	if !date.IsZero() {
		msg.Time = time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
	}

	rich, err := cls.RichContent(f.Content)
	if err != nil {
		return nil, err.Error()
	}
	if rich != nil {
		msg.Rich = rich.Type
		msg.DurationSeconds = rich.Seconds
	}

	return msg, ""
}
