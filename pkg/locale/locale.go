// Package locale provides the per-locale pattern tables for KakaoTalk
// chat exports and locale detection from the export header.
package locale

import "regexp"

// ID identifies a supported export locale.
type ID string

const (
	English ID = "en"
	Korean  ID = "ko"
)

// RichContent tags a message whose body is a structured artifact
// rather than free text.
type RichContent string

const (
	RichPhoto       RichContent = "photo"
	RichVideo       RichContent = "video"
	RichFile        RichContent = "file"
	RichLink        RichContent = "link"
	RichYouTubeLink RichContent = "youtube_link"
	RichStickers    RichContent = "stickers"
	RichVoiceCall   RichContent = "voice_call"
	RichVideoCall   RichContent = "video_call"
	RichLiveTalk    RichContent = "live_talk"
	RichVoiceNote   RichContent = "voice_note"
	RichDeleted     RichContent = "deleted"
)

// EventKind identifies a chatroom membership event.
type EventKind string

const (
	EventInvite EventKind = "invite"
	EventLeave  EventKind = "leave"
)

// MessageGroups maps the capture-group indices of the message pattern.
// English and Korean exports place the meridiem token and the
// hour/minute captures in different positions.
type MessageGroups struct {
	Author   int
	Meridiem int
	Hour     int
	Minute   int
	Content  int
}

// Label is an exact-string rich-content marker (tier one).
type Label struct {
	Type RichContent
	Text string
}

// Presence is a rich-content marker detected by a regex presence
// check (tier two).
type Presence struct {
	Type    RichContent
	Pattern *regexp.Regexp
}

// Duration is a rich-content marker whose pattern also captures a
// call duration (tier three). HourVariant patterns capture h:m:s,
// the rest m:s. The Type is already normalized: an hour variant
// carries the same tag as its short form.
type Duration struct {
	Type        RichContent
	Pattern     *regexp.Regexp
	HourVariant bool
}

// Table holds every recognizer for one export locale. Tables are
// constructed once by DefaultTables and treated as immutable; all
// classification for a file uses exactly one table.
type Table struct {
	ID   ID
	Name string // Human-readable locale name

	// Header patterns. Metadata1 captures the chatroom title,
	// Metadata2 the export-saved timestamp.
	Metadata1   *regexp.Regexp
	Metadata2   *regexp.Regexp
	SavedLayout string

	// DateTag captures the calendar-date portion of a day delimiter
	// line, parsed with DateLayout.
	DateTag    *regexp.Regexp
	DateLayout string

	// Message captures author, time fields, and content according
	// to Groups.
	Message *regexp.Regexp
	Groups  MessageGroups

	// HourOffsets maps the captured meridiem token to the hour
	// offset added to the raw 12-hour value.
	HourOffsets map[string]int

	// Rich-content tiers, each ordered. First match wins within a
	// tier, and tiers are tried in declaration order.
	Labels    []Label
	Presence  []Presence
	Durations []Duration

	// Event patterns. Invite captures inviter and invitee(s),
	// Leave the departing participant.
	EventInvite *regexp.Regexp
	EventLeave  *regexp.Regexp
}

// HourOffset returns the hour offset for a meridiem token.
func (t *Table) HourOffset(token string) (int, bool) {
	off, ok := t.HourOffsets[token]
	return off, ok
}

// Lookup returns the table with the given ID, or nil.
func Lookup(tables []*Table, id ID) *Table {
	for _, t := range tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Detect matches the first header line of an export against each
// table's title pattern. Returns the matching table and the captured
// chatroom title.
func Detect(tables []*Table, firstLine string) (*Table, string, bool) {
	for _, t := range tables {
		if m := t.Metadata1.FindStringSubmatch(firstLine); m != nil {
			return t, m[1], true
		}
	}
	return nil, "", false
}
