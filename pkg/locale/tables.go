package locale

import "regexp"

// DefaultTables returns the built-in locale tables. Patterns follow
// the KakaoTalk desktop export format (v3.2.6, May 2021). Supporting
// a new locale means adding one complete table here; no other
// component changes.
func DefaultTables() []*Table {
	return []*Table{englishTable(), koreanTable()}
}

// englishTable recognizes exports of the form:
//
//	{title} with KakaoTalk Chats
//	Date Saved: 2021-05-01 10:00:00
//
//	--------------- Saturday, May 01, 2021 ---------------
//	[{author}] [3:15 PM] {content}
func englishTable() *Table {
	return &Table{
		ID:   English,
		Name: "English",

		Metadata1:   regexp.MustCompile(`^(.{0,50}) with KakaoTalk Chats`),
		Metadata2:   regexp.MustCompile(`^Date Saved: (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`),
		SavedLayout: "2006-01-02 15:04:05",

		DateTag:    regexp.MustCompile(`^--------------- \w+, (\w+ \d{1,2}, \d{4}) ---------------`),
		DateLayout: "January 2, 2006",

		// The meridiem capture is deliberately loose; an unknown
		// token fails the hour-offset lookup and the line is
		// skipped as recoverable rather than misread.
		Message: regexp.MustCompile(`^\[(.{0,20})\] \[(\d{1,2}):(\d{2}) (\w)M\] (.*)`),
		Groups:  MessageGroups{Author: 1, Hour: 2, Minute: 3, Meridiem: 4, Content: 5},

		HourOffsets: map[string]int{"A": 0, "P": 12},

		// Ordered high-to-low by expected frequency in normal chat.
		Labels: []Label{
			{RichStickers, "Emoticons"},
			{RichPhoto, "Photo"},
			{RichVideo, "videos"},
			{RichDeleted, "This message was deleted."},
			{RichVoiceNote, "Voice Note"},
		},
		Presence: []Presence{
			{RichYouTubeLink, regexp.MustCompile(`^http.+youtu.+`)},
			{RichLink, regexp.MustCompile(`^http.+|^www\..+`)},
			{RichFile, regexp.MustCompile(`^File: .+`)},
		},
		// Hour variants precede their short forms so a h:m:s
		// duration is never half-matched as m:s.
		Durations: []Duration{
			{RichVoiceCall, regexp.MustCompile(`^Voice Call (\d+):(\d+):(\d+)`), true},
			{RichVoiceCall, regexp.MustCompile(`^Voice Call (\d+):(\d+)`), false},
			{RichVideoCall, regexp.MustCompile(`^Video Call (\d+):(\d+):(\d+)`), true},
			{RichVideoCall, regexp.MustCompile(`^Video Call (\d+):(\d+)`), false},
			{RichLiveTalk, regexp.MustCompile(`^Live Talk ended (\d+):(\d+):(\d+)`), true},
			{RichLiveTalk, regexp.MustCompile(`^Live Talk ended (\d+):(\d+)`), false},
		},

		EventInvite: regexp.MustCompile(`^(.{0,20}) invited (.+)\.$`),
		EventLeave:  regexp.MustCompile(`^(.{0,20}) left\.$`),
	}
}

// koreanTable recognizes exports of the form:
//
//	{title} 님과 카카오톡 대화
//	저장한 날짜 : 2021-05-01 10:00:00
//
//	--------------- 2021년 5월 1일 토요일 ---------------
//	[{author}] [오후 3:15] {content}
func koreanTable() *Table {
	return &Table{
		ID:   Korean,
		Name: "Korean",

		Metadata1:   regexp.MustCompile(`^(.{0,50}) 님과 카카오톡 대화`),
		Metadata2:   regexp.MustCompile(`^저장한 날짜 : (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`),
		SavedLayout: "2006-01-02 15:04:05",

		DateTag:    regexp.MustCompile(`^--------------- (\d{4}년 \d{1,2}월 \d{1,2}일) .요일 ---------------`),
		DateLayout: "2006년 1월 2일",

		Message: regexp.MustCompile(`^\[(.{0,20})\] \[오([전후]) (\d{1,2}):(\d{2})\] (.*)`),
		Groups:  MessageGroups{Author: 1, Meridiem: 2, Hour: 3, Minute: 4, Content: 5},

		HourOffsets: map[string]int{"전": 0, "후": 12},

		Labels: []Label{
			{RichStickers, "이모티콘"},
			{RichPhoto, "사진"},
			{RichVideo, "동영상"},
			{RichDeleted, "삭제된 메시지입니다."},
			{RichVoiceNote, "Voice Note"},
		},
		Presence: []Presence{
			{RichYouTubeLink, regexp.MustCompile(`^http.+youtu.+`)},
			{RichLink, regexp.MustCompile(`^http.+|^www\..+`)},
			{RichFile, regexp.MustCompile(`^파일: .+`)},
		},
		// Call markers are not localized in the Korean export.
		Durations: []Duration{
			{RichVoiceCall, regexp.MustCompile(`^Voice Call (\d+):(\d+):(\d+)`), true},
			{RichVoiceCall, regexp.MustCompile(`^Voice Call (\d+):(\d+)`), false},
			{RichVideoCall, regexp.MustCompile(`^Video Call (\d+):(\d+):(\d+)`), true},
			{RichVideoCall, regexp.MustCompile(`^Video Call (\d+):(\d+)`), false},
			{RichLiveTalk, regexp.MustCompile(`^Live Talk ended (\d+):(\d+):(\d+)`), true},
			{RichLiveTalk, regexp.MustCompile(`^Live Talk ended (\d+):(\d+)`), false},
		},

		EventInvite: regexp.MustCompile(`^(.{0,20})님이 (.+)님을 초대하였습니다\.$`),
		EventLeave:  regexp.MustCompile(`^(.{0,20})님이 나갔습니다\.$`),
	}
}
