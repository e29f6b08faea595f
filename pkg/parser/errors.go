package parser

import (
	"errors"
	"fmt"
)

// Fatal header errors. Callers can distinguish bad input from an
// unsupported export version with errors.Is.
var (
	// ErrEmptyExport indicates the export file contained no lines.
	ErrEmptyExport = errors.New("chat export is empty")

	// ErrLocaleNotRecognized indicates the first header line matched
	// no supported locale.
	ErrLocaleNotRecognized = errors.New("locale not recognized")

	// ErrMalformedMetadata indicates the header matched a locale but
	// the saved-timestamp line could not be parsed.
	ErrMalformedMetadata = errors.New("malformed metadata")
)

// FormatError is a fatal export-format error. No chatroom can be
// constructed without a title and saved timestamp, so the whole parse
// is aborted and no partial result is returned.
type FormatError struct {
	// LineNum is the 1-based offending line, zero for an empty file.
	LineNum int

	// Err is one of the sentinel errors above, possibly wrapped with
	// detail.
	Err error
}

func (e *FormatError) Error() string {
	if e.LineNum == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %v", e.LineNum, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
