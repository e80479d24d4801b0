package rdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeParseError indicates malformed JSON or JSON-LD input.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeIOError indicates a file could not be read or written.
	ErrCodeIOError ErrorCode = "IO_ERROR"
	// ErrCodeInvalidDocument indicates well-formed JSON that is not a usable JSON-LD document.
	ErrCodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"
	// ErrCodeFramingError indicates the framing algorithm rejected the input or frame.
	ErrCodeFramingError ErrorCode = "FRAMING_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

var (
	// ErrInvalidDocument indicates a JSON value that cannot be processed as JSON-LD.
	ErrInvalidDocument = errors.New("rdf: invalid JSON-LD document")
	// ErrUnexpectedResult indicates json-gold returned a value of an unexpected type.
	ErrUnexpectedResult = errors.New("rdf: unexpected JSON-LD processor result")
)

// FramingError wraps a failure reported by the framing algorithm.
type FramingError struct {
	Err error
}

func (e *FramingError) Error() string { return "jsonld: frame: " + e.Err.Error() }

func (e *FramingError) Unwrap() error { return e.Err }

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var pathErr *fs.PathError
	var framingErr *FramingError
	var parseErr *ParseError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	case errors.As(err, &pathErr):
		return ErrCodeIOError
	case errors.As(err, &framingErr):
		return ErrCodeFramingError
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrUnexpectedResult):
		return ErrCodeInvalidDocument
	case errors.As(err, &parseErr):
		return ErrCodeParseError
	}
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    string // Format name (e.g., "jsonld", "json")
	Path      string // Source file, if known
	Statement string // Offending input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Offset    int    // Byte offset in input (-1 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Path != "" {
		msg.WriteString(" ")
		msg.WriteString(e.Path)
	}

	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	} else if e.Offset >= 0 {
		fmt.Fprintf(&msg, " (offset %d)", e.Offset)
	}

	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())

	if excerpt := e.formatExcerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

// formatExcerpt shows up to 40 bytes either side of the error column with a
// caret under it.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column <= 0 {
		if len(e.Statement) > maxExcerptLen {
			return e.Statement[:maxExcerptLen] + "..."
		}
		return e.Statement
	}

	start := e.Column - 1
	if start > len(e.Statement) {
		start = len(e.Statement)
	}
	excerptStart := max(start-contextLen, 0)
	excerptEnd := min(start+contextLen, len(e.Statement))

	excerpt := e.Statement[excerptStart:excerptEnd]
	caretPos := start - excerptStart
	if excerptStart > 0 {
		excerpt = "..." + excerpt
		caretPos += 3
	}
	if excerptEnd < len(e.Statement) {
		excerpt += "..."
	}

	var result strings.Builder
	result.WriteString(excerpt)
	result.WriteString("\n  ")
	result.WriteString(strings.Repeat(" ", caretPos))
	result.WriteByte('^')
	return result.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseErrorAtOffset builds a ParseError for a byte offset into data,
// filling in the line, column and the offending line as the excerpt.
func newParseErrorAtOffset(format, path string, data []byte, offset int, err error) *ParseError {
	if offset < 0 || offset > len(data) {
		return &ParseError{Format: format, Path: path, Offset: -1, Err: err}
	}
	line, col, lineStart := 1, 1, 0
	for i := 0; i < offset; i++ {
		if data[i] == '\n' {
			line++
			col = 1
			lineStart = i + 1
			continue
		}
		col++
	}
	lineEnd := lineStart
	for lineEnd < len(data) && data[lineEnd] != '\n' {
		lineEnd++
	}
	return &ParseError{
		Format:    format,
		Path:      path,
		Statement: strings.TrimRight(string(data[lineStart:lineEnd]), "\r"),
		Line:      line,
		Column:    col,
		Offset:    offset,
		Err:       err,
	}
}
