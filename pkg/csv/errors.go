// Package csv provides error types and recovery modes for CSV parsing.
package csv

import (
	"errors"
	"fmt"

	"github.com/shapestone/shape-csvtable/internal/parser"
)

// BadLineMode specifies how the parser handles a record whose enclosure is
// still open at the end of the input.
type BadLineMode int

const (
	// BadLineModeWarn keeps the unterminated text as a best-effort final record
	// and reports it through Config.WarningCallback (default).
	BadLineModeWarn BadLineMode = iota
	// BadLineModeError fails the parse with a *ParseError wrapping ErrUnterminatedQuote.
	BadLineModeError
	// BadLineModeSkip silently drops the unterminated record.
	BadLineModeSkip
)

// String returns the string representation of BadLineMode.
func (m BadLineMode) String() string {
	switch m {
	case BadLineModeError:
		return "error"
	case BadLineModeWarn:
		return "warn"
	case BadLineModeSkip:
		return "skip"
	default:
		return fmt.Sprintf("BadLineMode(%d)", m)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m BadLineMode) MarshalText() ([]byte, error) {
	switch m {
	case BadLineModeError, BadLineModeWarn, BadLineModeSkip:
		return []byte(m.String()), nil
	default:
		return nil, &ConfigError{Field: "OnBadLine", Value: m.String(), Message: "unknown mode"}
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BadLineMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*m = BadLineModeError
	case "warn", "":
		*m = BadLineModeWarn
	case "skip":
		*m = BadLineModeSkip
	default:
		return &ConfigError{Field: "OnBadLine", Value: string(text), Message: "unknown mode"}
	}
	return nil
}

// WarningHandler is a callback function for reporting recoverable problems.
type WarningHandler func(line int, message string)

// Sentinel errors. Use errors.Is to check for them.
var (
	// ErrFileNotFound indicates the path does not reference an existing regular file.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileNotReadable indicates the file exists but could not be opened or read.
	ErrFileNotReadable = errors.New("file not readable")

	// ErrFileNotWritable indicates the serialized table could not be written.
	ErrFileNotWritable = errors.New("file not writable")

	// ErrWrongMimeType indicates the detected MIME type is not in the allowlist.
	ErrWrongMimeType = errors.New("wrong mime type")

	// ErrInvalidArgument indicates a row or header that cannot be stored.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfiguration indicates an invalid delimiter, enclosure or encoding.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnterminatedQuote indicates the input ended inside an enclosed field.
	ErrUnterminatedQuote = errors.New("unterminated enclosed field")

	// ErrInvalidEncoding indicates input that is not valid UTF-8 after decoding
	// from the input encoding.
	ErrInvalidEncoding = errors.New("invalid UTF-8 in input")

	// ErrFieldTooLarge indicates a field exceeded Config.MaxFieldSize.
	ErrFieldTooLarge = parser.ErrFieldTooLarge
)

// FileError describes a failure tied to a file path.
// Err is one of the file sentinels; Cause is the underlying I/O error, if any.
type FileError struct {
	Path     string
	MimeType string // detected type, set for ErrWrongMimeType
	Err      error
	Cause    error
}

func (e *FileError) Error() string {
	msg := fmt.Sprintf("csv: %s: %q", e.Err, e.Path)
	if e.MimeType != "" {
		msg += " (detected " + e.MimeType + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the underlying cause.
func (e *FileError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("csv: invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	// StartLine is the physical line where the failing record started (1-indexed).
	StartLine int
	// Line is the physical line where the error was detected (1-indexed).
	Line int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (started line %d): %v", e.Line, e.StartLine, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("csv: %w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
