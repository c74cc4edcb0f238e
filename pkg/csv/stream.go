package csv

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/shapestone/shape-csvtable/internal/reassembler"
)

const (
	defaultMaxLineSize = 1 << 20
	initialLineBuffer  = 64 * 1024
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// Physical lines are read on demand, so only the record being assembled is
// held in memory.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file, csv.DefaultConfig()).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	ctx       context.Context
	cfg       Config
	lines     *bufio.Scanner
	input     codec
	transform LineTransform
	dec       *recordDecoder
	headers   []string
	record    Record
	rows      int
	err       error
	done      bool

	path   string
	closer io.Closer
	closed bool
}

// NewScanner creates a Scanner reading CSV from r with cfg.
// An invalid configuration is reported by Err after the first Scan.
//
// Example:
//
//	scanner := csv.NewScanner(reader, csv.DefaultConfig())
func NewScanner(r io.Reader, cfg Config) *Scanner {
	return newScanner(context.Background(), r, cfg)
}

func newScanner(ctx context.Context, r io.Reader, cfg Config) *Scanner {
	s := &Scanner{ctx: ctx, cfg: cfg.clone()}
	if err := cfg.Validate(); err != nil {
		s.err = err
		return s
	}

	maxLine := cfg.MaxLineSize
	if maxLine == 0 {
		maxLine = defaultMaxLineSize
	}
	s.lines = bufio.NewScanner(r)
	s.lines.Buffer(make([]byte, 0, min(initialLineBuffer, maxLine)), maxLine)
	s.lines.Split(reassembler.SplitLines)

	var err error
	if s.input, err = newCodec(cfg.InputEncoding); err != nil {
		s.err = &ConfigError{Field: "InputEncoding", Value: cfg.InputEncoding, Message: err.Error()}
		return s
	}
	if s.dec, err = newRecordDecoder(s.cfg); err != nil {
		s.err = err
	}
	return s
}

// OpenFile opens the file at path for streaming. The file goes through the
// same existence and MIME checks as Table.ParseFile. The caller must Close
// the Scanner.
func OpenFile(ctx context.Context, path string, cfg Config) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mimeType, err := checkFile(path, cfg.MimeTypes)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: ErrFileNotReadable, Cause: err}
	}
	emitStreamOpen(ctx, path, mimeType)

	s := newScanner(ctx, f, cfg)
	s.path = path
	s.closer = f
	return s, nil
}

// Records returns an iterator over the records of the file at path.
// The file is closed when iteration ends, including on an early break.
// A nil transform decodes lines from cfg.InputEncoding.
//
// Example:
//
//	for record, err := range csv.Records(ctx, "big.csv", cfg, nil) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(record.Fields())
//	}
func Records(ctx context.Context, path string, cfg Config, transform LineTransform) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		s, err := OpenFile(ctx, path, cfg)
		if err != nil {
			yield(Record{}, err)
			return
		}
		if transform != nil {
			s.SetTransform(transform)
		}
		s.All()(yield)
	}
}

// All returns an iterator over the remaining records. A scanning error is
// yielded last. The Scanner is closed when iteration ends.
func (s *Scanner) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		defer s.Close()
		for s.Scan() {
			if !yield(s.Record(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}

// SetHasHeaders sets whether the first record should be treated as headers.
// It must be called before the first Scan.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.cfg.Headers = hasHeaders
	return s
}

// SetTransform replaces the per-line transform. Each physical line passes
// through it before enclosures are counted. The default decodes the input
// encoding. Returns the Scanner for method chaining.
func (s *Scanner) SetTransform(fn LineTransform) *Scanner {
	s.transform = fn
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	s.record = Record{}
	if s.err != nil || s.done {
		return false
	}
	for {
		fields, ok, err := s.next()
		if err != nil {
			s.err = err
			return false
		}
		if !ok {
			s.done = true
			return false
		}
		if s.cfg.Headers && s.headers == nil {
			if err := checkHeaders(fields); err != nil {
				s.err = err
				return false
			}
			s.headers = fields
			continue
		}
		s.record = Record{fields: fields, headers: s.headers}
		s.rows++
		return true
	}
}

// next reads physical lines until a record is complete or input ends.
func (s *Scanner) next() ([]string, bool, error) {
	for s.lines.Scan() {
		if err := s.ctx.Err(); err != nil {
			return nil, false, err
		}
		line, err := s.transformLine(s.lines.Text())
		if err != nil {
			return nil, false, &ParseError{StartLine: s.dec.re.Line() + 1, Line: s.dec.re.Line() + 1, Err: err}
		}
		fields, ok, err := s.dec.push(line)
		if err != nil || ok {
			return fields, ok, err
		}
	}
	if err := s.lines.Err(); err != nil {
		line := s.dec.re.Line() + 1
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, false, &ParseError{StartLine: line, Line: line, Err: err}
		}
		return nil, false, err
	}
	return s.dec.finish()
}

func (s *Scanner) transformLine(line string) (string, error) {
	var err error
	if s.transform != nil {
		line, err = s.transform(line, s.cfg)
	} else {
		line, err = s.input.decode(line)
	}
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidEncoding
	}
	return line, nil
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	return s.record
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers when header mode is on.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	return s.headers
}

// Close releases the underlying file when the Scanner came from OpenFile.
// It is safe to call more than once.
func (s *Scanner) Close() error {
	if s.closed || s.closer == nil {
		return nil
	}
	s.closed = true
	err := s.closer.Close()
	emitStreamClose(s.ctx, s.path, s.rows, errors.Join(s.err, err))
	return err
}
