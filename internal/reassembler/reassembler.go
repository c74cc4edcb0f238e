// Package reassembler turns physical lines of CSV text into logical records.
//
// A logical record may span several physical lines when a newline appears
// inside an enclosed field. The Reassembler joins such lines back together by
// tracking the parity of enclosure characters seen so far: an odd count means
// the accumulated text ends inside an open enclosure.
//
// The canonical record separator is "\n". Every terminator recognised on input
// (CRLF, LFCR, lone CR, lone LF) is replaced by it, including the ones that
// end up embedded inside enclosed fields.
package reassembler

import (
	"bytes"
	"iter"
	"strings"
)

// Separator is the canonical record separator used internally.
const Separator = "\n"

// Normalize replaces every line terminator in text with Separator.
// "\r\n" and "\n\r" pairs count as a single terminator.
func Normalize(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\r' && c != '\n' {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('\n')
		if i+1 < len(text) && isPair(c, text[i+1]) {
			i++
		}
	}

	return sb.String()
}

// isPair reports whether a and b form a two-byte terminator.
func isPair(a, b byte) bool {
	return (a == '\r' && b == '\n') || (a == '\n' && b == '\r')
}

// Lines splits text into physical lines on any terminator. A terminator at the
// end of text does not start another line, so the result matches what
// SplitLines yields for the same input.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(Normalize(text), Separator), Separator)
}

// SplitLines is a bufio.SplitFunc that yields physical lines terminated by
// CRLF, LFCR, CR or LF. The terminator is not part of the token.
//
// A terminator byte at the end of the buffer is only consumed once the next
// byte is known, so a pair split across two reads is still one terminator.
func SplitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if i+1 < len(data) {
			if isPair(data[i], data[i+1]) {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Need one more byte to tell CR from CRLF.
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// Reassembler accumulates physical lines until they form a complete record.
// The zero value is not usable; create one with New.
type Reassembler struct {
	enclosure string
	buf       strings.Builder
	started   bool
	count     int
	line      int
	startLine int
}

// New creates a Reassembler for the given enclosure character.
func New(enclosure rune) *Reassembler {
	return &Reassembler{enclosure: string(enclosure)}
}

// Push feeds the next physical line. It returns the completed logical record
// and true when the accumulated text holds an even number of enclosures and is
// not blank. Blank records are dropped and reset the accumulator.
//
// Only the new line is scanned for enclosures, so feeding a record of n
// physical lines costs O(total characters).
func (r *Reassembler) Push(line string) (string, bool) {
	r.line++
	if r.started {
		r.buf.WriteString(Separator)
	} else {
		r.started = true
		r.startLine = r.line
	}
	r.buf.WriteString(line)
	r.count += strings.Count(line, r.enclosure)

	if r.count%2 != 0 {
		return "", false
	}

	record := r.buf.String()
	r.reset()

	if strings.TrimSpace(record) == "" {
		return "", false
	}
	return record, true
}

// Pending reports whether a partial record is waiting for more lines.
func (r *Reassembler) Pending() bool {
	return r.started
}

// StartLine returns the 1-based physical line on which the pending record
// started. It is only meaningful while Pending is true.
func (r *Reassembler) StartLine() int {
	return r.startLine
}

// Line returns the number of physical lines pushed so far.
func (r *Reassembler) Line() int {
	return r.line
}

// Flush returns the unterminated remainder, if any, and resets the
// accumulator. The caller decides whether to keep it.
func (r *Reassembler) Flush() (string, bool) {
	if !r.started {
		return "", false
	}
	rest := r.buf.String()
	r.reset()
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

func (r *Reassembler) reset() {
	r.buf.Reset()
	r.started = false
	r.count = 0
}

// Records splits text into logical records eagerly. An unterminated trailing
// record is included as-is.
func Records(text string, enclosure rune) []string {
	var out []string
	for record := range All(text, enclosure) {
		out = append(out, record)
	}
	return out
}

// All returns a lazy sequence of the logical records in text. An unterminated
// trailing record is yielded last.
func All(text string, enclosure rune) iter.Seq[string] {
	return func(yield func(string) bool) {
		r := New(enclosure)
		for _, line := range Lines(text) {
			if record, ok := r.Push(line); ok {
				if !yield(record) {
					return
				}
			}
		}
		if rest, ok := r.Flush(); ok {
			yield(rest)
		}
	}
}
