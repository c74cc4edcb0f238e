package csv

import (
	"bytes"
	"io"
	"strings"
)

// Serialize renders the table as CSV text in the output encoding.
//
// The header comes first when present. Fields containing the enclosure, the
// delimiter, CR or LF are wrapped in the enclosure, and enclosures inside them
// are doubled. Records are joined by "\n" ("\r\n" with UseCRLF) with no
// trailing terminator. An empty table serializes to "".
//
// Example:
//
//	t, _ := csv.NewFromRows([][]string{{"a", "b,c"}, {`say "hi"`, ""}}, csv.DefaultConfig())
//	t.Serialize()
//	// a,"b,c"
//	// "say ""hi""",
func (t *Table) Serialize() string {
	var buf bytes.Buffer
	t.render(&buf)
	return buf.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Serialize()
}

// WriteTo writes the serialized table to w. It implements io.WriterTo.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	t.render(&buf)
	return buf.WriteTo(w)
}

func (t *Table) render(buf *bytes.Buffer) {
	sep := t.cfg.recordSeparator()
	out, _ := newCodec(t.cfg.OutputEncoding)
	first := true
	writeRow := func(row []string) {
		if !first {
			buf.WriteString(sep)
		}
		first = false
		writeRecord(buf, row, t.cfg.Delimiter, t.cfg.Enclosure, out)
	}

	if t.headers != nil {
		writeRow(t.headers)
	}
	for _, row := range t.rows {
		writeRow(row)
	}
}

// writeRecord writes one record without a terminator.
//
// A record that would read back as a blank line, such as a row of empty
// fields under a tab delimiter, is written with its first field enclosed so
// the reader keeps it.
func writeRecord(buf *bytes.Buffer, row []string, delim, encl string, out codec) {
	start := buf.Len()
	for i, field := range row {
		if i > 0 {
			buf.WriteString(delim)
		}
		writeField(buf, field, delim, encl)
	}
	if len(row) == 0 || !out.blank(buf.Bytes()[start:]) {
		return
	}

	buf.Truncate(start)
	buf.WriteString(encl)
	buf.WriteString(row[0])
	buf.WriteString(encl)
	for _, field := range row[1:] {
		buf.WriteString(delim)
		buf.WriteString(field)
	}
}

// writeField writes a field, enclosing it when needed.
// Values may be in a non-UTF-8 output encoding, so matching is done on bytes.
func writeField(buf *bytes.Buffer, value, delim, encl string) {
	if !needsEnclosure(value, delim, encl) {
		buf.WriteString(value)
		return
	}
	buf.WriteString(encl)
	buf.WriteString(strings.ReplaceAll(value, encl, encl+encl))
	buf.WriteString(encl)
}

func needsEnclosure(value, delim, encl string) bool {
	return strings.Contains(value, encl) ||
		strings.Contains(value, delim) ||
		strings.ContainsAny(value, "\r\n")
}
