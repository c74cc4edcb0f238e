// Package csv provides the Table model: an ordered collection of rows with
// optional headers, kept at a uniform width.
//
// # Table Type
//
// Table holds rows of string fields and an optional header row:
//
//	t, _ := csv.New(csv.DefaultConfig())
//	t.Append([]string{"1", "Bananas"})
//	t.Append([]string{"2", "Kiwi"})
//	t.SetHeaders([]string{"Number", "Fruit"}, false)
//
// # Width Harmonization
//
// All rows share one width. A narrower row is padded with empty strings; a
// wider row widens every existing row instead of being truncated:
//
//	t.Append([]string{"3", "Oranges", "citrus"})
//	// rows 0 and 1 now end with ""
//
// # Named Access
//
// With headers set, each row is also addressable by header name:
//
//	record, _ := t.Row(0)
//	fruit, _ := record.GetByName("Fruit")
package csv

import (
	"context"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/shapestone/shape-csvtable/internal/reassembler"
)

// Table is an ordered collection of rows. It is not safe for concurrent use.
type Table struct {
	cfg     Config
	headers []string
	rows    [][]string
	width   int
}

// New creates an empty Table. The configuration is validated.
func New(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Table{cfg: cfg.clone()}, nil
}

// NewFromRows creates a Table holding rows, appended in order.
func NewFromRows(rows [][]string, cfg Config) (*Table, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Parse parses text with cfg into a new Table.
//
// Example:
//
//	t, err := csv.Parse("\"a\nb\",c\nd,e", csv.DefaultConfig())
//	// t.Len() == 2
func Parse(text string, cfg Config) (*Table, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := t.Parse(text); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse replaces the table's contents with the records in text.
//
// text is decoded from the input encoding, split into logical records,
// tokenized and stored in the output encoding. Every row is padded to the
// widest record. With headers enabled the first record becomes the header.
//
// On error the table is left unchanged.
func (t *Table) Parse(text string) error {
	return t.parseContext(context.Background(), text)
}

func (t *Table) parseContext(ctx context.Context, text string) (err error) {
	started := time.Now()
	parsed := 0
	emitParseStart(ctx, len(text))
	defer func() {
		emitParseComplete(ctx, parsed, time.Since(started), err)
	}()

	in, err := newCodec(t.cfg.InputEncoding)
	if err != nil {
		return &ConfigError{Field: "InputEncoding", Value: t.cfg.InputEncoding, Message: err.Error()}
	}
	decoded, err := in.decode(text)
	if err != nil {
		return &ParseError{StartLine: 1, Line: 1, Err: err}
	}
	if i := invalidUTF8(decoded); i >= 0 {
		line := len(reassembler.Lines(decoded[:i+1]))
		return &ParseError{StartLine: line, Line: line, Err: ErrInvalidEncoding}
	}

	dec, err := newRecordDecoder(t.cfg)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, line := range reassembler.Lines(decoded) {
		fields, ok, err := dec.push(line)
		if err != nil {
			return err
		}
		if ok {
			rows = append(rows, fields)
		}
	}
	fields, ok, err := dec.finish()
	if err != nil {
		return err
	}
	if ok {
		rows = append(rows, fields)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		rows[i] = pad(row, width)
	}

	var headers []string
	if t.cfg.Headers && len(rows) > 0 {
		headers, rows = rows[0], rows[1:]
		if err := checkHeaders(headers); err != nil {
			return err
		}
	}

	t.headers, t.rows, t.width = headers, rows, width
	parsed = len(rows)
	return nil
}

// Append adds row at the end of the table.
//
// If row is narrower than the table it is padded. If it is wider, every
// existing row is padded up to the new width. With headers set, a row wider
// than the header fails with ErrInvalidArgument.
func (t *Table) Append(row []string) error {
	fitted, err := t.fit(row)
	if err != nil {
		return err
	}
	t.rows = append(t.rows, fitted)
	t.widen(len(fitted))
	return nil
}

// AppendAny converts v to a row and appends it.
//
// v may be a []string, a []any or any slice or array of scalars (strings,
// booleans, numbers, fmt.Stringer values; nil becomes ""). A single scalar
// or a []byte becomes a one-field row. Nested slices, maps and structs fail with
// ErrInvalidArgument.
func (t *Table) AppendAny(v any) error {
	row, err := toRow(v)
	if err != nil {
		return err
	}
	return t.Append(row)
}

// SetAt replaces the row at index. index == Len() appends.
// Any other index outside [0, Len()] fails with ErrInvalidArgument.
func (t *Table) SetAt(index int, row []string) error {
	if index < 0 || index > len(t.rows) {
		return invalidArgument("index %d out of range [0, %d]", index, len(t.rows))
	}
	if index == len(t.rows) {
		return t.Append(row)
	}
	fitted, err := t.fit(row)
	if err != nil {
		return err
	}
	t.rows[index] = fitted
	t.widen(len(fitted))
	return nil
}

// SetAtAny converts v like AppendAny and stores it like SetAt.
func (t *Table) SetAtAny(index int, v any) error {
	row, err := toRow(v)
	if err != nil {
		return err
	}
	return t.SetAt(index, row)
}

// Remove deletes the row at index. The table width is unchanged.
func (t *Table) Remove(index int) error {
	if index < 0 || index >= len(t.rows) {
		return invalidArgument("index %d out of range [0, %d)", index, len(t.rows))
	}
	t.rows = slices.Delete(t.rows, index, index+1)
	return nil
}

// fit copies row and pads it to the table width.
func (t *Table) fit(row []string) ([]string, error) {
	if t.headers != nil && len(row) > len(t.headers) {
		return nil, invalidArgument("row has %d fields, header has %d", len(row), len(t.headers))
	}
	return pad(slices.Clone(row), t.width), nil
}

// widen pads every row to width when width exceeds the current one.
func (t *Table) widen(width int) {
	if width <= t.width {
		return
	}
	t.width = width
	for i, row := range t.rows {
		t.rows[i] = pad(row, width)
	}
}

// pad right-pads row with empty fields up to width.
func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// Len returns the number of rows, not counting the header.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of fields every row has.
func (t *Table) Width() int {
	return t.width
}

// Row returns the row at index.
// Returns (Record{}, false) if the index is out of bounds.
func (t *Table) Row(index int) (Record, bool) {
	if index < 0 || index >= len(t.rows) {
		return Record{}, false
	}
	return Record{fields: t.rows[index], headers: t.headers}, true
}

// Rows returns a copy of all rows.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = slices.Clone(row)
	}
	return rows
}

// All returns an iterator over the rows in order.
//
//	for i, record := range t.All() {
//	    fmt.Println(i, record.Fields())
//	}
func (t *Table) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, row := range t.rows {
			if !yield(i, Record{fields: row, headers: t.headers}) {
				return
			}
		}
	}
}

// Headers returns a copy of the header names, or nil when none are set.
func (t *Table) Headers() []string {
	return slices.Clone(t.headers)
}

// HeadersEnabled reports whether header mode is on.
func (t *Table) HeadersEnabled() bool {
	return t.cfg.Headers
}

// EnableHeaders switches header mode.
//
// Turning it on with no header set promotes the first row to the header.
// Turning it off moves the header back in front of the rows, so no data is lost.
func (t *Table) EnableHeaders(enabled bool) error {
	if enabled == t.cfg.Headers {
		return nil
	}
	if !enabled {
		if t.headers != nil {
			t.rows = append([][]string{t.headers}, t.rows...)
			t.headers = nil
		}
		t.cfg.Headers = false
		return nil
	}

	if t.headers == nil && len(t.rows) > 0 {
		if err := checkHeaders(t.rows[0]); err != nil {
			return err
		}
		t.headers = t.rows[0]
		t.rows = t.rows[1:]
	}
	t.cfg.Headers = true
	return nil
}

// SetHeaders sets the header names and turns header mode on.
//
// When deleteFirstRow is true the row at index 0 is dropped first, which is
// how a data row gets promoted into the header position. Every remaining row
// is remapped to names; rows narrower than names are padded. Names must be
// unique and at least as many as the table width.
func (t *Table) SetHeaders(names []string, deleteFirstRow bool) error {
	if len(names) == 0 {
		return invalidArgument("empty header")
	}
	if err := checkHeaders(names); err != nil {
		return err
	}

	rows := t.rows
	if deleteFirstRow && len(rows) > 0 {
		rows = rows[1:]
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if len(names) < width {
		return invalidArgument("header has %d names, rows have %d fields", len(names), width)
	}

	remapped := make([][]string, len(rows))
	for i, row := range rows {
		remapped[i] = pad(row, len(names))
	}

	t.headers = slices.Clone(names)
	t.rows = remapped
	t.width = len(names)
	t.cfg.Headers = true
	return nil
}

// checkHeaders rejects duplicate header names. Empty names come from
// padding and may repeat.
func checkHeaders(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return invalidArgument("duplicate header %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Config returns a copy of the table's configuration.
func (t *Table) Config() Config {
	return t.cfg.clone()
}

// Delimiter returns the field delimiter.
func (t *Table) Delimiter() string { return t.cfg.Delimiter }

// Enclosure returns the enclosure character.
func (t *Table) Enclosure() string { return t.cfg.Enclosure }

// InputEncoding returns the input encoding name.
func (t *Table) InputEncoding() string { return t.cfg.InputEncoding }

// OutputEncoding returns the output encoding name.
func (t *Table) OutputEncoding() string { return t.cfg.OutputEncoding }

// MimeTypes returns a copy of the MIME allowlist.
func (t *Table) MimeTypes() []string { return slices.Clone(t.cfg.MimeTypes) }

// SetDelimiter sets the field delimiter. It must be exactly one character.
func (t *Table) SetDelimiter(delimiter string) error {
	cfg := t.cfg
	cfg.Delimiter = delimiter
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg.Delimiter = delimiter
	return nil
}

// SetEnclosure sets the enclosure character. It must be exactly one character.
func (t *Table) SetEnclosure(enclosure string) error {
	cfg := t.cfg
	cfg.Enclosure = enclosure
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg.Enclosure = enclosure
	return nil
}

// SetInputEncoding sets the encoding used to decode parsed text.
func (t *Table) SetInputEncoding(name string) error {
	if _, err := lookupEncoding(name); err != nil {
		return &ConfigError{Field: "InputEncoding", Value: name, Message: err.Error()}
	}
	t.cfg.InputEncoding = name
	return nil
}

// SetOutputEncoding re-encodes the header and every stored value from the
// current output encoding to name. It is a no-op when both names resolve to
// the same encoding. On error nothing is changed.
func (t *Table) SetOutputEncoding(name string) error {
	if _, err := lookupEncoding(name); err != nil {
		return &ConfigError{Field: "OutputEncoding", Value: name, Message: err.Error()}
	}
	if canonicalEncoding(name) == canonicalEncoding(t.cfg.OutputEncoding) {
		t.cfg.OutputEncoding = name
		return nil
	}

	tc, err := newTranscoder(t.cfg.OutputEncoding, name)
	if err != nil {
		return &ConfigError{Field: "OutputEncoding", Value: name, Message: err.Error()}
	}

	convert := func(in []string) ([]string, error) {
		if in == nil {
			return nil, nil
		}
		out := make([]string, len(in))
		for i, s := range in {
			c, err := tc.convert(s)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	headers, err := convert(t.headers)
	if err != nil {
		return err
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		if rows[i], err = convert(row); err != nil {
			return err
		}
	}

	t.headers, t.rows = headers, rows
	t.cfg.OutputEncoding = name
	emitEncodingChanged(context.Background(), name, len(rows))
	return nil
}

// AddMimeType adds a MIME type to the allowlist used by ParseFile.
func (t *Table) AddMimeType(mimeType string) {
	if !slices.Contains(t.cfg.MimeTypes, mimeType) {
		t.cfg.MimeTypes = append(t.cfg.MimeTypes, mimeType)
	}
}

// toRow converts a flat value into a row of strings.
func toRow(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return slices.Clone(val), nil
	case []byte:
		return []string{string(val)}, nil
	case []any:
		row := make([]string, len(val))
		for i, item := range val {
			s, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			row[i] = s
		}
		return row, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		row := make([]string, rv.Len())
		for i := range row {
			s, err := scalarString(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			row[i] = s
		}
		return row, nil
	}

	s, err := scalarString(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// scalarString formats a scalar field value.
func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case interface{ String() string }:
		return val.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return "", nil
		}
		return scalarString(rv.Elem().Interface())
	}
	return "", invalidArgument("field of type %T is not a scalar", v)
}
