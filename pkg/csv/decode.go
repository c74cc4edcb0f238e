package csv

import (
	"github.com/shapestone/shape-csvtable/internal/parser"
	"github.com/shapestone/shape-csvtable/internal/reassembler"
)

// recordDecoder turns physical UTF-8 lines into field slices encoded in the
// output encoding. Table.Parse and Scanner share it so both paths apply the
// same reassembly, tokenization and unterminated-quote policy.
type recordDecoder struct {
	cfg   Config
	opts  parser.Options
	out   codec
	re    *reassembler.Reassembler
	start int
}

func newRecordDecoder(cfg Config) (*recordDecoder, error) {
	out, err := newCodec(cfg.OutputEncoding)
	if err != nil {
		return nil, &ConfigError{Field: "OutputEncoding", Value: cfg.OutputEncoding, Message: err.Error()}
	}
	return &recordDecoder{
		cfg: cfg,
		opts: parser.Options{
			Delimiter:        cfg.delimiter(),
			Enclosure:        cfg.enclosure(),
			TrimLeadingSpace: cfg.TrimLeadingSpace,
			MaxFieldSize:     cfg.MaxFieldSize,
		},
		out: out,
		re:  reassembler.New(cfg.enclosure()),
	}, nil
}

// push feeds one physical line. It returns the fields of a completed record.
func (d *recordDecoder) push(line string) ([]string, bool, error) {
	if !d.re.Pending() {
		d.start = d.re.Line() + 1
	}
	record, ok := d.re.Push(line)
	if !ok {
		return nil, false, nil
	}
	fields, err := d.fields(record, d.start)
	if err != nil {
		return nil, false, err
	}
	return fields, true, nil
}

// finish applies the OnBadLine policy to an enclosure still open at the end
// of input. It returns the best-effort record when the policy keeps it.
func (d *recordDecoder) finish() ([]string, bool, error) {
	if !d.re.Pending() {
		return nil, false, nil
	}
	start, line := d.re.StartLine(), d.re.Line()
	rest, ok := d.re.Flush()
	if !ok {
		return nil, false, nil
	}

	switch d.cfg.OnBadLine {
	case BadLineModeError:
		return nil, false, &ParseError{StartLine: start, Line: line, Err: ErrUnterminatedQuote}
	case BadLineModeSkip:
		return nil, false, nil
	default:
		if d.cfg.WarningCallback != nil {
			d.cfg.WarningCallback(start, ErrUnterminatedQuote.Error())
		}
		fields, err := d.fields(rest, start)
		if err != nil {
			return nil, false, err
		}
		return fields, true, nil
	}
}

func (d *recordDecoder) fields(record string, start int) ([]string, error) {
	fields, err := parser.Fields(record, d.opts)
	if err != nil {
		return nil, &ParseError{StartLine: start, Line: d.re.Line(), Err: err}
	}
	if err := d.out.encodeFields(fields); err != nil {
		return nil, &ParseError{StartLine: start, Line: d.re.Line(), Err: err}
	}
	return fields, nil
}
