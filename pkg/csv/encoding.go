package csv

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

var errUnknownEncoding = errors.New("unknown encoding")

// lookupEncoding resolves an encoding name through the WHATWG index first and
// the IANA registry second. An empty name means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errUnknownEncoding
}

// canonicalEncoding returns a stable name for comparing two encoding names.
func canonicalEncoding(name string) string {
	enc, err := lookupEncoding(name)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(name))
	}
	if canon, err := htmlindex.Name(enc); err == nil {
		return canon
	}
	if canon, err := ianaindex.IANA.Name(enc); err == nil {
		return strings.ToLower(canon)
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// isUTF8 reports whether name resolves to UTF-8.
func isUTF8(name string) bool {
	return canonicalEncoding(name) == "utf-8"
}

// codec converts text between an external encoding and UTF-8.
// A nil enc means UTF-8 and every conversion is the identity.
type codec struct {
	enc encoding.Encoding
}

func newCodec(name string) (codec, error) {
	if isUTF8(name) {
		return codec{}, nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return codec{}, err
	}
	return codec{enc: enc}, nil
}

// invalidUTF8 returns the byte offset of the first invalid UTF-8 sequence
// in s, or -1.
func invalidUTF8(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for i, r := range s {
		if r != utf8.RuneError {
			continue
		}
		if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
			return i
		}
	}
	return -1
}

// decode converts s from the codec's encoding to UTF-8.
func (c codec) decode(s string) (string, error) {
	if c.enc == nil {
		return s, nil
	}
	return c.enc.NewDecoder().String(s)
}

// encode converts s from UTF-8 to the codec's encoding. Characters the
// target cannot represent are replaced with the encoding's substitute.
func (c codec) encode(s string) (string, error) {
	if c.enc == nil {
		return s, nil
	}
	return encoding.ReplaceUnsupported(c.enc.NewEncoder()).String(s)
}

// blank reports whether rendered, read back in this encoding, is empty after
// trimming whitespace.
func (c codec) blank(rendered []byte) bool {
	for _, b := range rendered {
		if b < utf8.RuneSelf && b != ' ' && (b < '\t' || b > '\r') {
			return false
		}
	}
	s, err := c.decode(string(rendered))
	return err == nil && strings.TrimSpace(s) == ""
}

// encodeFields converts every field in place.
func (c codec) encodeFields(fields []string) error {
	if c.enc == nil {
		return nil
	}
	for i, f := range fields {
		out, err := c.encode(f)
		if err != nil {
			return err
		}
		fields[i] = out
	}
	return nil
}

// transcoder converts values stored in one output encoding to another.
type transcoder struct {
	from, to codec
}

func newTranscoder(from, to string) (transcoder, error) {
	f, err := newCodec(from)
	if err != nil {
		return transcoder{}, err
	}
	t, err := newCodec(to)
	if err != nil {
		return transcoder{}, err
	}
	return transcoder{from: f, to: t}, nil
}

func (t transcoder) convert(s string) (string, error) {
	u, err := t.from.decode(s)
	if err != nil {
		return "", err
	}
	return t.to.encode(u)
}

// LineTransform rewrites one physical line before it is counted for
// enclosures and tokenized. The returned text must be UTF-8.
type LineTransform func(line string, cfg Config) (string, error)

// DecodeInput is the default LineTransform. It converts a line from
// cfg.InputEncoding to UTF-8.
func DecodeInput(line string, cfg Config) (string, error) {
	c, err := newCodec(cfg.InputEncoding)
	if err != nil {
		return "", &ConfigError{Field: "InputEncoding", Value: cfg.InputEncoding, Message: err.Error()}
	}
	return c.decode(line)
}
