package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// Options configures the tokenizer behavior.
type Options struct {
	// Delimiter is the field separator. Default: ','
	Delimiter rune
	// Enclosure is the quote character. Default: '"'
	Enclosure rune
}

// DefaultOptions returns default tokenizer options.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Enclosure: '"',
	}
}

// NewTokenizer creates a tokenizer with the default delimiter and enclosure.
func NewTokenizer() tokenizer.Tokenizer {
	return NewTokenizerWithOptions(DefaultOptions())
}

// NewTokenizerWithOptions creates a tokenizer with custom options.
//
// Matchers are tried in order of specificity:
// 1. Newlines (CRLF before LF and CR to match the longer sequence first)
// 2. Delimiter
// 3. Enclosure
// 4. Field content (anything else)
func NewTokenizerWithOptions(opts Options) tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		tokenizer.StringMatcherFunc(TokenNewline, "\r\n"),
		tokenizer.StringMatcherFunc(TokenNewline, "\n"),
		tokenizer.StringMatcherFunc(TokenNewline, "\r"),

		tokenizer.StringMatcherFunc(TokenDelimiter, string(opts.Delimiter)),
		tokenizer.StringMatcherFunc(TokenEnclosure, string(opts.Enclosure)),

		FieldContentMatcher(opts.Delimiter, opts.Enclosure),
	)
}

// NewTokenizerWithStream creates a tokenizer over a pre-configured stream.
func NewTokenizerWithStream(stream tokenizer.Stream, opts Options) tokenizer.Tokenizer {
	tok := NewTokenizerWithOptions(opts)
	tok.InitializeFromStream(stream)
	return tok
}

// FieldContentMatcher matches runs of characters that are not the delimiter,
// the enclosure, CR or LF.
//
// Grammar:
//
//	Field = Character+ ;
//	Character = <any character except delimiter, enclosure, CR, LF> ;
//
// Uses the ByteStream fast path when both delimiter and enclosure are ASCII.
func FieldContentMatcher(delim, encl rune) tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		if delim < 128 && encl < 128 {
			if byteStream, ok := stream.(tokenizer.ByteStream); ok {
				return fieldContentByte(byteStream, byte(delim), byte(encl))
			}
		}
		return fieldContentRune(stream, delim, encl)
	}
}

func fieldContentByte(stream tokenizer.ByteStream, delim, encl byte) *tokenizer.Token {
	startPos := stream.BytePosition()

	for {
		b, ok := stream.PeekByte()
		if !ok {
			break
		}
		if b == delim || b == encl || b == '\n' || b == '\r' {
			break
		}
		stream.NextByte()
	}

	if stream.BytePosition() == startPos {
		return nil
	}

	value := stream.SliceFrom(startPos)
	return tokenizer.NewToken(TokenField, []rune(string(value)))
}

func fieldContentRune(stream tokenizer.Stream, delim, encl rune) *tokenizer.Token {
	var value []rune

	for {
		r, ok := stream.PeekChar()
		if !ok {
			break
		}
		if r == delim || r == encl || r == '\n' || r == '\r' {
			break
		}
		stream.NextChar()
		value = append(value, r)
	}

	if len(value) == 0 {
		return nil
	}

	return tokenizer.NewToken(TokenField, value)
}
