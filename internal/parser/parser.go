// Package parser implements recursive descent parsing of a single logical CSV record.
//
// The input is one record as produced by the reassembler: embedded newlines
// only occur inside enclosed fields. Parsing is permissive in the way
// spreadsheet exports expect:
//
//	Record    = Field { Delimiter Field } ;
//	Field     = [ Enclosed ] { Content | Enclosed } ;
//	Enclosed  = Enclosure { Content | Delimiter | Newline | Enclosure Enclosure } [ Enclosure ] ;
//
// Enclosures inside unenclosed content are literal, text following a closing
// enclosure is appended to the field, and an enclosure left open at the end of
// the record keeps everything after it.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
	"github.com/shapestone/shape-csvtable/internal/tokenizer"
)

// ErrFieldTooLarge indicates a field exceeded Options.MaxFieldSize.
var ErrFieldTooLarge = errors.New("field exceeds maximum size")

// Options configures the parser behavior.
type Options struct {
	// Delimiter is the field separator. Default: ','
	Delimiter rune
	// Enclosure is the quote character. Default: '"'
	Enclosure rune
	// TrimLeadingSpace drops spaces and tabs at the start of each field.
	TrimLeadingSpace bool
	// MaxFieldSize is the maximum allowed size for a single field in bytes. 0 means no limit.
	MaxFieldSize int
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Enclosure: '"',
	}
}

// Parser parses one logical record with a single token lookahead.
type Parser struct {
	tokenizer *shapetokenizer.Tokenizer
	current   *shapetokenizer.Token
	hasToken  bool
	opts      Options
}

// NewParser creates a parser for the given record.
func NewParser(record string, opts Options) *Parser {
	tok := tokenizer.NewTokenizerWithOptions(tokenizer.Options{
		Delimiter: opts.Delimiter,
		Enclosure: opts.Enclosure,
	})
	tok.Initialize(record)

	p := &Parser{
		tokenizer: &tok,
		opts:      opts,
	}
	p.advance() // Load first token
	return p
}

// Fields parses record and returns its field values.
func Fields(record string, opts Options) ([]string, error) {
	node, err := NewParser(record, opts).Parse()
	if err != nil {
		return nil, err
	}

	elements := node.Elements()
	fields := make([]string, len(elements))
	for i, elem := range elements {
		if lit, ok := elem.(*ast.LiteralNode); ok {
			fields[i], _ = lit.Value().(string)
		}
	}
	return fields, nil
}

// Parse parses the record.
//
// Grammar:
//
//	Record = Field { Delimiter Field } ;
//
// Returns *ast.ArrayDataNode whose elements are *ast.LiteralNode string fields.
// An empty record yields a single empty field.
func (p *Parser) Parse() (*ast.ArrayDataNode, error) {
	startPos := p.position()
	fields := make([]ast.SchemaNode, 0, 8)

	for {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)

		if !p.at(tokenizer.TokenDelimiter) {
			break
		}
		p.advance() // consume delimiter
	}

	return ast.NewArrayDataNode(fields, startPos), nil
}

// parseField parses a single field up to the next top-level delimiter.
func (p *Parser) parseField() (*ast.LiteralNode, error) {
	startPos := p.position()
	var value strings.Builder

	if p.opts.TrimLeadingSpace && p.at(tokenizer.TokenField) {
		trimmed := strings.TrimLeft(p.peek().ValueString(), " \t")
		p.advance()
		value.WriteString(trimmed)
	}

	if value.Len() == 0 && p.at(tokenizer.TokenEnclosure) {
		p.parseEnclosed(&value)
	} else {
		p.parseUnenclosed(&value)
	}

	s := value.String()
	if p.opts.MaxFieldSize > 0 && len(s) > p.opts.MaxFieldSize {
		return nil, fmt.Errorf("field at %s: %w (%d > %d)",
			startPos.String(), ErrFieldTooLarge, len(s), p.opts.MaxFieldSize)
	}

	return ast.NewLiteralNode(s, startPos), nil
}

// parseEnclosed parses a field that starts with the enclosure character.
//
// Grammar:
//
//	Enclosed = Enclosure { Content | Enclosure Enclosure } Enclosure ;
//
// Doubled enclosures inside the field unescape to one.
func (p *Parser) parseEnclosed(value *strings.Builder) {
	p.advance() // consume opening enclosure
	inside := true

	for p.hasToken {
		token := p.peek()
		kind := token.Kind()

		if inside {
			if kind == tokenizer.TokenEnclosure {
				p.advance()
				if p.at(tokenizer.TokenEnclosure) {
					value.WriteString(token.ValueString())
					p.advance()
				} else {
					inside = false
				}
				continue
			}
			value.WriteString(token.ValueString())
			p.advance()
			continue
		}

		switch kind {
		case tokenizer.TokenDelimiter:
			return
		case tokenizer.TokenEnclosure:
			inside = true
		default:
			value.WriteString(token.ValueString())
		}
		p.advance()
	}
}

// parseUnenclosed parses content up to the next delimiter. Enclosures and
// newlines are kept literally.
func (p *Parser) parseUnenclosed(value *strings.Builder) {
	for p.hasToken && !p.at(tokenizer.TokenDelimiter) {
		value.WriteString(p.peek().ValueString())
		p.advance()
	}
}

// Helper methods

// peek returns current token without advancing.
func (p *Parser) peek() *shapetokenizer.Token {
	return p.current
}

// at reports whether the current token has the given kind.
func (p *Parser) at(kind string) bool {
	return p.hasToken && p.current != nil && p.current.Kind() == kind
}

// advance moves to next token.
func (p *Parser) advance() {
	token, ok := p.tokenizer.NextToken()
	if ok {
		p.current = token
		p.hasToken = true
	} else {
		p.hasToken = false
		p.current = nil
	}
}

// position returns current position for AST nodes.
func (p *Parser) position() ast.Position {
	if p.hasToken && p.current != nil {
		return ast.NewPosition(
			p.current.Offset(),
			p.current.Row(),
			p.current.Column(),
		)
	}
	return ast.ZeroPosition()
}
