package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shapestone/shape-core/pkg/ast"
)

// TestParse_ReturnsLiteralNodes tests the AST shape produced for a record.
func TestParse_ReturnsLiteralNodes(t *testing.T) {
	node, err := NewParser("a,b", DefaultOptions()).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if node.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", node.Len())
	}

	for i, elem := range node.Elements() {
		if _, ok := elem.(*ast.LiteralNode); !ok {
			t.Errorf("field %d: expected *ast.LiteralNode, got %T", i, elem)
		}
	}
}

// TestFields tests field splitting with the default delimiter and enclosure.
// Grammar: Record = Field { Delimiter Field }
func TestFields(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFields []string
	}{
		{
			name:       "empty record",
			input:      "",
			wantFields: []string{""},
		},
		{
			name:       "single field",
			input:      "hello",
			wantFields: []string{"hello"},
		},
		{
			name:       "three fields",
			input:      "a,b,c",
			wantFields: []string{"a", "b", "c"},
		},
		{
			name:       "empty middle field",
			input:      "a,,c",
			wantFields: []string{"a", "", "c"},
		},
		{
			name:       "all empty fields",
			input:      ",,",
			wantFields: []string{"", "", ""},
		},
		{
			name:       "trailing empty field kept",
			input:      "a,b,",
			wantFields: []string{"a", "b", ""},
		},
		{
			name:       "quoted field",
			input:      `"hello",world`,
			wantFields: []string{"hello", "world"},
		},
		{
			name:       "quoted field with delimiter",
			input:      `"a,b",c`,
			wantFields: []string{"a,b", "c"},
		},
		{
			name:       "escaped enclosure",
			input:      `"a""b"`,
			wantFields: []string{`a"b`},
		},
		{
			name:       "only escaped enclosures",
			input:      `""""`,
			wantFields: []string{`"`},
		},
		{
			name:       "empty quoted field",
			input:      `"",x`,
			wantFields: []string{"", "x"},
		},
		{
			name:       "embedded newline",
			input:      "\"a\nb\",c",
			wantFields: []string{"a\nb", "c"},
		},
		{
			name:       "enclosure mid unquoted field is literal",
			input:      `ab"cd,e`,
			wantFields: []string{`ab"cd`, "e"},
		},
		{
			name:       "text after closing enclosure is appended",
			input:      `"ab"cd,e`,
			wantFields: []string{"abcd", "e"},
		},
		{
			name:       "enclosure re-opened after close",
			input:      `"a"b"c,d"`,
			wantFields: []string{"abc,d"},
		},
		{
			name:       "unterminated enclosure keeps rest",
			input:      `x,"abc,def`,
			wantFields: []string{"x", "abc,def"},
		},
		{
			name:       "leading space is kept by default",
			input:      ` a, "b"`,
			wantFields: []string{" a", ` "b"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fields(tt.input, DefaultOptions())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.wantFields) {
				t.Errorf("Fields(%q) = %q, want %q", tt.input, got, tt.wantFields)
			}
		})
	}
}

// TestFields_CustomCharacters tests non-default delimiters and enclosures.
func TestFields_CustomCharacters(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		opts       Options
		wantFields []string
	}{
		{
			name:       "semicolon",
			input:      `a;"b;c";d`,
			opts:       Options{Delimiter: ';', Enclosure: '"'},
			wantFields: []string{"a", "b;c", "d"},
		},
		{
			name:       "tab with single quote",
			input:      "'it''s'\t\"x\"",
			opts:       Options{Delimiter: '\t', Enclosure: '\''},
			wantFields: []string{"it's", `"x"`},
		},
		{
			name:       "pipe with commas literal",
			input:      "a,b|c",
			opts:       Options{Delimiter: '|', Enclosure: '"'},
			wantFields: []string{"a,b", "c"},
		},
		{
			name:       "non-ascii delimiter",
			input:      "ä§\"ö§\"",
			opts:       Options{Delimiter: '§', Enclosure: '"'},
			wantFields: []string{"ä", "ö§"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fields(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.wantFields) {
				t.Errorf("Fields(%q) = %q, want %q", tt.input, got, tt.wantFields)
			}
		})
	}
}

func TestFields_TrimLeadingSpace(t *testing.T) {
	opts := DefaultOptions()
	opts.TrimLeadingSpace = true

	got, err := Fields(" a,\t b,  \"c, d\",", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a", "b", "c, d", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %q, want %q", got, want)
	}
}

func TestFields_MaxFieldSize(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxFieldSize = 3

	if _, err := Fields("abc,de", opts); err != nil {
		t.Fatalf("unexpected error within limit: %v", err)
	}

	_, err := Fields("abc,defg", opts)
	if err == nil {
		t.Fatal("expected error for oversize field")
	}
	if !errors.Is(err, ErrFieldTooLarge) {
		t.Errorf("error = %v, want ErrFieldTooLarge", err)
	}
	if !strings.Contains(err.Error(), "4 > 3") {
		t.Errorf("error %q does not report sizes", err)
	}
}

// FuzzFields checks the parser never panics and that rejoining unenclosed
// fields reproduces the input when no enclosure is present.
func FuzzFields(f *testing.F) {
	for _, s := range []string{"", "a,b", `"a,b",c`, `"x""y"`, "\"a\nb\"", `,"`, `a"b`} {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("tokenizer works on runes")
		}
		fields, err := Fields(input, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) == 0 {
			t.Fatal("Fields returned no fields")
		}
		if !strings.ContainsRune(input, '"') {
			if joined := strings.Join(fields, ","); joined != input {
				t.Errorf("join(Fields(%q)) = %q", input, joined)
			}
		}
	})
}
