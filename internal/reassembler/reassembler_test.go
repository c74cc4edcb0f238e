package reassembler

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no terminators", "a,b", "a,b"},
		{"lf only", "a\nb", "a\nb"},
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"lfcr", "a\n\rb", "a\nb"},
		{"lone cr", "a\rb\rc", "a\nb\nc"},
		{"crlf then lone lf", "a\r\n\nb", "a\n\nb"},
		{"double crlf keeps blank line", "a\r\n\r\nb", "a\n\nb"},
		{"trailing cr", "a\r", "a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func scanAll(t *testing.T, scanner *bufio.Scanner) []string {
	t.Helper()
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return lines
}

// lineTests are shared by SplitLines and Lines, which must agree.
var lineTests = []struct {
	name  string
	input string
	want  []string
}{
	{"empty", "", nil},
	{"single line", "abc", []string{"abc"}},
	{"trailing lf", "a\nb\n", []string{"a", "b"}},
	{"only terminator", "\n", []string{""}},
	{"crlf", "a\r\nb", []string{"a", "b"}},
	{"lfcr", "a\n\rb", []string{"a", "b"}},
	{"lone cr", "a\rb", []string{"a", "b"}},
	{"blank lines", "a\n\nb", []string{"a", "", "b"}},
	{"trailing blank line", "a\n\n", []string{"a", ""}},
	{"trailing cr", "a\r", []string{"a"}},
	{"trailing crlf after open quote", ",\r\n\"\r\n", []string{",", "\""}},
}

func TestSplitLines(t *testing.T) {
	for _, tt := range lineTests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(SplitLines)
			got := scanAll(t, scanner)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	for _, tt := range lineTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lines(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSplitLines_OneByteReads checks that a CRLF pair split across reads is
// still a single terminator.
func TestSplitLines_OneByteReads(t *testing.T) {
	input := "a\r\nb\n\rc\rd"
	scanner := bufio.NewScanner(iotest.OneByteReader(strings.NewReader(input)))
	scanner.Split(SplitLines)

	got := scanAll(t, scanner)
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestReassembler_Push(t *testing.T) {
	r := New('"')

	if _, ok := r.Push(`"a`); ok {
		t.Fatal("Push() emitted a record inside an open enclosure")
	}
	if !r.Pending() {
		t.Fatal("Pending() = false with an open enclosure")
	}

	record, ok := r.Push(`b",c`)
	if !ok {
		t.Fatal("Push() did not emit the completed record")
	}
	if record != "\"a\nb\",c" {
		t.Errorf("record = %q, want %q", record, "\"a\nb\",c")
	}
	if r.Pending() {
		t.Error("Pending() = true after emitting")
	}

	if _, ok := r.Push("   "); ok {
		t.Error("Push() emitted a blank record")
	}

	record, ok = r.Push("d,e")
	if !ok || record != "d,e" {
		t.Errorf("Push(d,e) = %q, %v", record, ok)
	}
	if r.Line() != 4 {
		t.Errorf("Line() = %d, want 4", r.Line())
	}
}

func TestReassembler_Flush(t *testing.T) {
	r := New('"')
	r.Push("a,b")
	if _, ok := r.Flush(); ok {
		t.Error("Flush() returned a record with nothing pending")
	}

	r.Push(`c,"open`)
	r.Push("more")
	if r.StartLine() != 2 {
		t.Errorf("StartLine() = %d, want 2", r.StartLine())
	}

	rest, ok := r.Flush()
	if !ok {
		t.Fatal("Flush() = false with a pending record")
	}
	if rest != "c,\"open\nmore" {
		t.Errorf("Flush() = %q", rest)
	}
	if r.Pending() {
		t.Error("Pending() = true after Flush")
	}
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		enclosure rune
		want      []string
	}{
		{
			name:      "multi-line field",
			input:     "\"a\nb\",c\nd,e",
			enclosure: '"',
			want:      []string{"\"a\nb\",c", "d,e"},
		},
		{
			name:      "blank lines skipped",
			input:     "a,b\n\nc,d",
			enclosure: '"',
			want:      []string{"a,b", "c,d"},
		},
		{
			name:      "blank line inside quotes kept",
			input:     "\"a\n\nb\"\nc",
			enclosure: '"',
			want:      []string{"\"a\n\nb\"", "c"},
		},
		{
			name:      "crlf input",
			input:     "'x\r\ny',1\r\n2,3\r\n",
			enclosure: '\'',
			want:      []string{"'x\ny',1", "2,3"},
		},
		{
			name:      "escaped enclosures keep parity",
			input:     "\"a\"\"b\",c\nd",
			enclosure: '"',
			want:      []string{"\"a\"\"b\",c", "d"},
		},
		{
			name:      "unterminated trailing record",
			input:     "a\n\"b\nc",
			enclosure: '"',
			want:      []string{"a", "\"b\nc"},
		},
		{
			name:      "unterminated record before trailing terminator",
			input:     "a\n\"b\n",
			enclosure: '"',
			want:      []string{"a", "\"b"},
		},
		{
			name:      "empty input",
			input:     "",
			enclosure: '"',
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Records(tt.input, tt.enclosure)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Records() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAll_EarlyStop(t *testing.T) {
	count := 0
	for range All("a\nb\nc", '"') {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("iterated %d records, want 2", count)
	}
}
