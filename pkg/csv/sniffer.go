package csv

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shapestone/shape-csvtable/internal/parser"
	"github.com/shapestone/shape-csvtable/internal/reassembler"
)

var (
	sniffDelimiters = []rune{',', '\t', ';', '|'}
	sniffEnclosures = []rune{'"', '\''}

	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),      // snake_case or identifier
		regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),     // camelCase
		regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	}
)

// Sniffer detects the CSV dialect of a sample: delimiter, enclosure and
// whether the first record is a header.
type Sniffer struct {
	sample    string
	records   []string
	delimiter rune
	enclosure rune
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a new Sniffer with a sample of CSV data.
// For best results, provide at least 2-3 lines of data.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{sample: sample}
}

// SniffConfig returns DefaultConfig with the delimiter, enclosure and header
// mode detected from sample.
//
// Example:
//
//	cfg := csv.SniffConfig(head)
//	t, err := csv.Parse(text, cfg)
func SniffConfig(sample string) Config {
	s := NewSniffer(sample)
	cfg := DefaultConfig()
	cfg.Delimiter = string(s.DetectDelimiter())
	cfg.Enclosure = string(s.DetectEnclosure())
	cfg.Headers = s.HasHeader()
	return cfg
}

// analyze performs dialect detection on the sample.
func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	s.enclosure = s.detectEnclosure()
	s.records = reassembler.Records(s.sample, s.enclosure)
	s.delimiter = s.detectDelimiter()
	s.hasHeader = s.detectHeader()
	s.analyzed = true
}

// DetectDelimiter returns the detected field delimiter.
// Common delimiters checked: comma, tab, semicolon, pipe.
func (s *Sniffer) DetectDelimiter() rune {
	s.analyze()
	return s.delimiter
}

// DetectEnclosure returns the detected enclosure: a single quote when it
// wraps more fields than the double quote does, otherwise a double quote.
func (s *Sniffer) DetectEnclosure() rune {
	s.analyze()
	return s.enclosure
}

// HasHeader returns true if the first row appears to be a header.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

func (s *Sniffer) detectEnclosure() rune {
	best, bestScore := '"', 0
	for _, encl := range sniffEnclosures {
		if score := countWrapped(s.sample, encl); score > bestScore {
			best, bestScore = encl, score
		}
	}
	return best
}

// countWrapped counts fields that open and close with encl.
func countWrapped(sample string, encl rune) int {
	count := 0
	for _, line := range reassembler.Lines(sample) {
		for _, delim := range sniffDelimiters {
			for _, field := range strings.Split(line, string(delim)) {
				field = strings.TrimSpace(field)
				if len(field) >= 2 && strings.HasPrefix(field, string(encl)) && strings.HasSuffix(field, string(encl)) {
					count++
				}
			}
		}
	}
	return count
}

// detectDelimiter scores each candidate by its count on the first record,
// with a bonus when every record agrees.
func (s *Sniffer) detectDelimiter() rune {
	if len(s.records) == 0 {
		return ','
	}

	best := ','
	bestScore := 0
	for _, delim := range sniffDelimiters {
		counts := make([]int, 0, len(s.records))
		for _, record := range s.records {
			counts = append(counts, countDelimiter(record, delim, s.enclosure))
		}
		if counts[0] == 0 {
			continue
		}

		score := counts[0]
		consistent := true
		for _, c := range counts[1:] {
			if c != counts[0] {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10 // Bonus for consistency
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// countDelimiter counts occurrences of a delimiter, ignoring enclosed sections.
func countDelimiter(record string, delim, encl rune) int {
	count := 0
	inQuotes := false

	for _, ch := range record {
		if ch == encl {
			inQuotes = !inQuotes
		} else if ch == delim && !inQuotes {
			count++
		}
	}

	return count
}

// detectHeader uses heuristics to determine if first row is a header.
func (s *Sniffer) detectHeader() bool {
	if len(s.records) < 2 {
		return false // Need at least 2 records to compare
	}

	opts := parser.Options{Delimiter: s.delimiter, Enclosure: s.enclosure}
	firstFields, err := parser.Fields(s.records[0], opts)
	if err != nil || len(firstFields) == 0 {
		return false
	}

	// Heuristics:
	// 1. Headers are typically non-numeric
	// 2. Headers often contain underscores or are camelCase
	// 3. Headers don't usually contain special characters like @ or #

	headerScore := 0
	dataScore := 0

	for _, field := range firstFields {
		field = strings.TrimSpace(field)
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}

	return headerScore > dataScore
}

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	// Allow leading minus for negative numbers
	if s[0] == '-' {
		s = s[1:]
	}

	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}

	return len(s) > 0
}
