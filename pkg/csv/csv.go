// Package csv parses delimited text into a Table and serializes it back.
//
// Parsing runs in three stages. Physical lines are joined into logical
// records while an enclosure is open, so a quoted field may span lines. Each
// record is tokenized into fields with configurable delimiter and enclosure
// characters. The fields are stored in the Table, which keeps every row at
// the same width and optionally maps the first record to header names.
//
// # Thread Safety
//
// Package-level functions are safe for concurrent use. A *Table and a
// *Scanner are single-owner values.
//
//	// Safe: each call builds its own table
//	go func() { csv.Parse(input1, cfg) }()
//	go func() { csv.Parse(input2, cfg) }()
//
// # Parsing APIs
//
//   - Parse(text, cfg) and Table.Parse parse text already in memory
//   - Table.ParseReader reads all of an io.Reader first
//   - Table.ParseFile checks existence and MIME type, then parses the file
//   - NewScanner, OpenFile and Records stream one record at a time
//
// # Example usage with Parse:
//
//	cfg := csv.DefaultConfig()
//	cfg.Headers = true
//	t, err := csv.Parse("Number,Fruit\n1,Bananas\n2,\"Kiwi\nGold\"", cfg)
//	if err != nil {
//	    // handle error
//	}
//	record, _ := t.Row(1)
//	fruit, _ := record.GetByName("Fruit") // "Kiwi\nGold"
//
// # Example usage with Records:
//
//	cfg := csv.DefaultConfig()
//	cfg.InputEncoding = "windows-1251"
//	for record, err := range csv.Records(ctx, "data.csv", cfg, nil) {
//	    if err != nil {
//	        // handle error
//	    }
//	    fmt.Println(record.Fields())
//	}
//
// # Encodings
//
// Input text is decoded from Config.InputEncoding before enclosures are
// counted. Stored values and serialized output use Config.OutputEncoding.
// Encoding names are resolved through the WHATWG and IANA registries of
// golang.org/x/text.
//
// # Events
//
// Parsing, streaming and saving emit capitan signals (see signals.go) that
// callers can hook for logging or metrics.
package csv

// Format returns the format identifier for this parser.
func Format() string {
	return "CSV"
}

// Validate checks that text parses under cfg with no unterminated
// enclosure and no oversize field.
//
//	if err := csv.Validate(input, cfg); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
func Validate(text string, cfg Config) error {
	cfg.OnBadLine = BadLineModeError
	cfg.WarningCallback = nil
	_, err := Parse(text, cfg)
	return err
}

