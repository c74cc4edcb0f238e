// Package tokenizer provides CSV record tokenization using Shape's tokenizer framework.
package tokenizer

// Token type constants for a single CSV record.
//
// The tokenizer emits character-level tokens. The parser decides whether an
// enclosure opens, closes or escapes, and where field boundaries are.
const (
	// Structural tokens
	TokenDelimiter = "Delimiter" // field separator, ',' by default
	TokenEnclosure = "Enclosure" // quote character, '"' by default
	TokenNewline   = "Newline"   // \n, \r\n or \r embedded in a record

	// Field content token
	TokenField = "Field" // run of characters that are none of the above

	// Special token
	TokenEOF = "EOF" // End of input
)
