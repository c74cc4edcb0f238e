// Package csv provides configuration for CSV parsing and writing.
package csv

import (
	"os"
	"slices"
	"strconv"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultMimeTypes is the MIME allowlist used by DefaultConfig.
var DefaultMimeTypes = []string{
	"text/plain",
	"text/csv",
	"text/tsv",
	"application/vnd.ms-excel",
}

// Config configures parsing, serialization and file handling.
//
// Delimiter and Enclosure are strings so that configuration coming from
// outside (flags, YAML) can be validated; each must hold exactly one rune.
type Config struct {
	// Delimiter separates fields. Default: ","
	Delimiter string `yaml:"delimiter"`

	// Enclosure wraps fields containing special characters. Default: `"`
	Enclosure string `yaml:"enclosure"`

	// InputEncoding is the encoding of raw input text. Default: "UTF-8"
	InputEncoding string `yaml:"input_encoding"`

	// OutputEncoding is the encoding of stored values and serialized output. Default: "UTF-8"
	OutputEncoding string `yaml:"output_encoding"`

	// Headers treats the first record as column names.
	Headers bool `yaml:"headers"`

	// MimeTypes is the allowlist checked by ParseFile and OpenFile.
	MimeTypes []string `yaml:"mime_types"`

	// UseCRLF writes \r\n between serialized records instead of \n.
	UseCRLF bool `yaml:"use_crlf"`

	// TrimLeadingSpace drops spaces and tabs at the start of each field.
	TrimLeadingSpace bool `yaml:"trim_leading_space"`

	// OnBadLine selects the policy for an enclosure left open at end of input.
	OnBadLine BadLineMode `yaml:"on_bad_line"`

	// MaxFieldSize is the maximum size of a single field in bytes. 0 means no limit.
	MaxFieldSize int `yaml:"max_field_size"`

	// MaxLineSize bounds a physical line on the streaming path. 0 uses 1 MiB.
	MaxLineSize int `yaml:"max_line_size"`

	// WarningCallback receives warnings when OnBadLine is BadLineModeWarn.
	WarningCallback WarningHandler `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Delimiter:      ",",
		Enclosure:      `"`,
		InputEncoding:  "UTF-8",
		OutputEncoding: "UTF-8",
		MimeTypes:      slices.Clone(DefaultMimeTypes),
		OnBadLine:      BadLineModeWarn,
	}
}

// Validate checks the configuration.
// Every failure unwraps to ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := validChar("Delimiter", c.Delimiter); err != nil {
		return err
	}
	if err := validChar("Enclosure", c.Enclosure); err != nil {
		return err
	}
	if r, _ := utf8.DecodeRuneInString(c.Enclosure); unicode.IsSpace(r) {
		return &ConfigError{Field: "Enclosure", Value: c.Enclosure, Message: "must not be whitespace"}
	}
	if c.Delimiter == c.Enclosure {
		return &ConfigError{Field: "Enclosure", Value: c.Enclosure, Message: "same as delimiter"}
	}
	if _, err := lookupEncoding(c.InputEncoding); err != nil {
		return &ConfigError{Field: "InputEncoding", Value: c.InputEncoding, Message: err.Error()}
	}
	if _, err := lookupEncoding(c.OutputEncoding); err != nil {
		return &ConfigError{Field: "OutputEncoding", Value: c.OutputEncoding, Message: err.Error()}
	}
	if c.MaxFieldSize < 0 {
		return &ConfigError{Field: "MaxFieldSize", Value: strconv.Itoa(c.MaxFieldSize), Message: "negative"}
	}
	if c.MaxLineSize < 0 {
		return &ConfigError{Field: "MaxLineSize", Value: strconv.Itoa(c.MaxLineSize), Message: "negative"}
	}
	return nil
}

// validChar reports whether s is a usable delimiter or enclosure.
func validChar(field, s string) error {
	if utf8.RuneCountInString(s) != 1 {
		return &ConfigError{Field: field, Value: s, Message: "must be exactly one character"}
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '\r' || r == '\n' || r == utf8.RuneError {
		return &ConfigError{Field: field, Value: s, Message: "not allowed"}
	}
	return nil
}

// delimiter returns the delimiter rune. The config must be valid.
func (c Config) delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// enclosure returns the enclosure rune. The config must be valid.
func (c Config) enclosure() rune {
	r, _ := utf8.DecodeRuneInString(c.Enclosure)
	return r
}

// recordSeparator returns the separator written between serialized records.
func (c Config) recordSeparator() string {
	if c.UseCRLF {
		return "\r\n"
	}
	return "\n"
}

// clone returns a copy that shares no slices with c.
func (c Config) clone() Config {
	c.MimeTypes = slices.Clone(c.MimeTypes)
	return c
}

// ParseConfig decodes YAML into a configuration. Keys not present keep
// their DefaultConfig values. The result is validated.
//
// Example:
//
//	delimiter: ";"
//	input_encoding: windows-1251
//	headers: true
//	on_bad_line: error
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigError{Field: "yaml", Value: "", Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, &FileError{Path: path, Err: ErrFileNotFound, Cause: err}
		}
		return Config{}, &FileError{Path: path, Err: ErrFileNotReadable, Cause: err}
	}
	return ParseConfig(data)
}
