package csv

// Record represents a single row of a Table or Scanner.
// It provides access to field values by index or by header name.
//
// The named view is derived from the positional one: header i names field i.
// A header with no corresponding field reads as "".
type Record struct {
	fields  []string
	headers []string // Reference to table headers for name-based access
}

// NewRecord creates a Record from fields and optional headers.
func NewRecord(fields, headers []string) Record {
	return Record{fields: fields, headers: headers}
}

// Get gets the field value at the specified index.
// Returns (value, false) if the index is out of bounds.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns ("", false) if the header name is unknown or no headers are set.
//
// Example:
//
//	record, _ := table.Row(0)
//	fruit, ok := record.GetByName("Fruit")
func (r Record) GetByName(name string) (string, bool) {
	for i, header := range r.headers {
		if header == name {
			if i < len(r.fields) {
				return r.fields[i], true
			}
			return "", true
		}
	}
	return "", false
}

// Fields returns a copy of the field values.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Headers returns a copy of the header names, or nil when headers are off.
func (r Record) Headers() []string {
	if r.headers == nil {
		return nil
	}
	headers := make([]string, len(r.headers))
	copy(headers, r.headers)
	return headers
}

// Map returns the named view as header name → value.
// Returns nil when no headers are set.
func (r Record) Map() map[string]string {
	if len(r.headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(r.headers))
	for i, header := range r.headers {
		if i < len(r.fields) {
			m[header] = r.fields[i]
		} else {
			m[header] = ""
		}
	}
	return m
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}
