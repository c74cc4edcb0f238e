package csv_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shapestone/shape-csvtable/pkg/csv"
)

func TestFormat(t *testing.T) {
	if got := csv.Format(); got != "CSV" {
		t.Errorf("Format() = %q, want CSV", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple", input: "a,b\n1,2"},
		{name: "quoted newline", input: "\"a\nb\",c"},
		{name: "enclosures inside unenclosed field", input: `a""b,c`},
		{name: "odd enclosure count", input: `a"b,c`, wantErr: csv.ErrUnterminatedQuote},
		{name: "unterminated", input: "a,\"b\nc", wantErr: csv.ErrUnterminatedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := csv.Validate(tt.input, csv.DefaultConfig())
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	rec := csv.NewRecord([]string{"1", "Bananas"}, []string{"Number", "Fruit", "Color"})

	if v, ok := rec.Get(1); !ok || v != "Bananas" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := rec.Get(2); ok {
		t.Error("Get(2) should be out of range")
	}
	if v, ok := rec.GetByName("Color"); !ok || v != "" {
		t.Errorf("GetByName(Color) = %q, %v; want empty, true", v, ok)
	}
	if _, ok := rec.GetByName("Size"); ok {
		t.Error("GetByName(Size) should not be found")
	}
	want := map[string]string{"Number": "1", "Fruit": "Bananas", "Color": ""}
	if got := rec.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Map() = %v, want %v", got, want)
	}

	plain := csv.NewRecord([]string{"x"}, nil)
	if plain.Map() != nil || plain.Headers() != nil {
		t.Error("record without headers should have no named view")
	}
	fields := plain.Fields()
	fields[0] = "changed"
	if v, _ := plain.Get(0); v != "x" {
		t.Error("Fields() should return a copy")
	}
}
