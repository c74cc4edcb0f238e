package csv_test

import (
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	shapecsv "github.com/shapestone/shape-csvtable/pkg/csv"
)

// benchData generates rows records with a mix of plain, quoted and
// multi-line fields.
func benchData(rows int) string {
	var sb strings.Builder
	sb.WriteString("id,name,email,notes\n")
	for i := range rows {
		fmt.Fprintf(&sb, "%d,User %d,user%d@example.com,", i, i, i)
		switch i % 3 {
		case 0:
			sb.WriteString("plain")
		case 1:
			sb.WriteString(`"has, comma and ""quotes"""`)
		default:
			sb.WriteString("\"spans\ntwo lines\"")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func BenchmarkTableParse_Medium(b *testing.B) {
	data := benchData(1000)
	cfg := shapecsv.DefaultConfig()

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := shapecsv.Parse(data, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodingCSV_ReadAll_Medium(b *testing.B) {
	data := benchData(1000)

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := csv.NewReader(strings.NewReader(data)).ReadAll(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkScanner_Medium(b *testing.B) {
	data := benchData(1000)
	cfg := shapecsv.DefaultConfig()
	cfg.Headers = true

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		s := shapecsv.NewScanner(strings.NewReader(data), cfg)
		for s.Scan() {
			_ = s.Record()
		}
		if err := s.Err(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTableSerialize_Medium(b *testing.B) {
	tbl, err := shapecsv.Parse(benchData(1000), shapecsv.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_ = tbl.Serialize()
	}
}

func BenchmarkSetOutputEncoding(b *testing.B) {
	data := benchData(1000)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		b.StopTimer()
		tbl, err := shapecsv.Parse(data, shapecsv.DefaultConfig())
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := tbl.SetOutputEncoding("windows-1251"); err != nil {
			b.Fatal(err)
		}
	}
}
