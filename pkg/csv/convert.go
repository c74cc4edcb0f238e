package csv

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// ToAST converts the table to a Shape AST.
//
// The result is an *ast.ArrayDataNode of records, each an *ast.ArrayDataNode
// of *ast.LiteralNode string fields. The header, when present, is the first
// record.
//
// Example:
//
//	node := t.ToAST()
//	for _, rec := range node.Elements() {
//	    fields := rec.(*ast.ArrayDataNode).Elements()
//	    _ = fields
//	}
func (t *Table) ToAST() *ast.ArrayDataNode {
	records := make([]ast.SchemaNode, 0, len(t.rows)+1)
	if t.headers != nil {
		records = append(records, recordNode(t.headers))
	}
	for _, row := range t.rows {
		records = append(records, recordNode(row))
	}
	return ast.NewArrayDataNode(records, ast.Position{})
}

// FromAST builds a Table from a node shaped like the output of ToAST.
// With cfg.Headers set, the first record becomes the header.
func FromAST(node ast.SchemaNode, cfg Config) (*Table, error) {
	records, err := NodeToRecords(node)
	if err != nil {
		return nil, err
	}

	headers := cfg.Headers
	cfg.Headers = false
	t, err := NewFromRows(records, cfg)
	if err != nil {
		return nil, err
	}
	if headers {
		if err := t.EnableHeaders(true); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NodeToRecords converts an AST node to a slice of string records.
//
// A file node (array of records) yields one slice per record. A single record
// node (array of literals) is wrapped. Non-string literal values are
// formatted with %v.
//
// Example:
//
//	records, _ := csv.NodeToRecords(t.ToAST())
//	// records is [][]string{{"name","age"}, {"Alice","30"}}
func NodeToRecords(node ast.SchemaNode) ([][]string, error) {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, invalidArgument("unsupported node type %T", node)
	}
	elements := arr.Elements()
	if len(elements) == 0 {
		return [][]string{}, nil
	}

	if _, isField := elements[0].(*ast.LiteralNode); isField {
		fields, err := nodeFields(arr)
		if err != nil {
			return nil, err
		}
		return [][]string{fields}, nil
	}

	records := make([][]string, len(elements))
	for i, elem := range elements {
		rec, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, invalidArgument("record %d: unexpected node type %T", i, elem)
		}
		fields, err := nodeFields(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = fields
	}
	return records, nil
}

// RecordsToNode converts a slice of string records to an AST node.
func RecordsToNode(records [][]string) *ast.ArrayDataNode {
	nodes := make([]ast.SchemaNode, len(records))
	for i, rec := range records {
		nodes[i] = recordNode(rec)
	}
	return ast.NewArrayDataNode(nodes, ast.Position{})
}

func recordNode(fields []string) *ast.ArrayDataNode {
	nodes := make([]ast.SchemaNode, len(fields))
	for i, f := range fields {
		nodes[i] = ast.NewLiteralNode(f, ast.Position{})
	}
	return ast.NewArrayDataNode(nodes, ast.Position{})
}

func nodeFields(rec *ast.ArrayDataNode) ([]string, error) {
	elements := rec.Elements()
	fields := make([]string, len(elements))
	for i, elem := range elements {
		lit, ok := elem.(*ast.LiteralNode)
		if !ok {
			return nil, invalidArgument("field %d: unexpected node type %T", i, elem)
		}
		switch v := lit.Value().(type) {
		case string:
			fields[i] = v
		case nil:
			fields[i] = ""
		default:
			fields[i] = fmt.Sprintf("%v", v)
		}
	}
	return fields, nil
}
