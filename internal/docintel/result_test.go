package docintel

import (
	"reflect"
	"testing"
)

func TestExtractTextJoinsRecognizedKeys(t *testing.T) {
	result := map[string]any{
		"analyzeResult": map[string]any{
			"content": "HEAT 12345",
			"pages": []any{
				map[string]any{"lines": []any{
					map[string]any{"text": "Grade X65"},
				}},
			},
		},
	}
	got := ExtractText(result)
	if got != "HEAT 12345\nGrade X65" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	if got := ExtractText(map[string]any{"status": float64(1)}); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractText(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTablesCellGrid(t *testing.T) {
	result := map[string]any{
		"analyzeResult": map[string]any{
			"tables": []any{
				map[string]any{
					"id": "t1",
					"cells": []any{
						map[string]any{"rowIndex": float64(0), "columnIndex": float64(0), "content": "Element"},
						map[string]any{"rowIndex": float64(0), "columnIndex": float64(1), "content": "Percentage"},
						map[string]any{"rowIndex": float64(1), "columnIndex": float64(0), "content": "Carbon"},
						map[string]any{"rowIndex": float64(1), "columnIndex": float64(1), "content": "0.25%"},
						map[string]any{"rowIndex": float64(2), "columnIndex": float64(0), "content": "Manganese"},
						map[string]any{"rowIndex": float64(2), "columnIndex": float64(1), "content": "1.2%"},
					},
				},
			},
		},
	}

	tables := ExtractTables(result)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if tbl.TableID != "t1" {
		t.Fatalf("got id %q", tbl.TableID)
	}
	if !reflect.DeepEqual(tbl.Headers, []string{"Element", "Percentage"}) {
		t.Fatalf("headers %v", tbl.Headers)
	}
	wantRows := [][]string{
		{"Carbon", "0.25%"},
		{"Manganese", "1.2%"},
	}
	if !reflect.DeepEqual(tbl.Rows, wantRows) {
		t.Fatalf("rows %v", tbl.Rows)
	}
}

func TestExtractTablesSparseGrid(t *testing.T) {
	result := map[string]any{
		"tables": []any{
			map[string]any{
				"cells": []any{
					map[string]any{"rowIndex": float64(0), "columnIndex": float64(2), "text": "C"},
					map[string]any{"rowIndex": float64(1), "columnIndex": float64(0), "content": "row1"},
				},
			},
		},
	}
	tables := ExtractTables(result)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if !reflect.DeepEqual(tbl.Headers, []string{"", "", "C"}) {
		t.Fatalf("headers %v", tbl.Headers)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"row1", "", ""}}) {
		t.Fatalf("rows %v", tbl.Rows)
	}
}

func TestExtractTablesNativeRows(t *testing.T) {
	result := map[string]any{
		"tables": []any{
			map[string]any{
				"orientation": "rotated",
				"rows": []any{
					[]any{"Element", "Pct"},
					[]any{"Carbon", "0.25%"},
				},
			},
		},
	}
	tables := ExtractTables(result)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if !reflect.DeepEqual(tbl.Headers, []string{"Element", "Pct"}) {
		t.Fatalf("headers %v", tbl.Headers)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"Carbon", "0.25%"}}) {
		t.Fatalf("rows %v", tbl.Rows)
	}
	if tbl.Orientation != OrientationRotated {
		t.Fatalf("orientation %q", tbl.Orientation)
	}
}

func TestExtractTablesNoCells(t *testing.T) {
	result := map[string]any{"tables": []any{map[string]any{"id": "empty"}}}
	tables := ExtractTables(result)
	if len(tables) != 1 {
		t.Fatalf("expected table entry kept, got %d", len(tables))
	}
	if len(tables[0].Headers) != 0 || len(tables[0].Rows) != 0 {
		t.Fatalf("got %+v", tables[0])
	}
}

func TestExtractTablesNestedSections(t *testing.T) {
	result := map[string]any{
		"analyzeResult": map[string]any{
			"tables": []any{map[string]any{"cells": []any{
				map[string]any{"rowIndex": float64(0), "columnIndex": float64(0), "content": "a"},
			}}},
		},
		"readResults": []any{
			map[string]any{
				"tables": []any{map[string]any{"cells": []any{
					map[string]any{"rowIndex": float64(0), "columnIndex": float64(0), "content": "b"},
				}}},
			},
		},
	}
	tables := ExtractTables(result)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables across sections, got %d", len(tables))
	}
	for _, tbl := range tables {
		if tbl.Section == "" {
			t.Fatalf("section path not recorded: %+v", tbl)
		}
	}
}
