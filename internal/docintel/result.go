package docintel

import (
	"fmt"
	"sort"
	"strings"
)

// textKeys are the fields a document-analysis result stores readable text
// under, checked in this order at every level of the tree.
var textKeys = []string{"content", "text", "value"}

// ExtractText walks an analysis result tree and joins every string found
// under a recognized text key with newlines. It works across service versions
// because it makes no assumption about where in the envelope the text lives.
func ExtractText(result any) string {
	var parts []string
	var recurse func(node any)
	recurse = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			for _, key := range textKeys {
				if s, ok := v[key].(string); ok {
					parts = append(parts, s)
				}
			}
			for _, k := range sortedKeys(v) {
				recurse(v[k])
			}
		case []any:
			for _, item := range v {
				recurse(item)
			}
		}
	}
	recurse(result)
	return strings.Join(parts, "\n")
}

// Table orientations. Rotated is advisory only, reported by an upstream
// classification pass; reconstruction never transposes.
const (
	OrientationNormal  = "normal"
	OrientationRotated = "rotated"
)

// Table is one table reconstructed from a layout analysis result. Section is
// the JSON-pointer-ish path to where the table appeared in the envelope; row
// zero of the original matrix becomes Headers and the remainder Rows.
type Table struct {
	Section     string     `json:"section"`
	TableID     string     `json:"table_id"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	Orientation string     `json:"orientation,omitempty"`
}

// ExtractTables finds every "tables" array anywhere in a layout result and
// reconstructs each entry's cell grid into a Table. Tables without cells come
// back with empty Headers and Rows rather than being dropped, so callers can
// still see that the service reported them.
func ExtractTables(result any) []Table {
	var found []Table
	var recurse func(node any, path string)
	recurse = func(node any, path string) {
		switch v := node.(type) {
		case map[string]any:
			if raw, ok := v["tables"].([]any); ok {
				for i, t := range raw {
					tbl, _ := t.(map[string]any)
					found = append(found, buildTable(tbl, fmt.Sprintf("%s/tables[%d]", path, i)))
				}
			}
			for _, k := range sortedKeys(v) {
				recurse(v[k], path+"/"+k)
			}
		case []any:
			for i, item := range v {
				recurse(item, fmt.Sprintf("%s[%d]", path, i))
			}
		}
	}
	recurse(result, "")
	return found
}

// buildTable turns a raw table object with a flat "cells" list into a dense
// matrix. Cell positions come from rowIndex/columnIndex, text from content or
// text; missing positions stay "". Duplicate positions keep the last cell.
// Tables that carry a native "rows" list of string arrays instead of cells use
// the first inner array as headers directly.
func buildTable(raw map[string]any, section string) Table {
	tbl := Table{Section: section, Orientation: OrientationNormal}
	if raw == nil {
		return tbl
	}
	if id, ok := raw["id"].(string); ok {
		tbl.TableID = id
	}
	if o, ok := raw["orientation"].(string); ok && o == OrientationRotated {
		tbl.Orientation = OrientationRotated
	}

	cells, ok := raw["cells"].([]any)
	if !ok || len(cells) == 0 {
		if rows, ok := raw["rows"].([]any); ok && len(rows) > 0 {
			matrix := stringMatrix(rows)
			tbl.Headers = matrix[0]
			if len(matrix) > 1 {
				tbl.Rows = matrix[1:]
			}
		}
		return tbl
	}

	maxRow, maxCol := 0, 0
	for _, c := range cells {
		cell, _ := c.(map[string]any)
		if r := cellIndex(cell, "rowIndex"); r > maxRow {
			maxRow = r
		}
		if ci := cellIndex(cell, "columnIndex"); ci > maxCol {
			maxCol = ci
		}
	}

	matrix := make([][]string, maxRow+1)
	for i := range matrix {
		matrix[i] = make([]string, maxCol+1)
	}
	for _, c := range cells {
		cell, _ := c.(map[string]any)
		if cell == nil {
			continue
		}
		r := cellIndex(cell, "rowIndex")
		ci := cellIndex(cell, "columnIndex")
		txt, _ := cell["content"].(string)
		if txt == "" {
			txt, _ = cell["text"].(string)
		}
		matrix[r][ci] = txt
	}

	tbl.Headers = matrix[0]
	if len(matrix) > 1 {
		tbl.Rows = matrix[1:]
	}
	return tbl
}

func stringMatrix(rows []any) [][]string {
	matrix := make([][]string, 0, len(rows))
	for _, r := range rows {
		raw, _ := r.([]any)
		row := make([]string, 0, len(raw))
		for _, v := range raw {
			s, _ := v.(string)
			row = append(row, s)
		}
		matrix = append(matrix, row)
	}
	return matrix
}

func cellIndex(cell map[string]any, key string) int {
	if cell == nil {
		return 0
	}
	if f, ok := cell[key].(float64); ok && f > 0 {
		return int(f)
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
