package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gasops/mtr-extract/internal/common"
)

// headerRow is the worksheet row holding field names. Row 1 is reserved for
// group headers; data starts at row 3.
const (
	headerRow    = 2
	firstDataRow = 3
	sheetName    = "Sheet1"
)

// Service appends or updates extracted MTR documents in a spreadsheet, one
// row per heat number.
type Service struct {
	path string
	log  *slog.Logger
}

func NewService(path string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{path: path, log: logger}
}

// FlattenJSON flattens a JSON tree into a single-level map with dot-separated
// keys. Leaf values are additionally recorded under their bare field name so
// spreadsheet headers can use either form; nil leaves become "".
func FlattenJSON(node any, parentKey string) map[string]string {
	items := map[string]string{}
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			key := k
			if parentKey != "" {
				key = parentKey + "." + k
			}
			switch val.(type) {
			case map[string]any, []any:
				for fk, fv := range FlattenJSON(val, key) {
					items[fk] = fv
				}
			default:
				items[key] = leafString(val)
				items[k] = leafString(val)
			}
		}
	case []any:
		for i, val := range v {
			key := fmt.Sprintf("%d", i)
			if parentKey != "" {
				key = fmt.Sprintf("%s.%d", parentKey, i)
			}
			switch val.(type) {
			case map[string]any, []any:
				for fk, fv := range FlattenJSON(val, key) {
					items[fk] = fv
				}
			default:
				items[key] = leafString(val)
			}
		}
	default:
		if parentKey != "" {
			items[parentKey] = leafString(v)
		}
	}
	return items
}

func leafString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Upsert writes one document into the workbook: if a data row already carries
// the document's heat number it is overwritten, otherwise a new row is
// appended. A missing workbook is created with headers derived from the
// document's top-level keys.
func (s *Service) Upsert(doc map[string]any) error {
	start := time.Now()

	f, created, err := s.openOrCreate(doc)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	headers, err := s.readHeaders(f)
	if err != nil {
		return err
	}

	flat := FlattenJSON(doc, "")
	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = flat[h]
	}

	heatCol := findHeatColumn(headers)
	target, err := s.findTargetRow(f, heatCol, values)
	if err != nil {
		return err
	}

	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, target)
		if err != nil {
			return common.WrapError(err, "cell coordinates")
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return common.WrapError(err, "set cell")
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return common.WrapError(err, "save workbook")
	}

	s.log.Info("export.xlsx.ok",
		"path", s.path,
		"created", created,
		"row", target,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *Service) openOrCreate(doc map[string]any) (*excelize.File, bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return nil, false, common.WrapError(err, "open workbook")
		}
		return f, false, nil
	}

	f := excelize.NewFile()
	headers := documentHeaders(doc)
	for i, h := range headers {
		groupCell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fieldCell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, groupCell, "MTR")
		_ = f.SetCellValue(sheetName, fieldCell, h)
	}
	return f, true, nil
}

// documentHeaders derives a stable header list for a fresh workbook: the
// identity fields first, then remaining scalar top-level keys.
func documentHeaders(doc map[string]any) []string {
	headers := []string{"HeatNumber", "CompanyMTRFileID", "CertificationDate", "ZNumber"}
	seen := map[string]bool{}
	for _, h := range headers {
		seen[h] = true
	}
	flat := FlattenJSON(doc, "")
	for _, key := range []string{"PipeNumber", "Grade", "YieldStrength", "UltimateTensileStrength", "ElongationPercentage"} {
		if _, ok := flat[key]; ok && !seen[key] {
			headers = append(headers, key)
			seen[key] = true
		}
	}
	return headers
}

func (s *Service) readHeaders(f *excelize.File) ([]string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, common.WrapError(err, "read rows")
	}
	if len(rows) < headerRow {
		return nil, common.NewAppError("XLSX_HEADERS", "workbook has no header row", common.ErrUnusable)
	}
	return rows[headerRow-1], nil
}

func findHeatColumn(headers []string) int {
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "heatnumber", "heat number", "heat_number":
			return i
		}
	}
	return -1
}

// findTargetRow returns the row to write: an existing row with the same heat
// number, or the first free row after the data region.
func (s *Service) findTargetRow(f *excelize.File, heatCol int, values []string) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, common.WrapError(err, "read rows")
	}

	if heatCol >= 0 && heatCol < len(values) && values[heatCol] != "" {
		for idx := firstDataRow - 1; idx < len(rows); idx++ {
			row := rows[idx]
			if heatCol < len(row) && row[heatCol] == values[heatCol] {
				return idx + 1, nil
			}
		}
	}

	if len(rows) < firstDataRow {
		return firstDataRow, nil
	}
	return len(rows) + 1, nil
}
