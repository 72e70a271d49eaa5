package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFlattenJSON(t *testing.T) {
	doc := map[string]any{
		"HeatNumber": "AB123",
		"HNPipeDetails": []any{
			map[string]any{
				"Grade": "X60",
				"HNPipeTensileTestResults": map[string]any{
					"YieldStrength": "52000",
				},
			},
		},
		"CompanyMTRFileID": nil,
	}
	flat := FlattenJSON(doc, "")

	if flat["HeatNumber"] != "AB123" {
		t.Fatalf("got %v", flat)
	}
	if flat["HNPipeDetails.0.Grade"] != "X60" {
		t.Fatalf("missing dotted key: %v", flat)
	}
	if flat["Grade"] != "X60" {
		t.Fatalf("missing bare key: %v", flat)
	}
	if flat["YieldStrength"] != "52000" {
		t.Fatalf("missing deep bare key: %v", flat)
	}
	if flat["CompanyMTRFileID"] != "" {
		t.Fatalf("nil leaf must flatten to empty string: %q", flat["CompanyMTRFileID"])
	}
}

func testDoc(heat string) map[string]any {
	return map[string]any{
		"HeatNumber":        heat,
		"CertificationDate": "08/27/2026",
		"ZNumber":           "Z1",
		"CompanyMTRFileID":  nil,
		"HNPipeDetails": []any{
			map[string]any{"PipeNumber": "P1", "Grade": "X60"},
		},
	}
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtr.xlsx")
	svc := NewService(path, nil)

	if err := svc.Upsert(testDoc("H1")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Upsert(testDoc("H2")); err != nil {
		t.Fatal(err)
	}

	// same heat number must overwrite, not append
	updated := testDoc("H1")
	updated["ZNumber"] = "Z99"
	if err := svc.Upsert(updated); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}

	// 2 header rows + 2 data rows
	if len(rows) != 4 {
		t.Fatalf("got %d rows", len(rows))
	}
	headers := rows[1]
	heatCol := findHeatColumn(headers)
	if heatCol < 0 {
		t.Fatalf("no heat column in %v", headers)
	}
	if rows[2][heatCol] != "H1" || rows[3][heatCol] != "H2" {
		t.Fatalf("rows %v", rows[2:])
	}

	zCol := -1
	for i, h := range headers {
		if h == "ZNumber" {
			zCol = i
		}
	}
	if zCol < 0 || rows[2][zCol] != "Z99" {
		t.Fatalf("update not applied: %v", rows[2])
	}
}

func TestUpsertGradeFromNestedDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtr.xlsx")
	svc := NewService(path, nil)
	if err := svc.Upsert(testDoc("H1")); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(sheetName)
	headers := rows[1]

	gradeCol := -1
	for i, h := range headers {
		if h == "Grade" {
			gradeCol = i
		}
	}
	if gradeCol < 0 {
		t.Fatalf("Grade header missing: %v", headers)
	}
	if rows[2][gradeCol] != "X60" {
		t.Fatalf("bare-key flattening should surface nested Grade: %v", rows[2])
	}
}
