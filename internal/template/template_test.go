package template

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCleansSampleValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.json")
	sample := `{"HeatNumber": "SAMPLE-1", "Thickness": 9.5, "HNPipeDetails": [{"PipeNumber": "P1"}, {"PipeNumber": "P2"}]}`
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	tree := Load(path, nil)
	if tree["HeatNumber"] != "" {
		t.Fatalf("sample string not cleaned: %v", tree["HeatNumber"])
	}
	if tree["Thickness"] != nil {
		t.Fatalf("sample number not cleaned: %v", tree["Thickness"])
	}
	details := tree["HNPipeDetails"].([]any)
	if len(details) != 1 {
		t.Fatalf("sample array not collapsed to archetype: %v", details)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	tree := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	if _, ok := tree["HeatNumber"]; !ok {
		t.Fatalf("fallback template missing HeatNumber: %v", tree)
	}
	if _, ok := tree["HNPipeDetails"]; !ok {
		t.Fatalf("fallback template missing HNPipeDetails: %v", tree)
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	tree := Load(path, nil)
	if _, ok := tree["CertificationDate"]; !ok {
		t.Fatalf("fallback template missing CertificationDate: %v", tree)
	}
}
