package template

import (
	"reflect"
	"testing"
)

func TestCleanStripsValuesKeepsStructure(t *testing.T) {
	in := map[string]any{
		"HeatNumber": "ABC123",
		"Thickness":  float64(12.5),
		"Approved":   true,
		"Details": []any{
			map[string]any{"PipeNumber": "P1", "Grade": "X52"},
			map[string]any{"PipeNumber": "P2", "Grade": "X60"},
		},
	}
	want := map[string]any{
		"HeatNumber": "",
		"Thickness":  nil,
		"Approved":   nil,
		"Details": []any{
			map[string]any{"PipeNumber": "", "Grade": ""},
		},
	}
	got := Clean(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	in := map[string]any{
		"HeatNumber": "H1",
		"Results":    []any{map[string]any{"C": "0.25", "Mn": float64(1.2)}},
		"Nested":     map[string]any{"deep": []any{"a", "b"}},
	}
	once := Clean(in)
	twice := Clean(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Clean not idempotent: %v vs %v", once, twice)
	}
}

func TestCleanEmptyArray(t *testing.T) {
	got := Clean([]any{})
	arr, ok := got.([]any)
	if !ok || len(arr) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"HeatNumber": "H1"}
	Clean(in)
	if in["HeatNumber"] != "H1" {
		t.Fatal("input mutated")
	}
}

func TestCleanNilPassthrough(t *testing.T) {
	if got := Clean(nil); got != nil {
		t.Fatalf("got %v", got)
	}
}
