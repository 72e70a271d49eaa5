package jsontext

import (
	"reflect"
	"testing"
)

func TestFindJSONInNoisyText(t *testing.T) {
	got, ok := FindJSON(`Here is the result: {"a": 1, "b": [1,2]} Thanks!`)
	if !ok {
		t.Fatal("expected to find JSON")
	}
	want := map[string]any{"a": float64(1), "b": []any{float64(1), float64(2)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindJSONBareObject(t *testing.T) {
	got, ok := FindJSON(`{"heat": "12345"}`)
	if !ok {
		t.Fatal("expected to find JSON")
	}
	m, _ := got.(map[string]any)
	if m["heat"] != "12345" {
		t.Fatalf("got %v", got)
	}
}

func TestFindJSONSkipsInvalidCandidate(t *testing.T) {
	// the first balanced candidate is not valid JSON; the scan must move on
	got, ok := FindJSON(`bad {not json} but then {"ok": true} trailing`)
	if !ok {
		t.Fatal("expected to find JSON after invalid candidate")
	}
	m, _ := got.(map[string]any)
	if m["ok"] != true {
		t.Fatalf("got %v", got)
	}
}

func TestFindJSONArrayFallback(t *testing.T) {
	got, ok := FindJSON(`rows: [{"x": 1}, {"x": 2}] done`)
	if !ok {
		t.Fatal("expected to find JSON array")
	}
	arr, _ := got.([]any)
	if len(arr) != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestFindJSONPrefersObjectOverArray(t *testing.T) {
	got, ok := FindJSON(`[1,2,3] and also {"a": 1}`)
	if !ok {
		t.Fatal("expected to find JSON")
	}
	if _, isObj := got.(map[string]any); !isObj {
		t.Fatalf("expected object to win over earlier array, got %T", got)
	}
}

func TestFindJSONNoJSON(t *testing.T) {
	if _, ok := FindJSON("no structured data here"); ok {
		t.Fatal("expected no JSON")
	}
	if _, ok := FindJSON("unbalanced { forever"); ok {
		t.Fatal("expected no JSON in unbalanced text")
	}
	if _, ok := FindJSON(""); ok {
		t.Fatal("expected no JSON in empty string")
	}
}
