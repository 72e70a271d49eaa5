package llm

import (
	"strings"
	"testing"
)

func TestParsePropertiesValid(t *testing.T) {
	raw := []byte(`[
		{"category":"chemical","property":"Carbon Content","value":"0.25","unit":"%","notes":""},
		{"category":"material","property":"Yield Strength","value":"52000","unit":"psi","notes":"table 2"}
	]`)
	props, err := ParseProperties(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != 2 {
		t.Fatalf("got %d properties", len(props))
	}
	if props[0].Property != "Carbon Content" || props[1].Unit != "psi" {
		t.Fatalf("got %+v", props)
	}
}

func TestParsePropertiesRejectsBadCategory(t *testing.T) {
	raw := []byte(`[{"category":"bogus","property":"X","value":"1"}]`)
	if _, err := ParseProperties(raw); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestParsePropertiesRejectsNonArray(t *testing.T) {
	if _, err := ParseProperties([]byte(`{"category":"chemical"}`)); err == nil {
		t.Fatal("expected error for non-array")
	}
	if _, err := ParseProperties([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestTemplateFillMessagesShape(t *testing.T) {
	msgs := TemplateFillMessages(map[string]any{"HeatNumber": ""}, "HEAT 1")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("got roles %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if !strings.Contains(msgs[1].Content, "HeatNumber") || !strings.Contains(msgs[1].Content, "HEAT 1") {
		t.Fatal("user message must carry the template and the OCR text")
	}
}

func TestClipBoundsPromptText(t *testing.T) {
	long := make([]byte, maxPromptText+100)
	for i := range long {
		long[i] = 'a'
	}
	msgs := PropertiesMessages(string(long))
	if len(msgs[1].Content) > maxPromptText+200 {
		t.Fatalf("prompt text not clipped: %d", len(msgs[1].Content))
	}
}
