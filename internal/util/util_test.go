package util

import (
	"testing"
)

func TestParseEnvList(t *testing.T) {
	got := ParseEnvList(" key1, key2 ,,key3 ")
	if len(got) != 3 || got[0] != "key1" || got[1] != "key2" || got[2] != "key3" {
		t.Errorf("unexpected parse result: %v", got)
	}
	if ParseEnvList("") != nil {
		t.Error("empty input must yield nil")
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("UTIL_TEST_VAR", "set")
	if got := GetEnvWithDefault("UTIL_TEST_VAR", "fallback"); got != "set" {
		t.Errorf("expected env value, got %q", got)
	}
	if got := GetEnvWithDefault("UTIL_TEST_UNSET_VAR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestExtractTextContent(t *testing.T) {
	if got := ExtractTextContent("plain"); got != "plain" {
		t.Errorf("expected plain string, got %q", got)
	}

	blocks := []any{
		map[string]any{"type": "text", "text": "first"},
		map[string]any{"type": "image_url", "url": "ignored"},
		map[string]any{"type": "text", "text": "second"},
	}
	if got := ExtractTextContent(blocks); got != "first second" {
		t.Errorf("expected joined text blocks, got %q", got)
	}

	if got := ExtractTextContent(nil); got != "" {
		t.Errorf("expected empty for nil, got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("abcdefghij", 3, 3, "..."); got != "abc...hij" {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := TruncateString("short", 10, 10, "..."); got != "short" {
		t.Errorf("short strings must pass through, got %q", got)
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("  A reference line  ", 80); got != "A reference line" {
		t.Errorf("expected trimmed line, got %q", got)
	}
	if got := Snippet("abcdefgh", 4); got != "abcd..." {
		t.Errorf("expected truncated snippet with ellipsis, got %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	data, err := MarshalJSON(payload{Name: "x", Count: 2})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded payload
	if err := UnmarshalJSON(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Name != "x" || decoded.Count != 2 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
