package adapter

import (
	"strings"
	"testing"
)

func mustFields(t *testing.T, raw string) fields {
	t.Helper()
	v, err := decodeJSON(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return asFields(v)
}

func TestFieldsStrAliasOrder(t *testing.T) {
	f := mustFields(t, `{"title":"  ","name":"Backend Intern","id":12345678901234567890,"ratio":0.5,"tags":["a","",3]}`)
	if got := f.str("title", "name"); got != "Backend Intern" {
		t.Errorf("expected blank alias skipped, got %q", got)
	}
	if got := f.str("id"); got != "12345678901234567890" {
		t.Errorf("expected large id intact, got %q", got)
	}
	if got := f.str("ratio"); got != "0.5" {
		t.Errorf("unexpected number %q", got)
	}
	if got := f.str("tags"); got != "a, 3" {
		t.Errorf("unexpected joined array %q", got)
	}
	if got := f.str("missing"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestFieldsObjectsAndNilSafety(t *testing.T) {
	f := mustFields(t, `{"location":{"name":"Paris"},"items":[{"id":1},"skip",{"id":2}],"empty":[]}`)
	if got := f.str("location"); got != "Paris" {
		t.Errorf("expected object name, got %q", got)
	}
	if got := len(objects(f.list("items"))); got != 2 {
		t.Errorf("expected 2 objects, got %d", got)
	}
	if f.list("empty") != nil {
		t.Error("expected empty array to be absent")
	}
	var missing fields
	if missing.obj("a").str("b") != "" {
		t.Error("expected nil fields to read as empty")
	}
}
