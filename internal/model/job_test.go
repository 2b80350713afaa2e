package model

import (
	"reflect"
	"testing"
)

func TestIdentityKey(t *testing.T) {
	withID := Job{Source: "lever", SourceJobID: "abc", ApplyURL: "https://a", Title: "A"}
	sameID := Job{Source: "lever", SourceJobID: "abc", ApplyURL: "https://b", Title: "B"}
	if withID.IdentityKey() != sameID.IdentityKey() {
		t.Error("expected id to define identity")
	}

	anchorA := Job{Source: "teamtailor", ApplyURL: "https://x/jobs/1", Title: "Intern"}
	anchorB := Job{Source: "teamtailor", ApplyURL: "https://x/jobs/1", Title: "Other"}
	if anchorA.IdentityKey() == anchorB.IdentityKey() {
		t.Error("expected title to be part of id-less identity")
	}

	otherSource := Job{Source: "greenhouse", SourceJobID: "abc"}
	if withID.IdentityKey() == otherSource.IdentityKey() {
		t.Error("expected source to be part of identity")
	}
	if (Job{SourceJobID: "  "}).HasSourceID() {
		t.Error("expected blank id to count as absent")
	}
}

func TestNormalizeTagSet(t *testing.T) {
	got := NormalizeTagSet([]string{"python", " backend ", "python", "", "ai-ml"})
	want := []string{"ai-ml", "backend", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTagSet = %v, want %v", got, want)
	}

	many := make([]string, 0, 20)
	for c := 'a'; c < 'a'+20; c++ {
		many = append(many, string(c))
	}
	if got := NormalizeTagSet(many); len(got) != MaxTags || got[0] != "a" {
		t.Errorf("expected %d tags starting at a, got %v", MaxTags, got)
	}
}

func TestIdentifierString(t *testing.T) {
	tests := []struct {
		id   Identifier
		want string
	}{
		{Slug("acme"), "acme"},
		{Composite(map[string]string{"tenant": "acme", "site": "Careers"}), "acme/Careers"},
		{Composite(map[string]string{"query": "intern", "location": "France"}), "France/intern"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := Composite(map[string]string{"b": "2", "a": "1"}).Values(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("Values() = %v", got)
	}
}
