package theory

import (
	"strings"
	"testing"
)

func TestPromptFor_KnownCategories(t *testing.T) {
	for _, c := range Categories() {
		got := PromptFor(c.Slug)
		if got != c.Prompt {
			t.Errorf("PromptFor(%q) did not return its own template", c.Slug)
		}
		if !strings.Contains(got, "one sentence") {
			t.Errorf("PromptFor(%q) missing sentence constraint", c.Slug)
		}
	}
}

func TestPromptFor_UnknownFallsBackToRandom(t *testing.T) {
	random := PromptFor(FallbackCategory)

	tests := []string{"", "nonexistent-category", "ABSURD SCIENCE", "../etc/passwd", "🛸"}
	for _, key := range tests {
		if got := PromptFor(key); got != random {
			t.Errorf("PromptFor(%q) did not fall back to the random template", key)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"absurd-science", "absurd-science"},
		{"  Historical-Lies ", "historical-lies"},
		{"random", "random"},
		{"nonexistent-category", FallbackCategory},
		{"", FallbackCategory},
	}

	for _, tt := range tests {
		if got := Resolve(tt.input); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategories_ClosedSet(t *testing.T) {
	want := []string{
		"absurd-science", "historical-lies", "celebrity-secrets",
		"paranormal-nonsense", "government-filth", "random",
	}

	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("len(Categories()) = %d, want %d", len(got), len(want))
	}
	for i, slug := range want {
		if got[i].Slug != slug {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i].Slug, slug)
		}
		if got[i].Title == "" || got[i].Description == "" {
			t.Errorf("category %q missing title or description", slug)
		}
	}

	// Mutating the returned slice must not touch the catalog
	got[0].Slug = "tampered"
	if !IsKnown("absurd-science") || IsKnown("tampered") {
		t.Error("Categories() leaked the internal catalog")
	}
}

func TestClassification_Valid(t *testing.T) {
	for _, c := range Classifications {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range []Classification{"", "top secret", "RESTRICTED"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
	if DefaultClassification != TopSecret {
		t.Errorf("DefaultClassification = %q, want TOP SECRET", DefaultClassification)
	}
}

func TestEventType_Valid(t *testing.T) {
	for _, e := range []EventType{EventGenerated, EventViewed, EventShared, EventCopied, EventSaved} {
		if !e.Valid() {
			t.Errorf("%q should be valid", e)
		}
	}
	for _, e := range []EventType{"", "liked", "GENERATED"} {
		if e.Valid() {
			t.Errorf("%q should be invalid", e)
		}
	}
}
