package persona

import "testing"

func TestSeedShape(t *testing.T) {
	seed := Seed()
	if len(seed) != 3 {
		t.Fatalf("expected 3 personas, got %d", len(seed))
	}
	for _, p := range seed {
		if p.Greeting == "" || p.GuestGreeting == "" || p.ClearedLine == "" || p.Fallback == "" {
			t.Fatalf("persona %s is missing required copy", p.ID)
		}
		if len(p.Rules) == 0 {
			t.Fatalf("persona %s has no rules", p.ID)
		}
		// The crisis rule must be evaluated before anything else.
		first := p.Rules[0]
		found := false
		for _, kw := range first.Keywords {
			if kw == "suicide" {
				found = true
			}
		}
		if !found {
			t.Fatalf("persona %s: crisis rule is not first", p.ID)
		}
	}
}

func TestResolveUnknownFallsBackToGeneral(t *testing.T) {
	store := NewMemoryStore(Seed())

	for _, key := range []string{"", "does-not-exist", "OTSY"} {
		got := store.Resolve(key)
		if got.ID != GeneralID {
			t.Fatalf("Resolve(%q) = %s, want %s", key, got.ID, GeneralID)
		}
	}
}

func TestResolveKnownPersona(t *testing.T) {
	store := NewMemoryStore(Seed())
	got := store.Resolve("haven")
	if got.ID != "haven" || got.Name != "Haven" {
		t.Fatalf("unexpected persona: %+v", got)
	}
}

func TestFindByIDMissing(t *testing.T) {
	store := NewMemoryStore(Seed())
	if _, ok := store.FindByID("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}
