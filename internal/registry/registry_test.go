package registry

import "testing"

func TestListStylesOrderAndContent(t *testing.T) {
	opts := ListStyles()
	want := []string{"concise", "normal", "detailed"}
	if len(opts) != len(want) {
		t.Fatalf("expected %d styles, got %d", len(want), len(opts))
	}
	for i, key := range want {
		if opts[i].Key != key {
			t.Fatalf("style %d: expected key %q, got %q", i, key, opts[i].Key)
		}
		if opts[i].Name == "" || opts[i].Description == "" {
			t.Fatalf("style %q missing name or description", key)
		}
	}
}

func TestListPersonasOrderAndContent(t *testing.T) {
	opts := ListPersonas()
	want := []string{"friendly", "professional", "cynical"}
	if len(opts) != len(want) {
		t.Fatalf("expected %d personas, got %d", len(want), len(opts))
	}
	for i, key := range want {
		if opts[i].Key != key {
			t.Fatalf("persona %d: expected key %q, got %q", i, key, opts[i].Key)
		}
	}
}

func TestValidity(t *testing.T) {
	for _, key := range []string{"concise", "normal", "detailed"} {
		if !IsValidStyle(key) {
			t.Fatalf("expected %q to be a valid style", key)
		}
	}
	for _, key := range []string{"friendly", "professional", "cynical"} {
		if !IsValidPersona(key) {
			t.Fatalf("expected %q to be a valid persona", key)
		}
	}
	for _, key := range []string{"", "sharp", "normal ", "concise\n"} {
		if IsValidStyle(key) {
			t.Fatalf("expected %q to be an invalid style", key)
		}
	}
	if IsValidPersona("pirate") {
		t.Fatalf("expected pirate to be an invalid persona")
	}
}

func TestInstructionsAndConfirmations(t *testing.T) {
	for _, key := range []string{"concise", "normal", "detailed"} {
		if StyleInstruction(key) == "" {
			t.Fatalf("style %q has empty instruction", key)
		}
		if StyleConfirmation(key) == "" {
			t.Fatalf("style %q has empty confirmation", key)
		}
	}
	for _, key := range []string{"friendly", "professional", "cynical"} {
		if PersonaInstruction(key) == "" {
			t.Fatalf("persona %q has empty instruction", key)
		}
		if PersonaConfirmation(key) == "" {
			t.Fatalf("persona %q has empty confirmation", key)
		}
	}
	if StyleInstruction("unknown") != "" {
		t.Fatalf("unknown style should yield empty instruction")
	}
}
