package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	first, err := NewRandomGenerator().NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := NewRandomGenerator().NewID()
	if len(first) != 32 || first == second {
		t.Fatalf("expected distinct 32-char ids, got %q and %q", first, second)
	}
}

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	value, err := NewUUIDGenerator().NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		t.Fatalf("expected a valid uuid, got %q: %v", value, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected v4 uuid, got v%d", parsed.Version())
	}
}
