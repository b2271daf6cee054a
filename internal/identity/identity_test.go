package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                    "",
		"   ":                 "",
		"C.J. Stroud":         "cj stroud",
		"  Patrick   Mahomes": "patrick mahomes",
		"Amon-Ra St. Brown":   "amon ra st brown",
		"D'Andre Swift":       "dandre swift",
		"José  Núñez":         "jose nunez",
		"Odell Beckham Jr.":   "odell beckham jr",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "C.J. Stroud", "Amon-Ra St. Brown", "  A  -  B ", "İlhan Çelik", "Ja'Marr Chase III",
		"T.J. Watt", "__x__", "42 Smith", "Ke'Shawn   Vaughn-Jr.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalizeWithoutSuffix(t *testing.T) {
	t.Parallel()

	if got := NormalizeWithoutSuffix("Odell Beckham Jr."); got != "odell beckham" {
		t.Fatalf("unexpected suffix strip: %q", got)
	}
	if got := NormalizeWithoutSuffix("Marvin Harrison II"); got != "marvin harrison" {
		t.Fatalf("unexpected suffix strip: %q", got)
	}
	if got := NormalizeWithoutSuffix("Jr"); got != "jr" {
		t.Fatalf("single token must be kept, got %q", got)
	}
}

func TestTokenOverlap(t *testing.T) {
	t.Parallel()

	if got := TokenOverlap("Michael Smith", "Mike Smith"); got < 0.33 || got > 0.34 {
		t.Fatalf("expected overlap 1/3, got %f", got)
	}
	if got := TokenOverlap("", "Mike Smith"); got != 0 {
		t.Fatalf("expected zero overlap for empty name, got %f", got)
	}
	if got := TokenOverlap("Josh Allen", "josh allen"); got != 1 {
		t.Fatalf("expected full overlap, got %f", got)
	}
}

func TestEncode_ReferenceVectors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Robert":   "R163",
		"Rupert":   "R163",
		"Rubin":    "R150",
		"Ashcraft": "A261",
		"Ashcroft": "A261",
		"Tymczak":  "T522",
		"Pfister":  "P236",
		"Honeyman": "H555",
		"Lee":      "L000",
		"":         "",
		"1234 .":   "",
	}
	for in, want := range cases {
		if got := Encode(in); got != want {
			t.Fatalf("Encode(%q)=%q want %q", in, got, want)
		}
	}
	if Encode("Robert") != Encode("Rupert") {
		t.Fatalf("Robert and Rupert must share a code")
	}
}

func TestSamePhonetic(t *testing.T) {
	t.Parallel()

	if !SamePhonetic("Smith", "Smyth") {
		t.Fatalf("expected Smith ~ Smyth")
	}
	if SamePhonetic("", "") {
		t.Fatalf("empty names must never match")
	}
}

func TestIsNicknameVariant(t *testing.T) {
	t.Parallel()

	if !IsNicknameVariant("Mike", "Michael") || !IsNicknameVariant("MICHAEL", "mike") {
		t.Fatalf("expected mike/michael to be variants in both directions")
	}
	if IsNicknameVariant("Mike", "Matthew") {
		t.Fatalf("mike and matthew are not variants")
	}
	if IsNicknameVariant("", "mike") {
		t.Fatalf("empty name must not be a variant")
	}
}

func TestLoadNicknameFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nicknames.yaml")
	content := "groups:\n  - [tutu, marcus]\n  - [hollywood, marquise]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write nickname file: %v", err)
	}

	table, err := LoadNicknameFile(path)
	if err != nil {
		t.Fatalf("load nickname file: %v", err)
	}
	if !table.IsVariant("Hollywood", "Marquise") {
		t.Fatalf("expected file group to be loaded")
	}
	if !table.IsVariant("mike", "michael") {
		t.Fatalf("expected built-in groups to be kept")
	}
	if table.Len() <= DefaultNicknames().Len() {
		t.Fatalf("expected table to grow, got %d", table.Len())
	}

	if _, err := LoadNicknameFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCanonicalTeam(t *testing.T) {
	t.Parallel()

	if !SameTeam("jac", "JAX") || !SameTeam("OAK", "LV") {
		t.Fatalf("expected alias folding")
	}
	if SameTeam("", "") {
		t.Fatalf("empty teams must never match")
	}
}
