package player

import "testing"

func TestUnitOf(t *testing.T) {
	t.Parallel()

	cases := map[string]Unit{
		"qb":    UnitOffense,
		"OT":    UnitOffense,
		"MLB":   UnitDefense,
		"cb":    UnitDefense,
		"K":     UnitSpecialTeams,
		"":      UnitUnknown,
		"COACH": UnitUnknown,
	}
	for in, want := range cases {
		if got := UnitOf(in); got != want {
			t.Fatalf("UnitOf(%q)=%q want %q", in, got, want)
		}
	}
}

func TestExternalPlayer_Validate(t *testing.T) {
	t.Parallel()

	if err := (ExternalPlayer{ExternalID: "1", FirstName: "Josh", LastName: "Allen"}).Validate(); err != nil {
		t.Fatalf("expected valid player: %v", err)
	}
	if err := (ExternalPlayer{FirstName: "Josh"}).Validate(); err == nil {
		t.Fatalf("expected missing id error")
	}
	if err := (ExternalPlayer{ExternalID: "2"}).Validate(); err == nil {
		t.Fatalf("expected missing name error")
	}
	if got := (ExternalPlayer{DisplayName: " CJ Stroud ", FirstName: "Coleman"}).FullName(); got != "CJ Stroud" {
		t.Fatalf("expected display name to win, got %q", got)
	}
}
