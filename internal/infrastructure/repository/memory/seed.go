package memory

import "github.com/riskibarqy/gridiron-sync/internal/domain/player"

// SeedCandidates is a small roster for local runs without a database.
func SeedCandidates() []player.Candidate {
	return []player.Candidate{
		{ID: 1, FirstName: "Patrick", LastName: "Mahomes", TeamAbbreviation: "KC", Position: "QB", Active: true},
		{ID: 2, FirstName: "Travis", LastName: "Kelce", TeamAbbreviation: "KC", Position: "TE", Active: true},
		{ID: 3, FirstName: "Josh", LastName: "Allen", TeamAbbreviation: "BUF", Position: "QB", Active: true},
		{ID: 4, FirstName: "Josh", LastName: "Allen", TeamAbbreviation: "JAX", Position: "LB", Active: true},
		{ID: 5, FirstName: "Christian", LastName: "McCaffrey", TeamAbbreviation: "SF", Position: "RB", Active: true},
		{ID: 6, FirstName: "Justin", LastName: "Jefferson", TeamAbbreviation: "MIN", Position: "WR", Active: true},
		{ID: 7, FirstName: "Ja'Marr", LastName: "Chase", TeamAbbreviation: "CIN", Position: "WR", Active: true},
		{ID: 8, FirstName: "Micah", LastName: "Parsons", TeamAbbreviation: "GB", Position: "LB", Active: true},
		{ID: 9, FirstName: "Justin", LastName: "Tucker", TeamAbbreviation: "BAL", Position: "K", Active: false},
		{ID: 10, FirstName: "Calvin", LastName: "Ridley", TeamAbbreviation: "TEN", Position: "WR", Active: true},
	}
}
