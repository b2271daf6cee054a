package identity

import "strings"

// teamAliases folds provider-specific abbreviations onto one code per club.
var teamAliases = map[string]string{
	"JAC": "JAX",
	"WSH": "WAS",
	"LA":  "LAR",
	"STL": "LAR",
	"SD":  "LAC",
	"OAK": "LV",
	"LVR": "LV",
	"GNB": "GB",
	"KAN": "KC",
	"NWE": "NE",
	"NOR": "NO",
	"SFO": "SF",
	"TAM": "TB",
	"ARZ": "ARI",
	"BLT": "BAL",
	"CLV": "CLE",
	"HST": "HOU",
}

// CanonicalTeam returns the upper-cased canonical abbreviation.
func CanonicalTeam(abbreviation string) string {
	code := strings.ToUpper(strings.TrimSpace(abbreviation))
	if alias, ok := teamAliases[code]; ok {
		return alias
	}
	return code
}

// SameTeam reports whether both abbreviations are set and name the same club.
func SameTeam(a, b string) bool {
	left := CanonicalTeam(a)
	return left != "" && left == CanonicalTeam(b)
}
