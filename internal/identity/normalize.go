package identity

import (
	"strings"
	"unicode"
)

var generationalSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
	"v":   {},
}

var latinFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'ç': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ñ': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ÿ': 'y',
}

// Normalize canonicalizes a free-text name for comparison: lowercase,
// accents folded, punctuation removed, whitespace collapsed.
// Hyphens and underscores separate tokens; other punctuation is dropped
// in place, so "C.J." becomes "cj".
func Normalize(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingSpace := false
	for _, r := range strings.ToLower(name) {
		if folded, ok := latinFold[r]; ok {
			r = folded
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			pendingSpace = true
		}
	}

	return b.String()
}

// NormalizeWithoutSuffix normalizes and drops trailing generational
// suffixes (jr, sr, ii, iii, iv, v). A single-token name is kept as is.
func NormalizeWithoutSuffix(name string) string {
	tokens := strings.Fields(Normalize(name))
	for len(tokens) > 1 {
		if _, ok := generationalSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// Tokens splits a suffix-free normalized name into words.
func Tokens(name string) []string {
	return strings.Fields(NormalizeWithoutSuffix(name))
}

// TokenOverlap returns the Jaccard ratio of the two names' token sets.
func TokenOverlap(a, b string) float64 {
	left := Tokens(a)
	right := Tokens(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	set := make(map[string]uint8, len(left)+len(right))
	for _, token := range left {
		set[token] |= 1
	}
	for _, token := range right {
		set[token] |= 2
	}

	shared := 0
	for _, mask := range set {
		if mask == 3 {
			shared++
		}
	}
	return float64(shared) / float64(len(set))
}
