package identity

import "strings"

const soundexLength = 4

// soundexDigits maps a-z to the six Soundex classes. Zero marks vowels and y,
// which break runs; h and w are handled separately because they do not.
var soundexDigits = [26]byte{
	0, '1', '2', '3', 0, '1', '2', 0, 0, '2', '2', '4', '5',
	'5', 0, '1', '2', '6', '2', '3', 0, '1', 0, '2', 0, '2',
}

// Encode returns the American Soundex code of name: the first letter followed
// by three digits. Input without any letter encodes to "".
func Encode(name string) string {
	letters := make([]byte, 0, len(name))
	for _, r := range strings.ToLower(name) {
		if folded, ok := latinFold[r]; ok {
			r = folded
		}
		if r >= 'a' && r <= 'z' {
			letters = append(letters, byte(r))
		}
	}
	if len(letters) == 0 {
		return ""
	}

	out := make([]byte, 1, soundexLength)
	out[0] = letters[0] - 'a' + 'A'
	last := soundexDigits[letters[0]-'a']
	for _, c := range letters[1:] {
		if c == 'h' || c == 'w' {
			continue
		}
		digit := soundexDigits[c-'a']
		if digit == 0 {
			last = 0
			continue
		}
		if digit != last {
			out = append(out, digit)
			if len(out) == soundexLength {
				break
			}
		}
		last = digit
	}

	for len(out) < soundexLength {
		out = append(out, '0')
	}
	return string(out)
}

// SamePhonetic reports whether both names are non-empty and share a code.
func SamePhonetic(a, b string) bool {
	codeA := Encode(a)
	return codeA != "" && codeA == Encode(b)
}
