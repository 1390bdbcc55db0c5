package corpus

import "strings"

// IsHangulSyllable reports whether r is a precomposed Hangul syllable (가-힣).
func IsHangulSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// NormalizeHangul keeps only Hangul syllables.
func NormalizeHangul(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if IsHangulSyllable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
