package wordengine

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Score rates how hard a word is to read, from 1 to 5, based on its syllable
// count and its length in code points after NFC normalization.
func Score(text string, syllables int) int {
	switch {
	case syllables == 1:
		return 1
	case syllables == 2:
		return 2
	case syllables == 3 && runeLen(text) <= 6:
		return 3
	case syllables == 3:
		return 4
	default:
		return 5
	}
}

func runeLen(text string) int {
	return utf8.RuneCountInString(norm.NFC.String(text))
}
