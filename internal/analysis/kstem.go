package analysis

import "strings"

// kstemStemmer is a light, dictionary-free variant of the Krovetz stemmer.
// It removes one inflectional ending (plural, past tense, progressive) and then
// at most one derivational ending, restoring a trailing "e" or "y" so that the
// result tends to be a real word rather than a truncated stem.
type kstemStemmer struct{}

var kstemIrregular = map[string]string{
	"men":      "man",
	"women":    "woman",
	"children": "child",
	"mice":     "mouse",
	"feet":     "foot",
	"teeth":    "tooth",
	"geese":    "goose",
	"oxen":     "ox",
	"goes":     "go",
	"does":     "do",
	"indices":  "index",
	"data":     "datum",
}

// kstemProtected words look inflected but are already roots.
var kstemProtected = map[string]struct{}{
	"news": {}, "series": {}, "species": {}, "always": {}, "perhaps": {},
	"physics": {}, "mathematics": {}, "economics": {}, "politics": {},
	"during": {}, "morning": {}, "evening": {}, "nothing": {}, "something": {},
	"anything": {}, "everything": {}, "ceiling": {}, "family": {}, "italy": {},
	"need": {}, "seed": {}, "speed": {}, "feed": {}, "deed": {}, "weed": {},
	"bleed": {}, "breed": {}, "greed": {}, "proceed": {}, "succeed": {}, "exceed": {},
	"bed": {}, "red": {}, "hundred": {},
}

func (kstemStemmer) Reduce(token string) string {
	if root, ok := kstemIrregular[token]; ok {
		return root
	}
	w := stripPossessive(token)
	if len(w) < 3 || !isASCIILower(w) {
		return w
	}
	if _, ok := kstemProtected[w]; ok {
		return w
	}
	if root, ok := kstemIrregular[w]; ok {
		return root
	}
	w = kstemPlural(w)
	w = kstemInflection(w)
	return kstemDerivation(w)
}

func stripPossessive(w string) string {
	switch {
	case strings.HasSuffix(w, "'s"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "'"):
		return w[:len(w)-1]
	}
	return w
}

func kstemPlural(w string) string {
	switch {
	case len(w) < 4 || !strings.HasSuffix(w, "s"):
		return w
	case hasAnySuffix(w, "ss", "us", "is"):
		return w
	case strings.HasSuffix(w, "ies"):
		stem := w[:len(w)-3]
		if len(stem) <= 1 {
			return stem + "ie"
		}
		return stem + "y"
	case strings.HasSuffix(w, "es"):
		stem := w[:len(w)-2]
		if hasAnySuffix(stem, "ss", "x", "z", "ch", "sh") {
			return stem
		}
		return w[:len(w)-1]
	default:
		return w[:len(w)-1]
	}
}

// kstemInflection removes "ing" or "ed".
func kstemInflection(w string) string {
	if strings.HasSuffix(w, "eed") {
		return w[:len(w)-1]
	}
	var stem string
	var past bool
	switch {
	case strings.HasSuffix(w, "ing"):
		stem = w[:len(w)-3]
	case strings.HasSuffix(w, "ed"):
		stem = w[:len(w)-2]
		past = true
	default:
		return w
	}
	if len(stem) < 2 || !hasVowel(stem) {
		return w
	}
	if past && strings.HasSuffix(stem, "i") {
		if len(stem) <= 2 {
			return stem + "e"
		}
		return stem[:len(stem)-1] + "y"
	}
	switch {
	case len(stem) >= 4 && endsDoubleConsonant(stem) && !hasAnySuffix(stem, "ll", "ss", "zz"):
		return stem[:len(stem)-1]
	case len(stem) == 2 && !isConsonant(stem, 0) && isConsonant(stem, 1):
		return stem + "e"
	case strings.HasSuffix(stem, "v"), hasAnySuffix(stem, "ac", "uc"):
		return stem + "e"
	case measure(stem) == 1 && endsCVC(stem):
		return stem + "e"
	}
	return stem
}

func kstemDerivation(w string) string {
	switch {
	case strings.HasSuffix(w, "iness") && len(w) > 7:
		return w[:len(w)-5] + "y"
	case strings.HasSuffix(w, "ness") && len(w) >= 7:
		return w[:len(w)-4]
	case strings.HasSuffix(w, "ily") && len(w) >= 6:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ly") && !strings.HasSuffix(w, "ply") && len(w) >= 6 && isConsonant(w, len(w)-3):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ment") && len(w) >= 8:
		return w[:len(w)-4]
	case strings.HasSuffix(w, "ful") && len(w) >= 6:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ization"):
		return w[:len(w)-5] + "e"
	case strings.HasSuffix(w, "ability") && len(w) >= 9:
		return w[:len(w)-5] + "le"
	case strings.HasSuffix(w, "ibility") && len(w) >= 9:
		return w[:len(w)-5] + "le"
	}
	return w
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func isASCIILower(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// isConsonant follows the Porter convention: y is a consonant at the start of
// a word or after a vowel.
func isConsonant(w string, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		return i == 0 || !isConsonant(w, i-1)
	}
	return true
}

func hasVowel(w string) bool {
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

// measure counts vowel-consonant sequences.
func measure(w string) int {
	m := 0
	prevVowel := false
	for i := range w {
		c := isConsonant(w, i)
		if c && prevVowel {
			m++
		}
		prevVowel = !c
	}
	return m
}

func endsDoubleConsonant(w string) bool {
	n := len(w)
	return n >= 2 && w[n-1] == w[n-2] && isConsonant(w, n-1)
}

// endsCVC reports consonant-vowel-consonant at the end, the last not w, x or y.
func endsCVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	last := w[n-1]
	return isConsonant(w, n-3) && !isConsonant(w, n-2) && isConsonant(w, n-1) &&
		last != 'w' && last != 'x' && last != 'y'
}
