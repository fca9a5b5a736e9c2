package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize converts a string into a slice of lowercased word tokens.
// Runs of letters and digits form a token. A single '.' joins letters to letters
// (U.S.A) and digits to digits (3.14), a single ',' joins digits (1,000) and a
// single apostrophe joins letters (don't, kim's). Everything else is a boundary.
func Tokenize(text string) []string {
	runes := []rune(text)
	tokens := make([]string, 0) // Initialize as empty slice, not nil
	current := make([]rune, 0, 16)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			current = append(current, r)
		case len(current) > 0 && i+1 < len(runes) && joins(current[len(current)-1], r, runes[i+1]):
			if r == '’' {
				r = '\''
			}
			current = append(current, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// joins reports whether sep glues prev and next into one token.
func joins(prev, sep, next rune) bool {
	switch sep {
	case '.':
		return (unicode.IsLetter(prev) && unicode.IsLetter(next)) ||
			(unicode.IsDigit(prev) && unicode.IsDigit(next))
	case ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	case '\'', '’':
		return unicode.IsLetter(prev) && unicode.IsLetter(next)
	default:
		return false
	}
}
