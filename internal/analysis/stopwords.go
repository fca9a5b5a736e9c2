package analysis

import "github.com/gcbaptista/searchlab/config"

// englishStopwords is the classic 33-word English stop list used by Lucene's
// StandardAnalyzer and EnglishAnalyzer.
var englishStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by",
	"for", "if", "in", "into", "is", "it",
	"no", "not", "of", "on", "or", "such",
	"that", "the", "their", "then", "there", "these",
	"they", "this", "to", "was", "will", "with",
}

func stopwordSet(set config.StopwordSet) map[string]struct{} {
	words := make(map[string]struct{})
	if set == config.StopwordsEnglish {
		for _, w := range englishStopwords {
			words[w] = struct{}{}
		}
	}
	return words
}
