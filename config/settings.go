// Package config provides configuration structures for the retrieval test bench.
// It defines analyzer settings, similarity selection, the named presets built from
// their cross-product, and the YAML experiment file.
package config

import (
	"strings"

	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// TokenizerKind names a tokenizer. Only the standard word/number tokenizer exists.
type TokenizerKind string

const (
	TokenizerStandard TokenizerKind = "standard"
)

// StemmerKind names a term-reduction strategy.
type StemmerKind string

const (
	StemmerNone   StemmerKind = "none"
	StemmerPorter StemmerKind = "porter"
	StemmerKStem  StemmerKind = "kstem"
)

// StopwordSet names the stop-word list applied after tokenization.
type StopwordSet string

const (
	StopwordsEnglish StopwordSet = "english"
	StopwordsNone    StopwordSet = "none"
)

// Similarity names the scoring model used by the evaluator.
type Similarity string

const (
	SimilarityVectorSpace Similarity = "vsm"
	SimilarityBM25        Similarity = "bm25"
)

// DayBoundary selects how calendar dates in range filters map to millisecond bounds.
type DayBoundary string

const (
	// DayBoundaryLiteral maps a date to [00:00:00.000, 23:59:59.999] UTC of that same day.
	DayBoundaryLiteral DayBoundary = "literal"
	// DayBoundaryShifted reproduces the legacy computation that lands one day later.
	DayBoundaryShifted DayBoundary = "shifted"
)

// SortMode selects how matches are presented.
type SortMode string

const (
	SortRanked       SortMode = "ranked"
	SortAlphabetical SortMode = "alphabetical"
)

// AnalyzerConfig selects the stages of the analyzer pipeline.
type AnalyzerConfig struct {
	Tokenizer TokenizerKind `json:"tokenizer" yaml:"tokenizer"`
	Stemmer   StemmerKind   `json:"stemmer" yaml:"stemmer"`
	Stopwords StopwordSet   `json:"stopwords" yaml:"stopwords"`
}

// BM25Params holds the tunable BM25 parameters.
type BM25Params struct {
	K1 float64 `json:"k1" yaml:"k1"`
	B  float64 `json:"b" yaml:"b"`
}

// DefaultBM25Params returns k1=1.2, b=0.75.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.2, B: 0.75}
}

// ApplyDefaults fills unset analyzer stages: standard tokenizer, no stemming, English stop words.
func (c *AnalyzerConfig) ApplyDefaults() {
	if c.Tokenizer == "" {
		c.Tokenizer = TokenizerStandard
	}
	if c.Stemmer == "" {
		c.Stemmer = StemmerNone
	}
	if c.Stopwords == "" {
		c.Stopwords = StopwordsEnglish
	}
}

// Validate returns a ConfigError for the first unrecognized stage name.
func (c AnalyzerConfig) Validate() error {
	if c.Tokenizer != TokenizerStandard {
		return internalErrors.NewConfigError("tokenizer", string(c.Tokenizer))
	}
	if _, err := ParseStemmer(string(c.Stemmer)); err != nil {
		return err
	}
	if c.Stopwords != StopwordsEnglish && c.Stopwords != StopwordsNone {
		return internalErrors.NewConfigError("stopwords", string(c.Stopwords))
	}
	return nil
}

// String renders the config as "stemmer/stopwords", e.g. "porter/english".
func (c AnalyzerConfig) String() string {
	return string(c.Stemmer) + "/" + string(c.Stopwords)
}

// ParseStemmer maps a stemmer name to its kind. "k-stem" is accepted for kstem.
func ParseStemmer(name string) (StemmerKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return StemmerNone, nil
	case "porter":
		return StemmerPorter, nil
	case "kstem", "k-stem":
		return StemmerKStem, nil
	default:
		return "", internalErrors.NewConfigError("stemmer", name)
	}
}

// ParseSimilarity maps a similarity name to its kind. "vector-space" is accepted for vsm.
func ParseSimilarity(name string) (Similarity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vsm", "vector-space", "tfidf":
		return SimilarityVectorSpace, nil
	case "bm25":
		return SimilarityBM25, nil
	default:
		return "", internalErrors.NewConfigError("similarity", name)
	}
}

// Validate returns a ConfigError unless s is a known similarity.
func (s Similarity) Validate() error {
	if s != SimilarityVectorSpace && s != SimilarityBM25 {
		return internalErrors.NewConfigError("similarity", string(s))
	}
	return nil
}

// Validate returns a ConfigError unless d is a known day boundary.
func (d DayBoundary) Validate() error {
	if d != DayBoundaryLiteral && d != DayBoundaryShifted {
		return internalErrors.NewConfigError("day boundary", string(d))
	}
	return nil
}

// Validate returns a ConfigError unless m is a known sort mode.
func (m SortMode) Validate() error {
	if m != SortRanked && m != SortAlphabetical {
		return internalErrors.NewConfigError("sort mode", string(m))
	}
	return nil
}
