// Package analysis turns raw text into normalized index terms.
// A pipeline is tokenizer -> stop-word filter -> stemmer, selected entirely by
// config.AnalyzerConfig. Analyzers hold no mutable state and are safe for
// concurrent use.
package analysis

import (
	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/internal/tokenizer"
)

// Analyzer is one configured pipeline.
type Analyzer struct {
	config    config.AnalyzerConfig
	stopwords map[string]struct{}
	stemmer   Stemmer
}

// New validates cfg and assembles the pipeline. Unknown stage names yield a ConfigError.
func New(cfg config.AnalyzerConfig) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stemmer, err := NewStemmer(cfg.Stemmer)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		config:    cfg,
		stopwords: stopwordSet(cfg.Stopwords),
		stemmer:   stemmer,
	}, nil
}

// Analyze returns the term sequence for text, in order of appearance.
func (a *Analyzer) Analyze(text string) []string {
	tokens := tokenizer.Tokenize(text)
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := a.stopwords[token]; stop {
			continue
		}
		if term := a.stemmer.Reduce(token); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Config returns the configuration the analyzer was built from.
func (a *Analyzer) Config() config.AnalyzerConfig {
	return a.config
}

// Analyze is the one-shot form of New(cfg).Analyze(text).
func Analyze(text string, cfg config.AnalyzerConfig) ([]string, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return a.Analyze(text), nil
}
