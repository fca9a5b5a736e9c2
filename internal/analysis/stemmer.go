package analysis

import (
	"github.com/kljensen/snowball/english"

	"github.com/gcbaptista/searchlab/config"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// Stemmer reduces a single lowercased token to its root form.
// Implementations must be pure: the same token always yields the same root.
type Stemmer interface {
	Reduce(token string) string
}

type identityStemmer struct{}

func (identityStemmer) Reduce(token string) string { return token }

// porterStemmer applies the Snowball English (Porter2) algorithm.
type porterStemmer struct{}

func (porterStemmer) Reduce(token string) string {
	return english.Stem(token, true)
}

// NewStemmer returns the strategy for kind, or a ConfigError for an unknown kind.
func NewStemmer(kind config.StemmerKind) (Stemmer, error) {
	normalized, err := config.ParseStemmer(string(kind))
	if err != nil {
		return nil, err
	}
	switch normalized {
	case config.StemmerNone:
		return identityStemmer{}, nil
	case config.StemmerPorter:
		return porterStemmer{}, nil
	case config.StemmerKStem:
		return kstemStemmer{}, nil
	}
	return nil, internalErrors.NewConfigError("stemmer", string(kind))
}
