package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/searchlab/config"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

func analyzerConfig(stemmer config.StemmerKind, stop config.StopwordSet) config.AnalyzerConfig {
	return config.AnalyzerConfig{Tokenizer: config.TokenizerStandard, Stemmer: stemmer, Stopwords: stop}
}

func TestAnalyze_Pipelines(t *testing.T) {
	text := "The users of gesture interfaces"

	tests := []struct {
		name   string
		config config.AnalyzerConfig
		want   []string
	}{
		{"no stemming, stop words", analyzerConfig(config.StemmerNone, config.StopwordsEnglish), []string{"users", "gesture", "interfaces"}},
		{"no stemming, no stop words", analyzerConfig(config.StemmerNone, config.StopwordsNone), []string{"the", "users", "of", "gesture", "interfaces"}},
		{"kstem, stop words", analyzerConfig(config.StemmerKStem, config.StopwordsEnglish), []string{"user", "gesture", "interface"}},
		{"kstem, no stop words", analyzerConfig(config.StemmerKStem, config.StopwordsNone), []string{"the", "user", "of", "gesture", "interface"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Analyze(text, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze_Porter(t *testing.T) {
	a, err := New(analyzerConfig(config.StemmerPorter, config.StopwordsEnglish))
	require.NoError(t, err)

	assert.Equal(t, []string{"run", "connect", "cat"}, a.Analyze("running connection cats"))
	assert.Equal(t, []string{}, a.Analyze("the and of"), "stop words only")
	assert.Equal(t, []string{}, a.Analyze(""))
}

func TestAnalyze_Possessives(t *testing.T) {
	text := "Kim's Korea's"

	tests := []struct {
		stemmer config.StemmerKind
		want    []string
	}{
		{config.StemmerNone, []string{"kim's", "korea's"}},
		{config.StemmerPorter, []string{"kim", "korea"}},
		{config.StemmerKStem, []string{"kim", "korea"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.stemmer), func(t *testing.T) {
			got, err := Analyze(text, analyzerConfig(tt.stemmer, config.StopwordsNone))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze_StemmersAreIndependent(t *testing.T) {
	porter, err := New(analyzerConfig(config.StemmerPorter, config.StopwordsNone))
	require.NoError(t, err)
	kstem, err := New(analyzerConfig(config.StemmerKStem, config.StopwordsNone))
	require.NoError(t, err)

	assert.Equal(t, []string{"interface"}, kstem.Analyze("interfaces"))
	assert.NotEqual(t, kstem.Analyze("interfaces"), porter.Analyze("interfaces"),
		"porter and kstem follow different rule sets")
}

func TestAnalyze_Deterministic(t *testing.T) {
	a, err := New(analyzerConfig(config.StemmerPorter, config.StopwordsEnglish))
	require.NoError(t, err)

	text := "Motion detection with user interfaces for gesture tracking"
	first := a.Analyze(text)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, a.Analyze(text))
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config config.AnalyzerConfig
	}{
		{"unknown stemmer", analyzerConfig("lovins", config.StopwordsEnglish)},
		{"unknown tokenizer", config.AnalyzerConfig{Tokenizer: "ngram", Stemmer: config.StemmerNone, Stopwords: config.StopwordsNone}},
		{"unknown stop words", analyzerConfig(config.StemmerPorter, "german")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.config)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, internalErrors.ErrConfig)

			terms, err := Analyze("some text", tt.config)
			assert.Nil(t, terms)
			assert.ErrorIs(t, err, internalErrors.ErrConfig)
		})
	}
}

func TestKStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"visits", "visit"},
		{"users", "user"},
		{"gestures", "gesture"},
		{"interfaces", "interface"},
		{"boxes", "box"},
		{"ponies", "pony"},
		{"ties", "tie"},
		{"stopped", "stop"},
		{"running", "run"},
		{"hoped", "hope"},
		{"used", "use"},
		{"agreed", "agree"},
		{"carried", "carry"},
		{"walked", "walk"},
		{"visited", "visit"},
		{"tracking", "track"},
		{"interfacing", "interface"},
		{"quickly", "quick"},
		{"happiness", "happy"},
		{"movement", "move"},
		{"organization", "organize"},
		{"men", "man"},
		{"news", "news"},
		{"analysis", "analysis"},
		{"status", "status"},
		{"during", "during"},
		{"kim's", "kim"},
		{"motion", "motion"},
		{"detection", "detection"},
		{"don't", "don't"},
		{"3.14", "3.14"},
		{"is", "is"},
	}

	s := kstemStemmer{}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Reduce(tt.word))
		})
	}
}

func TestNewStemmer(t *testing.T) {
	s, err := NewStemmer("k-stem")
	require.NoError(t, err)
	assert.Equal(t, "visit", s.Reduce("visits"))

	s, err = NewStemmer(config.StemmerNone)
	require.NoError(t, err)
	assert.Equal(t, "visits", s.Reduce("visits"))

	_, err = NewStemmer("paice")
	assert.ErrorIs(t, err, internalErrors.ErrConfig)
}
