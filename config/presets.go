package config

import (
	"sort"
	"strings"

	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// Preset is one named point of the {stemmer} x {stop words} x {similarity} cross-product.
type Preset struct {
	Name       string         `json:"name"`
	Analyzer   AnalyzerConfig `json:"analyzer"`
	Similarity Similarity     `json:"similarity"`
}

var (
	presetStemmers     = []StemmerKind{StemmerPorter, StemmerKStem, StemmerNone}
	presetStopwords    = []StopwordSet{StopwordsEnglish, StopwordsNone}
	presetSimilarities = []Similarity{SimilarityVectorSpace, SimilarityBM25}
)

// PresetName builds the canonical name, e.g. "bm25-porter-stop" or "vsm-kstem-nostop".
func PresetName(sim Similarity, stemmer StemmerKind, stopwords StopwordSet) string {
	stop := "stop"
	if stopwords == StopwordsNone {
		stop = "nostop"
	}
	return string(sim) + "-" + string(stemmer) + "-" + stop
}

// Presets returns every named preset, ordered by name.
func Presets() []Preset {
	presets := make([]Preset, 0, len(presetStemmers)*len(presetStopwords)*len(presetSimilarities))
	for _, sim := range presetSimilarities {
		for _, stemmer := range presetStemmers {
			for _, stop := range presetStopwords {
				presets = append(presets, Preset{
					Name: PresetName(sim, stemmer, stop),
					Analyzer: AnalyzerConfig{
						Tokenizer: TokenizerStandard,
						Stemmer:   stemmer,
						Stopwords: stop,
					},
					Similarity: sim,
				})
			}
		}
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets
}

// LookupPreset returns the preset with the given name or a ConfigError.
func LookupPreset(name string) (Preset, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if p.Name == want {
			return p, nil
		}
	}
	return Preset{}, internalErrors.NewConfigError("preset", name)
}

// LookupPresets resolves all names, failing on the first unknown one.
func LookupPresets(names []string) ([]Preset, error) {
	presets := make([]Preset, 0, len(names))
	for _, name := range names {
		p, err := LookupPreset(name)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}
