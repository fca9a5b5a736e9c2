package search

import (
	"math"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/query"
)

// Scorer assigns a score to a document that already matched the query.
type Scorer interface {
	Score(docID uint32) float64
}

// termStats caches the per-term numbers both similarities need.
type termStats struct {
	field    string
	postings index.PostingList
	df       int
}

func collectTermStats(idx *index.Index, terms []query.TermMatch) []termStats {
	stats := make([]termStats, len(terms))
	for i, t := range terms {
		pl := idx.Postings(t.Field, t.Term)
		stats[i] = termStats{field: t.Field, postings: pl, df: len(pl)}
	}
	return stats
}

func newScorer(idx *index.Index, sim config.Similarity, params config.BM25Params, terms []query.TermMatch) Scorer {
	if sim == config.SimilarityBM25 {
		return NewBM25Calculator(idx, terms, params)
	}
	return NewVectorSpaceCalculator(idx, terms)
}

// BM25Calculator handles BM25 score calculations
type BM25Calculator struct {
	invertedIndex *index.Index
	params        config.BM25Params
	terms         []termStats
	idf           []float64
}

// NewBM25Calculator creates a BM25 calculator for the given query terms.
func NewBM25Calculator(idx *index.Index, terms []query.TermMatch, params config.BM25Params) *BM25Calculator {
	calc := &BM25Calculator{
		invertedIndex: idx,
		params:        params,
		terms:         collectTermStats(idx, terms),
	}
	calc.idf = make([]float64, len(calc.terms))
	for i, t := range calc.terms {
		calc.idf[i] = calc.calculateIDF(t.df)
	}
	return calc
}

// calculateIDF calculates the inverse document frequency
// IDF = ln(1 + (N - df + 0.5) / (df + 0.5)), never negative
func (calc *BM25Calculator) calculateIDF(docFreq int) float64 {
	n := float64(calc.invertedIndex.DocumentCount())
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Score sums the BM25 contribution of every query term found in the document.
func (calc *BM25Calculator) Score(docID uint32) float64 {
	score := 0.0
	for i, t := range calc.terms {
		p, ok := t.postings.Find(docID)
		if !ok {
			continue
		}
		score += calc.CalculateBM25(calc.idf[i], float64(p.Freq), t.field, docID)
	}
	return score
}

// CalculateBM25 calculates the BM25 score of one term with document length normalization
// BM25 = IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (|d| / avgdl)))
func (calc *BM25Calculator) CalculateBM25(idf, tf float64, field string, docID uint32) float64 {
	k1 := calc.params.K1 // Controls term frequency saturation
	b := calc.params.B   // Controls how much effect document length has

	docLength := float64(calc.invertedIndex.FieldLength(field, docID))
	avgDocLength := calc.invertedIndex.AverageFieldLength(field)
	lengthRatio := 1.0
	if avgDocLength > 0 {
		lengthRatio = docLength / avgDocLength
	}

	bm25TF := (tf * (k1 + 1)) / (tf + k1*(1-b+b*lengthRatio))
	return idf * bm25TF
}
