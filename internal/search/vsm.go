package search

import (
	"math"

	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/query"
)

// VectorSpaceCalculator scores documents with the classic TF-IDF model:
//
//	score = coord * queryNorm * Σ sqrt(tf) * idf² / sqrt(fieldLength)
//	idf = 1 + ln(N / (df + 1)), queryNorm = 1 / sqrt(Σ idf²)
//	coord = matched query terms / query terms
type VectorSpaceCalculator struct {
	invertedIndex *index.Index
	terms         []termStats
	idf           []float64
	queryNorm     float64
}

// NewVectorSpaceCalculator creates a calculator for the given query terms.
func NewVectorSpaceCalculator(idx *index.Index, terms []query.TermMatch) *VectorSpaceCalculator {
	calc := &VectorSpaceCalculator{
		invertedIndex: idx,
		terms:         collectTermStats(idx, terms),
	}
	calc.idf = make([]float64, len(calc.terms))
	sumOfSquares := 0.0
	for i, t := range calc.terms {
		calc.idf[i] = calc.calculateIDF(t.df)
		sumOfSquares += calc.idf[i] * calc.idf[i]
	}
	calc.queryNorm = 1
	if sumOfSquares > 0 {
		calc.queryNorm = 1 / math.Sqrt(sumOfSquares)
	}
	return calc
}

func (calc *VectorSpaceCalculator) calculateIDF(docFreq int) float64 {
	n := float64(calc.invertedIndex.DocumentCount())
	return 1 + math.Log(n/float64(docFreq+1))
}

// Score returns the TF-IDF score of a document.
func (calc *VectorSpaceCalculator) Score(docID uint32) float64 {
	if len(calc.terms) == 0 {
		return 0
	}
	sum := 0.0
	matched := 0
	for i, t := range calc.terms {
		p, ok := t.postings.Find(docID)
		if !ok {
			continue
		}
		matched++
		norm := 0.0
		if length := calc.invertedIndex.FieldLength(t.field, docID); length > 0 {
			norm = 1 / math.Sqrt(float64(length))
		}
		sum += math.Sqrt(float64(p.Freq)) * calc.idf[i] * calc.idf[i] * norm
	}
	coord := float64(matched) / float64(len(calc.terms))
	return coord * calc.queryNorm * sum
}
