package index

import (
	"fmt"
	"sort"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/store"
)

// FieldData is the raw material of one indexed field handed to New.
type FieldData struct {
	Postings map[string]PostingList // Term to postings
	Lengths  []int                  // Number of terms per internal DocID
}

// Index maps (field, term) to a posting list and keeps the stored documents.
// It is never mutated after New returns and is safe for concurrent reads.
type Index struct {
	analyzer config.AnalyzerConfig
	docs     *store.DocumentStore
	fields   map[string]*fieldIndex
}

type fieldIndex struct {
	postings    map[string]PostingList
	lengths     []int
	totalLength int
}

// FieldStats summarizes one indexed field.
type FieldStats struct {
	Terms         int     `json:"terms"`
	Postings      int     `json:"postings"`
	AverageLength float64 `json:"average_length"`
}

// Stats summarizes an index.
type Stats struct {
	Documents int                   `json:"documents"`
	Relevant  int                   `json:"relevant"` // documents flagged relevant
	Analyzer  string                `json:"analyzer"`
	Fields    map[string]FieldStats `json:"fields"`
}

// New assembles an index after checking its invariants: posting lists sorted and
// deduplicated, every referenced document present in docs, one length per document.
func New(analyzer config.AnalyzerConfig, docs *store.DocumentStore, fields map[string]FieldData) (*Index, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	idx := &Index{
		analyzer: analyzer,
		docs:     docs,
		fields:   make(map[string]*fieldIndex, len(fields)),
	}
	for name, data := range fields {
		if len(data.Lengths) != docs.Len() {
			return nil, fmt.Errorf("field '%s' has %d lengths for %d documents", name, len(data.Lengths), docs.Len())
		}
		fi := &fieldIndex{
			postings: make(map[string]PostingList, len(data.Postings)),
			lengths:  data.Lengths,
		}
		for _, l := range data.Lengths {
			fi.totalLength += l
		}
		for term, pl := range data.Postings {
			if err := pl.validate(docs.Len()); err != nil {
				return nil, fmt.Errorf("field '%s' term '%s': %w", name, term, err)
			}
			if len(pl) > 0 {
				fi.postings[term] = pl
			}
		}
		idx.fields[name] = fi
	}
	return idx, nil
}

// Postings returns the posting list of term in field, or nil.
// The returned slice is shared and must not be modified.
func (idx *Index) Postings(field, term string) PostingList {
	fi, ok := idx.fields[field]
	if !ok {
		return nil
	}
	return fi.postings[term]
}

// DocFreq returns the number of documents whose field contains term.
func (idx *Index) DocFreq(field, term string) int {
	return len(idx.Postings(field, term))
}

// DocumentCount returns the number of indexed documents.
func (idx *Index) DocumentCount() int {
	return idx.docs.Len()
}

// FieldLength returns the number of terms field had in a document after analysis.
func (idx *Index) FieldLength(field string, docID uint32) int {
	fi, ok := idx.fields[field]
	if !ok || int(docID) >= len(fi.lengths) {
		return 0
	}
	return fi.lengths[docID]
}

// AverageFieldLength returns the mean analyzed length of field over all documents.
func (idx *Index) AverageFieldLength(field string) float64 {
	fi, ok := idx.fields[field]
	if !ok || len(fi.lengths) == 0 {
		return 0
	}
	return float64(fi.totalLength) / float64(len(fi.lengths))
}

// Document returns the stored document for an internal ID.
func (idx *Index) Document(docID uint32) (model.Document, bool) {
	return idx.docs.Get(docID)
}

// Lookup maps an external document ID to its internal ID.
func (idx *Index) Lookup(documentID string) (uint32, bool) {
	return idx.docs.Lookup(documentID)
}

// Fields returns the indexed field names, sorted.
func (idx *Index) Fields() []string {
	names := make([]string, 0, len(idx.fields))
	for name := range idx.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Terms returns the terms of field, sorted.
func (idx *Index) Terms(field string) []string {
	fi, ok := idx.fields[field]
	if !ok {
		return nil
	}
	terms := make([]string, 0, len(fi.postings))
	for term := range fi.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// AnalyzerConfig returns the analyzer configuration the index was built with.
// Queries against the index must be analyzed the same way.
func (idx *Index) AnalyzerConfig() config.AnalyzerConfig {
	return idx.analyzer
}

// Stats computes a summary of the index.
func (idx *Index) Stats() Stats {
	stats := Stats{
		Documents: idx.DocumentCount(),
		Analyzer:  idx.analyzer.String(),
		Fields:    make(map[string]FieldStats, len(idx.fields)),
	}
	for id := 0; id < idx.docs.Len(); id++ {
		doc, _ := idx.docs.Get(uint32(id))
		if relevant, ok := doc.IsRelevant(); ok && relevant {
			stats.Relevant++
		}
	}
	for name, fi := range idx.fields {
		postings := 0
		for _, pl := range fi.postings {
			postings += len(pl)
		}
		stats.Fields[name] = FieldStats{
			Terms:         len(fi.postings),
			Postings:      postings,
			AverageLength: idx.AverageFieldLength(name),
		}
	}
	return stats
}
