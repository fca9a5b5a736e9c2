package search

import (
	"fmt"
	"sort"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/query"
)

// Match is one matching document and its score.
type Match struct {
	DocID uint32  `json:"doc_id"`
	Score float64 `json:"score"`
}

type evalOptions struct {
	bm25 config.BM25Params
}

// EvalOption configures Evaluate.
type EvalOption func(*evalOptions)

// WithBM25Params overrides k1 and b of the BM25 similarity.
func WithBM25Params(params config.BM25Params) EvalOption {
	return func(o *evalOptions) { o.bm25 = params }
}

// Evaluate runs node against idx and returns every matching document, ranked by
// descending score with ties broken by ascending DocID.
//
// Membership follows the boolean structure only; sim changes scores, never the
// set of matches. Evaluate reads idx without locking and may be called concurrently.
func Evaluate(idx *index.Index, node query.Node, sim config.Similarity, opts ...EvalOption) ([]Match, error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	if node == nil {
		return nil, internalErrors.NewValidationError("query", "query cannot be nil")
	}
	o := evalOptions{bm25: config.DefaultBM25Params()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &evaluator{idx: idx}
	docs := e.matchSet(node)
	if g, ok := node.(*query.BooleanGroup); ok && g.Occur == query.MustNot {
		docs = difference(e.all(), docs)
	}

	scorer := newScorer(idx, sim, o.bm25, scoringTerms(node))
	matches := make([]Match, len(docs))
	for i, docID := range docs {
		matches[i] = Match{DocID: docID, Score: scorer.Score(docID)}
	}
	sortRanked(matches)
	return matches, nil
}

type evaluator struct {
	idx     *index.Index
	allDocs []uint32
}

func (e *evaluator) all() []uint32 {
	if e.allDocs == nil {
		e.allDocs = allDocs(e.idx.DocumentCount())
	}
	return e.allDocs
}

// roleOf returns the role child plays inside a group of occurrence parent.
func roleOf(child query.Node, parent query.Occurrence) query.Occurrence {
	if g, ok := child.(*query.BooleanGroup); ok {
		return g.Occur
	}
	if parent == query.Must {
		return query.Must
	}
	return query.Should
}

// matchSet returns the documents matched by node as a sorted set.
func (e *evaluator) matchSet(node query.Node) []uint32 {
	switch n := node.(type) {
	case *query.TermMatch:
		return e.idx.Postings(n.Field, n.Term).DocIDs()
	case *query.RangeFilter:
		return e.rangeSet(n)
	case *query.BooleanGroup:
		return e.groupSet(n)
	default:
		return nil
	}
}

func (e *evaluator) groupSet(g *query.BooleanGroup) []uint32 {
	var required, optional, excluded [][]uint32
	for _, child := range g.Children {
		set := e.matchSet(child)
		switch roleOf(child, g.Occur) {
		case query.Must:
			required = append(required, set)
		case query.Should:
			optional = append(optional, set)
		case query.MustNot:
			excluded = append(excluded, set)
		}
	}

	var docs []uint32
	switch {
	case len(required) > 0:
		docs = intersectAll(required)
	case len(optional) > 0:
		docs = unionAll(optional)
	default:
		docs = e.all()
	}
	if len(excluded) > 0 {
		docs = difference(docs, unionAll(excluded))
	}
	return docs
}

func (e *evaluator) rangeSet(r *query.RangeFilter) []uint32 {
	var docs []uint32
	for docID := uint32(0); int(docID) < e.idx.DocumentCount(); docID++ {
		doc, _ := e.idx.Document(docID)
		if v, ok := doc.NumericField(r.Field); ok && r.Contains(v) {
			docs = append(docs, docID)
		}
	}
	return docs
}

// scoringTerms returns the distinct term leaves that are not under an exclusion.
func scoringTerms(node query.Node) []query.TermMatch {
	var terms []query.TermMatch
	seen := make(map[query.TermMatch]struct{})
	var walk func(n query.Node, negated bool)
	walk = func(n query.Node, negated bool) {
		switch n := n.(type) {
		case *query.TermMatch:
			if negated {
				return
			}
			if _, dup := seen[*n]; !dup {
				seen[*n] = struct{}{}
				terms = append(terms, *n)
			}
		case *query.BooleanGroup:
			for _, child := range n.Children {
				walk(child, negated || roleOf(child, n.Occur) == query.MustNot)
			}
		}
	}
	g, isGroup := node.(*query.BooleanGroup)
	walk(node, isGroup && g.Occur == query.MustNot)
	return terms
}

func sortRanked(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].DocID < matches[j].DocID
	})
}
