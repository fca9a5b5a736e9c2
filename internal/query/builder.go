package query

import (
	"sort"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/internal/analysis"
)

// FieldClause is the include/exclude pair of one field in a structured query.
type FieldClause struct {
	Field   string
	Include []string
	Exclude []string
}

// StructuredQuery is the per-field form of a query plus an optional range filter.
type StructuredQuery struct {
	Clauses []FieldClause
	Range   *RangeFilter
}

// Builder turns structured queries into query trees, analyzing every term
// with the analyzer the index was built with.
type Builder struct {
	analyzer *analysis.Analyzer
}

// NewBuilder returns a Builder using analyzer.
func NewBuilder(analyzer *analysis.Analyzer) *Builder {
	return &Builder{analyzer: analyzer}
}

// FieldQuery builds the sub-query of one field, or nil when both lists are
// empty after analysis.
//
// Every include term is required: MUST(field:t1 field:t2 ...).
// Any exclude term rejects the document: MUST_NOT(SHOULD(field:t1 field:t2 ...)).
func (b *Builder) FieldQuery(field string, include, exclude []string) Node {
	var clauses []Node
	if inc := b.termMatches(field, include); len(inc) > 0 {
		clauses = append(clauses, NewBooleanGroup(Must, inc...))
	}
	if exc := b.termMatches(field, exclude); len(exc) > 0 {
		clauses = append(clauses, NewBooleanGroup(MustNot, NewBooleanGroup(Should, exc...)))
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return NewBooleanGroup(Must, clauses...)
	}
}

// Build conjoins the sub-query of every clause and the range filter.
// The result is always a MUST group; with no constraints it is empty and
// matches every document.
func (b *Builder) Build(q StructuredQuery) *BooleanGroup {
	children := make([]Node, 0, len(q.Clauses)+1)
	for _, clause := range q.Clauses {
		if node := b.FieldQuery(clause.Field, clause.Include, clause.Exclude); node != nil {
			children = append(children, node)
		}
	}
	if q.Range != nil {
		children = append(children, q.Range)
	}
	return NewBooleanGroup(Must, children...)
}

// termMatches analyzes raw and returns one TermMatch per distinct term, in order.
// Stop words vanish; a raw term that splits into several terms contributes all of them.
func (b *Builder) termMatches(field string, raw []string) []Node {
	var nodes []Node
	seen := make(map[string]struct{})
	for _, r := range raw {
		for _, term := range b.analyzer.Analyze(r) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			nodes = append(nodes, NewTermMatch(field, term))
		}
	}
	return nodes
}

// ClausesFromFields returns one clause per entry of fields, ordered by field name.
func ClausesFromFields(fields map[string]config.FieldTerms) []FieldClause {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	clauses := make([]FieldClause, 0, len(names))
	for _, name := range names {
		clauses = append(clauses, FieldClause{Field: name, Include: fields[name].Include, Exclude: fields[name].Exclude})
	}
	return clauses
}

// And conjoins nodes so that a document must satisfy each of them on its own.
// Nil nodes are skipped; a lone group is returned unchanged.
func And(nodes ...Node) *BooleanGroup {
	children := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if g, ok := n.(*BooleanGroup); ok && g.Occur == Should {
			n = NewBooleanGroup(Must, g)
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		if g, ok := children[0].(*BooleanGroup); ok {
			return g
		}
	}
	return NewBooleanGroup(Must, children...)
}
