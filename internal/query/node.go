// Package query holds the immutable query tree evaluated against an index,
// the structured query builder and the free-text parser.
package query

import (
	"fmt"
	"strings"
)

// Occurrence is the role a clause plays in a BooleanGroup.
type Occurrence int

const (
	// Must clauses are required; their results are intersected.
	Must Occurrence = iota
	// MustNot clauses exclude every document they match.
	MustNot
	// Should clauses are optional unless no clause is required.
	Should
)

func (o Occurrence) String() string {
	switch o {
	case Must:
		return "MUST"
	case MustNot:
		return "MUST_NOT"
	case Should:
		return "SHOULD"
	default:
		return fmt.Sprintf("Occurrence(%d)", int(o))
	}
}

// Node is one element of a query tree: *TermMatch, *BooleanGroup or *RangeFilter.
// Nodes are never modified after construction.
type Node interface {
	fmt.Stringer
	node()
}

// TermMatch matches documents whose analyzed field contains Term.
type TermMatch struct {
	Field string
	Term  string
}

// BooleanGroup combines its children according to Occur.
// Leaf children of a Must group are required; leaf children of Should and
// MustNot groups are alternatives. Child groups play the role of their own Occur.
type BooleanGroup struct {
	Occur    Occurrence
	Children []Node
}

// RangeFilter restricts a numeric field to [Low, High]. A nil bound is open.
// It decides membership only and never contributes to the score.
type RangeFilter struct {
	Field       string
	Low         *int64
	High        *int64
	IncludeLow  bool
	IncludeHigh bool
}

func (*TermMatch) node()    {}
func (*BooleanGroup) node() {}
func (*RangeFilter) node()  {}

// NewTermMatch returns a TermMatch node.
func NewTermMatch(field, term string) *TermMatch {
	return &TermMatch{Field: field, Term: term}
}

// NewBooleanGroup returns a group over a copy of children.
func NewBooleanGroup(occur Occurrence, children ...Node) *BooleanGroup {
	return &BooleanGroup{Occur: occur, Children: append([]Node(nil), children...)}
}

func (t *TermMatch) String() string {
	return t.Field + ":" + t.Term
}

func (g *BooleanGroup) String() string {
	parts := make([]string, len(g.Children))
	for i, child := range g.Children {
		parts[i] = child.String()
	}
	return g.Occur.String() + "(" + strings.Join(parts, " ") + ")"
}

func (r *RangeFilter) String() string {
	low, high := "*", "*"
	if r.Low != nil {
		low = fmt.Sprint(*r.Low)
	}
	if r.High != nil {
		high = fmt.Sprint(*r.High)
	}
	open, closing := "{", "}"
	if r.IncludeLow {
		open = "["
	}
	if r.IncludeHigh {
		closing = "]"
	}
	return fmt.Sprintf("%s:%s%s TO %s%s", r.Field, open, low, high, closing)
}

// Contains reports whether v lies within the range.
func (r *RangeFilter) Contains(v int64) bool {
	if r.Low != nil {
		if v < *r.Low || (v == *r.Low && !r.IncludeLow) {
			return false
		}
	}
	if r.High != nil {
		if v > *r.High || (v == *r.High && !r.IncludeHigh) {
			return false
		}
	}
	return true
}
