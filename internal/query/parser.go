package query

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/searchlab/internal/analysis"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// Free-text syntax:
//
//	query   = or
//	or      = and { ["OR" | "||"] and }      juxtaposition means OR
//	and     = unary { ("AND" | "&&") unary }
//	unary   = ("NOT" | "!") unary | "+" primary | "-" primary | primary
//	primary = "(" or ")" | field ":(" or ")" | [field ":"] word
//
// AND binds tighter than OR. Operators are case sensitive; lowercase "and"
// is an ordinary word (and usually a stop word).

type tokenKind int

const (
	tokWord tokenKind = iota
	tokField
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokMinus
	tokLParen
	tokRParen
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "term"
	case tokField:
		return "field"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "end of query"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, pos: i})
			i++
		case c == '+' || c == '-':
			if i+1 >= len(input) || isSpace(input[i+1]) || input[i+1] == ')' {
				return nil, internalErrors.NewQuerySyntaxError(input, i, fmt.Sprintf("'%c' must be followed by a term", c))
			}
			kind := tokPlus
			if c == '-' {
				kind = tokMinus
			}
			tokens = append(tokens, token{kind: kind, pos: i})
			i++
		case c == '!':
			tokens = append(tokens, token{kind: tokNot, pos: i})
			i++
		case strings.HasPrefix(input[i:], "&&"):
			tokens = append(tokens, token{kind: tokAnd, pos: i})
			i += 2
		case strings.HasPrefix(input[i:], "||"):
			tokens = append(tokens, token{kind: tokOr, pos: i})
			i += 2
		default:
			j := i
			for j < len(input) && !isSpace(input[j]) && input[j] != '(' && input[j] != ')' {
				j++
			}
			word := input[i:j]
			switch {
			case word == "AND":
				tokens = append(tokens, token{kind: tokAnd, pos: i})
			case word == "OR":
				tokens = append(tokens, token{kind: tokOr, pos: i})
			case word == "NOT":
				tokens = append(tokens, token{kind: tokNot, pos: i})
			case strings.HasSuffix(word, ":"):
				if j >= len(input) || input[j] != '(' {
					return nil, internalErrors.NewQuerySyntaxError(input, j, "missing term after field")
				}
				tokens = append(tokens, token{kind: tokField, text: word[:len(word)-1], pos: i})
			default:
				tokens = append(tokens, token{kind: tokWord, text: word, pos: i})
			}
			i = j
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(input)}), nil
}

// clause is a parsed sub-expression and the role it asks for in its parent.
// A nil node means the sub-expression analyzed to nothing.
type clause struct {
	node Node
	role Occurrence
}

// standalone returns a node whose match set is the meaning of c on its own.
func (c clause) standalone() Node {
	if c.node == nil {
		return nil
	}
	if c.role == MustNot {
		return NewBooleanGroup(Must, NewBooleanGroup(MustNot, c.node))
	}
	return c.node
}

// withRole returns n, wrapped if needed, so that it plays role inside a group of parent occurrence.
func withRole(n Node, role, parent Occurrence) Node {
	if g, ok := n.(*BooleanGroup); ok {
		if g.Occur == role && role != MustNot {
			return g
		}
		return NewBooleanGroup(role, g)
	}
	leafRole := Should
	if parent == Must {
		leafRole = Must
	}
	if role == leafRole {
		return n
	}
	return NewBooleanGroup(role, n)
}

// combine groups the non-empty clauses. The group is MUST when any clause is required.
func combine(items []clause) clause {
	live := items[:0:0]
	for _, c := range items {
		if c.node != nil {
			live = append(live, c)
		}
	}
	switch len(live) {
	case 0:
		return clause{role: Should}
	case 1:
		return live[0]
	}
	occur := Should
	for _, c := range live {
		if c.role == Must {
			occur = Must
		}
	}
	children := make([]Node, len(live))
	for i, c := range live {
		children[i] = withRole(c.node, c.role, occur)
	}
	return clause{node: NewBooleanGroup(occur, children...), role: Should}
}

type parser struct {
	query    string
	tokens   []token
	pos      int
	analyzer *analysis.Analyzer
}

// Parse parses a free-text boolean expression over defaultField into a query tree.
// Words are analyzed like indexed text; a word that analyzes to several terms
// requires all of them, and a word that analyzes to nothing is dropped.
// The result is always a *BooleanGroup; an empty expression yields an empty
// MUST group, which matches every document. Malformed input fails with a
// QuerySyntaxError carrying the byte offset of the problem.
func Parse(expr, defaultField string, analyzer *analysis.Analyzer) (Node, error) {
	if strings.TrimSpace(defaultField) == "" {
		return nil, internalErrors.NewValidationError("defaultField", "default field is required")
	}
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{query: expr, tokens: tokens, analyzer: analyzer}
	if p.peek().kind == tokEOF {
		return NewBooleanGroup(Must), nil
	}

	c, err := p.parseOr(defaultField)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return nil, p.errorAt(t.pos, "unbalanced closing parenthesis")
		}
		return nil, p.errorAt(t.pos, fmt.Sprintf("unexpected %s", t.kind))
	}

	switch {
	case c.node == nil:
		return NewBooleanGroup(Must), nil
	case c.role == MustNot:
		return NewBooleanGroup(MustNot, c.node), nil
	}
	if g, ok := c.node.(*BooleanGroup); ok {
		return g, nil
	}
	return NewBooleanGroup(Must, c.node), nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorAt(pos int, msg string) error {
	return internalErrors.NewQuerySyntaxError(p.query, pos, msg)
}

func (p *parser) parseOr(field string) (clause, error) {
	first, err := p.parseAnd(field)
	if err != nil {
		return clause{}, err
	}
	items := []clause{first}
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF, tokRParen:
			return combine(items), nil
		case tokOr:
			p.next()
		}
		c, err := p.parseAnd(field)
		if err != nil {
			return clause{}, err
		}
		items = append(items, c)
	}
}

func (p *parser) parseAnd(field string) (clause, error) {
	first, err := p.parseUnary(field)
	if err != nil {
		return clause{}, err
	}
	if p.peek().kind != tokAnd {
		return first, nil
	}
	items := []clause{first}
	for p.peek().kind == tokAnd {
		p.next()
		c, err := p.parseUnary(field)
		if err != nil {
			return clause{}, err
		}
		items = append(items, c)
	}
	for i := range items {
		if items[i].role == Should {
			items[i].role = Must
		}
	}
	return combine(items), nil
}

func (p *parser) parseUnary(field string) (clause, error) {
	switch p.peek().kind {
	case tokNot:
		p.next()
		c, err := p.parseUnary(field)
		if err != nil {
			return clause{}, err
		}
		return clause{node: c.standalone(), role: MustNot}, nil
	case tokPlus, tokMinus:
		role := Must
		if p.next().kind == tokMinus {
			role = MustNot
		}
		c, err := p.parsePrimary(field)
		if err != nil {
			return clause{}, err
		}
		return clause{node: c.standalone(), role: role}, nil
	}
	return p.parsePrimary(field)
}

func (p *parser) parsePrimary(field string) (clause, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		return p.parseGroup(t, field)
	case tokField:
		if t.text == "" {
			return clause{}, p.errorAt(t.pos, "missing field name")
		}
		return p.parseGroup(p.next(), t.text)
	case tokWord:
		f, word := field, t.text
		if i := strings.IndexByte(word, ':'); i >= 0 {
			if i == 0 {
				return clause{}, p.errorAt(t.pos, "missing field name")
			}
			f, word = word[:i], word[i+1:]
		}
		return clause{node: p.termNode(f, word), role: Should}, nil
	case tokEOF:
		return clause{}, p.errorAt(t.pos, "unexpected end of query")
	default:
		return clause{}, p.errorAt(t.pos, fmt.Sprintf("unexpected %s", t.kind))
	}
}

// parseGroup parses the body of a parenthesized group whose '(' is open.
// The group means the same inside a larger query as it does alone, so a
// lone "(NOT x)" is the complement of x rather than an exclusion on the parent.
func (p *parser) parseGroup(open token, field string) (clause, error) {
	c, err := p.parseOr(field)
	if err != nil {
		return clause{}, err
	}
	if p.next().kind != tokRParen {
		return clause{}, p.errorAt(open.pos, "missing closing parenthesis")
	}
	return clause{node: c.standalone(), role: Should}, nil
}

func (p *parser) termNode(field, word string) Node {
	terms := p.analyzer.Analyze(word)
	var nodes []Node
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		nodes = append(nodes, NewTermMatch(field, term))
	}
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return NewBooleanGroup(Must, nodes...)
	}
}
