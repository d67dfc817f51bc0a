// Package match implements the structural matcher engine: compiled patterns
// are matched against AST nodes, threading an immutable Bindings value
// through the recursion. Matching is purely syntactic and deterministic;
// failure is an expected control result, not an error.
package match

import (
	"go/ast"
	"strings"
)

// metaPrefix marks identifiers that stand in for metavariables after pattern
// lexing. The prefix is chosen so it cannot collide with ordinary code.
const metaPrefix = "_gofex_mv_"

// MetaIdent returns the identifier spelling used to smuggle the metavariable
// name through the ordinary parser.
func MetaIdent(name string) string { return metaPrefix + name }

// MetaName reports whether id is a metavariable marker and returns the
// original metavariable name.
func MetaName(id *ast.Ident) (string, bool) {
	if strings.HasPrefix(id.Name, metaPrefix) {
		return id.Name[len(metaPrefix):], true
	}
	return "", false
}

// Matcher is a node-matching rule. Implementations are immutable once built
// and safe to reuse across concurrent searches over different files.
type Matcher interface {
	// Match attempts to match n, extending b. The input Bindings value is
	// never mutated; on success the returned Bindings carry every capture.
	Match(n ast.Node, b Bindings) (Bindings, bool)
}

// Exact matches a candidate with the same node kind, the same literal
// attributes, and recursively matching children, in order, with no slack.
// Metavariable markers inside the pattern subtree bind on first occurrence
// and require structural equality on repeats.
type Exact struct {
	Node ast.Node
}

func (m Exact) Match(n ast.Node, b Bindings) (Bindings, bool) {
	if b == nil {
		b = Bindings{}
	}
	return walk(m.Node, n, b, true)
}

// MetaVar binds any single subtree to a name; on a repeat occurrence the
// candidate must be structurally equal to the prior capture.
type MetaVar struct {
	Name string
}

func (m MetaVar) Match(n ast.Node, b Bindings) (Bindings, bool) {
	if b == nil {
		b = Bindings{}
	}
	return bindOne(m.Name, stripParens(n), b)
}

func bindOne(name string, n ast.Node, b Bindings) (Bindings, bool) {
	if isNil(n) {
		return b, false
	}
	if prev, ok := b[name]; ok {
		return b, Equal(prev, n)
	}
	return b.With(name, n), true
}

// Kind is the coarse syntactic category a Wildcard filters on.
type Kind uint8

const (
	KindAny Kind = iota
	KindExpr
	KindStmt
	KindDecl
)

// Wildcard matches one node of the given kinds without binding anything.
type Wildcard struct {
	Kinds []Kind
}

func (m Wildcard) Match(n ast.Node, b Bindings) (Bindings, bool) {
	if isNil(n) {
		return b, false
	}
	if len(m.Kinds) == 0 {
		return b, true
	}
	for _, k := range m.Kinds {
		switch k {
		case KindAny:
			return b, true
		case KindExpr:
			if _, ok := n.(ast.Expr); ok {
				return b, true
			}
		case KindStmt:
			if _, ok := n.(ast.Stmt); ok {
				return b, true
			}
		case KindDecl:
			if _, ok := n.(ast.Decl); ok {
				return b, true
			}
		}
	}
	return b, false
}

// AnyOf succeeds with the first sub-matcher that matches.
type AnyOf struct {
	Matchers []Matcher
}

func (m AnyOf) Match(n ast.Node, b Bindings) (Bindings, bool) {
	for _, sub := range m.Matchers {
		if out, ok := sub.Match(n, b); ok {
			return out, true
		}
	}
	return b, false
}

// AllOf succeeds when every sub-matcher matches, threading bindings through
// so later sub-matchers see earlier captures.
type AllOf struct {
	Matchers []Matcher
}

func (m AllOf) Match(n ast.Node, b Bindings) (Bindings, bool) {
	var ok bool
	for _, sub := range m.Matchers {
		b, ok = sub.Match(n, b)
		if !ok {
			return b, false
		}
	}
	return b, true
}

// Not succeeds when the sub-matcher fails; it never contributes bindings.
type Not struct {
	Matcher Matcher
}

func (m Not) Match(n ast.Node, b Bindings) (Bindings, bool) {
	if _, ok := m.Matcher.Match(n, b); ok {
		return b, false
	}
	return b, true
}

// Predicate is a side-constraint over the candidate node and the bindings
// accumulated so far, for checks the structural walk cannot express.
type Predicate struct {
	Name string
	Fn   func(n ast.Node, b Bindings) bool
}

func (m Predicate) Match(n ast.Node, b Bindings) (Bindings, bool) {
	return b, m.Fn(n, b)
}
