// Package search walks a parsed file in canonical pre-order and attempts
// every rule at every candidate node, producing substitutions lazily through
// a pull-based iterator. Matching is read-only; truncating the iterator
// early has no side effects.
package search

import (
	"go/ast"

	"github.com/gofex/gofex/internal/match"
	"github.com/gofex/gofex/internal/pattern"
	"github.com/gofex/gofex/internal/source"
	"github.com/gofex/gofex/internal/template"
	"github.com/gofex/gofex/internal/types"
)

// Rule is one compiled (pattern, template) pair with its metadata. Compiled
// rules are immutable and reusable across sequential or parallel searches
// over different files.
type Rule struct {
	Name       string
	Pattern    *pattern.Pattern
	Template   *template.Template
	Importance types.Importance
	Message    string
	URL        string
}

// Match is one successful matcher application: the node and span it covered,
// the final bindings, and the rule that produced it.
type Match struct {
	Rule     *Rule
	Node     ast.Node
	Span     source.Span
	Bindings match.Bindings
}

// Iter lazily yields substitutions from a pre-order traversal of one file.
// It is single-use; construct a fresh Iter to restart.
type Iter struct {
	file    *source.File
	rules   []Rule
	stack   []ast.Node
	pending []types.Substitution
	errs    []error
}

// NewIter starts a search over file with the given rules, attempted in
// registration order at every node.
func NewIter(file *source.File, rules []Rule) *Iter {
	return &Iter{
		file:  file,
		rules: rules,
		stack: []ast.Node{file.Root},
	}
}

// Next returns the next substitution in canonical source order. The second
// result is false once the traversal is exhausted.
func (it *Iter) Next() (types.Substitution, bool) {
	for {
		if len(it.pending) > 0 {
			sub := it.pending[0]
			it.pending = it.pending[1:]
			return sub, true
		}
		if len(it.stack) == 0 {
			return types.Substitution{}, false
		}
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		// Push children in reverse so they pop in source order; matches
		// may nest, so traversal always descends into a matched node.
		kids := children(n)
		for i := len(kids) - 1; i >= 0; i-- {
			it.stack = append(it.stack, kids[i])
		}

		for i := range it.rules {
			rule := &it.rules[i]
			m, ok := it.tryRule(rule, n)
			if !ok {
				continue
			}
			replacement, err := rule.Template.RenderAt(it.file, n, m.Bindings)
			if err != nil {
				it.errs = append(it.errs, err)
				continue
			}
			it.pending = append(it.pending, types.Substitution{
				Rule:        rule.Name,
				Span:        m.Span,
				Replacement: replacement,
				Importance:  rule.Importance,
				Message:     rule.Message,
				URL:         rule.URL,
			})
		}
	}
}

// Errs returns rendering failures encountered so far. They are diagnostics,
// not fatal: the traversal keeps going past them.
func (it *Iter) Errs() []error { return it.errs }

// All drains the iterator.
func (it *Iter) All() []types.Substitution {
	var subs []types.Substitution
	for {
		sub, ok := it.Next()
		if !ok {
			return subs
		}
		subs = append(subs, sub)
	}
}

func (it *Iter) tryRule(rule *Rule, n ast.Node) (Match, bool) {
	switch rule.Pattern.Kind {
	case pattern.KindExpr:
		if _, ok := n.(ast.Expr); !ok {
			return Match{}, false
		}
	case pattern.KindStmt:
		if _, ok := n.(ast.Stmt); !ok {
			return Match{}, false
		}
	}
	b, ok := rule.Pattern.Matcher.Match(n, nil)
	if !ok {
		return Match{}, false
	}
	return Match{
		Rule:     rule,
		Node:     n,
		Span:     it.file.SpanOf(n),
		Bindings: b,
	}, true
}

// children returns the direct child nodes of n in source order.
func children(n ast.Node) []ast.Node {
	var kids []ast.Node
	root := true
	ast.Inspect(n, func(c ast.Node) bool {
		if c == nil {
			return false
		}
		if root {
			root = false
			return true
		}
		kids = append(kids, c)
		return false
	})
	return kids
}
