// Package gofex performs syntax-aware search-and-replace over Go source.
//
// A rule pairs a pattern with a replacement template, both written in
// ordinary Go syntax where $name denotes a metavariable. Searching finds all
// structurally matching subtrees; rewriting splices rendered templates back
// into the original text, preserving everything outside the matched regions
// byte for byte and inserting parentheses exactly where needed to preserve
// meaning.
package gofex

import (
	"errors"
	"fmt"

	"github.com/gofex/gofex/internal/pattern"
	"github.com/gofex/gofex/internal/search"
	"github.com/gofex/gofex/internal/source"
	"github.com/gofex/gofex/internal/subst"
	"github.com/gofex/gofex/internal/template"
	"github.com/gofex/gofex/internal/types"
)

// Importance ranks substitutions for conflict tie-breaks and message
// composition.
type Importance = types.Importance

const (
	ImportanceTrivial = types.ImportanceTrivial
	ImportanceInfo    = types.ImportanceInfo
	ImportanceWarning = types.ImportanceWarning
	ImportanceError   = types.ImportanceError
)

// Substitution is one proposed edit produced by a search.
type Substitution = types.Substitution

// Rule is one (pattern, template) pair with its reporting metadata.
type Rule struct {
	Name       string
	Pattern    string
	Template   string
	Importance types.Importance
	Message    string
	URL        string
}

// RuleSet is an ordered sequence of rules plus the iteration policy.
type RuleSet struct {
	Rules []Rule
	// Iterate re-runs the whole set on its own output until no rule
	// matches or MaxIterations passes have been applied.
	Iterate       bool
	MaxIterations int
}

// Engine holds a compiled rule set. Compiled rules are immutable and safe to
// reuse across sequential or parallel searches over different files; the
// engine holds no per-file state.
type Engine struct {
	rules    []search.Rule
	ruleErrs []error
	iterate  bool
	maxIter  int
}

// NewEngine compiles a rule set. A rule that fails to compile is recorded in
// RuleErrors and skipped; independent rules keep working. The returned error
// is non-nil only when not a single rule compiled.
func NewEngine(rs RuleSet) (*Engine, error) {
	e := &Engine{iterate: rs.Iterate, maxIter: rs.MaxIterations}
	for i, r := range rs.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i+1)
		}
		pat, err := pattern.Compile(r.Pattern)
		if err != nil {
			e.ruleErrs = append(e.ruleErrs, fmt.Errorf("rule %s: %w", name, err))
			continue
		}
		tmpl, err := template.Compile(r.Template)
		if err != nil {
			e.ruleErrs = append(e.ruleErrs, fmt.Errorf("rule %s: %w", name, err))
			continue
		}
		e.rules = append(e.rules, search.Rule{
			Name:       name,
			Pattern:    pat,
			Template:   tmpl,
			Importance: r.Importance,
			Message:    r.Message,
			URL:        r.URL,
		})
	}
	if len(e.rules) == 0 {
		if len(e.ruleErrs) > 0 {
			return nil, errors.Join(e.ruleErrs...)
		}
		return nil, errors.New("empty rule set")
	}
	return e, nil
}

// RuleErrors returns the compilation failures of skipped rules.
func (e *Engine) RuleErrors() []error { return e.ruleErrs }

// FindIter parses src and returns a lazy iterator of candidate
// substitutions in canonical source order. Iteration is read-only; stopping
// early has no side effects.
func (e *Engine) FindIter(filename, src string) (*search.Iter, error) {
	file, err := source.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return search.NewIter(file, e.rules), nil
}

// RewriteSource rewrites src with the engine's rule set. In iterate mode it
// re-parses and re-applies until a fixpoint or the iteration cap; otherwise
// it applies exactly one pass. The result always reflects every completed
// pass, even when the returned error is an *subst.IterationLimitError.
func (e *Engine) RewriteSource(filename, src string) (*subst.Result, error) {
	find := func(text string) ([]types.Substitution, error) {
		it, err := e.FindIter(filename, text)
		if err != nil {
			return nil, err
		}
		return it.All(), nil
	}
	if e.iterate {
		return subst.Fixpoint(src, find, e.maxIter)
	}

	candidates, err := find(src)
	if err != nil {
		return nil, err
	}
	plan, dropped := subst.Resolve(candidates)
	text, err := subst.Apply(src, plan)
	if err != nil {
		return nil, err
	}
	return &subst.Result{
		Text:      text,
		Passes:    1,
		Applied:   plan,
		Dropped:   dropped,
		Converged: len(candidates) == 0,
	}, nil
}

// FindIter compiles the rule set and returns the lazy substitution sequence
// for src. This is the one-shot form of (*Engine).FindIter.
func FindIter(rs RuleSet, src string) (*search.Iter, error) {
	e, err := NewEngine(rs)
	if err != nil {
		return nil, err
	}
	return e.FindIter("src.go", src)
}

// ApplySubstitutions applies substitutions to src. Overlaps are resolved
// with the engine's usual importance tie-break first, so any candidate set
// is safe to pass. Applying no substitutions returns src unchanged.
func ApplySubstitutions(src string, subs []types.Substitution) (string, error) {
	plan, _ := subst.Resolve(subs)
	return subst.Apply(src, plan)
}

// RewriteSource compiles the rule set and rewrites src in one call.
func RewriteSource(rs RuleSet, src string) (string, error) {
	e, err := NewEngine(rs)
	if err != nil {
		return "", err
	}
	res, err := e.RewriteSource("src.go", src)
	if res != nil {
		// On iteration-cap overrun the text of the last completed pass
		// is still the best available output.
		return res.Text, err
	}
	return "", err
}
