package match

import (
	"go/ast"
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	e, err := parser.ParseExpr(text)
	require.NoError(t, err)
	return e
}

// metaExpr parses a pattern expression where metavariables are already
// spelled in marker form.
func metaExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	return parseExpr(t, text)
}

func TestExactMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		pattern   string
		candidate string
		wantOK    bool
		wantBound map[string]string
	}{
		{
			name:      "literal match",
			pattern:   "a + b",
			candidate: "a + b",
			wantOK:    true,
		},
		{
			name:      "literal mismatch",
			pattern:   "a + b",
			candidate: "a - b",
			wantOK:    false,
		},
		{
			name:      "metavariable binds operand",
			pattern:   "_gofex_mv_x + 1",
			candidate: "f(y) + 1",
			wantOK:    true,
			wantBound: map[string]string{"x": "f(y)"},
		},
		{
			name:      "repeated metavariable equal operands",
			pattern:   "_gofex_mv_a == _gofex_mv_a",
			candidate: "n.Len() == n.Len()",
			wantOK:    true,
			wantBound: map[string]string{"a": "n.Len()"},
		},
		{
			name:      "repeated metavariable unequal operands",
			pattern:   "_gofex_mv_a == _gofex_mv_a",
			candidate: "x == y",
			wantOK:    false,
		},
		{
			name:      "repeated metavariable ignores redundant parens",
			pattern:   "_gofex_mv_a == _gofex_mv_a",
			candidate: "(x + y) == (x + y)",
			wantOK:    true,
		},
		{
			name:      "no slack in call arguments",
			pattern:   "f(_gofex_mv_x)",
			candidate: "f(a, b)",
			wantOK:    false,
		},
		{
			name:      "composite literal order matters",
			pattern:   "T{_gofex_mv_a, _gofex_mv_b}",
			candidate: "T{x, y}",
			wantOK:    true,
			wantBound: map[string]string{"a": "x", "b": "y"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := Exact{Node: metaExpr(t, tt.pattern)}
			b, ok := m.Match(parseExpr(t, tt.candidate), nil)
			require.Equal(t, tt.wantOK, ok)
			for name, want := range tt.wantBound {
				node, bound := b[name]
				require.True(t, bound, "expected binding for %s", name)
				assert.True(t, Equal(node, parseExpr(t, want)),
					"binding %s: want %s", name, want)
			}
		})
	}
}

func TestExactMatchDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	m := Exact{Node: metaExpr(t, "_gofex_mv_x + _gofex_mv_y")}
	base := Bindings{}
	out, ok := m.Match(parseExpr(t, "a + b"), base)
	require.True(t, ok)
	assert.Empty(t, base)
	assert.Len(t, out, 2)
}

func TestMetaVar(t *testing.T) {
	t.Parallel()
	n := parseExpr(t, "a.bc()")

	b, ok := MetaVar{Name: "v"}.Match(n, nil)
	require.True(t, ok)
	require.Contains(t, b, "v")

	// Repeat against an equal subtree succeeds; an unequal one fails.
	_, ok = MetaVar{Name: "v"}.Match(parseExpr(t, "a.bc()"), b)
	assert.True(t, ok)
	_, ok = MetaVar{Name: "v"}.Match(parseExpr(t, "other"), b)
	assert.False(t, ok)
}

func TestWildcard(t *testing.T) {
	t.Parallel()
	expr := parseExpr(t, "x + 1")

	_, ok := Wildcard{}.Match(expr, nil)
	assert.True(t, ok)
	_, ok = Wildcard{Kinds: []Kind{KindExpr}}.Match(expr, nil)
	assert.True(t, ok)
	_, ok = Wildcard{Kinds: []Kind{KindStmt}}.Match(expr, nil)
	assert.False(t, ok)
	_, ok = Wildcard{Kinds: []Kind{KindStmt, KindExpr}}.Match(expr, nil)
	assert.True(t, ok)
}

func TestCombinators(t *testing.T) {
	t.Parallel()
	expr := parseExpr(t, "x")
	lit := parseExpr(t, "42")

	isIdent := Predicate{Name: "is-ident", Fn: func(n ast.Node, _ Bindings) bool {
		_, ok := n.(*ast.Ident)
		return ok
	}}

	_, ok := isIdent.Match(expr, nil)
	assert.True(t, ok)
	_, ok = isIdent.Match(lit, nil)
	assert.False(t, ok)

	any := AnyOf{Matchers: []Matcher{isIdent, Exact{Node: parseExpr(t, "42")}}}
	_, ok = any.Match(expr, nil)
	assert.True(t, ok)
	_, ok = any.Match(lit, nil)
	assert.True(t, ok)
	_, ok = any.Match(parseExpr(t, "1 + 2"), nil)
	assert.False(t, ok)

	all := AllOf{Matchers: []Matcher{Wildcard{Kinds: []Kind{KindExpr}}, isIdent}}
	_, ok = all.Match(expr, nil)
	assert.True(t, ok)
	_, ok = all.Match(lit, nil)
	assert.False(t, ok)

	_, ok = Not{Matcher: isIdent}.Match(lit, nil)
	assert.True(t, ok)
	_, ok = Not{Matcher: isIdent}.Match(expr, nil)
	assert.False(t, ok)
}

func TestMetaName(t *testing.T) {
	t.Parallel()
	name, ok := MetaName(ast.NewIdent(MetaIdent("foo")))
	require.True(t, ok)
	assert.Equal(t, "foo", name)

	_, ok = MetaName(ast.NewIdent("foo"))
	assert.False(t, ok)
}
