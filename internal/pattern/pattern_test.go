package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		text      string
		wantKind  Kind
		wantNames []string
	}{
		{
			name:      "binary expression",
			text:      "$a + $b",
			wantKind:  KindExpr,
			wantNames: []string{"a", "b"},
		},
		{
			name:      "call with selector base",
			text:      "$obj.Method($arg)",
			wantKind:  KindExpr,
			wantNames: []string{"obj", "arg"},
		},
		{
			name:      "repeated metavariable listed once",
			text:      "$a == $a",
			wantKind:  KindExpr,
			wantNames: []string{"a"},
		},
		{
			name:      "no metavariables",
			text:      "len(xs)",
			wantKind:  KindExpr,
			wantNames: nil,
		},
		{
			name:      "short variable declaration",
			text:      "$x := $y",
			wantKind:  KindStmt,
			wantNames: []string{"x", "y"},
		},
		{
			name:      "return statement",
			text:      "return $v, nil",
			wantKind:  KindStmt,
			wantNames: []string{"v"},
		},
		{
			name:      "if statement",
			text:      "if $cond { return $v }",
			wantKind:  KindStmt,
			wantNames: []string{"cond", "v"},
		},
		{
			name:      "dollar inside string literal is not a metavariable",
			text:      `x + "$a"`,
			wantKind:  KindExpr,
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Compile(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.wantNames, p.Names())
			assert.False(t, p.Empty)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "blank", text: "   \t"},
		{name: "dollar without name", text: "$ + 1"},
		{name: "unbalanced parens", text: "f($a"},
		{name: "two statements", text: "x := 1; y := 2"},
		{name: "metavariable as selector field", text: "pkg.$field"},
		{name: "metavariable as branch label", text: "goto $l"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(tt.text)
			require.Error(t, err)
			var serr *SyntaxError
			assert.ErrorAs(t, err, &serr)
		})
	}
}

func TestCompileTemplateEmpty(t *testing.T) {
	t.Parallel()
	p, err := CompileTemplate("")
	require.NoError(t, err)
	assert.True(t, p.Empty)

	_, err = Compile("")
	assert.Error(t, err)
}

func TestVarSpansSliceParseText(t *testing.T) {
	t.Parallel()
	p, err := Compile("$lhs = $rhs")
	require.NoError(t, err)
	require.Len(t, p.Vars, 2)
	for _, v := range p.Vars {
		got := p.ParseText[v.Span.Start:v.Span.End]
		assert.Contains(t, got, v.Name)
	}
}
