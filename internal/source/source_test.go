package source

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpan(t *testing.T) {
	t.Parallel()
	a := Span{Start: 2, End: 8}

	assert.Equal(t, 6, a.Len())
	assert.True(t, a.Contains(Span{Start: 3, End: 5}))
	assert.True(t, a.Contains(a))
	assert.False(t, a.Contains(Span{Start: 0, End: 4}))

	assert.True(t, a.Overlaps(Span{Start: 7, End: 12}))
	assert.False(t, a.Overlaps(Span{Start: 8, End: 12}), "touching spans do not overlap")
	assert.False(t, a.Overlaps(Span{Start: 0, End: 2}))
}

func TestParse(t *testing.T) {
	t.Parallel()
	file, err := Parse("ok.go", "package p\n\nvar x = f(y) // note\n")
	require.NoError(t, err)
	assert.Equal(t, "ok.go", file.Filename)
	require.NotNil(t, file.Root)

	var call *ast.CallExpr
	ast.Inspect(file.Root, func(n ast.Node) bool {
		if c, ok := n.(*ast.CallExpr); ok {
			call = c
		}
		return true
	})
	require.NotNil(t, call)
	assert.Equal(t, "f(y)", file.TextOf(call))

	span := file.SpanOf(call)
	assert.Equal(t, "f(y)", file.Slice(span))
}

func TestParseError(t *testing.T) {
	t.Parallel()
	_, err := Parse("bad.go", "package p\n\nfunc broken( {\n")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.go", perr.Filename)
	assert.NotNil(t, perr.Unwrap())
}
