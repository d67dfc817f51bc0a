package report

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofex/gofex/internal/source"
	"github.com/gofex/gofex/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestFormatSubstitutions(t *testing.T) {
	src := "package p\n\nvar a = old(1)\n"
	subs := []types.Substitution{{
		Rule:        "modernize",
		Span:        source.Span{Start: 19, End: 25}, // old(1)
		Replacement: "new(1)",
		Message:     "old is deprecated",
		URL:         "https://example.com/modernize",
	}}

	got := FormatSubstitutions("a.go", src, subs)
	assert.Contains(t, got, "modernize")
	assert.Contains(t, got, "a.go:3:9")
	assert.Contains(t, got, "var a = old(1)")
	assert.Contains(t, got, "^^^^^^")
	assert.Contains(t, got, "old is deprecated")
	assert.Contains(t, got, "https://example.com/modernize")
}

func TestFormatMessages(t *testing.T) {
	subs := []types.Substitution{
		{Rule: "a", Message: "prefer the new form", Importance: types.ImportanceWarning, URL: "https://example.com/new"},
		{Rule: "b", Message: "cosmetic", Importance: types.ImportanceTrivial},
	}

	got := FormatMessages("a.go", subs)
	assert.Contains(t, got, "a.go")
	assert.Contains(t, got, "prefer the new form")
	assert.Contains(t, got, "https://example.com/new")
	assert.NotContains(t, got, "cosmetic", "trivial messages fold silently")

	assert.Empty(t, FormatMessages("a.go", nil))
	assert.Empty(t, FormatMessages("a.go", []types.Substitution{
		{Rule: "b", Message: "cosmetic", Importance: types.ImportanceTrivial},
	}))
}

func TestFormatDiff(t *testing.T) {
	got := FormatDiff("a.go", "var a = old(1)\n", "var a = new(1)\n")
	require.NotEmpty(t, got)
	assert.Contains(t, got, "a.go")
	assert.Contains(t, got, "old")
	assert.Contains(t, got, "new")

	assert.Empty(t, FormatDiff("a.go", "same\n", "same\n"))
}

func TestLineCol(t *testing.T) {
	src := "ab\ncd\nef"
	line, col := lineCol(src, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = lineCol(src, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	assert.Equal(t, "cd", lineAt(src, 2))
	assert.Equal(t, "", lineAt(src, 9))
}
