// Package report renders search results and rewrite diffs for terminals.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/gofex/gofex/internal/subst"
	"github.com/gofex/gofex/internal/types"
)

var (
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	insertStyle  = color.New(color.FgGreen)
	deleteStyle  = color.New(color.FgRed, color.CrossedOut)
)

// FormatSubstitutions renders each substitution with its location, the
// matched source line, and an arrow marking the matched span.
func FormatSubstitutions(path, src string, subs []types.Substitution) string {
	var b strings.Builder
	for _, sub := range subs {
		line, col := lineCol(src, sub.Span.Start)
		_, endCol := lineCol(src, sub.Span.End)

		b.WriteString(ruleStyle.Sprint(sub.Rule))
		b.WriteString(lineStyle.Sprint(" --> "))
		b.WriteString(fileStyle.Sprintf("%s:%d:%d", path, line, col))
		b.WriteString("\n")

		text := lineAt(src, line)
		prefix := fmt.Sprintf("%d | ", line)
		b.WriteString(lineStyle.Sprint(prefix))
		b.WriteString(text)
		b.WriteString("\n")

		width := endCol - col
		if width < 1 || endCol <= col {
			width = 1
		}
		if col+width-1 > len(text) {
			width = len(text) - col + 1
		}
		b.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		b.WriteString(messageStyle.Sprint(strings.Repeat("^", width)))
		b.WriteString("\n")

		if sub.Message != "" {
			b.WriteString(messageStyle.Sprint(sub.Message))
			b.WriteString("\n")
		}
		if sub.URL != "" {
			b.WriteString(lineStyle.Sprint(sub.URL))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatMessages renders the composed rule messages of a file's applied
// substitutions. Trivial substitutions fold silently; an all-trivial plan
// renders empty.
func FormatMessages(path string, subs []types.Substitution) string {
	msg := subst.ComposeMessage(subs)
	if msg == "" {
		return ""
	}
	return fileStyle.Sprint(path) + ":\n" + msg + "\n"
}

// FormatDiff renders a colorized inline diff from the original to the
// rewritten text.
func FormatDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var b strings.Builder
	b.WriteString(fileStyle.Sprint(path))
	b.WriteString("\n")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Sprint(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Sprint(d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// lineCol converts a byte offset to 1-based line and column numbers.
func lineCol(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	line := 1 + strings.Count(src[:offset], "\n")
	lastNL := strings.LastIndexByte(src[:offset], '\n')
	return line, offset - lastNL
}

func lineAt(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
