// Package template renders compiled replacement templates against bindings.
// Bound subtrees are spliced as their original source text, and parentheses
// are inserted exactly where the splice would otherwise change structure:
// every substitution is first wrapped, the result is verified to re-parse
// into the template's own shape, and then each wrapping is dropped again
// when the relaxed text still parses to a structurally equal tree.
package template

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/gofex/gofex/internal/match"
	"github.com/gofex/gofex/internal/pattern"
	"github.com/gofex/gofex/internal/source"
)

// NoopStmt is spliced in when a statement template renders empty but the
// enclosing block must stay syntactically non-empty.
const NoopStmt = "{}"

// RewriteError reports a template that could not be rendered against the
// given bindings.
type RewriteError struct {
	Template string
	Msg      string
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("template %q: %s", e.Template, e.Msg)
}

// Template wraps a generatively-interpreted compiled pattern.
type Template struct {
	pat *pattern.Pattern
}

// New builds a Template from a compiled pattern.
func New(p *pattern.Pattern) *Template { return &Template{pat: p} }

// Compile compiles template text directly.
func Compile(text string) (*Template, error) {
	p, err := pattern.CompileTemplate(text)
	if err != nil {
		return nil, err
	}
	return &Template{pat: p}, nil
}

// IsEmpty reports whether rendering is a deletion.
func (t *Template) IsEmpty() bool { return t.pat.Empty }

// Kind returns the template's syntactic category.
func (t *Template) Kind() pattern.Kind { return t.pat.Kind }

// Render produces the replacement text for the bindings, with internal
// parenthesization resolved. file is the file the bindings were captured
// from; spliced text is its original source, interior comments included.
func (t *Template) Render(file *source.File, b match.Bindings) (string, error) {
	if t.pat.Empty {
		return "", nil
	}

	texts := make(map[string]string, len(b))
	parenable := make(map[string]bool, len(b))
	for _, name := range t.pat.Names() {
		node, ok := b[name]
		if !ok {
			return "", &RewriteError{Template: t.pat.Source, Msg: "metavariable $" + name + " is not bound"}
		}
		texts[name] = file.TextOf(node)
		_, isExpr := node.(ast.Expr)
		parenable[name] = isExpr
	}

	safe := t.splice(texts, parenable, nil)
	safeNode, err := t.reparse(safe)
	if err != nil {
		return "", &RewriteError{
			Template: t.pat.Source,
			Msg:      fmt.Sprintf("rendered text %q does not parse: %v", safe, err),
		}
	}

	// Round-trip check: the safe rendering must still match the template
	// interpreted as a pattern, with every capture intact.
	got, ok := t.pat.Matcher.Match(safeNode, nil)
	if !ok {
		return "", &RewriteError{
			Template: t.pat.Source,
			Msg:      fmt.Sprintf("rendered text %q no longer matches the template", safe),
		}
	}
	for name, want := range b {
		if bound, ok := got[name]; ok && !match.Equal(bound, want) {
			return "", &RewriteError{
				Template: t.pat.Source,
				Msg:      fmt.Sprintf("substitution corrupted metavariable $%s in %q", name, safe),
			}
		}
	}

	// Relax: drop each variable's parentheses when the bare rendering still
	// parses to the same structure.
	bare := make(map[string]bool, len(texts))
	for _, name := range t.pat.Names() {
		if !parenable[name] {
			continue
		}
		bare[name] = true
		candidate := t.splice(texts, parenable, bare)
		node, err := t.reparse(candidate)
		if err != nil || !match.Equal(node, safeNode) {
			bare[name] = false
		}
	}
	return t.splice(texts, parenable, bare), nil
}

// splice assembles the template text with each metavariable occurrence
// replaced, wrapping parenthesizable splices unless the variable is in bare.
func (t *Template) splice(texts map[string]string, parenable, bare map[string]bool) string {
	region := t.pat.NodeSpan
	body := t.pat.ParseText[region.Start:region.End]

	vars := make([]pattern.Var, len(t.pat.Vars))
	copy(vars, t.pat.Vars)
	sort.Slice(vars, func(i, j int) bool { return vars[i].Span.Start < vars[j].Span.Start })

	var out strings.Builder
	pos := 0
	for _, v := range vars {
		start := v.Span.Start - region.Start
		end := v.Span.End - region.Start
		out.WriteString(body[pos:start])
		txt := texts[v.Name]
		if parenable[v.Name] && !bare[v.Name] {
			out.WriteString("(")
			out.WriteString(txt)
			out.WriteString(")")
		} else {
			out.WriteString(txt)
		}
		pos = end
	}
	out.WriteString(body[pos:])
	return out.String()
}

// reparse parses rendered text back into a node of the template's kind.
func (t *Template) reparse(text string) (ast.Node, error) {
	if t.pat.Kind == pattern.KindExpr {
		return parser.ParseExprFrom(token.NewFileSet(), "rendered.go", text, 0)
	}
	return parseStmt(text)
}

func parseStmt(text string) (ast.Stmt, error) {
	wrapped := "package _gofex\nfunc _() {\n" + text + "\n}\n"
	file, err := parser.ParseFile(token.NewFileSet(), "rendered.go", wrapped, 0)
	if err != nil {
		return nil, err
	}
	body := file.Decls[len(file.Decls)-1].(*ast.FuncDecl).Body
	if len(body.List) != 1 {
		return nil, fmt.Errorf("want a single statement, got %d", len(body.List))
	}
	return body.List[0], nil
}

// RenderAt renders the template for a match rooted at node and decides
// whether the whole replacement must itself be parenthesized in its
// destination context. Deletions of statement-level matches that would
// empty their block render the no-op placeholder instead.
func (t *Template) RenderAt(file *source.File, node ast.Node, b match.Bindings) (string, error) {
	rendered, err := t.Render(file, b)
	if err != nil {
		return "", err
	}

	if rendered == "" {
		if soleStatement(file, node) {
			return NoopStmt, nil
		}
		return "", nil
	}
	if t.pat.Kind == pattern.KindStmt {
		return rendered, nil
	}
	if _, ok := node.(ast.Expr); !ok {
		return rendered, nil
	}

	path, _ := astutil.PathEnclosingInterval(file.Root, node.Pos(), node.End())
	if len(path) < 2 {
		return rendered, nil
	}
	// Skip over the match itself; the immediate parent decides the easy
	// cases before falling back to the reparse check.
	parent := path[1]
	if _, ok := parent.(*ast.ParenExpr); ok {
		// Destination is already parenthesized; never double up.
		return rendered, nil
	}
	if _, ok := parent.(*ast.ExprStmt); ok {
		return rendered, nil
	}

	encl := enclosingRegion(path)
	if encl == nil {
		return rendered, nil
	}
	span := file.SpanOf(encl)
	matchSpan := file.SpanOf(node)
	prefix := file.Text[span.Start:matchSpan.Start]
	suffix := file.Text[matchSpan.End:span.End]

	safeCtx, err := reparseRegion(encl, prefix+"("+rendered+")"+suffix)
	if err != nil {
		// Context is not independently parseable; wrap to be safe.
		return "(" + rendered + ")", nil
	}
	bareCtx, err := reparseRegion(encl, prefix+rendered+suffix)
	if err == nil && match.Equal(bareCtx, safeCtx) {
		return rendered, nil
	}
	return "(" + rendered + ")", nil
}

// soleStatement reports whether node is (the expression of) the only
// statement in its enclosing block.
func soleStatement(file *source.File, node ast.Node) bool {
	path, _ := astutil.PathEnclosingInterval(file.Root, node.Pos(), node.End())
	for _, p := range path {
		switch pp := p.(type) {
		case *ast.BlockStmt:
			return len(pp.List) == 1
		case *ast.CaseClause:
			return len(pp.Body) == 1
		case *ast.CommClause:
			return len(pp.Body) == 1
		case ast.Stmt, ast.Expr:
			// keep climbing
		default:
			return false
		}
	}
	return false
}

// enclosingRegion picks the nearest ancestor that can be reparsed on its
// own: a statement, or failing that a declaration.
func enclosingRegion(path []ast.Node) ast.Node {
	for _, p := range path[1:] {
		if _, ok := p.(ast.Stmt); ok {
			return p
		}
		if _, ok := p.(ast.Decl); ok {
			return p
		}
	}
	return nil
}

func reparseRegion(encl ast.Node, text string) (ast.Node, error) {
	if _, ok := encl.(ast.Stmt); ok {
		return parseStmt(text)
	}
	wrapped := "package _gofex\n" + text + "\n"
	file, err := parser.ParseFile(token.NewFileSet(), "rendered.go", wrapped, 0)
	if err != nil {
		return nil, err
	}
	if len(file.Decls) != 1 {
		return nil, fmt.Errorf("want a single declaration, got %d", len(file.Decls))
	}
	return file.Decls[0], nil
}
