// Package pattern compiles pattern and template strings into matcher trees.
// A pattern is ordinary Go expression or statement syntax where $name denotes
// a metavariable; the same compiler serves both interpretations, binding for
// patterns and generative for templates.
package pattern

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/gofex/gofex/internal/match"
	"github.com/gofex/gofex/internal/source"
)

// SyntaxError reports a pattern or template that failed to compile. It is
// fatal for that rule only; independent rules keep processing.
type SyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern %q: offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

// Kind is the syntactic category of a compiled pattern.
type Kind uint8

const (
	KindExpr Kind = iota + 1
	KindStmt
)

// Var is one metavariable occurrence, with its span into the parse text.
type Var struct {
	Name string
	Span source.Span
}

// Pattern is a compiled pattern or template. Immutable once compiled and
// safe to share across concurrent searches.
type Pattern struct {
	Source  string
	Kind    Kind
	Node    ast.Node
	Matcher match.Matcher
	Empty   bool

	// ParseText is the marker-rewritten text the Node positions refer to;
	// NodeSpan is the pattern's own span inside it, Vars the metavariable
	// occurrences in source order.
	ParseText string
	NodeSpan  source.Span
	Vars      []Var
}

const stmtWrapHeader = "package _gofex\nfunc _() {\n"

// Compile compiles a pattern string into a Pattern. A metavariable may
// appear only where a plain identifier would be grammatical on its own.
func Compile(text string) (*Pattern, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SyntaxError{Pattern: text, Offset: 0, Msg: "empty pattern"}
	}
	return compile(text)
}

// CompileTemplate compiles a template string. Unlike patterns, a template may
// be empty, which renders as a deletion.
func CompileTemplate(text string) (*Pattern, error) {
	if strings.TrimSpace(text) == "" {
		return &Pattern{Source: text, Empty: true}, nil
	}
	return compile(text)
}

func compile(text string) (*Pattern, error) {
	lexed, err := lexMeta(text)
	if err != nil {
		return nil, err
	}

	p := &Pattern{Source: text}

	fset := token.NewFileSet()
	if expr, err := parser.ParseExprFrom(fset, "pattern.go", lexed, parser.ParseComments); err == nil {
		p.Kind = KindExpr
		p.Node = expr
		p.ParseText = lexed
		tf := fset.File(expr.Pos())
		p.NodeSpan = source.Span{Start: tf.Offset(expr.Pos()), End: tf.Offset(expr.End())}
		if err := p.finish(tf); err != nil {
			return nil, err
		}
		return p, nil
	}

	// Not an expression: parse as a statement inside a function wrapper.
	wrapped := stmtWrapHeader + lexed + "\n}\n"
	fset = token.NewFileSet()
	file, err := parser.ParseFile(fset, "pattern.go", wrapped, parser.ParseComments)
	if err != nil {
		return nil, wrapParseError(text, err)
	}
	body := file.Decls[len(file.Decls)-1].(*ast.FuncDecl).Body
	if len(body.List) != 1 {
		return nil, &SyntaxError{
			Pattern: text,
			Offset:  0,
			Msg:     fmt.Sprintf("want a single expression or statement, got %d statements", len(body.List)),
		}
	}
	stmt := body.List[0]
	p.Kind = KindStmt
	p.Node = stmt
	p.ParseText = wrapped
	tf := fset.File(stmt.Pos())
	p.NodeSpan = source.Span{Start: tf.Offset(stmt.Pos()), End: tf.Offset(stmt.End())}
	if err := p.finish(tf); err != nil {
		return nil, err
	}
	return p, nil
}

// finish validates metavariable placement, collects occurrences, and builds
// the matcher.
func (p *Pattern) finish(tf *token.File) error {
	if err := p.collectVars(tf); err != nil {
		return err
	}
	p.Matcher = match.Exact{Node: p.Node}
	return nil
}

func (p *Pattern) collectVars(tf *token.File) error {
	var walkErr error
	record := func(id *ast.Ident) {
		name, ok := match.MetaName(id)
		if !ok {
			return
		}
		p.Vars = append(p.Vars, Var{
			Name: name,
			Span: source.Span{Start: tf.Offset(id.Pos()), End: tf.Offset(id.End())},
		})
	}
	fail := func(id *ast.Ident, what string) bool {
		name, ok := match.MetaName(id)
		if !ok {
			return false
		}
		if walkErr == nil {
			walkErr = &SyntaxError{
				Pattern: p.Source,
				Offset:  tf.Offset(id.Pos()) - p.NodeSpan.Start,
				Msg:     fmt.Sprintf("metavariable $%s not allowed as %s", name, what),
			}
		}
		return true
	}

	// First pass: identifier slots where the grammar admits only a fixed
	// name, never an arbitrary subtree. A metavariable there is an error;
	// a plain identifier there is excluded from recording.
	skip := make(map[*ast.Ident]bool)
	ast.Inspect(p.Node, func(n ast.Node) bool {
		switch nn := n.(type) {
		case *ast.SelectorExpr:
			fail(nn.Sel, "a selector field")
			skip[nn.Sel] = true
		case *ast.LabeledStmt:
			fail(nn.Label, "a statement label")
			skip[nn.Label] = true
		case *ast.BranchStmt:
			if nn.Label != nil {
				fail(nn.Label, "a branch label")
				skip[nn.Label] = true
			}
		case *ast.FuncDecl:
			fail(nn.Name, "a function name")
			skip[nn.Name] = true
		case *ast.TypeSpec:
			fail(nn.Name, "a type name")
			skip[nn.Name] = true
		case *ast.Field:
			for _, name := range nn.Names {
				fail(name, "a field name")
				skip[name] = true
			}
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	ast.Inspect(p.Node, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && !skip[id] {
			record(id)
		}
		return true
	})
	return nil
}

// Names returns the distinct metavariable names in first-occurrence order.
func (p *Pattern) Names() []string {
	seen := make(map[string]bool, len(p.Vars))
	var names []string
	for _, v := range p.Vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	return names
}

func wrapParseError(text string, err error) error {
	offset := 0
	msg := err.Error()
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		first := list[0]
		offset = first.Pos.Offset - len(stmtWrapHeader)
		if offset < 0 {
			offset = 0
		}
		msg = first.Msg
	}
	return &SyntaxError{Pattern: text, Offset: offset, Msg: msg}
}
