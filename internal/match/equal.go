package match

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"reflect"
)

// Equal reports structural equality of two subtrees: same node kinds and
// literal attributes recursively, ignoring source positions, comments, and
// redundant parentheses.
func Equal(a, b ast.Node) bool {
	_, ok := walk(a, b, nil, false)
	return ok
}

func isNil(n ast.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func stripParens(n ast.Node) ast.Node {
	for {
		p, ok := n.(*ast.ParenExpr)
		if !ok {
			return n
		}
		n = p.X
	}
}

// walk compares a pattern subtree against a candidate subtree in lockstep.
// When bindMeta is true, pattern identifiers carrying the metavariable marker
// bind (or check) the candidate subtree instead of comparing identifier text.
// The returned Bindings extend b; b itself is never mutated.
func walk(p, n ast.Node, b Bindings, bindMeta bool) (Bindings, bool) {
	if isNil(p) || isNil(n) {
		return b, isNil(p) == isNil(n)
	}
	p = stripParens(p)
	n = stripParens(n)

	if bindMeta {
		if id, ok := p.(*ast.Ident); ok {
			if name, ok := MetaName(id); ok {
				return bindOne(name, n, b)
			}
		}
		// A metavariable standing alone as a statement matches any
		// expression statement, binding the expression.
		if es, ok := p.(*ast.ExprStmt); ok {
			if id, ok := stripParens(es.X).(*ast.Ident); ok {
				if name, ok := MetaName(id); ok {
					if target, ok := n.(*ast.ExprStmt); ok {
						return bindOne(name, stripParens(target.X), b)
					}
					return b, false
				}
			}
		}
	}

	switch pp := p.(type) {
	case *ast.Ident:
		nn, ok := n.(*ast.Ident)
		return b, ok && pp.Name == nn.Name

	case *ast.BasicLit:
		nn, ok := n.(*ast.BasicLit)
		return b, ok && pp.Kind == nn.Kind && pp.Value == nn.Value

	case *ast.BinaryExpr:
		nn, ok := n.(*ast.BinaryExpr)
		if !ok || pp.Op != nn.Op {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.X, nn.X}, pair{pp.Y, nn.Y})

	case *ast.UnaryExpr:
		nn, ok := n.(*ast.UnaryExpr)
		if !ok || pp.Op != nn.Op {
			return b, false
		}
		return walk(pp.X, nn.X, b, bindMeta)

	case *ast.StarExpr:
		nn, ok := n.(*ast.StarExpr)
		if !ok {
			return b, false
		}
		return walk(pp.X, nn.X, b, bindMeta)

	case *ast.CallExpr:
		nn, ok := n.(*ast.CallExpr)
		if !ok || len(pp.Args) != len(nn.Args) ||
			pp.Ellipsis.IsValid() != nn.Ellipsis.IsValid() {
			return b, false
		}
		b, ok = walk(pp.Fun, nn.Fun, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Args, nn.Args, b, bindMeta)

	case *ast.SelectorExpr:
		nn, ok := n.(*ast.SelectorExpr)
		if !ok || pp.Sel.Name != nn.Sel.Name {
			return b, false
		}
		return walk(pp.X, nn.X, b, bindMeta)

	case *ast.IndexExpr:
		nn, ok := n.(*ast.IndexExpr)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.X, nn.X}, pair{pp.Index, nn.Index})

	case *ast.IndexListExpr:
		nn, ok := n.(*ast.IndexListExpr)
		if !ok {
			return b, false
		}
		b, ok = walk(pp.X, nn.X, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Indices, nn.Indices, b, bindMeta)

	case *ast.SliceExpr:
		nn, ok := n.(*ast.SliceExpr)
		if !ok || pp.Slice3 != nn.Slice3 {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.X, nn.X}, pair{pp.Low, nn.Low},
			pair{pp.High, nn.High}, pair{pp.Max, nn.Max})

	case *ast.TypeAssertExpr:
		nn, ok := n.(*ast.TypeAssertExpr)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.X, nn.X}, pair{pp.Type, nn.Type})

	case *ast.KeyValueExpr:
		nn, ok := n.(*ast.KeyValueExpr)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.Key, nn.Key}, pair{pp.Value, nn.Value})

	case *ast.CompositeLit:
		nn, ok := n.(*ast.CompositeLit)
		if !ok {
			return b, false
		}
		b, ok = walk(pp.Type, nn.Type, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Elts, nn.Elts, b, bindMeta)

	case *ast.FuncLit:
		nn, ok := n.(*ast.FuncLit)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.Type, nn.Type}, pair{pp.Body, nn.Body})

	case *ast.Ellipsis:
		nn, ok := n.(*ast.Ellipsis)
		if !ok {
			return b, false
		}
		return walk(pp.Elt, nn.Elt, b, bindMeta)

	case *ast.ArrayType:
		nn, ok := n.(*ast.ArrayType)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.Len, nn.Len}, pair{pp.Elt, nn.Elt})

	case *ast.MapType:
		nn, ok := n.(*ast.MapType)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.Key, nn.Key}, pair{pp.Value, nn.Value})

	case *ast.ChanType:
		nn, ok := n.(*ast.ChanType)
		if !ok || pp.Dir != nn.Dir {
			return b, false
		}
		return walk(pp.Value, nn.Value, b, bindMeta)

	case *ast.StructType:
		nn, ok := n.(*ast.StructType)
		if !ok {
			return b, false
		}
		return walkFieldList(pp.Fields, nn.Fields, b, bindMeta)

	case *ast.InterfaceType:
		nn, ok := n.(*ast.InterfaceType)
		if !ok {
			return b, false
		}
		return walkFieldList(pp.Methods, nn.Methods, b, bindMeta)

	case *ast.FuncType:
		nn, ok := n.(*ast.FuncType)
		if !ok {
			return b, false
		}
		b, ok = walkFieldList(pp.Params, nn.Params, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkFieldList(pp.Results, nn.Results, b, bindMeta)

	case *ast.ExprStmt:
		nn, ok := n.(*ast.ExprStmt)
		if !ok {
			return b, false
		}
		return walk(pp.X, nn.X, b, bindMeta)

	case *ast.AssignStmt:
		nn, ok := n.(*ast.AssignStmt)
		if !ok || pp.Tok != nn.Tok || len(pp.Lhs) != len(nn.Lhs) {
			return b, false
		}
		b, ok = walkExprs(pp.Lhs, nn.Lhs, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Rhs, nn.Rhs, b, bindMeta)

	case *ast.IncDecStmt:
		nn, ok := n.(*ast.IncDecStmt)
		if !ok || pp.Tok != nn.Tok {
			return b, false
		}
		return walk(pp.X, nn.X, b, bindMeta)

	case *ast.SendStmt:
		nn, ok := n.(*ast.SendStmt)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta, pair{pp.Chan, nn.Chan}, pair{pp.Value, nn.Value})

	case *ast.ReturnStmt:
		nn, ok := n.(*ast.ReturnStmt)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Results, nn.Results, b, bindMeta)

	case *ast.BranchStmt:
		nn, ok := n.(*ast.BranchStmt)
		if !ok || pp.Tok != nn.Tok {
			return b, false
		}
		return walk(pp.Label, nn.Label, b, bindMeta)

	case *ast.LabeledStmt:
		nn, ok := n.(*ast.LabeledStmt)
		if !ok || pp.Label.Name != nn.Label.Name {
			return b, false
		}
		return walk(pp.Stmt, nn.Stmt, b, bindMeta)

	case *ast.GoStmt:
		nn, ok := n.(*ast.GoStmt)
		if !ok {
			return b, false
		}
		return walk(pp.Call, nn.Call, b, bindMeta)

	case *ast.DeferStmt:
		nn, ok := n.(*ast.DeferStmt)
		if !ok {
			return b, false
		}
		return walk(pp.Call, nn.Call, b, bindMeta)

	case *ast.BlockStmt:
		nn, ok := n.(*ast.BlockStmt)
		if !ok {
			return b, false
		}
		return walkStmts(pp.List, nn.List, b, bindMeta)

	case *ast.IfStmt:
		nn, ok := n.(*ast.IfStmt)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.Init, nn.Init}, pair{pp.Cond, nn.Cond},
			pair{pp.Body, nn.Body}, pair{pp.Else, nn.Else})

	case *ast.ForStmt:
		nn, ok := n.(*ast.ForStmt)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.Init, nn.Init}, pair{pp.Cond, nn.Cond},
			pair{pp.Post, nn.Post}, pair{pp.Body, nn.Body})

	case *ast.RangeStmt:
		nn, ok := n.(*ast.RangeStmt)
		if !ok || pp.Tok != nn.Tok {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.Key, nn.Key}, pair{pp.Value, nn.Value},
			pair{pp.X, nn.X}, pair{pp.Body, nn.Body})

	case *ast.SwitchStmt:
		nn, ok := n.(*ast.SwitchStmt)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.Init, nn.Init}, pair{pp.Tag, nn.Tag}, pair{pp.Body, nn.Body})

	case *ast.TypeSwitchStmt:
		nn, ok := n.(*ast.TypeSwitchStmt)
		if !ok {
			return b, false
		}
		return walkAll(b, bindMeta,
			pair{pp.Init, nn.Init}, pair{pp.Assign, nn.Assign}, pair{pp.Body, nn.Body})

	case *ast.CaseClause:
		nn, ok := n.(*ast.CaseClause)
		if !ok {
			return b, false
		}
		b, ok = walkExprs(pp.List, nn.List, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkStmts(pp.Body, nn.Body, b, bindMeta)

	case *ast.SelectStmt:
		nn, ok := n.(*ast.SelectStmt)
		if !ok {
			return b, false
		}
		return walk(pp.Body, nn.Body, b, bindMeta)

	case *ast.CommClause:
		nn, ok := n.(*ast.CommClause)
		if !ok {
			return b, false
		}
		b, ok = walk(pp.Comm, nn.Comm, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkStmts(pp.Body, nn.Body, b, bindMeta)

	case *ast.EmptyStmt:
		_, ok := n.(*ast.EmptyStmt)
		return b, ok

	case *ast.DeclStmt:
		nn, ok := n.(*ast.DeclStmt)
		if !ok {
			return b, false
		}
		return walk(pp.Decl, nn.Decl, b, bindMeta)

	case *ast.GenDecl:
		nn, ok := n.(*ast.GenDecl)
		if !ok || pp.Tok != nn.Tok || len(pp.Specs) != len(nn.Specs) {
			return b, false
		}
		for i := range pp.Specs {
			b, ok = walk(pp.Specs[i], nn.Specs[i], b, bindMeta)
			if !ok {
				return b, false
			}
		}
		return b, true

	case *ast.ValueSpec:
		nn, ok := n.(*ast.ValueSpec)
		if !ok || len(pp.Names) != len(nn.Names) {
			return b, false
		}
		for i := range pp.Names {
			b, ok = walk(pp.Names[i], nn.Names[i], b, bindMeta)
			if !ok {
				return b, false
			}
		}
		b, ok = walk(pp.Type, nn.Type, b, bindMeta)
		if !ok {
			return b, false
		}
		return walkExprs(pp.Values, nn.Values, b, bindMeta)

	case *ast.TypeSpec:
		nn, ok := n.(*ast.TypeSpec)
		if !ok || pp.Name.Name != nn.Name.Name {
			return b, false
		}
		return walk(pp.Type, nn.Type, b, bindMeta)

	default:
		// Node kinds with no dedicated case (imports, whole files, comments)
		// fall back to a canonical-print comparison.
		return b, printEqual(p, n)
	}
}

type pair struct{ p, n ast.Node }

func walkAll(b Bindings, bindMeta bool, pairs ...pair) (Bindings, bool) {
	var ok bool
	for _, pr := range pairs {
		b, ok = walk(pr.p, pr.n, b, bindMeta)
		if !ok {
			return b, false
		}
	}
	return b, true
}

func walkExprs(p, n []ast.Expr, b Bindings, bindMeta bool) (Bindings, bool) {
	if len(p) != len(n) {
		return b, false
	}
	var ok bool
	for i := range p {
		b, ok = walk(p[i], n[i], b, bindMeta)
		if !ok {
			return b, false
		}
	}
	return b, true
}

func walkStmts(p, n []ast.Stmt, b Bindings, bindMeta bool) (Bindings, bool) {
	if len(p) != len(n) {
		return b, false
	}
	var ok bool
	for i := range p {
		b, ok = walk(p[i], n[i], b, bindMeta)
		if !ok {
			return b, false
		}
	}
	return b, true
}

func walkFieldList(p, n *ast.FieldList, b Bindings, bindMeta bool) (Bindings, bool) {
	if (p == nil) != (n == nil) {
		return b, false
	}
	if p == nil {
		return b, true
	}
	if len(p.List) != len(n.List) {
		return b, false
	}
	var ok bool
	for i := range p.List {
		pf, nf := p.List[i], n.List[i]
		if len(pf.Names) != len(nf.Names) {
			return b, false
		}
		for j := range pf.Names {
			if pf.Names[j].Name != nf.Names[j].Name {
				return b, false
			}
		}
		b, ok = walk(pf.Type, nf.Type, b, bindMeta)
		if !ok {
			return b, false
		}
	}
	return b, true
}

func printEqual(a, b ast.Node) bool {
	return printNode(a) == printNode(b)
}

func printNode(n ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), n); err != nil {
		return ""
	}
	return buf.String()
}
