package match

import (
	"go/ast"
	"sort"
)

// Bindings maps metavariable names to the subtrees they captured. A binding
// established during a match attempt is never overwritten, only checked, so
// the map is copied on every extension and may be shared freely between
// branches of the recursion.
type Bindings map[string]ast.Node

// With returns a copy of b extended with name bound to node.
func (b Bindings) With(name string, node ast.Node) Bindings {
	next := make(Bindings, len(b)+1)
	for k, v := range b {
		next[k] = v
	}
	next[name] = node
	return next
}

// Names returns the bound metavariable names in sorted order.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
