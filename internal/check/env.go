package check

import "github.com/sunholo/irlang/internal/ir"

// env is one scope in the lexical stack: a label→variable-node map plus
// links to its neighbors (spec.md §4.7). Scopes are pooled and reused
// rather than reallocated on every binder, mirroring the teacher's
// push/clear/next-scope pattern: entering a binder group descends into
// (and clears) a reusable child scope, so sibling scopes like match arms
// each start from a clean slot without reallocating the map.
type env struct {
	prev, next *env
	vars       map[string]*ir.Node
}

func newEnv(prev *env) *env {
	return &env{prev: prev, vars: make(map[string]*ir.Node)}
}

// push returns the scope below cur, allocating it on first use. It does
// not clear the scope — callers that need a fresh child call clear()
// explicitly, so a scope can be reused across several inserts within one
// binder group (e.g. every variable a Record pattern introduces) without
// wiping earlier siblings.
func (cur *env) push() *env {
	if cur.next == nil {
		cur.next = newEnv(cur)
	}
	return cur.next
}

// clear empties cur's bindings, for reuse as a fresh peer scope.
func (cur *env) clear() {
	for k := range cur.vars {
		delete(cur.vars, k)
	}
}

// find walks outward from cur looking up name.
func (cur *env) find(name string) (*ir.Node, bool) {
	for e := cur; e != nil; e = e.prev {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// insert records v (which must be a labeled Var node) in cur's scope.
func (cur *env) insert(v *ir.Node) {
	cur.vars[v.Label.Name()] = v
}
