package ir

import "github.com/sunholo/irlang/internal/vars"

// This file implements C4 (spec.md §4.4): capture-safe simultaneous
// substitution. Because every bound Var has a globally unique identity
// (spec.md §3 invariant 5, "no shadowing"), substitution never needs to
// rename a binder to avoid capture — it only needs to know which
// variables are being replaced, and can skip any subtree whose free-
// variable set is disjoint from that set.
//
// The walk is iterative (an explicit work stack), not naively recursive,
// because IR depth can approach source-line count (spec.md §4.4): a
// recursive implementation would blow the Go goroutine stack on deeply
// nested lets. Each node is visited at most once per call thanks to the
// per-call memo map keyed by node identity.

// ReplaceVar replaces every free occurrence of from with to in n.
func ReplaceVar(m *Module, n *Node, from *Node, to *Node) *Node {
	return ReplaceVars(m, n, []*Node{from}, []*Node{to})
}

// ReplaceVars replaces each vars[i] with vals[i] simultaneously in n
// (spec.md §4.4, §6.7: replace_vars). Precondition: len(vars) ==
// len(vals).
func ReplaceVars(m *Module, n *Node, from []*Node, to []*Node) *Node {
	if len(from) == 0 {
		return n
	}
	target := m.vars.New(varElems(from))
	if target.IsEmpty() {
		return n
	}
	sub := &substitution{m: m, from: from, to: to, target: target, memo: make(map[*Node]*Node)}
	return sub.replace(n)
}

type substitution struct {
	m      *Module
	from   []*Node
	to     []*Node
	target *vars.Set
	memo   map[*Node]*Node
}

func (s *substitution) lookup(v *Node) (*Node, bool) {
	for i, f := range s.from {
		if f == v {
			return s.to[i], true
		}
	}
	return nil, false
}

// frame is one entry of the explicit work stack: a node awaiting its
// children (expanded == false) or awaiting its own rebuild now that every
// child is memoized (expanded == true).
type frame struct {
	n        *Node
	expanded bool
}

// replace walks n, rebuilding parents along the path of dependence. The
// free-variable-set intersection test lets whole subtrees short-circuit to
// themselves unchanged (spec.md §4.4 step 1). The walk runs over an
// explicit stack of frames rather than the call stack: a child is pushed
// the first time its parent is visited, and the parent is only rebuilt
// once popped a second time, by which point every child is already in
// s.memo. This is a standard iterative post-order DAG traversal — nodes
// are a DAG, not a tree, so the memo also prevents repeated work on shared
// subterms.
func (s *substitution) replace(root *Node) *Node {
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		n := top.n

		if _, ok := s.memo[n]; ok {
			stack = stack[:len(stack)-1]
			continue
		}
		if n.FreeVars.IsEmpty() || !vars.ContainsAny(n.FreeVars, s.target) {
			s.memo[n] = n
			stack = stack[:len(stack)-1]
			continue
		}
		if !top.expanded {
			stack[len(stack)-1].expanded = true
			for _, c := range s.children(n) {
				if _, ok := s.memo[c]; !ok {
					stack = append(stack, frame{n: c})
				}
			}
			continue
		}

		stack = stack[:len(stack)-1]
		s.memo[n] = s.rebuild(n)
	}
	return s.memo[root]
}

// children lists exactly the subterms s.replace recurses into for n's tag,
// mirroring rebuild's own per-tag case so the two stay in lockstep.
func (s *substitution) children(n *Node) []*Node {
	switch n.Tag {
	case TagVar:
		return nil
	case TagProd, TagSum, TagRecord:
		return append(append([]*Node{}, n.Args...), n.Type)
	case TagExt:
		return []*Node{n.Val, n.Type}
	case TagIns:
		return []*Node{n.Val, n.Elem}
	case TagInj:
		return []*Node{n.Arg, n.Type}
	case TagArrow:
		if IsUnboundVar(n.Var) {
			return []*Node{n.Codom}
		}
		return []*Node{n.Var, n.Codom}
	case TagAbs:
		if IsUnboundVar(n.Var) {
			return []*Node{n.Body}
		}
		return []*Node{n.Var, n.Body}
	case TagApp:
		return []*Node{n.Left, n.Right, n.Type}
	case TagLet, TagLetrec:
		children := append(append([]*Node{}, n.Vars...), n.Vals...)
		return append(children, n.Body)
	case TagMatch:
		children := append([]*Node{n.Arg}, n.Pats...)
		return append(children, n.Vals...)
	default:
		return nil
	}
}

// get returns n's already-computed replacement; every node reachable via
// children has been memoized by the time rebuild runs.
func (s *substitution) get(n *Node) *Node {
	return s.memo[n]
}

func (s *substitution) getSlice(ns []*Node) []*Node {
	out := make([]*Node, len(ns))
	changed := false
	for i, n := range ns {
		r := s.get(n)
		out[i] = r
		if r != n {
			changed = true
		}
	}
	if !changed {
		return ns
	}
	return out
}

// rebuild reconstructs n from its already-memoized children, the
// non-recursive counterpart of the switch replace used to walk explicitly.
func (s *substitution) rebuild(n *Node) *Node {
	switch n.Tag {
	case TagVar:
		if to, ok := s.lookup(n); ok {
			return to
		}
		return n
	case TagProd, TagSum, TagRecord:
		args := s.getSlice(n.Args)
		typ := s.get(n.Type)
		return rebuildLike(s.m, n, typ, nodeChildren{args: args})
	case TagExt:
		val := s.get(n.Val)
		typ := s.get(n.Type)
		return rebuildLike(s.m, n, typ, nodeChildren{val: val})
	case TagIns:
		val := s.get(n.Val)
		elem := s.get(n.Elem)
		return rebuildLike(s.m, n, n.Type, nodeChildren{val: val, elem: elem})
	case TagInj:
		arg := s.get(n.Arg)
		typ := s.get(n.Type)
		return rebuildLike(s.m, n, typ, nodeChildren{arg: arg})
	case TagArrow:
		codom := s.get(n.Codom)
		v := n.Var
		if !IsUnboundVar(v) {
			v = s.get(v)
		}
		return rebuildLike(s.m, n, nil, nodeChildren{v: v, codom: codom})
	case TagAbs:
		body := s.get(n.Body)
		v := n.Var
		if !IsUnboundVar(v) {
			v = s.get(v)
		}
		return rebuildLike(s.m, n, nil, nodeChildren{v: v, body: body})
	case TagApp:
		left := s.get(n.Left)
		right := s.get(n.Right)
		typ := s.get(n.Type)
		return rebuildLike(s.m, n, typ, nodeChildren{left: left, right: right})
	case TagLet, TagLetrec:
		newVars := s.getSlice(n.Vars)
		newVals := s.getSlice(n.Vals)
		body := s.get(n.Body)
		return rebuildLike(s.m, n, nil, nodeChildren{vars: newVars, vals: newVals, body: body})
	case TagMatch:
		arg := s.get(n.Arg)
		pats := s.getSlice(n.Pats)
		valsOut := s.getSlice(n.Vals)
		return rebuildLike(s.m, n, nil, nodeChildren{arg: arg, pats: pats, vals: valsOut})
	default:
		return n
	}
}
