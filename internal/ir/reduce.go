package ir

// Reduce performs whnf-style β and let-reduction to a fixed point
// (spec.md §4.5, C5). It is used only for type equality during checking,
// never for general evaluation (spec.md §1 non-goals). Termination is not
// guaranteed for ill-typed or non-terminating input, so the walk is
// bounded by the module's configured fuel; exhausting it simply returns
// the term reached so far (spec.md §9: "expose a per-call ... fuel
// parameter; document as terminates iff the term terminates").
func Reduce(m *Module, n *Node) *Node {
	fuel := m.cfg.ReduceFuel
	cur := n
	for fuel > 0 {
		next, changed := reduceStep(m, cur)
		if !changed {
			return cur
		}
		cur = next
		fuel--
	}
	return cur
}

// reduceStep applies one head rewrite: β for App(Abs(...), arg), or
// let/letrec elimination. Both recurse into the head position first since
// the rewrite only ever fires once the callee/binding position is itself
// in normal form.
func reduceStep(m *Module, n *Node) (*Node, bool) {
	switch n.Tag {
	case TagApp:
		f, fChanged := reduceStep(m, n.Left)
		if f.Tag == TagAbs {
			arg := Reduce(m, n.Right)
			body := ReplaceVar(m, f.Body, f.Var, arg)
			return body, true
		}
		if fChanged {
			return m.App(f, n.Right, n.Type, n.Loc), true
		}
		return n, false
	case TagLet:
		reducedVals := make([]*Node, len(n.Vals))
		for i, v := range n.Vals {
			reducedVals[i] = Reduce(m, v)
		}
		body := ReplaceVars(m, n.Body, n.Vars, reducedVals)
		return body, true
	case TagLetrec:
		// A letrec's values may reference each other; substituting them
		// directly (rather than reducing each independently first) keeps
		// the recursive references intact, matching the original's
		// "let/letrec elimination" treatment as one combined step.
		body := ReplaceVars(m, n.Body, n.Vars, n.Vals)
		return body, true
	default:
		return n, false
	}
}
