package ir

import "github.com/sunholo/irlang/internal/vars"

// simplify is invoked exactly once per new node at interning time
// (spec.md §4.6, C6). It never recurses into children — children are
// already canonical by the time a stub reaches here — it only looks at
// the node's own shape and, for the rules that rebuild a reshaped tree
// (Let/Letrec/Match), calls back into the constructors, which re-enter
// intern() and so re-trigger this same pass on the smaller pieces.
func simplify(m *Module, n *Node) *Node {
	switch n.Tag {
	case TagExt:
		return simplifyExt(m, n)
	case TagIns:
		return simplifyIns(m, n)
	case TagRecord:
		return simplifyRecord(m, n)
	case TagArrow:
		return simplifyArrow(m, n)
	case TagAbs:
		return simplifyAbs(m, n)
	case TagTop, TagBot:
		return simplifyTopBot(m, n)
	case TagLet:
		return simplifyLet(m, n)
	case TagLetrec:
		return simplifyLetrec(m, n)
	case TagMatch:
		return simplifyMatch(m, n)
	default:
		return n
	}
}

// simplifyExt implements "Ext(Record{…, ℓ↦e, …}, ℓ) → e;
// Ext(Inj(ℓ, e), ℓ) → e; Ext(Inj(ℓ', e), ℓ) → Bot(type) for ℓ'≠ℓ."
func simplifyExt(m *Module, n *Node) *Node {
	switch n.Val.Tag {
	case TagRecord:
		if idx := FindLabelInNode(n.Val, n.Label); idx >= 0 {
			return n.Val.Args[idx]
		}
	case TagInj:
		if n.Val.Label == n.Label {
			return n.Val.Arg
		}
		return m.Bot(n.Type, n.Loc)
	}
	return n
}

// simplifyIns implements "Ins(Record r, ℓ, e) rebuilds r with field ℓ
// replaced by e. Ins whose value type is a Sum is re-expressed as Inj."
func simplifyIns(m *Module, n *Node) *Node {
	if n.Val.Type.Tag == TagSum {
		return m.Inj(n.Val.Type, n.Label, n.Elem, n.Loc)
	}
	if n.Val.Tag == TagRecord {
		idx := FindLabelInNode(n.Val, n.Label)
		if idx < 0 {
			return n
		}
		newArgs := make([]*Node, len(n.Val.Args))
		copy(newArgs, n.Val.Args)
		newArgs[idx] = n.Elem
		return m.Record(newArgs, n.Val.Labels, n.Val.Type, n.Loc)
	}
	return n
}

// simplifyRecord implements η for records: "if every field is Ext(v, ℓ_i)
// with the same source v and in-order labels, and v.type = record.type,
// replace with v."
func simplifyRecord(m *Module, n *Node) *Node {
	if len(n.Args) == 0 {
		return n
	}
	first := n.Args[0]
	if first.Tag != TagExt {
		return n
	}
	source := first.Val
	if source.Type != n.Type {
		return n
	}
	for i, a := range n.Args {
		if a.Tag != TagExt || a.Val != source || a.Label != n.Labels[i] {
			return n
		}
	}
	return source
}

// simplifyArrow implements non-dependent normalization: "if the codomain
// does not mention var, replace var with an unbound variable of the same
// type."
func simplifyArrow(m *Module, n *Node) *Node {
	if IsUnboundVar(n.Var) || vars.Contains(n.Codom.FreeVars, n.Var) {
		return n
	}
	unbound := m.UnboundVar(n.Var.Type, n.Var.Loc)
	return m.Arrow(unbound, n.Codom, n.Loc)
}

// simplifyAbs implements the Abs analogue of non-dependent normalization
// plus Abs η: "Abs(x, App(f, x)) → f when f.Type = Abs.Type."
func simplifyAbs(m *Module, n *Node) *Node {
	if n.Body.Tag == TagApp && n.Body.Right == n.Var {
		f := n.Body.Left
		if f.Type == n.Type {
			return f
		}
	}
	if IsUnboundVar(n.Var) || vars.Contains(n.Body.FreeVars, n.Var) {
		return n
	}
	unbound := m.UnboundVar(n.Var.Type, n.Var.Loc)
	return m.Abs(unbound, n.Body, n.Loc)
}

// simplifyTopBot distributes Top/Bot of a product type element-wise into
// a Record of Top/Bot of each field's type.
func simplifyTopBot(m *Module, n *Node) *Node {
	if n.Type.Tag != TagProd {
		return n
	}
	fields := make([]*Node, len(n.Type.Args))
	for i, fieldType := range n.Type.Args {
		if n.Tag == TagTop {
			fields[i] = m.Top(fieldType, n.Loc)
		} else {
			fields[i] = m.Bot(fieldType, n.Loc)
		}
	}
	return m.Record(fields, n.Type.Labels, n.Type, n.Loc)
}

// simplifyLet implements: (a) merge with a body that is itself a Let when
// no inner value references the outer variables; (b) drop bindings whose
// variable is unused in the body; (c) drop bindings whose value is itself
// a variable, forwarding that variable through the rest; empty Let
// collapses to body.
func simplifyLet(m *Module, n *Node) *Node {
	vs := append([]*Node(nil), n.Vars...)
	vals := append([]*Node(nil), n.Vals...)
	body := n.Body

	// (a) merge nested let.
	if body.Tag == TagLet {
		outer := m.vars.New(varElems(vs))
		innerUsesOuter := false
		for _, iv := range body.Vals {
			if vars.ContainsAny(iv.FreeVars, outer) {
				innerUsesOuter = true
				break
			}
		}
		if !innerUsesOuter {
			vs = append(vs, body.Vars...)
			vals = append(vals, body.Vals...)
			body = body.Body
		}
	}

	changed := true
	for changed {
		changed = false

		// (c) forward bindings whose value is itself a variable.
		for i := 0; i < len(vs); i++ {
			if vals[i].Tag != TagVar {
				continue
			}
			from, to := vs[i], vals[i]
			vs = append(vs[:i], vs[i+1:]...)
			vals = append(vals[:i], vals[i+1:]...)
			for j := range vals {
				vals[j] = ReplaceVar(m, vals[j], from, to)
			}
			body = ReplaceVar(m, body, from, to)
			changed = true
			break
		}
		if changed {
			continue
		}

		// (b) drop bindings unused downstream.
		for i := 0; i < len(vs); i++ {
			used := vars.Contains(body.FreeVars, vs[i])
			for j := i + 1; j < len(vals) && !used; j++ {
				used = vars.Contains(vals[j].FreeVars, vs[i])
			}
			if !used {
				vs = append(vs[:i], vs[i+1:]...)
				vals = append(vals[:i], vals[i+1:]...)
				changed = true
				break
			}
		}
	}

	if len(vs) == 0 {
		return body
	}
	if len(vs) == len(n.Vars) && body == n.Body {
		// No rewrite applies: n is already its own canonical form. Calling
		// back into Let here would recompute an identical stub key and
		// recurse into this same pass forever.
		return n
	}
	return m.Let(vs, vals, body, n.Loc)
}

// simplifyLetrec decomposes a letrec into strongly connected components
// of the use-relation (spec.md §4.6, §9). Bindings unreachable from the
// body are dropped entirely; reachable acyclic bindings become ordinary
// Lets; reachable cyclic bindings (SCCs) remain as smaller Letrecs.
func simplifyLetrec(m *Module, n *Node) *Node {
	letrecVars := m.vars.New(varElems(n.Vars))

	valueOf := make(map[*Node]*Node, len(n.Vars))
	for i, v := range n.Vars {
		valueOf[v] = n.Vals[i]
	}

	// Direct uses: uses[x] = set of y such that y appears in vals[x].
	uses := make(map[*Node]*vars.Set, len(n.Vars))
	for _, x := range n.Vars {
		uses[x] = m.vars.Intersect(valueOf[x].FreeVars, letrecVars)
	}

	// Transitive closure: uses(x) ← uses(x) ∪ ⋃_{y∈uses(x)} uses(y), to
	// a fixpoint.
	changed := true
	for changed {
		changed = false
		for _, x := range n.Vars {
			acc := uses[x]
			for _, y := range n.Vars {
				if vars.Contains(uses[x], y) {
					merged := m.vars.Union(acc, uses[y])
					if merged != acc {
						acc = merged
					}
				}
			}
			if acc != uses[x] {
				uses[x] = acc
				changed = true
			}
		}
	}

	bodyReachable := m.vars.Intersect(n.Body.FreeVars, letrecVars)
	// Close bodyReachable under "uses": any variable used by a reachable
	// variable is itself reachable.
	changed = true
	for changed {
		changed = false
		for _, x := range n.Vars {
			if vars.Contains(bodyReachable, x) {
				merged := m.vars.Union(bodyReachable, uses[x])
				if merged != bodyReachable {
					bodyReachable = merged
					changed = true
				}
			}
		}
	}

	if bodyReachable.Len() == len(n.Vars) {
		// Check whether the whole set forms one SCC (every variable uses
		// every other, including itself via the cycle) — if so, no
		// decomposition is possible and the node is returned unchanged.
		// uses is transitively closed and canonical, so that holds exactly
		// when every uses[x] is the full letrec variable set.
		allOneSCC := true
		for _, x := range n.Vars {
			if uses[x] != letrecVars {
				allOneSCC = false
				break
			}
		}
		if allOneSCC {
			return n
		}
	}

	// Emission order must wrap dependencies further out than their
	// dependents, since each "body = m.Let(..., body, ...)" step makes the
	// newly emitted binding the new outermost layer. A post-order DFS over
	// the uses relation visits a variable's dependencies before the
	// variable itself, so reversing that post-order yields exactly the
	// order this loop needs: dependents first (innermost), dependencies
	// last (outermost).
	var postOrder []*Node
	visited := make(map[*Node]bool, len(n.Vars))
	var visit func(x *Node)
	visit = func(x *Node) {
		if visited[x] {
			return
		}
		visited[x] = true
		for _, y := range n.Vars {
			if y != x && vars.Contains(uses[x], y) && vars.Contains(bodyReachable, y) {
				visit(y)
			}
		}
		postOrder = append(postOrder, x)
	}
	for _, x := range n.Vars {
		if vars.Contains(bodyReachable, x) {
			visit(x)
		}
	}
	order := make([]*Node, len(postOrder))
	for i, x := range postOrder {
		order[len(postOrder)-1-i] = x
	}

	done := make(map[*Node]bool, len(n.Vars))
	body := n.Body
	for _, x := range order {
		if done[x] {
			continue
		}
		if vars.Contains(uses[x], x) {
			var sccVars, sccVals []*Node
			for _, y := range n.Vars {
				if !done[y] && vars.Contains(uses[x], y) && vars.Contains(uses[y], x) {
					sccVars = append(sccVars, y)
					sccVals = append(sccVals, valueOf[y])
					done[y] = true
				}
			}
			body = m.Letrec(sccVars, sccVals, body, n.Loc)
		} else {
			body = m.Let([]*Node{x}, []*Node{valueOf[x]}, body, n.Loc)
			done[x] = true
		}
	}
	return body
}

// simplifyMatch classifies each arm's pattern against arg and picks the
// first that statically matches, per spec.md §4.6.
func simplifyMatch(m *Module, n *Node) *Node {
	for i, pat := range n.Pats {
		outcome, bindFrom, bindTo := matchPattern(pat, n.Arg)
		switch outcome {
		case matchYes:
			return ReplaceVars(m, n.Vals[i], bindFrom, bindTo)
		case matchMaybe:
			if IsTrivialPat(pat) {
				// Unreachable arms after a trivial pattern: truncate.
				if i == len(n.Pats)-1 {
					return n
				}
				return m.Match(n.Arg, n.Pats[:i+1], n.Vals[:i+1], n.Loc)
			}
		case matchNo:
			// try next arm
		}
	}
	// Every arm rejected outright only if all are NO_MATCH; otherwise the
	// match is kept pending runtime values the simplifier cannot see yet.
	allNo := true
	for _, pat := range n.Pats {
		outcome, _, _ := matchPattern(pat, n.Arg)
		if outcome != matchNo {
			allNo = false
			break
		}
	}
	if allNo {
		return m.Bot(n.Type, n.Loc)
	}
	return n
}

type matchOutcome int

const (
	matchNo matchOutcome = iota
	matchMaybe
	matchYes
)

// matchPattern classifies pat against arg and, on a statically determined
// match, returns the variable bindings the pattern introduces.
func matchPattern(pat *Node, arg *Node) (matchOutcome, []*Node, []*Node) {
	switch pat.Tag {
	case TagVar:
		return matchYes, []*Node{pat}, []*Node{arg}
	case TagLit:
		if arg.Tag == TagLit {
			if pat.Lit.Equal(arg.Lit) {
				return matchYes, nil, nil
			}
			return matchNo, nil, nil
		}
		return matchMaybe, nil, nil
	case TagInj:
		if arg.Tag == TagInj {
			if pat.Label != arg.Label {
				return matchNo, nil, nil
			}
			return matchPattern(pat.Arg, arg.Arg)
		}
		return matchMaybe, nil, nil
	case TagRecord:
		if arg.Tag != TagRecord {
			return matchMaybe, nil, nil
		}
		var from, to []*Node
		for i, fieldPat := range pat.Args {
			idx := FindLabelInNode(arg, pat.Labels[i])
			if idx < 0 {
				return matchMaybe, nil, nil
			}
			outcome, f, t := matchPattern(fieldPat, arg.Args[idx])
			if outcome == matchNo {
				return matchNo, nil, nil
			}
			if outcome == matchMaybe {
				return matchMaybe, nil, nil
			}
			from = append(from, f...)
			to = append(to, t...)
		}
		return matchYes, from, to
	default:
		return matchMaybe, nil, nil
	}
}
