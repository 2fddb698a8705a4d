package ir

import (
	"github.com/sunholo/irlang/internal/label"
	"github.com/sunholo/irlang/internal/loc"
	"github.com/sunholo/irlang/internal/vars"
)

// This file implements the constructor surface of §4.3/§6.2: one function
// per node variant, each composing a stub with already-interned children
// and delegating to Module.intern for hashing, derived-field computation,
// and simplification. Preconditions are documented per constructor and are
// the caller's responsibility to uphold (spec.md §4.3: "preconditions, not
// runtime checks, govern constructor use") — the checker (internal/check)
// is the only caller expected to violate them, and it never calls these
// constructors without having already decided the operation is valid.

// Var introduces a fresh variable node of the given type at loc, labeled
// for diagnostics and binder matching. Precondition: label is fresh (no
// shadowing, spec.md §3 invariant 5).
func (m *Module) Var(typ *Node, lbl *label.Label, at loc.Span) *Node {
	m.nextID++
	return m.intern(&Node{Tag: TagVar, Type: typ, Label: lbl, Loc: at, id: m.nextID})
}

// UnboundVar introduces a placeholder parameter not referenced by its
// scope, used to represent non-dependent arrows/abstractions uniformly.
func (m *Module) UnboundVar(typ *Node, at loc.Span) *Node {
	return m.newVarNode(typ, nil, at)
}

// Top is the greatest value of typ.
func (m *Module) Top(typ *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagTop, Type: typ, Loc: at})
}

// Bot is the least value of typ (also the result of a Match with no
// matching arm, and of Ext on a sum variant that cannot hold the field).
func (m *Module) Bot(typ *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagBot, Type: typ, Loc: at})
}

// Err produces a typed failure sentinel. The untyped Err (type = itself)
// is minted once by NewModule; use Module.UntypedErr for it.
func (m *Module) Err(typ *Node, at loc.Span) *Node {
	if typ == nil {
		typ = m.UntypedErr
	}
	return m.intern(&Node{Tag: TagErr, Type: typ, Loc: at})
}

// IntLit constructs an integer literal of type typ (ordinarily Module.Nat
// or an Int-kinded application).
func (m *Module) IntLit(typ *Node, v uint64, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagLit, Type: typ, Loc: at, Lit: LitValue{Kind: IntLit, Int: v}})
}

// FloatLit constructs a floating-point literal of type typ.
func (m *Module) FloatLit(typ *Node, v float64, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagLit, Type: typ, Loc: at, Lit: LitValue{Kind: FloatLit, Float: v}})
}

// Prod builds a dependent product type over fields with the given labels.
// Precondition: len(args) == len(labels) and labels are unique within the
// node (spec.md §3 invariant 6).
func (m *Module) Prod(args []*Node, labels []*label.Label, kind *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagProd, Type: kind, Loc: at, Args: args, Labels: labels})
}

// Sum builds a labeled variant type.
func (m *Module) Sum(args []*Node, labels []*label.Label, kind *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagSum, Type: kind, Loc: at, Args: args, Labels: labels})
}

// Record builds a value of product type from field values.
func (m *Module) Record(args []*Node, labels []*label.Label, typ *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagRecord, Type: typ, Loc: at, Args: args, Labels: labels})
}

// Ext extracts field lbl from val. Precondition: lbl is a field of
// reduce(val.Type). fieldType is the precomputed type of the result
// (GetElemType(val.Type, lbl)), since Ext's own Type field must already be
// interned before construction.
func (m *Module) Ext(val *Node, lbl *label.Label, fieldType *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagExt, Type: fieldType, Loc: at, Val: val, Label: lbl})
}

// Ins produces a value equal to val but with field lbl replaced by elem.
// Precondition: elem.Type == GetElemType(val.Type, lbl).
func (m *Module) Ins(val *Node, lbl *label.Label, elem *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagIns, Type: val.Type, Loc: at, Val: val, Label: lbl, Elem: elem})
}

// Inj injects arg into sum type typ under label lbl.
func (m *Module) Inj(typ *Node, lbl *label.Label, arg *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagInj, Type: typ, Loc: at, Label: lbl, Arg: arg})
}

// Arrow builds the Π type `(var) -> codom`. Precondition: var.Type.Type is
// defined (var's type is itself well-kinded). Pass an UnboundVar for
// var to build a non-dependent arrow.
func (m *Module) Arrow(v *Node, codom *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagArrow, Type: codom.Type, Loc: at, Var: v, Codom: codom})
}

// Abs builds a λ abstraction over var with the given body. Its type is
// always Arrow(var, body.Type).
func (m *Module) Abs(v *Node, body *Node, at loc.Span) *Node {
	arrowType := m.Arrow(v, body.Type, at)
	return m.intern(&Node{Tag: TagAbs, Type: arrowType, Loc: at, Var: v, Body: body})
}

// App applies f to x. Precondition: reduce(f.Type) is an Arrow and
// x.Type equals that arrow's var's type after reduction. resultType is
// the precomputed codom with var substituted by x when dependent, else
// the bare codom (callers compute this via GetElemType-style substitution
// before calling App, mirroring the checker's responsibility per
// spec.md §4.3's App row).
func (m *Module) App(f *Node, x *Node, resultType *Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagApp, Type: resultType, Loc: at, Left: f, Right: x})
}

// Let builds a non-recursive binding group. Precondition:
// vars[i].Type == vals[i].Type and no vals[i] references any vars[j]
// (spec.md §3 invariant: Let's values are closed over the outer scope).
// The result's type is body.Type with vars substituted by vals and
// reduced to a fixpoint (spec.md §4.3's let constructor contract), so
// that a binder never leaks into the type of its own Let.
func (m *Module) Let(vs []*Node, vals []*Node, body *Node, at loc.Span) *Node {
	typ := letResultType(m, body.Type, vs, vals)
	return m.intern(&Node{Tag: TagLet, Type: typ, Loc: at, Vars: vs, Vals: vals, Body: body})
}

// Letrec builds a mutually recursive binding group. Precondition: every
// vars[i] carries an explicit (non-placeholder) type annotation
// (spec.md §3 invariant 8: "Letrec cannot contain an unbound binder").
// Its result type follows the same fixpoint rule as Let.
func (m *Module) Letrec(vs []*Node, vals []*Node, body *Node, at loc.Span) *Node {
	typ := letResultType(m, body.Type, vs, vals)
	return m.intern(&Node{Tag: TagLetrec, Type: typ, Loc: at, Vars: vs, Vals: vals, Body: body})
}

// letResultType substitutes vs with vals inside typ and reduces to a
// fixed point, bailing out early once a pass leaves the type unchanged.
func letResultType(m *Module, typ *Node, vs []*Node, vals []*Node) *Node {
	if len(vs) == 0 || typ.FreeVars.IsEmpty() {
		return typ
	}
	for fuel := m.cfg.ReduceFuel; fuel > 0; fuel-- {
		substituted := ReplaceVars(m, typ, vs, vals)
		reduced := Reduce(m, substituted)
		if reduced == typ {
			return reduced
		}
		typ = reduced
	}
	return typ
}

// Match builds a first-match expression. Precondition: len(pats) > 0,
// len(pats) == len(vals), every vals[i].Type is equal, and every pats[i]
// is a valid pattern (IsPat) whose Type equals arg.Type.
func (m *Module) Match(arg *Node, pats []*Node, vals []*Node, at loc.Span) *Node {
	return m.intern(&Node{Tag: TagMatch, Type: vals[0].Type, Loc: at, Arg: arg, Pats: pats, Vals: vals})
}

// rebuildLike reconstructs n through its constructor with possibly-new
// children, re-triggering interning and simplification (spec.md §6.8:
// rebuild(n); used by substitution and reduction, never called directly
// by clients).
func rebuildLike(m *Module, n *Node, typ *Node, children nodeChildren) *Node {
	switch n.Tag {
	case TagUni, TagStar, TagNat, TagIntK, TagFloatK, TagTop, TagBot, TagErr, TagLit:
		return n
	case TagVar:
		return n
	case TagProd:
		return m.Prod(children.args, n.Labels, typ, n.Loc)
	case TagSum:
		return m.Sum(children.args, n.Labels, typ, n.Loc)
	case TagRecord:
		return m.Record(children.args, n.Labels, typ, n.Loc)
	case TagExt:
		return m.Ext(children.val, n.Label, typ, n.Loc)
	case TagIns:
		return m.Ins(children.val, n.Label, children.elem, n.Loc)
	case TagInj:
		return m.Inj(typ, n.Label, children.arg, n.Loc)
	case TagArrow:
		return m.Arrow(children.v, children.codom, n.Loc)
	case TagAbs:
		return m.Abs(children.v, children.body, n.Loc)
	case TagApp:
		return m.App(children.left, children.right, typ, n.Loc)
	case TagLet:
		return m.Let(children.vars, children.vals, children.body, n.Loc)
	case TagLetrec:
		return m.Letrec(children.vars, children.vals, children.body, n.Loc)
	case TagMatch:
		return m.Match(children.arg, children.pats, children.vals, n.Loc)
	default:
		return n
	}
}

// nodeChildren bundles every possible child slot a rebuild might need to
// supply; rebuildLike reads only the fields its tag's branch needs. Using
// one struct (instead of per-tag argument lists) keeps the substitution
// and reduction walkers' dispatch tables uniform.
type nodeChildren struct {
	args        []*Node
	val, elem   *Node
	arg         *Node
	v, codom    *Node
	body        *Node
	left, right *Node
	vars, vals  []*Node
	pats        []*Node
}

// GetElemType returns the type of field lbl within valType, the aggregate
// type of a Record/Sum/Prod value (spec.md §6.4: get_elem_type).
// Precondition: lbl is present in valType's labels.
func GetElemType(valType *Node, lbl *label.Label) *Node {
	t := valType
	for t.Tag == TagExt || t.Tag == TagIns {
		// Aggregate types are never themselves rows; this loop exists only
		// defensively in case a caller passes an unreduced alias.
		break
	}
	idx := label.Find(t.Labels, lbl)
	if idx < 0 {
		return nil
	}
	return t.Args[idx]
}

// FindLabelInNode returns the index of lbl among n's Labels, or -1.
func FindLabelInNode(n *Node, lbl *label.Label) int {
	return label.Find(n.Labels, lbl)
}

// IsPat reports whether n belongs to the pattern subset {Lit, Var, Record
// of patterns, Inj of pattern} (spec.md §4.3, §9: the implemented variant
// of is_pat is canonical).
func IsPat(n *Node) bool {
	switch n.Tag {
	case TagLit, TagVar:
		return true
	case TagRecord:
		for _, a := range n.Args {
			if !IsPat(a) {
				return false
			}
		}
		return true
	case TagInj:
		return IsPat(n.Arg)
	default:
		return false
	}
}

// IsTrivialPat reports whether n always matches: a Var, or a Record whose
// fields are all trivial patterns (spec.md §4.3, §9).
func IsTrivialPat(n *Node) bool {
	switch n.Tag {
	case TagVar:
		return true
	case TagRecord:
		for _, a := range n.Args {
			if !IsTrivialPat(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// varElems converts a []*Node of Var nodes into []vars.Elem for use with
// the variable-set interner.
func varElems(ns []*Node) []vars.Elem {
	out := make([]vars.Elem, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}
