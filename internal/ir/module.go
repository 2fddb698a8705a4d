package ir

import (
	"fmt"
	"strings"

	"github.com/sunholo/irlang/internal/label"
	"github.com/sunholo/irlang/internal/loc"
	"github.com/sunholo/irlang/internal/vars"
)

// Config carries the engine-tuning knobs spec.md §9 leaves to the
// implementation (see SPEC_FULL.md §4.8). The zero value resolves to
// DefaultConfig via NewModule.
type Config struct {
	// ReduceFuel bounds the number of rewrite steps Reduce performs before
	// giving up, since termination is not guaranteed in a dependently
	// typed setting (spec.md §4.5, §9).
	ReduceFuel int

	// ArenaHint sizes the node table's initial capacity, avoiding repeated
	// map growth when a caller knows roughly how large a term graph it is
	// about to build.
	ArenaHint int
}

// DefaultConfig returns the engine defaults used when a zero Config is
// passed to NewModule.
func DefaultConfig() Config {
	return Config{ReduceFuel: 10000, ArenaHint: 4096}
}

func (c Config) normalized() Config {
	if c.ReduceFuel <= 0 {
		c.ReduceFuel = DefaultConfig().ReduceFuel
	}
	if c.ArenaHint <= 0 {
		c.ArenaHint = DefaultConfig().ArenaHint
	}
	return c
}

// Module owns one node table, the label interner, the variable-set
// interner, and a handful of precomputed constants (spec.md §5: "the
// Module owns the arena ... three interner tables ... and a small set of
// precomputed constants"). There is no separate arena allocator in this
// port: Go's garbage collector plays that role, and "freeing the module"
// is simply dropping the last reference to it — there is no individual
// node lifetime to manage, matching the spec's "nodes ... are never freed
// individually."
type Module struct {
	cfg Config

	nodes  map[string]*Node
	labels *label.Interner
	vars   *vars.Interner
	nextID uint64

	Uni        *Node
	Star       *Node
	Nat        *Node
	IntK       *Node
	FloatK     *Node
	UntypedErr *Node
	EmptyVars  *vars.Set
}

// NewModule creates a new, empty Module with its constant nodes already
// interned (spec.md §6.1: new_module()).
func NewModule(cfg Config) *Module {
	cfg = cfg.normalized()
	m := &Module{
		cfg:    cfg,
		nodes:  make(map[string]*Node, cfg.ArenaHint),
		labels: label.NewInterner(),
		vars:   vars.NewInterner(),
	}
	m.EmptyVars = m.vars.Empty()

	// Uni's type is the untyped Err sentinel, which is self-typed. Uni is
	// registered in the uniOwners side table so GetModule can recover the
	// module by walking .Type links up to Uni.
	m.UntypedErr = &Node{Tag: TagErr, Loc: loc.None, FreeVars: m.EmptyVars, DeclVars: m.EmptyVars}
	m.UntypedErr.Type = m.UntypedErr
	m.nodes[m.key(&Node{Tag: TagErr, Type: m.UntypedErr, Loc: loc.None})] = m.UntypedErr

	m.Uni = &Node{Tag: TagUni, Type: m.UntypedErr, Loc: loc.None, FreeVars: m.EmptyVars, DeclVars: m.EmptyVars}
	m.nodes[m.key(&Node{Tag: TagUni, Type: m.UntypedErr})] = m.Uni
	uniOwners[m.Uni] = m

	m.Star = m.intern(&Node{Tag: TagStar, Type: m.Uni, Loc: loc.None})
	m.Nat = m.intern(&Node{Tag: TagNat, Type: m.Star, Loc: loc.None})

	unbound := m.newVarNode(m.Nat, nil, loc.None)
	kindArrow := m.Arrow(unbound, m.Star, loc.None)
	m.IntK = m.intern(&Node{Tag: TagIntK, Type: kindArrow, Loc: loc.None})
	m.FloatK = m.intern(&Node{Tag: TagFloatK, Type: kindArrow, Loc: loc.None})

	return m
}

// uniOwners recovers the owning *Module from a Uni node's identity. A
// module-keyed side table avoids growing every Node with a field only the
// singleton Uni node would ever populate.
var uniOwners = map[*Node]*Module{}

// GetModule walks .Type links until it reaches the Uni node, then looks up
// its owning Module (spec.md §6.1: get_module(node)).
func GetModule(n *Node) *Module {
	for n.Tag != TagUni {
		if n.Type == n {
			panic("ir: GetModule called on a node with no path to Uni (bare untyped Err)")
		}
		n = n.Type
	}
	m, ok := uniOwners[n]
	if !ok {
		panic("ir: GetModule reached an unowned Uni node")
	}
	return m
}

// Vars exposes the variable-set interner (C1) for components that build
// sets directly from node slices (the simplifier, the checker).
func (m *Module) Vars() *vars.Interner { return m.vars }

// Labels exposes the label interner (C2).
func (m *Module) Labels() *label.Interner { return m.labels }

// Config returns the normalized Config this Module was constructed with.
func (m *Module) Config() Config { return m.cfg }

// NewLabel interns name at the given location (spec.md §6.5).
func (m *Module) NewLabel(name string, at loc.Span) *label.Label {
	return m.labels.New(name, at)
}

// --- structural hashing / interning --------------------------------------

// intern looks up stub by structural key and returns the existing
// canonical node if present; otherwise it computes the derived fields
// (FreeVars, DeclVars, Depth), runs the simplifier, and stores the
// stub-key → simplified-result mapping (spec.md §4.3's construction
// protocol: "the interner therefore maps uncanonicalized keys to
// canonical results").
func (m *Module) intern(stub *Node) *Node {
	key := m.key(stub)
	if found, ok := m.nodes[key]; ok {
		return found
	}
	computed := m.withDerivedFields(stub)
	result := simplify(m, computed)
	m.nodes[key] = result
	return result
}

func (m *Module) withDerivedFields(n *Node) *Node {
	// Type is nil only for a Var node the checker is still staging as an
	// unannotated binder (spec.md §4.7: a Let/Letrec pattern with no
	// declared type, to be resolved by inference before it is ever
	// interned as part of a finished term). Every other tag's
	// constructor always supplies a real type.
	if n.Type != nil {
		n.FreeVars = n.Type.FreeVars
	} else {
		n.FreeVars = m.EmptyVars
	}
	n.DeclVars = m.EmptyVars
	n.Depth = 0

	switch n.Tag {
	case TagProd, TagSum, TagRecord:
		for _, a := range n.Args {
			n.Depth = maxDepth(n.Depth, a.Depth)
			n.FreeVars = m.vars.Union(n.FreeVars, a.FreeVars)
			n.DeclVars = m.vars.Union(n.DeclVars, a.DeclVars)
		}
	case TagInj:
		n.Depth = maxDepth(n.Depth, n.Arg.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Arg.FreeVars)
		n.DeclVars = n.Arg.DeclVars
	case TagIns:
		n.Depth = maxDepth(n.Depth, n.Elem.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Elem.FreeVars)
		fallthrough
	case TagExt:
		n.Depth = maxDepth(n.Depth, n.Val.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Val.FreeVars)
	case TagArrow:
		n.Depth = maxDepth(n.Depth, n.Codom.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Codom.FreeVars)
		if !IsUnboundVar(n.Var) {
			n.FreeVars = m.vars.Diff(n.FreeVars, m.vars.New([]vars.Elem{n.Var}))
		}
		n.Depth++
	case TagAbs:
		n.Depth = maxDepth(n.Depth, n.Body.Depth) + 1
		n.FreeVars = m.vars.Union(n.FreeVars, n.Body.FreeVars)
		if !IsUnboundVar(n.Var) {
			n.FreeVars = m.vars.Diff(n.FreeVars, m.vars.New([]vars.Elem{n.Var}))
		}
	case TagApp:
		n.Depth = maxDepth(maxDepth(n.Depth, n.Left.Depth), n.Right.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Left.FreeVars)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Right.FreeVars)
	case TagLet, TagLetrec:
		n.Depth = maxDepth(n.Depth, n.Body.Depth)
		n.FreeVars = m.vars.Union(n.FreeVars, n.Body.FreeVars)
		for _, v := range n.Vals {
			n.Depth = maxDepth(n.Depth, v.Depth)
			n.FreeVars = m.vars.Union(n.FreeVars, v.FreeVars)
		}
		binders := make([]vars.Elem, len(n.Vars))
		for i, v := range n.Vars {
			binders[i] = v
		}
		n.FreeVars = m.vars.Diff(n.FreeVars, m.vars.New(binders))
		n.Depth++
	case TagMatch:
		for i := range n.Pats {
			n.Depth = maxDepth(n.Depth, n.Vals[i].Depth)
			n.FreeVars = m.vars.Union(n.FreeVars, m.vars.Diff(n.Vals[i].FreeVars, n.Pats[i].DeclVars))
		}
		n.FreeVars = m.vars.Union(n.FreeVars, n.Arg.FreeVars)
		n.Depth = maxDepth(n.Depth, n.Arg.Depth) + 1
	case TagVar:
		if !IsUnboundVar(n) {
			n.DeclVars = m.vars.New([]vars.Elem{n})
			n.FreeVars = m.vars.Union(n.FreeVars, n.DeclVars)
		}
	default:
		// Uni, Star, Nat, IntK, FloatK, Top, Bot, Err, Lit: no children to
		// fold in beyond the type's free variables already seeded above.
	}
	return n
}

func maxDepth(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// key computes the structural hash-cons key for a node: tag, type
// identity, and variant-specific payload (spec.md §4.3). Aggregate
// variants key on the full sequence of child handles *and* labels
// (spec.md §3 invariant 1), and Err additionally keys on source location
// so distinct error sites stay distinct (spec.md §3 invariant 1, §9 open
// question on Err equality: both-null locations compare equal to each
// other, any other pair compares equal only when identical).
func (m *Module) key(n *Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%p|", n.Tag, n.Type)
	switch n.Tag {
	case TagUni:
		fmt.Fprintf(&b, "uni")
	case TagErr:
		if n.Type == n {
			b.WriteString("untyped")
		} else if n.Loc.IsNone() {
			b.WriteString("noloc")
		} else {
			fmt.Fprintf(&b, "loc:%#v", n.Loc)
		}
	case TagVar:
		fmt.Fprintf(&b, "%p", n.Label)
	case TagLit:
		fmt.Fprintf(&b, "%d:%d:%g", n.Lit.Kind, n.Lit.Int, n.Lit.Float)
	case TagProd, TagSum, TagRecord:
		for i, a := range n.Args {
			fmt.Fprintf(&b, "%p/%p,", a, n.Labels[i])
		}
	case TagExt:
		fmt.Fprintf(&b, "%p/%p", n.Val, n.Label)
	case TagIns:
		fmt.Fprintf(&b, "%p/%p/%p", n.Val, n.Label, n.Elem)
	case TagInj:
		fmt.Fprintf(&b, "%p/%p", n.Label, n.Arg)
	case TagArrow:
		fmt.Fprintf(&b, "%p/%p", n.Var, n.Codom)
	case TagAbs:
		fmt.Fprintf(&b, "%p/%p", n.Var, n.Body)
	case TagApp:
		fmt.Fprintf(&b, "%p/%p", n.Left, n.Right)
	case TagLet, TagLetrec:
		for i := range n.Vars {
			fmt.Fprintf(&b, "%p/%p,", n.Vars[i], n.Vals[i])
		}
		fmt.Fprintf(&b, "|%p", n.Body)
	case TagMatch:
		for i := range n.Pats {
			fmt.Fprintf(&b, "%p/%p,", n.Pats[i], n.Vals[i])
		}
		fmt.Fprintf(&b, "|%p", n.Arg)
	}
	return b.String()
}

func (m *Module) newVarNode(typ *Node, lbl *label.Label, at loc.Span) *Node {
	m.nextID++
	stub := &Node{Tag: TagVar, Type: typ, Label: lbl, Loc: at, id: m.nextID}
	return m.intern(stub)
}
