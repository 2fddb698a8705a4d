// Package ir implements the hash-consed intermediate representation: C3 the
// node interner, C4 capture-safe substitution, C5 the weak reducer, and C6
// the algebraic simplifier invoked at every construction. See spec.md §3-4.
//
// Node uses a single struct with a discriminant Tag, mirroring the tagged
// union in the original source (a struct node with an enum tag and a
// payload union) rather than one Go type per variant: every algorithm here
// (hashing, substitution, the simplifier, the checker) dispatches on Tag
// over the *same* shared fields (Type, FreeVars, Depth, ...), so a single
// struct keeps those passes as plain switches instead of type assertions
// over twenty interface implementations.
package ir

import (
	"fmt"

	"github.com/sunholo/irlang/internal/label"
	"github.com/sunholo/irlang/internal/loc"
	"github.com/sunholo/irlang/internal/vars"
)

// Tag selects which of the node variants described in spec.md §3 a Node is.
type Tag int

const (
	TagUni Tag = iota
	TagStar
	TagNat
	TagIntK   // Int : Nat -> Star kind constructor
	TagFloatK // Float : Nat -> Star kind constructor
	TagTop
	TagBot
	TagErr
	TagLit
	TagVar
	TagProd
	TagSum
	TagRecord
	TagExt
	TagIns
	TagInj
	TagArrow
	TagAbs
	TagApp
	TagLet
	TagLetrec
	TagMatch
)

func (t Tag) String() string {
	switch t {
	case TagUni:
		return "Uni"
	case TagStar:
		return "Star"
	case TagNat:
		return "Nat"
	case TagIntK:
		return "Int"
	case TagFloatK:
		return "Float"
	case TagTop:
		return "Top"
	case TagBot:
		return "Bot"
	case TagErr:
		return "Err"
	case TagLit:
		return "Lit"
	case TagVar:
		return "Var"
	case TagProd:
		return "Prod"
	case TagSum:
		return "Sum"
	case TagRecord:
		return "Record"
	case TagExt:
		return "Ext"
	case TagIns:
		return "Ins"
	case TagInj:
		return "Inj"
	case TagArrow:
		return "Arrow"
	case TagAbs:
		return "Abs"
	case TagApp:
		return "App"
	case TagLet:
		return "Let"
	case TagLetrec:
		return "Letrec"
	case TagMatch:
		return "Match"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// LitKind distinguishes integer from floating-point literal payloads.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
)

// LitValue is the payload of a Lit node.
type LitValue struct {
	Kind  LitKind
	Int   uint64
	Float float64
}

func (l LitValue) Equal(o LitValue) bool {
	if l.Kind != o.Kind {
		return false
	}
	if l.Kind == FloatLit {
		return l.Float == o.Float
	}
	return l.Int == o.Int
}

// Node is an immutable, hash-consed IR term (spec.md §3). Only the fields
// relevant to Tag are populated; the rest are left zero. Every Node
// reachable from a Module is canonical: never mutated after construction,
// never individually freed (the owning Module's arena-equivalent node
// table keeps it alive).
type Node struct {
	id uint64 // allocation-order identity, used for variable-set ordering

	Tag  Tag
	Type *Node    // nil only for a Var the checker stages as an unannotated binder
	Loc  loc.Span // diagnostics only, except Err keys on it (invariant 1)

	FreeVars *vars.Set // type's and children's free vars, minus what a binder binds; a labeled Var includes itself
	DeclVars *vars.Set // pattern variables: a labeled Var itself, unioned through Prod/Sum/Record/Inj; empty otherwise
	Depth    int       // 1 + max child depth for binders, else max child depth

	// Var
	Label *label.Label // nil ⇒ unbound placeholder variable

	// Lit
	Lit LitValue

	// Prod / Sum / Record (parallel arrays, equal length, spec.md §3)
	Args   []*Node
	Labels []*label.Label

	// Ext: {Val, Label}. Ins: {Val, Label, Elem}.
	Val  *Node
	Elem *Node

	// Inj: {Type, Label, Arg}. Match: {Arg, Pats, Vals}.
	Arg *Node

	// Arrow: {Var, Codom}. Abs: {Var, Body}.
	Var   *Node
	Codom *Node
	Body  *Node

	// App
	Left, Right *Node

	// Let / Letrec: {Vars, Vals, Body}. Match additionally uses Pats.
	Vars []*Node
	Vals []*Node
	Pats []*Node
}

// VarID implements vars.Elem so Var-tagged nodes can live in variable sets.
func (n *Node) VarID() uint64 { return n.id }

// IsUnboundVar reports whether v is a Var placeholder with no label,
// standing for a non-dependent binder parameter (spec.md §3).
func IsUnboundVar(v *Node) bool {
	return v.Tag == TagVar && v.Label == nil
}

// String renders a compact, debugging-oriented view of a node — not the
// pretty-printer (out of scope per spec.md §1); just enough for test
// failure output and %v formatting.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Tag {
	case TagUni:
		return "Uni"
	case TagStar:
		return "*"
	case TagNat:
		return "Nat"
	case TagIntK:
		return "Int"
	case TagFloatK:
		return "Float"
	case TagTop:
		return "Top"
	case TagBot:
		return "Bot"
	case TagErr:
		return "Err"
	case TagLit:
		if n.Lit.Kind == FloatLit {
			return fmt.Sprintf("%g", n.Lit.Float)
		}
		return fmt.Sprintf("%d", n.Lit.Int)
	case TagVar:
		if n.Label == nil {
			return "_"
		}
		return n.Label.Name()
	case TagProd:
		return fmt.Sprintf("Prod%v", n.Args)
	case TagSum:
		return fmt.Sprintf("Sum%v", n.Args)
	case TagRecord:
		return fmt.Sprintf("Record%v", n.Args)
	case TagExt:
		return fmt.Sprintf("%s.%s", n.Val, n.Label.Name())
	case TagIns:
		return fmt.Sprintf("%s{%s=%s}", n.Val, n.Label.Name(), n.Elem)
	case TagInj:
		return fmt.Sprintf("%s(%s)", n.Label.Name(), n.Arg)
	case TagArrow:
		return fmt.Sprintf("(%s) -> %s", n.Var, n.Codom)
	case TagAbs:
		return fmt.Sprintf("\\%s. %s", n.Var, n.Body)
	case TagApp:
		return fmt.Sprintf("%s %s", n.Left, n.Right)
	case TagLet:
		return fmt.Sprintf("let %v = %v in %s", n.Vars, n.Vals, n.Body)
	case TagLetrec:
		return fmt.Sprintf("letrec %v = %v in %s", n.Vars, n.Vals, n.Body)
	case TagMatch:
		return fmt.Sprintf("match %s { %d arms }", n.Arg, len(n.Pats))
	default:
		return n.Tag.String()
	}
}
