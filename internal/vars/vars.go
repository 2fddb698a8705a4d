// Package vars implements C1, the variable-set interner: canonical sorted
// sets of variable identities with union/intersect/difference/contains.
//
// It is deliberately decoupled from the node representation in package ir
// (to avoid an import cycle, since ir needs variable sets to compute free
// variables): a variable is anything that can report a stable VarID, and
// ir.Node satisfies Elem for its Var-tagged values. Identities are
// allocation-order sequence numbers assigned by the owning module, which
// the hash-consing literature usually gets for free from pointer bit
// patterns — spec.md §5 notes this makes ordering module-deterministic but
// not portable across runs, which is exactly what a monotonic counter
// gives us too.
package vars

import (
	"fmt"
	"sort"
	"strings"
)

// Elem is a variable-kind value that can belong to a Set. Implementations
// are expected to be canonical (hash-consed) values, so that two Elems
// with the same VarID are the same variable occurrence.
type Elem interface {
	VarID() uint64
}

// Set is a canonical, sorted, deduplicated collection of variable
// identities (spec.md §4.1). Sets are only ever produced by an Interner,
// so two Sets with the same content are the same *Set value, and set
// equality reduces to pointer equality.
type Set struct {
	elems []Elem
}

// Len returns the number of variables in s.
func (s *Set) Len() int { return len(s.elems) }

// IsEmpty reports whether s has no elements.
func (s *Set) IsEmpty() bool { return len(s.elems) == 0 }

// Elems returns the sorted, read-only backing slice. Callers must not
// mutate it; it is shared by every Set with this content.
func (s *Set) Elems() []Elem { return s.elems }

// Interner canonicalizes Sets so that set equality becomes *Set equality,
// per spec.md §4.1 ("all operations ... return canonical handles").
type Interner struct {
	table map[string]*Set
	empty *Set
}

// NewInterner creates an empty variable-set interner, owned by a single
// Module (spec.md §5: "the Module owns ... three interner tables").
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*Set), empty: &Set{}}
}

// Empty returns the canonical empty set.
func (in *Interner) Empty() *Set { return in.empty }

// New builds a canonical Set from xs: sorts by identity, asserts
// uniqueness, interns the result (spec.md §4.1).
//
// Precondition: xs contains no duplicate VarID (callers build variable
// sets from already-distinct binder lists; a violation is a programmer
// bug, not a runtime condition — spec.md §4.3 on constructor preconditions).
func (in *Interner) New(xs []Elem) *Set {
	if len(xs) == 0 {
		return in.empty
	}
	cp := append([]Elem(nil), xs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].VarID() < cp[j].VarID() })
	for i := 1; i < len(cp); i++ {
		if cp[i].VarID() == cp[i-1].VarID() {
			panic(fmt.Sprintf("vars.New: duplicate variable identity %d", cp[i].VarID()))
		}
	}
	return in.intern(cp)
}

func (in *Interner) intern(sorted []Elem) *Set {
	if len(sorted) == 0 {
		return in.empty
	}
	key := keyOf(sorted)
	if s, ok := in.table[key]; ok {
		return s
	}
	s := &Set{elems: sorted}
	in.table[key] = s
	return s
}

func keyOf(elems []Elem) string {
	var b strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&b, "%d,", e.VarID())
	}
	return b.String()
}

// Union returns the canonical a ∪ b by a linear merge of the two sorted
// inputs (spec.md §4.1). Commutative, idempotent (Union(a,a)=a) and
// associative because the merge is keyed purely on sorted VarID.
func (in *Interner) Union(a, b *Set) *Set {
	if a == b {
		return a
	}
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	out := make([]Elem, 0, len(a.elems)+len(b.elems))
	i, j := 0, 0
	for i < len(a.elems) && j < len(b.elems) {
		ai, bj := a.elems[i].VarID(), b.elems[j].VarID()
		switch {
		case ai == bj:
			out = append(out, a.elems[i])
			i++
			j++
		case ai < bj:
			out = append(out, a.elems[i])
			i++
		default:
			out = append(out, b.elems[j])
			j++
		}
	}
	out = append(out, a.elems[i:]...)
	out = append(out, b.elems[j:]...)
	return in.intern(out)
}

// Intersect returns the canonical a ∩ b.
func (in *Interner) Intersect(a, b *Set) *Set {
	if a == b {
		return a
	}
	if a.IsEmpty() || b.IsEmpty() {
		return in.empty
	}
	out := make([]Elem, 0)
	i, j := 0, 0
	for i < len(a.elems) && j < len(b.elems) {
		ai, bj := a.elems[i].VarID(), b.elems[j].VarID()
		switch {
		case ai == bj:
			out = append(out, a.elems[i])
			i++
			j++
		case ai < bj:
			i++
		default:
			j++
		}
	}
	return in.intern(out)
}

// Diff returns the canonical a \ b.
func (in *Interner) Diff(a, b *Set) *Set {
	if b.IsEmpty() || a.IsEmpty() {
		return a
	}
	out := make([]Elem, 0, len(a.elems))
	i, j := 0, 0
	for i < len(a.elems) {
		if j >= len(b.elems) {
			out = append(out, a.elems[i:]...)
			break
		}
		ai, bj := a.elems[i].VarID(), b.elems[j].VarID()
		switch {
		case ai == bj:
			i++
			j++
		case ai < bj:
			out = append(out, a.elems[i])
			i++
		default:
			j++
		}
	}
	return in.intern(out)
}

// Contains reports whether v is a member of s via binary search (spec.md
// §4.1: O(log n) lookup).
func Contains(s *Set, v Elem) bool {
	id := v.VarID()
	lo, hi := 0, len(s.elems)
	for lo < hi {
		mid := (lo + hi) / 2
		switch e := s.elems[mid].VarID(); {
		case e == id:
			return true
		case e < id:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}

// ContainsAny reports whether s and t share any element, short-circuiting
// on the first common element found during the merge (spec.md §4.1).
func ContainsAny(s, t *Set) bool {
	i, j := 0, 0
	for i < len(s.elems) && j < len(t.elems) {
		si, tj := s.elems[i].VarID(), t.elems[j].VarID()
		switch {
		case si == tj:
			return true
		case si < tj:
			i++
		default:
			j++
		}
	}
	return false
}
