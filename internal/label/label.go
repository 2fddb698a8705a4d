// Package label implements C2, the label interner: canonical record-field
// and sum-variant names. Label equality is identity equality (spec.md
// §4.2): two labels intern to the same handle iff their normalized content
// is equal, regardless of source location.
package label

import (
	"github.com/sunholo/irlang/internal/loc"
	"golang.org/x/text/unicode/norm"
)

// Label is an interned field/variant name. Labels are immutable once
// created; comparing two Labels for equality is a pointer comparison.
type Label struct {
	name string   // NFC-normalized content
	loc  loc.Span // first source location this content was interned from
}

// Name returns the normalized label content.
func (l *Label) Name() string { return l.name }

// Loc returns the source location recorded for diagnostics. Per spec.md
// §4.2, location does not participate in label identity — only the first
// occurrence's location survives interning.
func (l *Label) Loc() loc.Span { return l.loc }

// Interner canonicalizes Labels by normalized content.
//
// Surface identifiers may reach the compiler in different Unicode
// normalization forms depending on source encoding; two field names that
// are canonically identical but byte-different (NFC vs NFD) must still
// intern to one Label, or record/sum shape comparisons would spuriously
// fail. Normalization happens once, at interning time, mirroring the
// lexer-boundary normalization the teacher performs before tokenizing.
type Interner struct {
	table map[string]*Label
}

// NewInterner creates an empty label interner, owned by a single Module.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*Label)}
}

// New interns name at the given location (spec.md §6.5: new_label(m, name,
// loc)). Subsequent calls with canonically-equal content return the same
// handle.
func (in *Interner) New(name string, at loc.Span) *Label {
	normalized := normalize(name)
	if l, ok := in.table[normalized]; ok {
		return l
	}
	l := &Label{name: normalized, loc: at}
	in.table[normalized] = l
	return l
}

func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Find returns the index of target within labels, or -1 if absent
// (spec.md §6.4: find_label). Labels are compared by identity.
func Find(labels []*Label, target *Label) int {
	for i, l := range labels {
		if l == target {
			return i
		}
	}
	return -1
}
