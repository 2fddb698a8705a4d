// Package loc provides source locations for diagnostics. The IR core treats
// these as opaque payloads: they never influence structural equality except
// for Err nodes, which key on location so that distinct error sites remain
// distinct (spec.md §3, invariant 1).
package loc

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a range in a source file, used for node provenance.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	if s.Start.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// None is the distinguished empty span used by module constants that have
// no meaningful source origin (Uni, Star, Nat, the untyped Err sentinel).
var None = Span{}

// IsNone reports whether s carries no real source location.
func (s Span) IsNone() bool {
	return s == None
}
