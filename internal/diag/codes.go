// Package diag implements the structured diagnostic surface the checker
// reports through (spec.md §6.9, §7): a small Logger interface the core
// consumes, plus a Report type callers can inspect or re-render. The
// taxonomy mirrors the teacher's phase-prefixed error codes
// (internal/errors in the reference AILANG tree), scoped down to the
// checker's error kinds from spec.md §7.
package diag

// Code identifies the kind of diagnostic the checker raised (spec.md §7).
type Code string

const (
	// CHK001 indicates an expression's inferred or checked type does not
	// match the prototype it was checked against.
	CHK001 Code = "CHK001" // TypeMismatch

	// CHK002 indicates App's left-hand side does not have (after
	// reduction) an Arrow type.
	CHK002 Code = "CHK002" // NonFunctionCallee

	// CHK003 indicates a Var referenced a label absent from every scope
	// on the environment stack.
	CHK003 Code = "CHK003" // UnknownIdentifier

	// CHK004 indicates a node appeared in pattern position that is not a
	// member of the pattern subset (spec.md §4.3).
	CHK004 Code = "CHK004" // InvalidPattern

	// CHK005 indicates a node was invalid in its surrounding context, most
	// commonly a Letrec binder lacking a type annotation.
	CHK005 Code = "CHK005" // InvalidNodeInContext

	// CHK006 indicates the reducer's fuel was exhausted before reaching a
	// fixed point (spec.md §7: optional, implementation-bound). Nothing in
	// this module raises it: Reduce returns the term reached so far when
	// its fuel runs out, without logging.
	CHK006 Code = "CHK006" // ReductionDidNotTerminate
)
