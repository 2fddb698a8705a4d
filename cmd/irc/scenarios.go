package main

import (
	"fmt"
	"io"

	"github.com/sunholo/irlang/internal/check"
	"github.com/sunholo/irlang/internal/diag"
	"github.com/sunholo/irlang/internal/ir"
	"github.com/sunholo/irlang/internal/label"
	"github.com/sunholo/irlang/internal/loc"
)

// scenario pairs a spec.md §8 end-to-end scenario with its builder/runner.
// run receives a fresh Module (sized per the active engine config) and a
// Logger, and returns a human-readable description of the outcome or an
// error describing what diverged from spec.md's stated result.
type scenario struct {
	id      string
	summary string
	run     func(mod *ir.Module, log diag.Logger) (string, error)
}

var scenarios = []scenario{
	{"S1", "Abs(x, x) applied to Lit 3 reduces to Lit 3", runS1},
	{"S2", "Let x=1 in Let y=2 in x drops the unused y binding", runS2},
	{"S3", "Match selects the statically matching Inj arm", runS3},
	{"S4", "Letrec drops f, unreachable from the body", runS4},
	{"S5", "Record of field extractions simplifies to its source (η)", runS5},
	{"S6", "Checking a non-function application reports one diagnostic", runS6},
}

// teeLogger forwards every diagnostic to both a rendering Logger (for the
// operator watching stderr) and a CollectingLogger (so the scenario body
// can assert on exactly what was reported).
type teeLogger struct {
	console *diag.ConsoleLogger
	collect *diag.CollectingLogger
}

func newScenarioLogger(w io.Writer) *teeLogger {
	return &teeLogger{console: diag.NewConsoleLogger(w), collect: &diag.CollectingLogger{}}
}

func (t *teeLogger) Error(at loc.Span, code diag.Code, format string, args ...any) {
	t.console.Error(at, code, format, args...)
	t.collect.Error(at, code, format, args...)
}

func (t *teeLogger) Warn(at loc.Span, code diag.Code, format string, args ...any) {
	t.console.Warn(at, code, format, args...)
	t.collect.Warn(at, code, format, args...)
}

func (t *teeLogger) Note(at loc.Span, code diag.Code, format string, args ...any) {
	t.console.Note(at, code, format, args...)
	t.collect.Note(at, code, format, args...)
}

func asTee(log diag.Logger) *teeLogger {
	t, ok := log.(*teeLogger)
	if !ok {
		panic("cmd/irc: scenarios expect a *teeLogger from newScenarioLogger")
	}
	return t
}

// S1: Build Abs(x: Nat, Var x) then App(it, Lit 3 : Nat). The reducer
// returns Lit 3 : Nat; the checker accepts the whole term.
func runS1(mod *ir.Module, log diag.Logger) (string, error) {
	x := mod.Var(mod.Nat, mod.NewLabel("x", loc.None), loc.None)
	identity := mod.Abs(x, x, loc.None)
	three := mod.IntLit(mod.Nat, 3, loc.None)
	app := mod.App(identity, three, mod.Nat, loc.None)

	reduced := ir.Reduce(mod, app)
	if reduced.Tag != ir.TagLit || reduced.Lit.Int != 3 {
		return "", fmt.Errorf("reduce(app) = %s, want Lit 3", reduced)
	}

	checked := check.Check(mod, log, app)
	if asTee(log).collect.HasErrors() {
		return "", fmt.Errorf("checker rejected a well-typed identity application")
	}
	return fmt.Sprintf("reduced to %s, checked as %s", reduced, checked.Type), nil
}

// S2: Let x = 1 in Let y = 2 in Var x. The simplifier drops the y binding;
// the result equals Let x = 1 in Var x.
func runS2(mod *ir.Module, _ diag.Logger) (string, error) {
	x := mod.Var(mod.Nat, mod.NewLabel("x", loc.None), loc.None)
	y := mod.Var(mod.Nat, mod.NewLabel("y", loc.None), loc.None)
	one := mod.IntLit(mod.Nat, 1, loc.None)
	two := mod.IntLit(mod.Nat, 2, loc.None)

	inner := mod.Let([]*ir.Node{y}, []*ir.Node{two}, x, loc.None)
	outer := mod.Let([]*ir.Node{x}, []*ir.Node{one}, inner, loc.None)

	if outer.Tag != ir.TagLet || len(outer.Vars) != 1 || outer.Vars[0] != x {
		return "", fmt.Errorf("simplify(Let x=1 in Let y=2 in x) = %s, want Let x=1 in x", outer)
	}
	return fmt.Sprintf("%s (y dropped)", outer), nil
}

// S3: Match (Inj(A, Lit 1)) with | Inj A v => v | Inj B v => Lit 0. The
// simplifier statically selects arm 1 and returns Lit 1.
func runS3(mod *ir.Module, _ diag.Logger) (string, error) {
	labelA := mod.NewLabel("A", loc.None)
	labelB := mod.NewLabel("B", loc.None)
	sumType := mod.Sum([]*ir.Node{mod.Nat, mod.Nat}, []*label.Label{labelA, labelB}, mod.Star, loc.None)

	scrutinee := mod.Inj(sumType, labelA, mod.IntLit(mod.Nat, 1, loc.None), loc.None)

	v1 := mod.Var(mod.Nat, mod.NewLabel("v", loc.None), loc.None)
	v2 := mod.Var(mod.Nat, mod.NewLabel("v", loc.None), loc.None)
	pat1 := mod.Inj(sumType, labelA, v1, loc.None)
	pat2 := mod.Inj(sumType, labelB, v2, loc.None)
	zero := mod.IntLit(mod.Nat, 0, loc.None)

	match := mod.Match(scrutinee, []*ir.Node{pat1, pat2}, []*ir.Node{v1, zero}, loc.None)
	if match.Tag != ir.TagLit || match.Lit.Int != 1 {
		return "", fmt.Errorf("simplify(match) = %s, want Lit 1", match)
	}
	return fmt.Sprintf("selected arm 1, result %s", match), nil
}

// S4: Letrec { f : Nat->Nat = Abs x (App f x); g : Nat = Lit 0 } in g. f is
// unreachable from the body and is dropped; the result is Let g = Lit 0 in g.
func runS4(mod *ir.Module, _ diag.Logger) (string, error) {
	fType := mod.Arrow(mod.UnboundVar(mod.Nat, loc.None), mod.Nat, loc.None)
	f := mod.Var(fType, mod.NewLabel("f", loc.None), loc.None)
	g := mod.Var(mod.Nat, mod.NewLabel("g", loc.None), loc.None)

	x := mod.Var(mod.Nat, mod.NewLabel("x", loc.None), loc.None)
	fBody := mod.App(f, x, mod.Nat, loc.None)
	fVal := mod.Abs(x, fBody, loc.None)
	gVal := mod.IntLit(mod.Nat, 0, loc.None)

	letrec := mod.Letrec([]*ir.Node{f, g}, []*ir.Node{fVal, gVal}, g, loc.None)
	if letrec.Tag != ir.TagLet || len(letrec.Vars) != 1 || letrec.Vars[0] != g {
		return "", fmt.Errorf("simplify(letrec) = %s, want Let g = 0 in g", letrec)
	}
	return fmt.Sprintf("%s (f dropped)", letrec), nil
}

// S5: Record{a->Ext(v,a), b->Ext(v,b)} where v : {a:Nat, b:Nat} simplifies
// to v.
func runS5(mod *ir.Module, _ diag.Logger) (string, error) {
	labelA := mod.NewLabel("a", loc.None)
	labelB := mod.NewLabel("b", loc.None)
	recType := mod.Prod([]*ir.Node{mod.Nat, mod.Nat}, []*label.Label{labelA, labelB}, mod.Star, loc.None)
	v := mod.Var(recType, mod.NewLabel("v", loc.None), loc.None)

	extA := mod.Ext(v, labelA, mod.Nat, loc.None)
	extB := mod.Ext(v, labelB, mod.Nat, loc.None)
	rebuilt := mod.Record([]*ir.Node{extA, extB}, []*label.Label{labelA, labelB}, recType, loc.None)

	if rebuilt != v {
		return "", fmt.Errorf("simplify(record-eta) = %s, want the original handle %s", rebuilt, v)
	}
	return fmt.Sprintf("collapsed to %s", rebuilt), nil
}

// S6: Checking App(Lit 3, Lit 4) with both as Nat produces an Err node and
// a single NonFunctionCallee diagnostic; no further diagnostic follows.
func runS6(mod *ir.Module, log diag.Logger) (string, error) {
	three := mod.IntLit(mod.Nat, 3, loc.None)
	four := mod.IntLit(mod.Nat, 4, loc.None)
	app := mod.App(three, four, mod.Nat, loc.None)

	result := check.Check(mod, log, app)
	entries := asTee(log).collect.Entries
	if result.Tag != ir.TagErr {
		return "", fmt.Errorf("check(app) = %s, want an Err node", result)
	}
	if len(entries) != 1 {
		return "", fmt.Errorf("got %d diagnostics, want exactly 1 (no cascade)", len(entries))
	}
	return fmt.Sprintf("rejected with one diagnostic: %s", entries[0].Message), nil
}
