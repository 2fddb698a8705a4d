package ir

import (
	"testing"

	"github.com/sunholo/irlang/internal/label"
	"github.com/sunholo/irlang/internal/loc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule() *Module {
	return NewModule(DefaultConfig())
}

func TestInterningSharesHandles(t *testing.T) {
	m := newTestModule()
	a := m.IntLit(m.Nat, 3, loc.None)
	b := m.IntLit(m.Nat, 3, loc.None)
	require.Same(t, a, b, "structurally equal nodes must share a handle")

	c := m.IntLit(m.Nat, 4, loc.None)
	assert.NotSame(t, a, c)
}

func TestArrowNonDependentUnbindsUnusedVar(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	arrow := m.Arrow(x, m.Nat, loc.None)
	assert.True(t, IsUnboundVar(arrow.Var), "var unused in codom must be replaced by an unbound placeholder")
}

func TestAbsEta(t *testing.T) {
	m := newTestModule()
	domType := m.Nat
	codomType := m.Nat
	fnType := m.Arrow(m.UnboundVar(domType, loc.None), codomType, loc.None)
	f := m.Var(fnType, m.NewLabel("f", loc.None), loc.None)
	x := m.Var(domType, m.NewLabel("x", loc.None), loc.None)
	app := m.App(f, x, codomType, loc.None)
	abs := m.Abs(x, app, loc.None)
	assert.Same(t, f, abs, "Abs(x, App(f, x)) must eta-reduce to f")
}

// S1: Build Abs(x: Nat, Var x) then App(it, Lit 3 : Nat). Reducer returns
// Lit 3 : Nat.
func TestScenarioS1(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	identity := m.Abs(x, x, loc.None)
	three := m.IntLit(m.Nat, 3, loc.None)
	app := m.App(identity, three, m.Nat, loc.None)

	reduced := Reduce(m, app)
	require.Equal(t, TagLit, reduced.Tag)
	assert.Equal(t, uint64(3), reduced.Lit.Int)
}

// S2: Let x = 1 in Let y = 2 in Var x. Simplifier drops the y binding.
func TestScenarioS2DropsUnusedBinding(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	y := m.Var(m.Nat, m.NewLabel("y", loc.None), loc.None)
	one := m.IntLit(m.Nat, 1, loc.None)
	two := m.IntLit(m.Nat, 2, loc.None)

	inner := m.Let([]*Node{y}, []*Node{two}, x, loc.None)
	outer := m.Let([]*Node{x}, []*Node{one}, inner, loc.None)

	require.Equal(t, TagLet, outer.Tag)
	assert.Len(t, outer.Vars, 1, "y must be dropped as unreachable from the body")
	assert.Same(t, x, outer.Vars[0])
}

func buildSumType(m *Module, labelA, labelB *label.Label) *Node {
	return m.Sum([]*Node{m.Nat, m.Nat}, []*label.Label{labelA, labelB}, m.Star, loc.None)
}

// S3: Match (Inj(A, Lit 1)) with | Inj A v => v | Inj B v => Lit 0.
// Simplifier selects arm 1 and returns Lit 1.
func TestScenarioS3MatchSelectsArm(t *testing.T) {
	m := newTestModule()
	labelA := m.NewLabel("A", loc.None)
	labelB := m.NewLabel("B", loc.None)
	sumType := buildSumType(m, labelA, labelB)

	scrutinee := m.Inj(sumType, labelA, m.IntLit(m.Nat, 1, loc.None), loc.None)

	v1 := m.Var(m.Nat, m.NewLabel("v", loc.None), loc.None)
	v2 := m.Var(m.Nat, m.NewLabel("v", loc.None), loc.None)
	pat1 := m.Inj(sumType, labelA, v1, loc.None)
	pat2 := m.Inj(sumType, labelB, v2, loc.None)

	zero := m.IntLit(m.Nat, 0, loc.None)
	match := m.Match(scrutinee, []*Node{pat1, pat2}, []*Node{v1, zero}, loc.None)

	require.Equal(t, TagLit, match.Tag, "a statically-selected arm must collapse the Match entirely")
	assert.Equal(t, uint64(1), match.Lit.Int)
}

// S4: Letrec { f : Nat->Nat = Abs x (App f x); g : Nat = Lit 0 } in g.
// f is unreachable from the body and is dropped; g remains a plain Let.
func TestScenarioS4LetrecDropsUnreachableBinding(t *testing.T) {
	m := newTestModule()
	fType := m.Arrow(m.UnboundVar(m.Nat, loc.None), m.Nat, loc.None)
	f := m.Var(fType, m.NewLabel("f", loc.None), loc.None)
	g := m.Var(m.Nat, m.NewLabel("g", loc.None), loc.None)

	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	fBody := m.App(f, x, m.Nat, loc.None)
	fVal := m.Abs(x, fBody, loc.None)
	gVal := m.IntLit(m.Nat, 0, loc.None)

	letrec := m.Letrec([]*Node{f, g}, []*Node{fVal, gVal}, g, loc.None)

	require.Equal(t, TagLet, letrec.Tag, "g has no self-cycle, so it collapses to a Let")
	require.Len(t, letrec.Vars, 1)
	assert.Same(t, g, letrec.Vars[0])
	assert.Same(t, gVal, letrec.Vals[0])
}

// S5: Record{a↦Ext(v,a), b↦Ext(v,b)} where v : {a:Nat, b:Nat} simplifies
// to v.
func TestScenarioS5RecordEta(t *testing.T) {
	m := newTestModule()
	labelA := m.NewLabel("a", loc.None)
	labelB := m.NewLabel("b", loc.None)
	recType := m.Prod([]*Node{m.Nat, m.Nat}, []*label.Label{labelA, labelB}, m.Star, loc.None)
	v := m.Var(recType, m.NewLabel("v", loc.None), loc.None)

	extA := m.Ext(v, labelA, m.Nat, loc.None)
	extB := m.Ext(v, labelB, m.Nat, loc.None)
	rebuilt := m.Record([]*Node{extA, extB}, []*label.Label{labelA, labelB}, recType, loc.None)

	assert.Same(t, v, rebuilt)
}

// S6: Checking App(Lit 3, Lit 4) belongs to internal/check; here we only
// confirm the IR layer's precondition-facing shape (App over two Lits)
// constructs without panicking, since the checker — not the interner —
// is responsible for rejecting a non-function callee.
func TestScenarioS6AppOverLiteralsConstructs(t *testing.T) {
	m := newTestModule()
	three := m.IntLit(m.Nat, 3, loc.None)
	four := m.IntLit(m.Nat, 4, loc.None)
	app := m.App(three, four, m.Nat, loc.None)
	assert.Equal(t, TagApp, app.Tag)
}

func TestFreeVarsExcludesBoundVariable(t *testing.T) {
	m := newTestModule()
	labelX := m.NewLabel("x", loc.None)
	x := m.Var(m.Nat, labelX, loc.None)
	abs := m.Abs(x, x, loc.None)
	assert.True(t, abs.FreeVars.IsEmpty(), "the abstraction's own parameter must not appear in its free variables")
}

func TestTypeLadderReachesUni(t *testing.T) {
	m := newTestModule()
	n := m.IntLit(m.Nat, 1, loc.None)
	cur := n
	for i := 0; i < 8 && cur.Tag != TagUni; i++ {
		cur = cur.Type
	}
	assert.Equal(t, TagUni, cur.Tag, "walking .Type must eventually reach Uni")
}

func TestSubstitutionIdentityAndCollapse(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	y := m.Var(m.Nat, m.NewLabel("y", loc.None), loc.None)
	body := m.Abs(y, x, loc.None)

	same := ReplaceVars(m, body, nil, nil)
	assert.Same(t, body, same, "replace(n, [], []) = n")

	three := m.IntLit(m.Nat, 3, loc.None)
	once := ReplaceVar(m, body, x, three)
	assert.Same(t, three, once.Body)
}

func TestGetModuleRecoversOwner(t *testing.T) {
	m := newTestModule()
	n := m.IntLit(m.Nat, 1, loc.None)
	assert.Same(t, m, GetModule(n))
}

func TestIsPatAndIsTrivialPat(t *testing.T) {
	m := newTestModule()
	v := m.Var(m.Nat, m.NewLabel("v", loc.None), loc.None)
	lit := m.IntLit(m.Nat, 1, loc.None)

	assert.True(t, IsPat(v))
	assert.True(t, IsTrivialPat(v))
	assert.True(t, IsPat(lit))
	assert.False(t, IsTrivialPat(lit))
}

// Invariant 6: reduce(reduce(n)) = reduce(n) on terminating inputs.
func TestReduceIsIdempotent(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	identity := m.Abs(x, x, loc.None)
	three := m.IntLit(m.Nat, 3, loc.None)
	app := m.App(identity, three, m.Nat, loc.None)

	once := Reduce(m, app)
	twice := Reduce(m, once)
	assert.Same(t, once, twice, "reducing an already-reduced term must be a no-op")
}

// Invariant 7: simplification is idempotent — rebuilding a node from its own
// already-simplified parts yields the same handle, not a fresh one.
func TestSimplificationIsIdempotent(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	y := m.Var(m.Nat, m.NewLabel("y", loc.None), loc.None)
	one := m.IntLit(m.Nat, 1, loc.None)
	two := m.IntLit(m.Nat, 2, loc.None)

	inner := m.Let([]*Node{y}, []*Node{two}, x, loc.None)
	outer := m.Let([]*Node{x}, []*Node{one}, inner, loc.None)

	rebuilt := m.Let([]*Node{outer.Vars[0]}, []*Node{outer.Vals[0]}, outer.Body, outer.Loc)
	assert.Same(t, outer, rebuilt, "rebuilding an already-simplified Let must return the same handle")
}

// Invariant 8: simplify(Ext(Record{…, ℓ↦e,…}, ℓ)) = e, and the analogous
// fold for Ext over a matching Inj.
func TestExtFoldsOverRecordAndInj(t *testing.T) {
	m := newTestModule()
	labelA := m.NewLabel("a", loc.None)
	labelB := m.NewLabel("b", loc.None)
	recType := m.Prod([]*Node{m.Nat, m.Nat}, []*label.Label{labelA, labelB}, m.Star, loc.None)

	one := m.IntLit(m.Nat, 1, loc.None)
	two := m.IntLit(m.Nat, 2, loc.None)
	rec := m.Record([]*Node{one, two}, []*label.Label{labelA, labelB}, recType, loc.None)

	ext := m.Ext(rec, labelB, m.Nat, loc.None)
	assert.Same(t, two, ext, "Ext over a Record with a matching field folds to that field's value")

	sumType := buildSumType(m, labelA, labelB)
	inj := m.Inj(sumType, labelA, one, loc.None)

	extMatching := m.Ext(inj, labelA, m.Nat, loc.None)
	assert.Same(t, one, extMatching, "Ext over an Inj with a matching label folds to the payload")

	extMismatched := m.Ext(inj, labelB, m.Nat, loc.None)
	require.Equal(t, TagBot, extMismatched.Tag, "Ext over an Inj with a mismatched label folds to Bot")
}

// Invariant 9: for a letrec with a genuine mutual cycle, simplify must keep
// both cyclic bindings together in one Letrec rather than splitting them
// into separate Lets — the binder set of that Letrec is a non-trivial SCC
// of the use-graph restricted to the body-reachable set.
func TestLetrecKeepsNonTrivialSCCTogether(t *testing.T) {
	m := newTestModule()
	fType := m.Arrow(m.UnboundVar(m.Nat, loc.None), m.Nat, loc.None)
	gType := m.Arrow(m.UnboundVar(m.Nat, loc.None), m.Nat, loc.None)
	f := m.Var(fType, m.NewLabel("f", loc.None), loc.None)
	g := m.Var(gType, m.NewLabel("g", loc.None), loc.None)

	n := m.Var(m.Nat, m.NewLabel("n", loc.None), loc.None)
	// f n = g n; g n = f n — f and g call each other, a genuine 2-cycle.
	fVal := m.Abs(n, m.App(g, n, m.Nat, loc.None), loc.None)
	gVal := m.Abs(n, m.App(f, n, m.Nat, loc.None), loc.None)

	letrec := m.Letrec([]*Node{f, g}, []*Node{fVal, gVal}, f, loc.None)

	require.Equal(t, TagLetrec, letrec.Tag, "a genuine mutual cycle must not collapse to a Let")
	assert.Len(t, letrec.Vars, 2, "both cyclic bindings belong to the same SCC")
	assert.ElementsMatch(t, []*Node{f, g}, letrec.Vars)
}
