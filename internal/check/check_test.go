package check

import (
	"testing"

	"github.com/sunholo/irlang/internal/diag"
	"github.com/sunholo/irlang/internal/ir"
	"github.com/sunholo/irlang/internal/loc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule() *ir.Module {
	return ir.NewModule(ir.DefaultConfig())
}

// The fixtures below build raw, uninterned ir.Node literals by hand rather
// than through the module's constructors. That mirrors what the
// (out-of-scope) AST-to-IR lowering pass actually hands the checker: plain,
// not-yet-canonical struct values, sometimes missing a type annotation
// entirely (spec.md §4.7's Undef prototype / unannotated Let binder).
// Constructing them via m.Var/m.Let etc. instead would intern and simplify
// them immediately, which defeats the point of exercising the checker at
// all on scenarios like an unannotated binder or a dead letrec binding.

func TestCheckLitDefaultsToNat(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}
	raw := &ir.Node{Tag: ir.TagLit, Lit: ir.LitValue{Kind: ir.IntLit, Int: 3}}

	result := Check(m, log, raw)
	require.False(t, log.HasErrors())
	assert.Same(t, m.Nat, result.Type)
	assert.Equal(t, uint64(3), result.Lit.Int)
}

func TestCheckLitRejectsWrongPrototype(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}
	annotated := &ir.Node{Tag: ir.TagLit, Type: &ir.Node{Tag: ir.TagStar}, Lit: ir.LitValue{Kind: ir.IntLit, Int: 3}}

	c := New(m, log)
	result := c.check(annotated, nil)
	assert.True(t, log.HasErrors())
	assert.Equal(t, ir.TagErr, result.Type.Tag)
}

func TestCheckVarUnknownIdentifier(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}
	lbl := m.NewLabel("x", loc.None)
	raw := &ir.Node{Tag: ir.TagVar, Label: lbl}

	result := Check(m, log, raw)
	assert.True(t, log.HasErrors())
	assert.Equal(t, ir.TagErr, result.Tag)
}

// S6: Checking App(Lit 3, Lit 4) with both as Nat produces an Err node
// and a single NonFunctionCallee diagnostic; no further diagnostic is
// emitted inside.
func TestScenarioS6NonFunctionCallee(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}
	three := &ir.Node{Tag: ir.TagLit, Type: m.Nat, Lit: ir.LitValue{Kind: ir.IntLit, Int: 3}}
	four := &ir.Node{Tag: ir.TagLit, Type: m.Nat, Lit: ir.LitValue{Kind: ir.IntLit, Int: 4}}
	app := &ir.Node{Tag: ir.TagApp, Left: three, Right: four}

	result := Check(m, log, app)
	require.Len(t, log.Entries, 1, "no cascade diagnostic may follow the callee error")
	assert.Equal(t, diag.SeverityError, log.Entries[0].Severity)
	assert.Equal(t, ir.TagErr, result.Tag)
}

func TestCheckLetInfersUnannotatedBinder(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}

	lbl := m.NewLabel("x", loc.None)
	xPat := &ir.Node{Tag: ir.TagVar, Label: lbl} // no .Type: unannotated
	one := &ir.Node{Tag: ir.TagLit, Lit: ir.LitValue{Kind: ir.IntLit, Int: 1}}
	xRef := &ir.Node{Tag: ir.TagVar, Label: lbl}
	let := &ir.Node{Tag: ir.TagLet, Vars: []*ir.Node{xPat}, Vals: []*ir.Node{one}, Body: xRef}

	result := Check(m, log, let)
	require.False(t, log.HasErrors())
	require.Equal(t, ir.TagLet, result.Tag)
	assert.Same(t, m.Nat, result.Vars[0].Type, "x's inferred type must flow from its value")
}

func TestCheckLetrecRequiresAnnotation(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}

	fPat := &ir.Node{Tag: ir.TagVar, Label: m.NewLabel("f", loc.None)} // no .Type
	body := &ir.Node{Tag: ir.TagLit, Lit: ir.LitValue{Kind: ir.IntLit, Int: 0}}
	letrec := &ir.Node{Tag: ir.TagLetrec, Vars: []*ir.Node{fPat}, Vals: []*ir.Node{fPat}, Body: body}

	Check(m, log, letrec)
	assert.True(t, log.HasErrors())
}

func TestCheckLetrecAcceptsAnnotatedForwardReference(t *testing.T) {
	m := newTestModule()
	log := &diag.CollectingLogger{}

	natAnnotation := &ir.Node{Tag: ir.TagNat}
	fLbl := m.NewLabel("f", loc.None)
	gLbl := m.NewLabel("g", loc.None)
	fPat := &ir.Node{Tag: ir.TagVar, Type: natAnnotation, Label: fLbl}
	gPat := &ir.Node{Tag: ir.TagVar, Type: natAnnotation, Label: gLbl}
	gRef := &ir.Node{Tag: ir.TagVar, Label: gLbl}
	body := &ir.Node{Tag: ir.TagVar, Label: fLbl}
	letrec := &ir.Node{
		Tag:  ir.TagLetrec,
		Vars: []*ir.Node{fPat, gPat},
		Vals: []*ir.Node{gRef, &ir.Node{Tag: ir.TagLit, Lit: ir.LitValue{Kind: ir.IntLit, Int: 0}}},
		Body: body,
	}

	Check(m, log, letrec)
	assert.False(t, log.HasErrors())
}

// Invariant 10: check(check(n)) = check(n) modulo Err nodes — re-checking
// an already-checked, well-typed term must be a no-op, not a fresh rebuild.
func TestCheckIsFixedPoint(t *testing.T) {
	m := newTestModule()
	x := m.Var(m.Nat, m.NewLabel("x", loc.None), loc.None)
	identity := m.Abs(x, x, loc.None)
	three := m.IntLit(m.Nat, 3, loc.None)
	app := m.App(identity, three, m.Nat, loc.None)

	log := &diag.CollectingLogger{}
	once := Check(m, log, app)
	require.False(t, log.HasErrors())

	log2 := &diag.CollectingLogger{}
	twice := Check(m, log2, once)
	assert.False(t, log2.HasErrors())
	assert.Same(t, once, twice, "checking an already-checked term must be a no-op")
}
