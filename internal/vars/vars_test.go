package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVar uint64

func (t testVar) VarID() uint64 { return uint64(t) }

func elems(ids ...uint64) []Elem {
	out := make([]Elem, len(ids))
	for i, id := range ids {
		out[i] = testVar(id)
	}
	return out
}

func TestNewSortsAndInterns(t *testing.T) {
	in := NewInterner()

	a := in.New(elems(3, 1, 2))
	b := in.New(elems(1, 2, 3))

	require.Same(t, a, b, "equivalent inputs must intern to the same handle")
	assert.Equal(t, 3, a.Len())
	for i := 1; i < a.Len(); i++ {
		assert.Less(t, a.elems[i-1].VarID(), a.elems[i].VarID())
	}
}

func TestNewEmptyReturnsCanonicalEmpty(t *testing.T) {
	in := NewInterner()
	s := in.New(nil)
	assert.Same(t, in.Empty(), s)
}

func TestNewPanicsOnDuplicate(t *testing.T) {
	in := NewInterner()
	assert.Panics(t, func() {
		in.New(elems(1, 1))
	})
}

func TestUnionCommutativeIdempotentAssociative(t *testing.T) {
	in := NewInterner()
	a := in.New(elems(1, 2))
	b := in.New(elems(2, 3))
	c := in.New(elems(4))

	ab := in.Union(a, b)
	ba := in.Union(b, a)
	require.Same(t, ab, ba, "union must be commutative (shared handle)")

	aa := in.Union(a, a)
	require.Same(t, a, aa, "union must be idempotent")

	abc1 := in.Union(in.Union(a, b), c)
	abc2 := in.Union(a, in.Union(b, c))
	require.Same(t, abc1, abc2, "union must be associative")

	assert.Equal(t, 3, ab.Len())
}

func TestIntersectAndDiff(t *testing.T) {
	in := NewInterner()
	a := in.New(elems(1, 2, 3))
	b := in.New(elems(2, 3, 4))

	inter := in.Intersect(a, b)
	assert.Equal(t, []uint64{2, 3}, idsOf(inter))

	diff := in.Diff(a, b)
	assert.Equal(t, []uint64{1}, idsOf(diff))

	diffEmpty := in.Diff(a, in.Empty())
	assert.Same(t, a, diffEmpty)
}

func idsOf(s *Set) []uint64 {
	out := make([]uint64, s.Len())
	for i, e := range s.Elems() {
		out[i] = e.VarID()
	}
	return out
}

func TestContains(t *testing.T) {
	in := NewInterner()
	a := in.New(elems(1, 5, 9))

	assert.True(t, Contains(a, testVar(5)))
	assert.False(t, Contains(a, testVar(6)))
}

func TestContainsAny(t *testing.T) {
	in := NewInterner()
	a := in.New(elems(1, 2, 3))
	b := in.New(elems(10, 11, 3))
	c := in.New(elems(10, 11))

	assert.True(t, ContainsAny(a, b))
	assert.False(t, ContainsAny(a, c))
}
