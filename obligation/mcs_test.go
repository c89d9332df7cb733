package obligation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/cockroachdb/rlcheck/obligation"
)

func TestMCSLattice(t *testing.T) {
	a := assert.New(t)

	empty := obligation.NewMCS()
	a.True(empty.Empty())

	closeOnly := obligation.NewMCS("close")
	closeAndFlush := obligation.NewMCS("close", "flush")

	a.True(closeOnly.SubsetOf(closeAndFlush))
	a.False(closeAndFlush.SubsetOf(closeOnly))

	union := closeOnly.Union(obligation.NewMCS("flush"))
	a.True(union.Equal(closeAndFlush))

	remaining := closeAndFlush.Minus(obligation.NewMCS("close"))
	a.True(remaining.Equal(obligation.NewMCS("flush")))
}

func TestMCSSortedIsDeterministic(t *testing.T) {
	a := assert.New(t)
	m := obligation.NewMCS("zeta", "alpha", "mu")
	a.Equal([]string{"alpha", "mu", "zeta"}, m.Sorted())
}

func TestObligationCanonicalization(t *testing.T) {
	a := assert.New(t)
	o1 := obligation.New("this.resource", "close", obligation.NormalReturn)
	o2 := obligation.New("  resource  ", "close", obligation.NormalReturn)
	a.True(o1.Equal(o2))
}

func TestAliasSetMergeUnion(t *testing.T) {
	a := assert.New(t)

	s1 := obligation.NewAliasSet("r", obligation.NewMCS("close"), obligation.ProvenanceAllocation, true)
	s2 := obligation.NewAliasSet("r2", obligation.NewMCS("close"), obligation.ProvenanceAllocation, true)
	s2.Discharge("close", obligation.NormalReturn)

	s1.MergeInto(s2)

	a.True(s1.Has("r"))
	a.True(s1.Has("r2"))
	// Union/conservative join: since s1 never discharged "close" on
	// NormalReturn, the merged pending set still carries it.
	a.True(s1.PendingOn(obligation.NormalReturn).Contains("close"))
}

func TestAliasSetReinstateCMCF(t *testing.T) {
	a := assert.New(t)
	s := obligation.NewAliasSet("this", obligation.NewMCS("close"), obligation.ProvenanceParameter, true)
	s.Discharge("close", obligation.NormalReturn, obligation.ExceptionalExit)
	a.True(s.PendingOn(obligation.NormalReturn).Empty())

	s.Reinstate(obligation.NormalReturn)
	a.True(s.PendingOn(obligation.NormalReturn).Contains("close"))
	// AlreadyCalled is untouched by reinstatement.
	a.True(s.AlreadyCalled.Contains("close"))
}

func TestMCSUnionSortedOrder(t *testing.T) {
	got := obligation.NewMCS("flush", "open").Union(obligation.NewMCS("close")).Sorted()
	want := []string{"close", "flush", "open"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Union().Sorted() mismatch (-want +got):\n%s", diff)
	}
}
