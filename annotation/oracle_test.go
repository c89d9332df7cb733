package annotation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/obligation"
)

type fakeType struct{ name string }

func (t fakeType) Name() string { return t.name }

type fakeMethod struct{ name string }

func (m fakeMethod) Name() string                 { return m.name }
func (m fakeMethod) Overrides() []annotation.Method { return nil }

func TestMustCallOfBuiltinImmutable(t *testing.T) {
	a := assert.New(t)
	oracle := annotation.NewOracle(annotation.NewFacts())

	mcs, ok := oracle.MustCallOf(fakeType{"string"})
	a.True(ok)
	a.True(mcs.Empty())
}

func TestMustCallOfUnannotatedUserTypeIsTop(t *testing.T) {
	a := assert.New(t)
	oracle := annotation.NewOracle(annotation.NewFacts())

	_, ok := oracle.MustCallOf(fakeType{"mypkg.Resource"})
	a.False(ok, "unannotated user type must report top (unknown)")
}

func TestMustCallOfDeclared(t *testing.T) {
	a := assert.New(t)
	facts := annotation.NewFacts()
	facts.MustCall["mypkg.Resource"] = obligation.NewMCS("Close")

	oracle := annotation.NewOracle(facts)
	mcs, ok := oracle.MustCallOf(fakeType{"mypkg.Resource"})
	a.True(ok)
	a.True(mcs.Equal(obligation.NewMCS("Close")))
}

func TestCreatesMustCallForDefaultsToThis(t *testing.T) {
	a := assert.New(t)
	facts := annotation.NewFacts()
	m := fakeMethod{"realloc"}
	facts.DeclareCMCF(m)

	oracle := annotation.NewOracle(facts)
	a.Equal([]string{"this"}, oracle.CreatesMustCallFor(m))
}

func TestCreatesMustCallForExplicitTargets(t *testing.T) {
	a := assert.New(t)
	facts := annotation.NewFacts()
	m := fakeMethod{"realloc"}
	facts.DeclareCMCF(m, "this.resource")

	oracle := annotation.NewOracle(facts)
	a.Equal([]string{"this.resource"}, oracle.CreatesMustCallFor(m))
}

func TestCreatesMustCallForAbsentWhenUnannotated(t *testing.T) {
	a := assert.New(t)
	oracle := annotation.NewOracle(annotation.NewFacts())
	a.Nil(oracle.CreatesMustCallFor(fakeMethod{"plain"}))
}

func TestAdaptBindsThisAndPositionalArgs(t *testing.T) {
	a := assert.New(t)
	out := annotation.Adapt("this.resource", "recv", nil)
	a.Equal("recv.resource", out)

	out = annotation.Adapt("#1", "recv", []string{"arg0"})
	a.Equal("arg0", out)
}
