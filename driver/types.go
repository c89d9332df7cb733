package driver

import (
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/obligation"
)

// ssaParamType adapts a go/types.Type to the annotation.Type interface
// the oracle queries, using the type's string form as its name. The
// builtin-immutable-type table in annotation/immutable.go matches on
// exactly this form (e.g. "string", "context.Context").
type ssaParamType struct{ t types.Type }

func (s ssaParamType) Name() string { return s.t.String() }

func newParamAliasSet(name string, mcs obligation.MCS) *obligation.AliasSet {
	return obligation.NewAliasSet(name, mcs, obligation.ProvenanceParameter, true)
}

// paramLoc adapts an *ssa.Parameter to the annotation.Location facade so
// the oracle's Owning query (§4.2) can be asked of it, the same way
// fieldLoc adapts a struct field in declcheck.go.
type paramLoc struct {
	v *types.Var
	t types.Type
}

func paramLocation(p *ssa.Parameter) paramLoc {
	v, _ := p.Object().(*types.Var)
	return paramLoc{v: v, t: p.Type()}
}

func (p paramLoc) IsField() bool                  { return false }
func (p paramLoc) IsStaticField() bool            { return false }
func (p paramLoc) IsFinalField() bool             { return false }
func (p paramLoc) EnclosingType() annotation.Type { return nil }
func (p paramLoc) DeclaredType() annotation.Type {
	if n, ok := p.t.(*types.Named); ok {
		return namedType{n}
	}
	return plainType{p.t}
}
func (p paramLoc) Name() string {
	if p.v != nil {
		return p.v.Name()
	}
	return ""
}
