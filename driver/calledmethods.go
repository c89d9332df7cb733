package driver

import "github.com/cockroachdb/rlcheck/consistency"

// calledMethods is a deliberately simplified stand-in for the "called
// methods" sub-analysis §6 lists as a consumed collaborator
// (calledMethodsAt(programPoint, expression) -> set<string>). A real
// implementation tracks, per program point, which methods are already
// known to have been called on an expression along every path reaching
// it - itself a small dataflow analysis, and explicitly out of scope
// for this core (§1: "this component assumes the called-methods
// analysis... already exists"). This stand-in always reports nothing
// called. Driver.Run constructs one, but the consistency analyzer does
// not consult it (requires-preconditions are checked against each alias
// set's own AlreadyCalled record), so it has no effect on diagnostics.
type calledMethods struct{}

func newCalledMethods() consistency.CalledMethods { return calledMethods{} }

func (calledMethods) CalledMethodsAt(consistency.ProgramPoint, string) map[string]bool {
	return nil
}
