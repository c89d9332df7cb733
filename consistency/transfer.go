package consistency

import (
	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/diagnostic"
	"github.com/cockroachdb/rlcheck/obligation"
)

// applyAssign implements the Assignment transfer function of §4.4: if
// the left-hand expression previously headed an owning alias set with
// outstanding pending obligations on some exit kind, overwriting it
// without discharging is a leak on every exit kind it's still pending
// on (the old value becomes unreachable on every path through here).
func applyAssign(state *State, reporter diagnostic.Reporter, instr Assign) {
	if prev, ok := state.Reassign(instr.LHS); ok {
		if prev.Empty() {
			reportIfLeaking(reporter, instr.Element, prev)
			state.Forget(prev)
		}
	}
	if !instr.RHSTracked {
		return
	}
	if rhsSet, ok := state.Lookup(instr.RHS); ok {
		state.Alias(rhsSet, instr.LHS)
		return
	}
	// RHS isn't tracked as an alias set member (e.g. a borrowed / non-
	// owning expression momentarily assigned); nothing to propagate.
}

// applyAlloc implements the Allocation transfer function: a fresh
// owning alias set is created for instr.LHS when the allocated type's
// MCS is non-empty and the allocation is owning.
func applyAlloc(state *State, instr Alloc) {
	if !instr.Owning || instr.MCS.Empty() {
		return
	}
	as := obligation.NewAliasSet(instr.LHS, instr.MCS, obligation.ProvenanceAllocation, true)
	state.Track(as)
}

// applyFieldStore implements `this.field = x`. isConstructor gates the
// invariant-4(c) scope-exit behavior; outside a constructor this is
// treated as an ordinary non-discharging alias (storing into a field
// the procedure doesn't own the lifetime of doesn't relieve it of its
// own obligation, per §3 invariant 4's explicit three-mechanism list).
func applyFieldStore(state *State, reporter diagnostic.Reporter, isConstructor bool, instr FieldStore) {
	rhsSet, ok := state.Lookup(instr.RHS)
	if !ok {
		return
	}
	state.Alias(rhsSet, "this."+instr.Field)
	if isConstructor {
		rhsSet.Pending[obligation.NormalReturn] = obligation.MCS{}
	}
}

// applyCallNormal implements the Method-call transfer function's
// normal-return continuation (§4.4): requires-checked against
// AlreadyCalled, the call itself discharges Method on the receiver's
// alias set for every exit kind (a method call happens unconditionally
// once control reaches here, so it satisfies both a normal-return and
// an exceptional-exit requirement equally), owning arguments are
// considered transferred to the callee (removed from this procedure's
// tracking), and CMCF targets are reinstated.
func applyCallNormal(state *State, reporter diagnostic.Reporter, call Call) {
	applyRequires(state, reporter, call)

	if recv, ok := state.Lookup(call.Receiver); ok {
		recv.Discharge(call.Method, obligation.NormalReturn, obligation.ExceptionalExit)
	}
	applyEnsures(state, call.EnsuresNormal)

	for _, arg := range call.Args {
		if !arg.Owning {
			continue
		}
		if as, ok := state.Lookup(arg.Expr); ok {
			state.Forget(as)
		}
	}

	for _, target := range call.CMCFTargets {
		if as, ok := state.Lookup(target); ok {
			as.Reinstate(obligation.NormalReturn)
			as.Reinstate(obligation.ExceptionalExit)
		}
	}
}

// applyCallException implements the exceptional-edge continuation of
// the same call: per §4.4 "the asymmetry is central" - ownership of
// owning arguments remains with the caller, since the callee's own
// exceptional exit does not guarantee it discharged them. Only the
// exceptional-exit ensures-postconditions apply, and CMCF (a
// normal-return-only effect) is not reinstated.
func applyCallException(state *State, reporter diagnostic.Reporter, call Call) {
	applyRequires(state, reporter, call)

	if recv, ok := state.Lookup(call.Receiver); ok {
		recv.Discharge(call.Method, obligation.ExceptionalExit)
	}
	applyEnsures(state, call.EnsuresExceptional)
}

// applyRequires checks the call's requires-called-methods precondition
// against each named alias set's AlreadyCalled record; an unsatisfied
// precondition is reported as an internal-facing leak-adjacent
// diagnostic at this call site (the callee assumed a method had already
// been invoked that the caller never called).
func applyRequires(state *State, reporter diagnostic.Reporter, call Call) {
	for _, req := range call.Requires {
		as, ok := state.Lookup(req.Expression)
		if !ok {
			continue
		}
		for _, m := range req.Methods {
			if _, called := as.AlreadyCalled[m]; !called {
				reporter.Report(call.Element, diagnostic.RequiredMethodNotCalled, req.Expression, m)
			}
		}
	}
}

// applyEnsures folds an ensures-called-methods postcondition into the
// callee-side knowledge of the named expression's alias set: the
// callee guarantees these methods were called along this outcome, so
// they're discharged here without the caller having called them
// itself.
func applyEnsures(state *State, entries []annotation.EnsuresEntry) {
	for _, entry := range entries {
		as, ok := state.Lookup(entry.Expression)
		if !ok {
			continue
		}
		for _, m := range entry.Methods {
			as.Discharge(m, entry.Exit)
		}
	}
}

// reportIfLeaking reports a single RequiredMethodNotCalled diagnostic,
// carrying the union of still-missing methods across every exit kind, for
// an owning alias set that becomes unreachable (its last member
// reassigned over, see applyAssign) without being discharged. This is not an
// exit-time check — the assignment point isn't itself an exit kind, so
// unlike checkReturn/checkExceptionalExit (which each scope to the one
// exit kind they guard) this reports one diagnostic per leaked alias set
// rather than one per (exit-kind, method) pair, per §8 Outputs ("one per
// distinct leak").
func reportIfLeaking(reporter diagnostic.Reporter, element diagnostic.Element, as *obligation.AliasSet) {
	if !as.Owning {
		return
	}
	missing := obligation.MCS{}
	for _, exit := range obligation.ExitKinds {
		missing = missing.Union(as.PendingOn(exit))
	}
	if missing.Empty() {
		return
	}
	reporter.Report(element, diagnostic.RequiredMethodNotCalled, missing.Sorted())
}
