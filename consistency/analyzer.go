package consistency

import (
	"sort"

	"github.com/cockroachdb/rlcheck/diagnostic"
	"github.com/cockroachdb/rlcheck/obligation"
)

// Analyzer walks one procedure's CFG to fixpoint, applying the §4.4
// transfer functions and reporting leaks at normal and exceptional
// exits. One Analyzer is constructed per procedure being checked; it
// holds no state shared across procedures.
type Analyzer struct {
	Reporter diagnostic.Reporter
	// Element anchors diagnostics that have no single program point,
	// namely an exceptional-exit leak accumulated across every throwing
	// path in the procedure.
	Element diagnostic.Element
	// IsConstructor gates the "this in a constructor" normal-return
	// exemption (§4.4's Return rule) and FieldStore's scope-exit
	// discharge (invariant 4(c)).
	IsConstructor bool
	// ReceiverExpr is the canonical expression for the receiver ("this"),
	// used by the constructor exemption above. Empty for static methods.
	ReceiverExpr string
	// ReturnIsOwning is whether this procedure's declared return is
	// owning (oracle.NotOwningReturn negated), gating the "the returned
	// expression itself" exemption.
	ReturnIsOwning bool
	// PermitUncheckedExceptions implements the config flag of the same
	// name (§6): when set, a leak reached only through a ThrowTerm
	// matching the configured ignored-exceptions list (§4.4 "Ignored
	// exceptions") is downgraded to a non-fatal warning and not reported
	// through a.Reporter - it never suppresses a leak reachable through
	// any non-ignored path, and a throw not marked Ignored is completely
	// unaffected by this flag (Scenario S2).
	PermitUncheckedExceptions bool
}

// Analyze runs the fixpoint over cfg starting from entry (the initial
// state, already seeded by the driver with the procedure's owning
// parameters as singleton alias sets per §6). Leaks are reported
// directly to a.Reporter: assignment leaks as they're found, return and
// exceptional-exit leaks once the fixpoint has settled. Analyze itself
// returns nothing; it's the reporter's accumulation the caller inspects.
func (a *Analyzer) Analyze(cfg *CFG, entry *State) {
	in := map[int]*State{cfg.Entry.ID: entry}
	queued := map[int]bool{cfg.Entry.ID: true}
	worklist := []*Block{cfg.Entry}
	// exceptional accumulates every exceptional-exit path whose fault
	// isn't excused by the ignored-exceptions policy; ignoredExceptional
	// accumulates the excused ones separately, so PermitUncheckedExceptions
	// can gate their reporting without touching the unexcused pool
	// (§4.4 "Ignored exceptions", Scenario S2).
	var exceptional, ignoredExceptional *State

	// returnStates records, per return block, the most recently computed
	// post-instruction state and its terminator. A block can be dequeued
	// more than once before its incoming state stabilizes (§4.4's
	// termination argument allows repeated visits en route to the
	// fixpoint), so leaks are not reported here; the entry is simply
	// overwritten on each visit and checked once, after the fixpoint
	// settles, to keep the reported leak set independent of worklist
	// iteration order (P6).
	returnStates := map[int]returnVisit{}

	// Bound the number of times any one block may be re-processed: the
	// MCS lattice is finite (bounded by the union of every type's
	// declared must-call set in the program), so a state fingerprint can
	// only change finitely many times before it stabilizes (§4.4's
	// termination argument). This cap is a backstop against a malformed
	// CFG with an unreachable fixpoint, not the primary termination
	// mechanism.
	visits := make(map[int]int)
	const maxVisitsPerBlock = 4096

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		queued[b.ID] = false
		visits[b.ID]++
		if visits[b.ID] > maxVisitsPerBlock {
			continue
		}

		cur := in[b.ID].Clone()
		for _, instr := range b.Instrs {
			a.applyInstr(cur, instr)
		}

		switch term := b.Term.(type) {
		case Goto:
			a.propagate(in, queued, &worklist, term.Next, cur)
		case Branch:
			for _, s := range term.Succs {
				a.propagate(in, queued, &worklist, s, cur.Clone())
			}
		case CallTerm:
			normalState := cur.Clone()
			applyCallNormal(normalState, a.Reporter, term.Call)
			exceptionState := cur.Clone()
			applyCallException(exceptionState, a.Reporter, term.Call)

			if term.NormalSucc != nil {
				a.propagate(in, queued, &worklist, term.NormalSucc, normalState)
			}
			if term.ExceptionalSucc != nil {
				a.propagate(in, queued, &worklist, term.ExceptionalSucc, exceptionState)
			} else {
				exceptional = Join(exceptional, exceptionState)
			}
		case ReturnTerm:
			returnStates[b.ID] = returnVisit{state: cur, term: term}
		case ThrowTerm:
			if term.Ignored {
				ignoredExceptional = Join(ignoredExceptional, cur)
			} else {
				exceptional = Join(exceptional, cur)
			}
		}
	}

	blockIDs := make([]int, 0, len(returnStates))
	for id := range returnStates {
		blockIDs = append(blockIDs, id)
	}
	sort.Ints(blockIDs)
	for _, id := range blockIDs {
		rv := returnStates[id]
		a.checkReturn(rv.state, rv.term)
	}

	a.checkExceptionalExit(exceptional)
	if !a.PermitUncheckedExceptions {
		a.checkExceptionalExit(ignoredExceptional)
	}
}

// returnVisit holds the last-computed state and terminator for a return
// block, so it can be checked once after the fixpoint settles rather
// than on every worklist visit.
type returnVisit struct {
	state *State
	term  ReturnTerm
}

func (a *Analyzer) applyInstr(state *State, instr Instr) {
	switch v := instr.(type) {
	case Assign:
		applyAssign(state, a.Reporter, v)
	case Alloc:
		applyAlloc(state, v)
	case FieldStore:
		applyFieldStore(state, a.Reporter, a.IsConstructor, v)
	case MethodCall:
		applyCallNormal(state, a.Reporter, v.Call)
	}
}

// propagate merges s into the recorded incoming state of block b and
// re-enqueues b if that changed anything (§4.4 "Merge").
func (a *Analyzer) propagate(in map[int]*State, queued map[int]bool, worklist *[]*Block, b *Block, s *State) {
	existing, ok := in[b.ID]
	if !ok {
		in[b.ID] = s
	} else {
		joined := Join(existing, s)
		if joined.Fingerprint() == existing.Fingerprint() {
			return
		}
		in[b.ID] = joined
	}
	if !queued[b.ID] {
		queued[b.ID] = true
		*worklist = append(*worklist, b)
	}
}

// checkReturn implements the Return transfer function of §4.4: every
// still-pending NORMAL_RETURN obligation on every owning alias set is a
// leak, except the alias set of the returned expression itself (when
// the procedure's return is owning) and, in a constructor, the
// receiver's own alias set (validated instead by the declaration
// checker against the enclosing type's must-call set).
func (a *Analyzer) checkReturn(state *State, term ReturnTerm) {
	for _, as := range state.OwningSets() {
		if a.IsConstructor && a.ReceiverExpr != "" && as.Has(a.ReceiverExpr) {
			continue
		}
		if a.ReturnIsOwning && term.HasExpr && as.Has(term.Expr) {
			continue
		}
		pending := as.PendingOn(obligation.NormalReturn)
		if pending.Empty() {
			continue
		}
		for _, m := range pending.Sorted() {
			a.Reporter.Report(term.Element, diagnostic.RequiredMethodNotCalled,
				obligation.NormalReturn.String(), m)
		}
	}
}

// checkExceptionalExit implements §4.4's exceptional counterpart: every
// owning alias set still pending on EXCEPTIONAL_EXIT in the accumulated
// state is a leak, with no exemptions at all (invariant 5: a
// constructor's own receiver is not exempted here, unlike at normal
// return, since the object never finished constructing).
func (a *Analyzer) checkExceptionalExit(state *State) {
	if state == nil {
		return
	}
	for _, as := range state.OwningSets() {
		pending := as.PendingOn(obligation.ExceptionalExit)
		if pending.Empty() {
			continue
		}
		for _, m := range pending.Sorted() {
			a.Reporter.Report(a.Element, diagnostic.RequiredMethodNotCalled,
				obligation.ExceptionalExit.String(), m)
		}
	}
}
