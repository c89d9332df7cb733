package consistency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cockroachdb/rlcheck/consistency"
	"github.com/cockroachdb/rlcheck/diagnostic"
	"github.com/cockroachdb/rlcheck/obligation"
)

type testElement string

func (e testElement) DiagString() string { return string(e) }

func closeMCS() obligation.MCS { return obligation.NewMCS("close") }

func ownedParamState(paramExpr string) *consistency.State {
	s := consistency.NewState()
	s.Track(obligation.NewAliasSet(paramExpr, closeMCS(), obligation.ProvenanceParameter, true))
	return s
}

func newAnalyzer(col *diagnostic.Collector) *consistency.Analyzer {
	return &consistency.Analyzer{Reporter: col, Element: testElement("method")}
}

// block is a small builder to keep the fixture CFGs readable.
func block(id int, instrs []consistency.Instr, term consistency.Terminator) *consistency.Block {
	return &consistency.Block{ID: id, Instrs: instrs, Term: term}
}

// TestScenarioCleanCloseDischarges: `r.close()` on the only exit path
// discharges the obligation; no leak.
func TestScenarioCleanCloseDischarges(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	call := consistency.Call{Element: testElement("call"), Receiver: "r", Method: "close"}
	b0 := block(0, []consistency.Instr{consistency.MethodCall{Call: call}}, consistency.ReturnTerm{Element: testElement("ret")})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	a.Empty(col.Diagnostics())
}

// TestScenarioMissingCloseLeaksOnReturn: `r` is never closed before the
// method returns; a leak is reported at the return point.
func TestScenarioMissingCloseLeaksOnReturn(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	b0 := block(0, nil, consistency.ReturnTerm{Element: testElement("ret")})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	a.Len(col.Diagnostics(), 1)
	a.Equal(diagnostic.RequiredMethodNotCalled, col.Diagnostics()[0].Key)
}

// TestScenarioS1CatchSwallowsException: transfer(r) may fail; on the
// error-checked branch the method swallows the error without closing r
// and falls through to a normal return - r still leaks, because
// ownership of an owning argument transfers to the callee only on its
// own normal-return edge (§4.4's "the asymmetry is central").
func TestScenarioS1CatchSwallowsException(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	retBlock := block(2, nil, consistency.ReturnTerm{Element: testElement("ret")})
	errBlock := block(1, nil, consistency.Goto{Next: retBlock})
	call := consistency.Call{
		Element:  testElement("transfer-call"),
		Receiver: "r",
		Method:   "transfer",
		Args:     []consistency.CallArg{{Expr: "r", Owning: true}},
	}
	entryBlock := block(0, nil, consistency.CallTerm{Call: call, NormalSucc: retBlock, ExceptionalSucc: errBlock})

	cfg := &consistency.CFG{Entry: entryBlock, Blocks: []*consistency.Block{entryBlock, errBlock, retBlock}}
	newAnalyzer(col).Analyze(cfg, entry)

	if a.Len(col.Diagnostics(), 1) {
		a.Equal(diagnostic.RequiredMethodNotCalled, col.Diagnostics()[0].Key)
	}
}

// TestScenarioUncaughtThrowLeaksAtExceptionalExit: an allocation is
// never closed before an uncaught throw; the leak surfaces on the
// aggregated exceptional-exit sweep, not at a normal return (there is
// none on this path).
func TestScenarioUncaughtThrowLeaksAtExceptionalExit(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := consistency.NewState()
	alloc := consistency.Alloc{Element: testElement("alloc"), LHS: "x", MCS: closeMCS(), Owning: true}
	b0 := block(0, []consistency.Instr{alloc}, consistency.ThrowTerm{})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	if a.Len(col.Diagnostics(), 1) {
		a.Equal(diagnostic.RequiredMethodNotCalled, col.Diagnostics()[0].Key)
		a.Contains(col.Diagnostics()[0].Args, obligation.ExceptionalExit.String())
	}
}

// TestScenarioIgnoredExceptionStillLeaksLocally covers Scenario S2: a
// throw matching the configurable ignored-exceptions list still
// reports the local leak under the default configuration - the policy
// only excuses propagating the fault into the method's own exported
// exceptional postcondition, not the intra-procedural check itself.
func TestScenarioIgnoredExceptionStillLeaksLocally(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	b0 := block(0, nil, consistency.ThrowTerm{Ignored: true})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	a.Len(col.Diagnostics(), 1)
}

// TestScenarioIgnoredExceptionDowngradedWhenPermitted: with
// PermitUncheckedExceptions set, the same ignored-throw leak is not
// reported at all - the flag downgrades it to a non-fatal warning this
// layer simply omits, rather than suppressing any non-ignored leak.
func TestScenarioIgnoredExceptionDowngradedWhenPermitted(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	b0 := block(0, nil, consistency.ThrowTerm{Ignored: true})
	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}

	az := newAnalyzer(col)
	az.PermitUncheckedExceptions = true
	az.Analyze(cfg, entry)

	a.Empty(col.Diagnostics())
}

// TestScenarioPermitUncheckedExceptionsDoesNotExcuseUnignoredThrow:
// PermitUncheckedExceptions only downgrades leaks reached exclusively
// through an Ignored throw; an ordinary uncaught throw still leaks.
func TestScenarioPermitUncheckedExceptionsDoesNotExcuseUnignoredThrow(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	b0 := block(0, nil, consistency.ThrowTerm{})
	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}

	az := newAnalyzer(col)
	az.PermitUncheckedExceptions = true
	az.Analyze(cfg, entry)

	a.Len(col.Diagnostics(), 1)
}

// TestScenarioOwningReturnExempted: the method returns the owning
// value itself; that's a legal way for the obligation to leave scope
// (§3 invariant 4(b)), so no leak is reported.
func TestScenarioOwningReturnExempted(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	b0 := block(0, nil, consistency.ReturnTerm{Element: testElement("ret"), Expr: "r", HasExpr: true})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	az := newAnalyzer(col)
	az.ReturnIsOwning = true
	az.Analyze(cfg, entry)

	a.Empty(col.Diagnostics())
}

// TestScenarioConstructorFieldStoreExemptsNormalReturn covers invariant
// 4(c): storing an allocated owning value into an owning field of
// `this` inside a constructor discharges the procedure's own
// NORMAL_RETURN obligation (responsibility passes to the type, which C3
// validates separately).
func TestScenarioConstructorFieldStoreExemptsNormalReturn(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := consistency.NewState()
	alloc := consistency.Alloc{Element: testElement("alloc"), LHS: "x", MCS: closeMCS(), Owning: true}
	store := consistency.FieldStore{Element: testElement("store"), Field: "resource", RHS: "x"}
	b0 := block(0, []consistency.Instr{alloc, store}, consistency.ReturnTerm{Element: testElement("ret")})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	az := newAnalyzer(col)
	az.IsConstructor = true
	az.ReceiverExpr = "this"
	az.Analyze(cfg, entry)

	a.Empty(col.Diagnostics())
}

// TestScenarioConstructorExceptionalExitLeaksStoredField covers
// invariant 5: the same stored field is lost if the constructor later
// throws uncaught - the exceptional-exit obligation was never cleared
// by FieldStore, only the normal-return one was.
func TestScenarioConstructorExceptionalExitLeaksStoredField(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := consistency.NewState()
	alloc := consistency.Alloc{Element: testElement("alloc"), LHS: "x", MCS: closeMCS(), Owning: true}
	store := consistency.FieldStore{Element: testElement("store"), Field: "resource", RHS: "x"}
	b0 := block(0, []consistency.Instr{alloc, store}, consistency.ThrowTerm{})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	az := newAnalyzer(col)
	az.IsConstructor = true
	az.ReceiverExpr = "this"
	az.Analyze(cfg, entry)

	a.Len(col.Diagnostics(), 1)
}

// TestScenarioCMCFReinstatesObligation covers Scenario S4: calling a
// reallocating method with a creates-must-call-for effect on the
// receiver reinstates the must-call obligation, so a subsequent path
// that returns without closing again still leaks.
func TestScenarioCMCFReinstatesObligation(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	closeCall := consistency.Call{Element: testElement("close-call"), Receiver: "r", Method: "close"}
	reallocCall := consistency.Call{
		Element:     testElement("realloc-call"),
		Receiver:    "r",
		Method:      "realloc",
		CMCFTargets: []string{"r"},
	}
	b0 := block(0, []consistency.Instr{
		consistency.MethodCall{Call: closeCall},
		consistency.MethodCall{Call: reallocCall},
	}, consistency.ReturnTerm{Element: testElement("ret")})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	if a.Len(col.Diagnostics(), 1) {
		a.Equal(diagnostic.RequiredMethodNotCalled, col.Diagnostics()[0].Key)
	}
}

// TestScenarioBranchJoinConservativeUnion covers P2: one branch closes
// r, the other doesn't; the merge at the join point must conservatively
// report the leak rather than silently accept the path that did close.
func TestScenarioBranchJoinConservativeUnion(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := ownedParamState("r")
	joinBlock := block(3, nil, consistency.ReturnTerm{Element: testElement("ret")})
	closedBranch := block(1, []consistency.Instr{
		consistency.MethodCall{Call: consistency.Call{Element: testElement("close-call"), Receiver: "r", Method: "close"}},
	}, consistency.Goto{Next: joinBlock})
	openBranch := block(2, nil, consistency.Goto{Next: joinBlock})
	entryBlock := block(0, nil, consistency.Branch{Succs: []*consistency.Block{closedBranch, openBranch}})

	cfg := &consistency.CFG{Entry: entryBlock, Blocks: []*consistency.Block{entryBlock, closedBranch, openBranch, joinBlock}}
	newAnalyzer(col).Analyze(cfg, entry)

	a.Len(col.Diagnostics(), 1)
}

// TestScenarioAssignOverOwningWithoutDischargeLeaks: reassigning the
// only variable tracking an owning allocation, without calling its
// must-call methods first, is itself a leak at the assignment site.
func TestScenarioAssignOverOwningWithoutDischargeLeaks(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	entry := consistency.NewState()
	alloc := consistency.Alloc{Element: testElement("alloc"), LHS: "x", MCS: closeMCS(), Owning: true}
	reassign := consistency.Assign{Element: testElement("reassign"), LHS: "x", RHS: "other", RHSTracked: false}
	b0 := block(0, []consistency.Instr{alloc, reassign}, consistency.ReturnTerm{Element: testElement("ret")})

	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}
	newAnalyzer(col).Analyze(cfg, entry)

	if a.Len(col.Diagnostics(), 1) {
		a.Equal(diagnostic.RequiredMethodNotCalled, col.Diagnostics()[0].Key)
	}
}

// TestAnalyzeMethodRecoversInternalPanic covers §7: a bug that panics
// mid-analysis is caught and reported as an internal diagnostic rather
// than crashing the run.
func TestAnalyzeMethodRecoversInternalPanic(t *testing.T) {
	a := assert.New(t)
	col := diagnostic.NewCollector(nil)

	// A Branch terminator with a nil successor panics when dereferenced -
	// a stand-in for an unexpected internal invariant violation.
	b0 := block(0, nil, consistency.Branch{Succs: []*consistency.Block{nil}})
	cfg := &consistency.CFG{Entry: b0, Blocks: []*consistency.Block{b0}}

	consistency.AnalyzeMethod(newAnalyzer(col), "Widget.f", cfg, consistency.NewState())

	a.True(col.HasInternalError())
}

