// Package consistency implements the Consistency Analyzer (C4): the
// flow-sensitive analyzer that walks a procedure's CFG tracking pending
// obligations per alias set across normal and exceptional exits (§4.4).
//
// The CFG shape below is the consumed collaborator interface of §6
// (cfgOf(methodBody) -> CFG), rendered for a language with panics/error
// returns rather than checked exceptions: a call whose error outcome is
// branched on explicitly (the Go `if err != nil` idiom) is a CallTerm
// block terminator with two successors — one for the callee's normal
// return, one for its exceptional outcome — exactly modeling §4.4's
// "asymmetry is central" rule for owning arguments. A call whose result
// is only ever used on success (no error check) is an ordinary MethodCall
// instruction applying only the normal-return transfer function.
package consistency

import (
	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/diagnostic"
	"github.com/cockroachdb/rlcheck/obligation"
)

// ProgramPoint identifies a location within a CFG; opaque to the
// analyzer itself, which does not read it.
type ProgramPoint interface{}

// CalledMethods is the collaborator interface of §6:
// calledMethodsAt(programPoint, expression) -> set<string>. The core
// does not implement this sub-analysis (§1), and the Analyzer does not
// consult it: requires-preconditions are checked against each alias
// set's own AlreadyCalled record, filled in by the calls this analysis
// itself observes.
type CalledMethods interface {
	CalledMethodsAt(point ProgramPoint, expression string) map[string]bool
}

// CallArg is one argument of a call, with the owning mark resolved by
// the caller (the driver, viewpoint-adapting the callee's declared
// @Owning parameters).
type CallArg struct {
	Expr   string
	Owning bool
}

// Call describes a method (or constructor) invocation to be applied by
// the transfer functions of §4.4: requires/discharge on the receiver,
// ownership transfer of owning args, CMCF target reinstatement, and
// ensures-called-methods postconditions — all pre-resolved by the
// oracle/driver for this specific call site.
type Call struct {
	Point    ProgramPoint
	Element  diagnostic.Element
	Receiver string
	Method   string
	Args     []CallArg

	Requires []annotation.RequiresEntry
	// EnsuresNormal / EnsuresExceptional are the ensures-called-methods
	// postconditions for this call's NORMAL_RETURN and EXCEPTIONAL_EXIT
	// outcomes respectively, already viewpoint-adapted to this call site.
	EnsuresNormal      []annotation.EnsuresEntry
	EnsuresExceptional []annotation.EnsuresEntry
	// CMCFTargets are the creates-must-call-for target expressions
	// (already adapted), applied only on the normal-return continuation.
	// A target not present in the method's own tracked state (e.g. a
	// fresh field never allocated in this procedure) is a no-op.
	CMCFTargets []string
}

// Instr is a non-terminating instruction within a block: executing it
// never branches control flow.
type Instr interface{ isInstr() }

// Assign is `x := e`. If RHSTracked, x's alias set becomes (or merges
// with) e's; any alias set x was previously a sole member of is flagged
// for a leak check at this point if it was owning and undischarged.
type Assign struct {
	Point      ProgramPoint
	Element    diagnostic.Element
	LHS        string
	RHS        string
	RHSTracked bool
}

func (Assign) isInstr() {}

// Alloc is `x := alloc()` where the callee's return is owning: a fresh
// alias set is created with the return type's MCS.
type Alloc struct {
	Point   ProgramPoint
	Element diagnostic.Element
	LHS     string
	MCS     obligation.MCS
	Owning  bool
}

func (Alloc) isInstr() {}

// FieldStore is `this.field = x`. Outside a constructor it only adds
// "this.field" as a member of x's alias set (when x is tracked); unlike
// Assign, whatever "this.field" referred to before is neither severed
// nor checked for a leak. Inside a
// constructor, it additionally discharges the stored alias set's
// NORMAL_RETURN pending obligations: storing into an owning field of
// `this` is one of the three ways an owning alias set may leave scope
// (§3 invariant 4(c)) — responsibility passes to the enclosing type,
// which C3 validates. The EXCEPTIONAL_EXIT obligation is left untouched:
// if the constructor later throws, the field is lost (invariant 5).
type FieldStore struct {
	Point   ProgramPoint
	Element diagnostic.Element
	Field   string
	RHS     string
}

func (FieldStore) isInstr() {}

// MethodCall is an ordinary (never-branches) call: the normal-return
// transfer function of §4.4 is applied unconditionally.
type MethodCall struct {
	Call Call
}

func (MethodCall) isInstr() {}

// Terminator is how a block ends.
type Terminator interface{ isTerminator() }

// Goto is an unconditional single successor.
type Goto struct{ Next *Block }

func (Goto) isTerminator() {}

// Branch is a generic multi-way branch (if/switch) with no special call
// semantics; each successor receives the same pre-branch state (§4.4
// "Merge").
type Branch struct{ Succs []*Block }

func (Branch) isTerminator() {}

// CallTerm is a call whose error/exception outcome is branched on
// explicitly. NormalSucc receives the state after the call's
// normal-return transfer function; ExceptionalSucc (if non-nil) receives
// the state after the exceptional-edge transfer function, for a locally
// caught/handled outcome (e.g. an `if err != nil { ... }` branch that
// does not re-propagate). A nil ExceptionalSucc means the exceptional
// outcome is uncaught and merges directly into the CFG's aggregated
// exceptional exit.
type CallTerm struct {
	Call            Call
	NormalSucc      *Block
	ExceptionalSucc *Block
}

func (CallTerm) isTerminator() {}

// ReturnTerm is a normal return, possibly carrying a returned
// expression. The leak check of §4.4's "Return" rule is applied to the
// block's final state once the fixpoint has settled, not on each visit.
type ReturnTerm struct {
	Element diagnostic.Element
	Expr    string
	HasExpr bool
}

func (ReturnTerm) isTerminator() {}

// ThrowTerm is an unconditional, uncaught exceptional exit (e.g. a bare
// `panic(...)` or `return err` that re-propagates without local
// handling). Ignored marks that this particular throw matches the
// configurable ignored-exceptions list (§4.4); per Scenario S2 this does
// not unconditionally suppress the local leak check — a leak reachable
// only through an Ignored throw is reported exactly like any other,
// unless the analyzer's PermitUncheckedExceptions flag is also set, in
// which case it is downgraded to a non-fatal warning and not reported.
type ThrowTerm struct{ Ignored bool }

func (ThrowTerm) isTerminator() {}

// Block is one CFG node: a straight-line instruction sequence followed
// by a terminator.
type Block struct {
	ID     int
	Instrs []Instr
	Term   Terminator
}

// CFG is the consumed interface from the dataflow collaborator (§6).
type CFG struct {
	Entry  *Block
	Blocks []*Block
}
