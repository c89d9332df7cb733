package annotation

import "github.com/cockroachdb/rlcheck/obligation"

// EnsuresEntry is one flattened entry of an ensures-called-methods
// postcondition: on exiting via Exit, Methods must have been called on
// Expression (§4.2).
type EnsuresEntry struct {
	Expression string
	Methods    []string
	Exit       obligation.ExitKind
}

// RequiresEntry is one entry of a requires-called-methods precondition:
// on entry, Methods must already appear in the already-called set of
// Expression.
type RequiresEntry struct {
	Expression string
	Methods    []string
}

// Facts is the abstract-fact database the oracle queries: the qualifier
// annotations themselves are out of scope (§1) — whatever parses
// `@MustCall`/`@Owning`/`@EnsuresCalledMethods`/etc. from real source
// populates a Facts value, and the oracle below only interprets it.
type Facts struct {
	// MustCall maps a type's Name() to its declared must-call set. A type
	// with no entry is "top" (unknown/any): empty for a built-in
	// immutable type (§9), non-empty-but-unspecified for any other
	// unannotated user type — mustCallOf reports this case via the ok
	// return rather than guessing a method list.
	MustCall map[string]obligation.MCS

	// Owning names the locations explicitly marked @Owning.
	Owning map[Location]bool

	// NotOwningReturn names the methods explicitly marked
	// @NotOwning-return.
	NotOwningReturn map[Method]bool

	// Ensures holds, per method, its flattened ensures-called-methods
	// postconditions across both exit kinds.
	Ensures map[Method][]EnsuresEntry

	// Requires holds, per method, its requires-called-methods
	// preconditions.
	Requires map[Method][]RequiresEntry

	// CreatesMustCallFor holds, per method, its CMCF target expressions.
	// A method with an empty (but present) slice is annotated with no
	// explicit value, which the oracle expands to the default target
	// "this"; a method absent from the map has no CMCF effect at all.
	CreatesMustCallFor map[Method][]string
	hasCMCF            map[Method]bool
}

// NewFacts returns an empty, ready-to-populate Facts value.
func NewFacts() *Facts {
	return &Facts{
		MustCall:           map[string]obligation.MCS{},
		Owning:             map[Location]bool{},
		NotOwningReturn:    map[Method]bool{},
		Ensures:            map[Method][]EnsuresEntry{},
		Requires:           map[Method][]RequiresEntry{},
		CreatesMustCallFor: map[Method][]string{},
		hasCMCF:            map[Method]bool{},
	}
}

// DeclareCMCF records that method is annotated @CreatesMustCallFor.
// targets may be empty, meaning the annotation carried no explicit
// value and the default target "this" applies (§4.2).
func (f *Facts) DeclareCMCF(m Method, targets ...string) {
	f.hasCMCF[m] = true
	f.CreatesMustCallFor[m] = targets
}

// Oracle answers the pure queries of §4.2 against a Facts database. It
// memoizes mustCallOf lookups keyed by element identity (the type Name)
// so that cyclic qualifier-hierarchy references terminate rather than
// reentering (§9).
type Oracle struct {
	facts     *Facts
	mcsMemo   map[string]mustCallResult
	inProcess map[string]bool
}

type mustCallResult struct {
	mcs obligation.MCS
	top bool
}

// NewOracle constructs an Oracle over facts.
func NewOracle(facts *Facts) *Oracle {
	return &Oracle{
		facts:     facts,
		mcsMemo:   map[string]mustCallResult{},
		inProcess: map[string]bool{},
	}
}

// MustCallOf returns the MCS of typ, memoized by typ.Name(). Absence of
// an explicit annotation is "top": for a built-in immutable type that
// means the empty set; for any other un-annotated user type it means a
// non-empty-but-unknown set, reported via ok=false so callers (notably
// declcheck) can distinguish "known empty" from "unknown, assume
// non-empty". A type that recursively queries itself while already being
// resolved returns the empty set rather than reentering, per §9.
func (o *Oracle) MustCallOf(typ Type) (mcs obligation.MCS, ok bool) {
	name := typ.Name()
	if memo, found := o.mcsMemo[name]; found {
		return memo.mcs, !memo.top
	}
	if o.inProcess[name] {
		return obligation.MCS{}, true
	}
	o.inProcess[name] = true
	defer delete(o.inProcess, name)

	if declared, found := o.facts.MustCall[name]; found {
		o.mcsMemo[name] = mustCallResult{mcs: declared, top: false}
		return declared, true
	}
	if IsBuiltinImmutable(name) {
		empty := obligation.MCS{}
		o.mcsMemo[name] = mustCallResult{mcs: empty, top: false}
		return empty, true
	}
	o.mcsMemo[name] = mustCallResult{mcs: obligation.MCS{}, top: true}
	return obligation.MCS{}, false
}

// Owning reports whether location carries an @Owning mark.
func (o *Oracle) Owning(location Location) bool {
	return o.facts.Owning[location]
}

// NotOwningReturn reports whether method's return is marked
// @NotOwning.
func (o *Oracle) NotOwningReturn(method Method) bool {
	return o.facts.NotOwningReturn[method]
}

// EnsuresCalledMethods returns method's flattened ensures-called-methods
// postconditions, both the classic (NormalReturn) and on-exception
// (ExceptionalExit) forms.
func (o *Oracle) EnsuresCalledMethods(method Method) []EnsuresEntry {
	return o.facts.Ensures[method]
}

// RequiresCalledMethods returns method's preconditions on entry.
func (o *Oracle) RequiresCalledMethods(method Method) []RequiresEntry {
	return o.facts.Requires[method]
}

// CreatesMustCallFor returns the target expressions whose MCS is
// reinstated at a call to method, expanding the unannotated default ("no
// CMCF") to an empty, nil slice and the explicit-but-valueless
// annotation to the default target "this" (§4.2).
func (o *Oracle) CreatesMustCallFor(method Method) []string {
	if !o.facts.hasCMCF[method] {
		return nil
	}
	targets := o.facts.CreatesMustCallFor[method]
	if len(targets) == 0 {
		return []string{"this"}
	}
	return targets
}
