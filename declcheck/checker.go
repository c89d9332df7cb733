// Package declcheck implements the Declaration Checker (C3): validation
// of owning fields, override rules, creates-must-call overrides, and
// targets-have-must-call (§4.3). It is purely syntactic/declarative and
// queries C4 (consistency) only for postcondition assumptions, which it
// receives pre-flattened from the annotation oracle — it does not run
// flow analysis itself.
package declcheck

import (
	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/diagnostic"
)

// FieldDecl pairs a declared field with the diagnostic anchor for
// reporting on its declaration.
type FieldDecl struct {
	Field   annotation.Field
	Element diagnostic.Element
}

// MethodDecl pairs a declared method with its diagnostic anchor.
type MethodDecl struct {
	Method  annotation.Method
	Element diagnostic.Element
}

// OverridePair names a superclass method and the method overriding it,
// plus their parameter locations in declaration order — needed to check
// owning-parameter and CMCF covariance index-by-index (§4.3(b)/(d)).
type OverridePair struct {
	Super          MethodDecl
	Override       MethodDecl
	SuperParams    []annotation.Location
	OverrideParams []annotation.Location
	// OverrideReceiverType is the overrider's enclosing type, used to
	// resolve a CMCF target of "this" to a concrete type for the
	// non-empty-MCS check (§4.3(d)). Other target expressions (fields,
	// parameters) are not resolved by the declarative checker; a driver
	// wanting full resolution should pre-compute their types and attach
	// them via TargetTypes.
	OverrideReceiverType annotation.Type
	// TargetTypes optionally maps a CMCF target expression to its
	// resolved type, for targets other than the implicit "this".
	TargetTypes map[string]annotation.Type
}

// ClassDecl is everything the checker needs about one type declaration:
// its fields (for the owning-field check), the methods declared directly
// on it (whose ensures-postconditions are searched for field coverage),
// and any override pairs rooted at this type.
type ClassDecl struct {
	Type      annotation.Type
	Fields    []FieldDecl
	Methods   []MethodDecl
	Overrides []OverridePair
}

// Config carries the §6 boolean configuration flags plus the per-user
// skip filter and the stricter-matcher opt-in noted as a §9 design note.
type Config struct {
	// PermitStaticOwning: static @Owning fields are allowed as long as
	// they're also final; PermitStaticOwning additionally permits
	// non-final static fields to skip the check (§4.3(a).1).
	PermitStaticOwning bool
	// NoLightweightOwnership disables owning-field analysis entirely
	// (§6).
	NoLightweightOwnership bool
	// StrictFieldMatch gates the conservative substring field-matcher
	// (§9) behind an opt-in exact-match mode.
	StrictFieldMatch bool
	// SkipField is an optional per-user filter; a field for which it
	// returns true is exempted from the owning-field validity check.
	SkipField func(FieldDecl) bool
}

// Checker runs the four independent, reportable checks of §4.3 against
// one ClassDecl.
type Checker struct {
	Oracle   *annotation.Oracle
	Config   Config
	Reporter diagnostic.Reporter
}

// NewChecker constructs a Checker.
func NewChecker(oracle *annotation.Oracle, cfg Config, reporter diagnostic.Reporter) *Checker {
	return &Checker{Oracle: oracle, Config: cfg, Reporter: reporter}
}

// Check runs all four checks against decl. Each is independent: a
// failure in one does not suppress the others (§7 recovery policy: C3
// and C4 are independent, and within C3 the four checks are as well).
func (c *Checker) Check(decl ClassDecl) {
	if !c.Config.NoLightweightOwnership {
		c.checkOwningFields(decl)
	}
	for _, pair := range decl.Overrides {
		c.checkOwningOverride(pair)
		c.checkNotOwningReturnOverride(pair)
		c.checkCMCFOverride(pair)
	}
}
