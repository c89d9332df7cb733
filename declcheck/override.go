package declcheck

import (
	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/diagnostic"
)

// checkOwningOverride implements §4.3(b): if a superclass method has an
// @Owning parameter at index i, the overrider's parameter at i must also
// be @Owning.
func (c *Checker) checkOwningOverride(pair OverridePair) {
	for i, superParam := range pair.SuperParams {
		if !c.Oracle.Owning(superParam) {
			continue
		}
		if i >= len(pair.OverrideParams) {
			continue
		}
		if !c.Oracle.Owning(pair.OverrideParams[i]) {
			c.Reporter.Report(pair.Override.Element, diagnostic.OwningOverrideParam, i,
				pair.Super.Method.Name(), pair.Override.Method.Name())
		}
	}
}

// checkNotOwningReturnOverride implements §4.3(c): if the superclass
// method is @NotOwning-return, the overrider must be too.
func (c *Checker) checkNotOwningReturnOverride(pair OverridePair) {
	if c.Oracle.NotOwningReturn(pair.Super.Method) && !c.Oracle.NotOwningReturn(pair.Override.Method) {
		c.Reporter.Report(pair.Override.Element, diagnostic.OwningOverrideReturn,
			pair.Super.Method.Name(), pair.Override.Method.Name())
	}
}

// checkCMCFOverride implements §4.3(d): the overrider's CMCF target set
// must be a superset of the superclass's (covariance on effects), and
// every CMCF target must resolve to a value with non-empty MCS.
//
// Rationale (per §4.3(d)): dynamic dispatch could otherwise let an
// overrider silently drop an obligation the caller was relying on.
func (c *Checker) checkCMCFOverride(pair OverridePair) {
	superTargets := c.Oracle.CreatesMustCallFor(pair.Super.Method)
	overrideTargets := c.Oracle.CreatesMustCallFor(pair.Override.Method)

	overrideSet := make(map[string]bool, len(overrideTargets))
	for _, t := range overrideTargets {
		overrideSet[t] = true
	}
	for _, t := range superTargets {
		if !overrideSet[t] {
			c.Reporter.Report(pair.Override.Element, diagnostic.CreatesMustCallForOverrideInvalid,
				pair.Super.Method.Name(), pair.Override.Method.Name(), t)
		}
	}

	for _, targetExpr := range overrideTargets {
		targetType := c.resolveTargetType(pair, targetExpr)
		if targetType == nil {
			continue
		}
		mcs, ok := c.Oracle.MustCallOf(targetType)
		if !ok || mcs.Empty() {
			c.Reporter.Report(pair.Override.Element, diagnostic.CreatesMustCallForInvalidTarget,
				pair.Override.Method.Name(), targetExpr)
		}
	}
}

// resolveTargetType resolves a CMCF target expression to its declared
// type, used only to check it is non-empty-MCS (§4.3(d)). "this" resolves
// to the overrider's enclosing type; any other target is resolved via the
// caller-supplied TargetTypes map, left unresolved (and thus unchecked)
// if absent — C3 has no expression evaluator of its own (§1: out of
// scope).
func (c *Checker) resolveTargetType(pair OverridePair, targetExpr string) annotation.Type {
	if targetExpr == "this" {
		return pair.OverrideReceiverType
	}
	if pair.TargetTypes != nil {
		return pair.TargetTypes[targetExpr]
	}
	return nil
}
