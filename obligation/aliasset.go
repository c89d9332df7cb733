package obligation

// Provenance tags where an alias set's first member came from, per §3.
type Provenance int

const (
	// ProvenanceParameter: the alias set originated from a method or
	// constructor parameter.
	ProvenanceParameter Provenance = iota
	// ProvenanceAllocation: the alias set originated from an allocation
	// expression (e.g. a constructor call) whose return is owning.
	ProvenanceAllocation
	// ProvenanceFieldRead: the alias set originated from reading a field
	// of some other tracked value.
	ProvenanceFieldRead
	// ProvenanceMethodResult: the alias set originated from the result of
	// a method call.
	ProvenanceMethodResult
)

// AliasSet is an equivalence class of program expressions known to refer
// to the same underlying resource (§3). Two alias sets never share an
// expression (invariant 2); when two expressions become equal the sets
// holding them are merged (invariant 3).
type AliasSet struct {
	// Members is the set of canonicalized expressions in this class.
	Members map[string]struct{}
	// MCS is the full must-call set this alias set is responsible for
	// discharging. Discharge does not reduce it (Reinstate restores
	// Pending from it; MergeInto unions it); Pending is what shrinks.
	MCS MCS
	// AlreadyCalled is the set of methods observed called on some member
	// of this alias set, recorded by Discharge as the analysis applies
	// calls; no CalledMethods collaborator feeds it.
	AlreadyCalled MCS
	// Pending holds, per exit-kind, the obligations still outstanding on
	// paths reaching that exit kind from the current program point.
	Pending map[ExitKind]MCS
	// Provenance records how this alias set came to exist.
	Provenance Provenance
	// Owning is true when this procedure is responsible for discharging
	// MCS on this alias set; false means the procedure only borrows it.
	Owning bool
}

// NewAliasSet creates a singleton alias set containing expr.
func NewAliasSet(expr string, mcs MCS, provenance Provenance, owning bool) *AliasSet {
	pending := make(map[ExitKind]MCS, len(ExitKinds))
	for _, k := range ExitKinds {
		pending[k] = mcs.Clone()
	}
	return &AliasSet{
		Members:       map[string]struct{}{Canonicalize(expr): {}},
		MCS:           mcs,
		AlreadyCalled: MCS{},
		Pending:       pending,
		Provenance:    provenance,
		Owning:        owning,
	}
}

// Has reports whether expr (after canonicalization) is a member.
func (a *AliasSet) Has(expr string) bool {
	_, ok := a.Members[Canonicalize(expr)]
	return ok
}

// Add inserts expr as a member of this alias set.
func (a *AliasSet) Add(expr string) {
	a.Members[Canonicalize(expr)] = struct{}{}
}

// Remove deletes expr from this alias set's membership, as happens when a
// variable is reassigned (§4.4 transfer function for assignment).
func (a *AliasSet) Remove(expr string) {
	delete(a.Members, Canonicalize(expr))
}

// Empty reports whether no expressions remain in this alias set.
func (a *AliasSet) Empty() bool { return len(a.Members) == 0 }

// PendingOn reports the pending obligations for a given exit kind.
func (a *AliasSet) PendingOn(exit ExitKind) MCS {
	if p, ok := a.Pending[exit]; ok {
		return p
	}
	return MCS{}
}

// Discharge marks method as called on this alias set: it is added to
// AlreadyCalled and removed from the pending obligations of every
// exit-kind the caller names (normal-return discharge per §4.4.2 applies
// only to NormalReturn; callers pass the exit-kinds to affect
// explicitly).
func (a *AliasSet) Discharge(method string, exits ...ExitKind) {
	a.AlreadyCalled[method] = struct{}{}
	for _, exit := range exits {
		if p, ok := a.Pending[exit]; ok {
			delete(p, method)
		}
	}
}

// Reinstate reinstates the full MCS as pending on exit for a CMCF call
// (§3: "Creates-Must-Call effect"). alreadyCalled on the relevant methods
// is NOT cleared — CMCF only affects pending obligations, since a method
// could legitimately be called again.
func (a *AliasSet) Reinstate(exit ExitKind) {
	a.Pending[exit] = a.MCS.Clone()
}

// Clone returns a deep copy, used when a predecessor state must be
// preserved while a successor is computed (e.g. to flag a leak at the
// predecessor program point per the Assignment transfer function).
func (a *AliasSet) Clone() *AliasSet {
	members := make(map[string]struct{}, len(a.Members))
	for k := range a.Members {
		members[k] = struct{}{}
	}
	pending := make(map[ExitKind]MCS, len(a.Pending))
	for k, v := range a.Pending {
		pending[k] = v.Clone()
	}
	return &AliasSet{
		Members:       members,
		MCS:           a.MCS.Clone(),
		AlreadyCalled: a.AlreadyCalled.Clone(),
		Pending:       pending,
		Provenance:    a.Provenance,
		Owning:        a.Owning,
	}
}

// MergeInto folds other's membership and pending obligations into a,
// implementing invariant 3 (alias-set merge on assignment / return /
// argument pass-through) and the join described in §4.4 ("Merge"): the
// pending-obligation set on disagreement is the union.
func (a *AliasSet) MergeInto(other *AliasSet) {
	for k := range other.Members {
		a.Members[k] = struct{}{}
	}
	a.MCS = a.MCS.Union(other.MCS)
	a.AlreadyCalled = a.AlreadyCalled.Union(other.AlreadyCalled)
	for _, k := range ExitKinds {
		a.Pending[k] = a.PendingOn(k).Union(other.PendingOn(k))
	}
	a.Owning = a.Owning || other.Owning
}
