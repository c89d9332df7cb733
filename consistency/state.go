package consistency

import (
	"sort"
	"strings"

	"github.com/cockroachdb/rlcheck/obligation"
)

// State is the abstract value at one program point: the set of alias
// sets currently tracked, indexed by every expression known to be a
// member of each (§3/§4.1). Two expressions sharing a key means they are
// aliases of the same resource as far as the analyzer can tell.
type State struct {
	sets  []*obligation.AliasSet
	index map[string]*obligation.AliasSet
}

// NewState returns an empty tracking state (the CFG entry's initial
// value before any owning parameter is seeded in).
func NewState() *State {
	return &State{index: make(map[string]*obligation.AliasSet)}
}

// Lookup returns the alias set expr currently belongs to, if any.
func (s *State) Lookup(expr string) (*obligation.AliasSet, bool) {
	as, ok := s.index[obligation.Canonicalize(expr)]
	return as, ok
}

// Track begins tracking a fresh alias set and indexes it by every one of
// its current members.
func (s *State) Track(as *obligation.AliasSet) {
	s.sets = append(s.sets, as)
	for m := range as.Members {
		s.index[m] = as
	}
}

// Forget removes as from the state entirely (its members no longer
// index to anything). Used when an alias set is abandoned by
// reassignment (after its leak check) and when an owning argument's
// alias set is transferred to a callee.
func (s *State) Forget(as *obligation.AliasSet) {
	for m := range as.Members {
		if s.index[m] == as {
			delete(s.index, m)
		}
	}
	for i, cand := range s.sets {
		if cand == as {
			s.sets = append(s.sets[:i], s.sets[i+1:]...)
			break
		}
	}
}

// Alias records that expr now refers to the same resource as as,
// re-indexing expr onto it.
func (s *State) Alias(as *obligation.AliasSet, expr string) {
	as.Add(expr)
	s.index[obligation.Canonicalize(expr)] = as
}

// Reassign severs expr from whatever alias set it previously indexed
// to (if any), returning that set so the caller can decide whether its
// abandonment (with pending obligations still outstanding) is a leak.
// This models the "assigning over an owning reference without calling
// its must-call methods first" edge case.
func (s *State) Reassign(expr string) (*obligation.AliasSet, bool) {
	canon := obligation.Canonicalize(expr)
	prev, ok := s.index[canon]
	if !ok {
		return nil, false
	}
	prev.Remove(canon)
	delete(s.index, canon)
	return prev, true
}

// OwningSets returns every currently tracked alias set marked Owning,
// in a deterministic order (sorted by a representative member), for the
// exit-time leak sweep.
func (s *State) OwningSets() []*obligation.AliasSet {
	var out []*obligation.AliasSet
	for _, as := range s.sets {
		if as.Owning {
			out = append(out, as)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return representative(out[i]) < representative(out[j])
	})
	return out
}

func representative(as *obligation.AliasSet) string {
	members := make([]string, 0, len(as.Members))
	for m := range as.Members {
		members = append(members, m)
	}
	sort.Strings(members)
	return strings.Join(members, ",")
}

// Clone produces a deep-enough copy for a branch to diverge from
// without mutating the source state's alias sets.
func (s *State) Clone() *State {
	out := NewState()
	seen := make(map[*obligation.AliasSet]*obligation.AliasSet, len(s.sets))
	for _, as := range s.sets {
		c := as.Clone()
		seen[as] = c
		out.sets = append(out.sets, c)
	}
	for expr, as := range s.index {
		out.index[expr] = seen[as]
	}
	return out
}

// Fingerprint deterministically serializes the state for worklist
// fixpoint comparison (§4.4's termination argument: the per-alias-set
// lattice is finite, so repeated joins stabilize).
func (s *State) Fingerprint() string {
	reps := make([]string, 0, len(s.sets))
	for _, as := range s.sets {
		var b strings.Builder
		b.WriteString(representative(as))
		b.WriteByte('|')
		b.WriteString(strings.Join(as.MCS.Sorted(), ","))
		b.WriteByte('|')
		b.WriteString(strings.Join(as.AlreadyCalled.Sorted(), ","))
		for _, exit := range obligation.ExitKinds {
			b.WriteByte('|')
			b.WriteString(exit.String())
			b.WriteByte(':')
			b.WriteString(strings.Join(as.PendingOn(exit).Sorted(), ","))
		}
		if as.Owning {
			b.WriteString("|owning")
		}
		reps = append(reps, b.String())
	}
	sort.Strings(reps)
	return strings.Join(reps, ";")
}
