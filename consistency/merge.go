package consistency

import "github.com/cockroachdb/rlcheck/obligation"

// Join implements the CFG-merge rule of §4.4: at a join point, every
// alias set reachable from either predecessor is retained; a set
// tracked on only one incoming edge carries over unchanged, and a set
// whose membership overlaps between the two is merged with its pending
// obligations unioned (conservative over-approximation, so a false
// leak is possible across a merge but never a missed one - P2).
func Join(a, b *State) *State {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}

	out := a.Clone()
	bClone := b.Clone()

	for _, bSet := range bClone.sets {
		target := findOverlap(out, bSet)
		if target == nil {
			out.Track(bSet)
			continue
		}
		target.MergeInto(bSet)
		for m := range bSet.Members {
			out.index[m] = target
		}
	}
	return out
}

// findOverlap returns the alias set in s sharing at least one member
// with candidate, if any.
func findOverlap(s *State, candidate *obligation.AliasSet) *obligation.AliasSet {
	for m := range candidate.Members {
		if existing, ok := s.index[m]; ok {
			return existing
		}
	}
	return nil
}
