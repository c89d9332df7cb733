package consistency

import (
	"github.com/pkg/errors"

	"github.com/cockroachdb/rlcheck/diagnostic"
)

// AnalyzeMethod runs a.Analyze under panic recovery, per §7's fail-fast
// internal-error policy: a bug surfacing as a panic during one
// procedure's analysis is caught, wrapped with the procedure's identity
// for context (the same recover-and-wrap shape as a dirty-function
// fixpoint walker), and reported through ReportInternal rather than
// taking down the whole run. The recovery is transactional per method:
// whatever partial diagnostics were already reported for this procedure
// before the panic stand, but no further procedures are affected.
func AnalyzeMethod(a *Analyzer, methodName string, cfg *CFG, entry *State) {
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		var err error
		if e, ok := x.(error); ok {
			err = errors.Wrapf(e, "analyzing %s", methodName)
		} else {
			err = errors.Errorf("analyzing %s: %v", methodName, x)
		}
		a.Reporter.ReportInternal(a.Element, diagnostic.InternalPanic, err.Error())
	}()
	a.Analyze(cfg, entry)
}
