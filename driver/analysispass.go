package driver

import (
	"go/token"

	"golang.org/x/tools/go/analysis"

	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/declcheck"
	"github.com/cockroachdb/rlcheck/diagnostic"
)

// Analyzer exposes the declaration checks (C3, §4.3) as a standard
// golang.org/x/tools/go/analysis pass, so they compose with the rest of
// that ecosystem's driver tooling (go vet -vettool, multichecker, ...)
// instead of requiring Driver.Run's own CLI entry point for every
// integration. The flow-sensitive consistency analyzer (C4) needs SSA,
// which an analysis.Pass doesn't build for free, and an annotation.Facts
// source, which isn't available here (see package doc) - both stay on
// Driver.Run, which builds SSA itself via ssautil.AllPackages.
var Analyzer = &analysis.Analyzer{
	Name: "rlcheck",
	Doc:  "reports resource-leak declaration violations (owning fields, override covariance, CMCF targets)",
	Run:  run,
}

// analysisReporter adapts analysis.Pass.Reportf to diagnostic.Reporter.
// Elements reported through this pass come from runDeclChecks and are
// always posElement, which carries
// the token.Pos analysistest needs to line up a diagnostic with its
// "// want" comment; any other Element reports at the package's no-position
// default rather than panicking.
type analysisReporter struct{ pass *analysis.Pass }

func (r analysisReporter) reportPos(element diagnostic.Element) token.Pos {
	if e, ok := element.(posElement); ok {
		return e.pos
	}
	return token.NoPos
}

func (r analysisReporter) Report(element diagnostic.Element, key diagnostic.Key, args ...interface{}) {
	r.pass.Reportf(r.reportPos(element), "%s %v", key, args)
}

func (r analysisReporter) ReportInternal(element diagnostic.Element, key diagnostic.Key, args ...interface{}) {
	r.pass.Reportf(r.reportPos(element), "internal error: %s %v", key, args)
}

func run(pass *analysis.Pass) (interface{}, error) {
	oracle := annotation.NewOracle(annotation.NewFacts())
	reporter := analysisReporter{pass: pass}
	runDeclChecks(pass.Fset, pass.Pkg, oracle, declcheck.Config{}, reporter)
	return nil, nil
}
