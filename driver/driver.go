// Package driver wires the core components (C1-C4) to real Go source:
// loading packages with golang.org/x/tools/go/packages, building SSA,
// and walking each function's CFG through the consistency analyzer.
// Resolving real lightweight-ownership annotations from source (magic
// comments, struct tags, or any other concrete syntax) is left to a
// Facts value the caller supplies - parsing that concrete syntax is
// explicitly out of scope for the core (§1) and is the one piece of
// this package that is a thin illustrative stub rather than a complete
// implementation (see calledmethods.go).
package driver

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/cockroachdb/rlcheck/annotation"
	"github.com/cockroachdb/rlcheck/config"
	"github.com/cockroachdb/rlcheck/consistency"
	"github.com/cockroachdb/rlcheck/declcheck"
	"github.com/cockroachdb/rlcheck/diagnostic"
)

// Driver runs the whole pipeline over a set of packages.
type Driver struct {
	Dir      string
	Patterns []string
	Facts    *annotation.Facts
	Config   declcheck.Config
	// RLConfig carries the C4-facing policy flags (§6: ignored-exceptions
	// list, permit-unchecked-exceptions) that declcheck.Config's purely
	// syntactic checks don't need. Defaults to config.Default() (every
	// relaxation off) when nil.
	RLConfig *config.Config
	Log      *zap.SugaredLogger
	// Concurrency bounds how many functions are analyzed in parallel
	// (the teacher's bounded-worker-pool idiom, via errgroup).
	Concurrency int
}

// Run loads Patterns, builds SSA, and analyzes the body of every
// package-level function (the ssa.Package members), returning the
// accumulated diagnostics. Methods and function literals are not
// enumerated, so the consistency analysis does not run on them. One
// procedure's failure
// (panic recovered per §7) never prevents the others from completing.
func (d *Driver) Run() (*diagnostic.Collector, error) {
	collector := diagnostic.NewCollector(d.Log)
	if d.Facts == nil {
		d.Facts = annotation.NewFacts()
	}
	if d.RLConfig == nil {
		d.RLConfig = config.Default()
	}
	oracle := annotation.NewOracle(d.Facts)

	cfg := &packages.Config{Dir: d.Dir, Mode: packages.LoadAllSyntax}
	pkgs, err := packages.Load(cfg, d.Patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "loading packages")
	}
	for _, p := range pkgs {
		for _, e := range p.Errors {
			return nil, errors.Wrap(e, "package load error")
		}
	}

	for _, p := range pkgs {
		if p.Types != nil {
			runDeclChecks(p.Fset, p.Types, oracle, d.Config, collector)
		}
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	var fns []*ssa.Function
	for _, p := range ssaPkgs {
		if p == nil {
			continue
		}
		for _, m := range p.Members {
			if fn, ok := m.(*ssa.Function); ok {
				fns = append(fns, fn)
			}
		}
	}

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	cm := newCalledMethods()

	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			d.analyzeFunction(oracle, cm, collector, fn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return collector, err
	}
	return collector, nil
}

func (d *Driver) analyzeFunction(oracle *annotation.Oracle, cm consistency.CalledMethods, collector *diagnostic.Collector, fn *ssa.Function) {
	if fn.Blocks == nil {
		return
	}
	cfgGraph := buildCFG(fn, d.RLConfig)

	az := &consistency.Analyzer{
		Reporter:                  collector,
		Element:                   ssaElement{fset: fn.Prog.Fset, pos: fn.Pos(), desc: fn.Name()},
		PermitUncheckedExceptions: d.RLConfig.PermitUncheckedExceptions,
	}
	entry := consistency.NewState()
	seedOwningParams(entry, oracle, fn)

	consistency.AnalyzeMethod(az, fn.RelString(fn.Package().Pkg), cfgGraph, entry)
}

// seedOwningParams tracks each of fn's @Owning parameters whose declared
// type has a non-empty must-call set as a fresh owning alias set (§4.4's
// "Initial state": only owning parameters enter with pending
// obligations; a non-owning parameter is a borrower and enters empty).
func seedOwningParams(state *consistency.State, oracle *annotation.Oracle, fn *ssa.Function) {
	for _, p := range fn.Params {
		if !oracle.Owning(paramLocation(p)) {
			continue
		}
		typ := ssaParamType{t: p.Type()}
		mcs, ok := oracle.MustCallOf(typ)
		if !ok || mcs.Empty() {
			continue
		}
		state.Track(newParamAliasSet(p.Name(), mcs))
	}
}
