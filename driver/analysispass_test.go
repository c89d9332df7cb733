package driver_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/cockroachdb/rlcheck/driver"
)

// The pass runs with an empty annotation.Facts (no magic-comment parser
// is wired in, by design - see driver.go's package doc), so nothing in
// this fixture should ever be flagged; the test only confirms the pass
// loads, builds, and runs over real source without error.
func TestAnalyzerRunsClean(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, driver.Analyzer, "basic")
}
