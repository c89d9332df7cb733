package diagnostic

import (
	"go.uber.org/zap"

	"github.com/cockroachdb/rlcheck/internal/syncutil"
)

// Collector is the default Reporter: it accumulates every reported
// Diagnostic (so one method's leak never masks another's, §7) and
// mirrors each one to an optional structured logger. HasInternalError
// reports true once ReportInternal has been called, letting a driver abort after
// the current unit of work unwinds (§7: "the diagnostic callback is
// invoked with a distinct kind so the driver may abort"). A Collector is
// safe to share across the goroutines a driver fans procedure analysis
// out to.
type Collector struct {
	Log *zap.SugaredLogger

	mu struct {
		syncutil.Mutex
		diagnostics  []Diagnostic
		internalErrs []Diagnostic
	}
}

// NewCollector returns a Collector. log may be nil, in which case
// diagnostics are only accumulated, not logged.
func NewCollector(log *zap.SugaredLogger) *Collector {
	return &Collector{Log: log}
}

// Report implements Reporter.
func (c *Collector) Report(element Element, key Key, args ...interface{}) {
	d := Diagnostic{Element: element, Key: key, Severity: SeverityUser, Args: args}
	c.mu.Lock()
	c.mu.diagnostics = append(c.mu.diagnostics, d)
	c.mu.Unlock()
	if c.Log != nil {
		c.Log.Infow("diagnostic reported", "key", string(key), "at", element.DiagString(), "args", args)
	}
}

// ReportInternal implements Reporter.
func (c *Collector) ReportInternal(element Element, key Key, args ...interface{}) {
	d := Diagnostic{Element: element, Key: key, Severity: SeverityInternal, Args: args}
	c.mu.Lock()
	c.mu.diagnostics = append(c.mu.diagnostics, d)
	c.mu.internalErrs = append(c.mu.internalErrs, d)
	c.mu.Unlock()
	if c.Log != nil {
		c.Log.Errorw("internal error", "key", string(key), "at", element.DiagString(), "args", args)
	}
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.mu.diagnostics...)
}

// HasInternalError reports whether any ReportInternal call has occurred.
func (c *Collector) HasInternalError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mu.internalErrs) > 0
}
