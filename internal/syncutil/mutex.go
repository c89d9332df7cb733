// Package syncutil wraps the standard sync primitives so call sites
// name a single type regardless of build tags, the way cockroach's own
// pkg/util/syncutil does it (that package lives in the same module
// there and so isn't importable as a third-party dependency here; this
// is a from-scratch recreation of the same pattern, not a copy).
package syncutil

import "sync"

// Mutex is sync.Mutex, aliased so instrumentation (e.g. a race-detector
// build tag swapping in a checking mutex) has one place to hook in
// without touching every call site.
type Mutex struct {
	sync.Mutex
}

// RWMutex is sync.RWMutex, aliased for the same reason.
type RWMutex struct {
	sync.RWMutex
}
