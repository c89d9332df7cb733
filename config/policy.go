package config

import "path"

// ExceptionIgnored reports whether typeName matches one of the
// configured IgnoredExceptions glob patterns (§4.4 "Ignored
// exceptions"): a throw whose static type matches is marked Ignored.
// Per Scenario S2 the local leak check at the throw site still runs for
// it under the default configuration; only when
// consistency.Analyzer.PermitUncheckedExceptions is set are its leaks
// left unreported, the one place this policy changes what's reported. A
// malformed pattern (schemaCUE should already have rejected one) is
// treated as no match rather than erroring.
func (c *Config) ExceptionIgnored(typeName string) bool {
	for _, pattern := range c.IgnoredExceptions {
		if ok, err := path.Match(pattern, typeName); err == nil && ok {
			return true
		}
	}
	return false
}
