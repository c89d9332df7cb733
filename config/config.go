// Package config loads the checker's configuration (§6's boolean flags
// plus the ignored-exceptions list), the way the examined pack's
// comparable tools do: a TOML file decoded with go-toml/v2, validated
// against an embedded CUE schema before it's trusted.
package config

// Config carries the user-facing configuration surface named in §6.
type Config struct {
	// PermitStaticOwning relaxes the static-owning-field rule of
	// §4.3(a).1: normally a static @Owning field must also be final;
	// with this set, non-final statics are accepted too.
	PermitStaticOwning bool `toml:"permit_static_owning" json:"permit_static_owning"`
	// NoLightweightOwnership disables the owning-field coverage check
	// (§4.3(a)) entirely.
	NoLightweightOwnership bool `toml:"no_lightweight_ownership" json:"no_lightweight_ownership"`
	// StrictFieldMatch gates the exact-match alternative to the default
	// substring field matcher (§9).
	StrictFieldMatch bool `toml:"strict_field_match" json:"strict_field_match"`
	// PermitUncheckedExceptions, when true, stops reporting leaks that
	// are reached through a throw matching IgnoredExceptions; no warning
	// is emitted for them instead. Leaks through other throws are still
	// reported.
	PermitUncheckedExceptions bool `toml:"permit_unchecked_exceptions" json:"permit_unchecked_exceptions"`
	// IgnoredExceptions holds glob patterns matched against the static
	// type of a panic's operand (§4.4, Scenario S2). A matching throw is
	// marked Ignored; its local leak check still runs unless
	// PermitUncheckedExceptions is also set.
	IgnoredExceptions []string `toml:"ignored_exceptions" json:"ignored_exceptions,omitempty"`
}

// Default returns the zero-configuration behavior: every relaxation
// off, no exceptions pre-ignored.
func Default() *Config {
	return &Config{}
}
