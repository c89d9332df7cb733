// Package annotation implements the Annotation Oracle (C2): pure queries
// against a program element that extract must-call sets, owning marks,
// ensures/requires postconditions, and creates-must-call effects. The
// oracle performs no viewpoint-adaptation; binding "this", parameter
// names, and "#N" indices to call-site expressions is the caller's duty
// (§4.2).
package annotation

// Type is the minimal facade the oracle needs over a type in the
// checked program. The driver adapts go/types.Type to this interface;
// C2 itself has no dependency on go/types so it can be unit-tested with
// fakes.
type Type interface {
	// Name is the type's qualified name, used for the immutable-type
	// allowlist lookup and for diagnostic rendering.
	Name() string
}

// Location is a storage location that can carry an Owning mark: a field,
// a parameter, or a return position.
type Location interface {
	// IsField reports whether this location is a field (as opposed to a
	// parameter or return position).
	IsField() bool
	// IsStaticField reports whether this location is a static field;
	// meaningless (false) for non-fields.
	IsStaticField() bool
	// IsFinalField reports whether this location is a final (immutable
	// binding) field; meaningless (false) for non-fields.
	IsFinalField() bool
	// EnclosingType returns the type declaring this location, for fields;
	// nil for parameters/returns.
	EnclosingType() Type
	// DeclaredType is the type of the value held at this location.
	DeclaredType() Type
	// Name is the location's simple name (field name, parameter name, or
	// "" for an unnamed return position).
	Name() string
}

// Method is the minimal facade over a method or constructor declaration
// that C2's postcondition/effect queries operate on.
type Method interface {
	// Name is the method's simple name.
	Name() string
	// Overrides returns the method(s) this one directly overrides, empty
	// if none (used only by C3, but queried here so C2 stays the single
	// place that understands the override relation's raw annotation
	// data).
	Overrides() []Method
}

// Field is a declared field, used by declcheck's owning-field validity
// check (§4.3(a)).
type Field interface {
	Location
}
