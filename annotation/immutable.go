package annotation

// builtinImmutableTypes is the single enumeration point for the
// immutable-types shortcut (§9): these types return an empty MCS
// irrespective of any annotation found on them, because their values
// never carry a must-call obligation. The allowlist covers the Go
// analogues of the boxed-primitive / String / immutable-collection types
// the original spec names: the built-in scalar types, strings, error,
// and a few standard-library value types (time, context, math/big). No
// container types are listed. Keys use the types.Type.String() form.
var builtinImmutableTypes = map[string]struct{}{
	"string":            {},
	"bool":              {},
	"int":               {},
	"int8":              {},
	"int16":             {},
	"int32":             {},
	"int64":             {},
	"uint":              {},
	"uint8":             {},
	"uint16":            {},
	"uint32":            {},
	"uint64":            {},
	"uintptr":           {},
	"float32":           {},
	"float64":           {},
	"complex64":         {},
	"complex128":        {},
	"byte":              {},
	"rune":              {},
	"error":             {},
	"time.Duration":     {},
	"time.Time":         {},
	"context.Context":   {},
	"math/big.Int":      {},
	"math/big.Float":    {},
	"math/big.Rat":      {},
}

// IsBuiltinImmutable reports whether typeName names one of the built-in
// immutable types for which mustCallOf always returns the empty set,
// regardless of any annotation.
func IsBuiltinImmutable(typeName string) bool {
	_, ok := builtinImmutableTypes[typeName]
	return ok
}
