package obligation

import "strings"

// Obligation is the triple (expression, method, exit-kind) described in
// §3: on paths exiting with ExitKind, Method must have been invoked on
// Expression. Equality is structural, with Expression compared after
// canonicalization.
type Obligation struct {
	Expression string
	Method     string
	Exit       ExitKind
}

// New builds an Obligation, canonicalizing the expression the way every
// caller is expected to (§4.1: "expression equality is textual after
// canonicalization").
func New(expression, method string, exit ExitKind) Obligation {
	return Obligation{Expression: Canonicalize(expression), Method: method, Exit: exit}
}

// Canonicalize trims whitespace and strips an implicit "this." prefix, so
// that "this.resource" and "resource" (when resource resolves to the
// receiver's field) compare equal once both have passed through here.
func Canonicalize(expression string) string {
	s := strings.TrimSpace(expression)
	s = strings.TrimPrefix(s, "this.")
	return s
}

// Equal reports structural equality against another obligation. Both
// sides are assumed to already be canonicalized (New canonicalizes on
// construction; callers building an Obligation literal directly are
// responsible for doing the same).
func (o Obligation) Equal(other Obligation) bool {
	return o.Expression == other.Expression && o.Method == other.Method && o.Exit == other.Exit
}

// Key returns a value suitable for use as a map key, since Obligation
// already is comparable (all fields are comparable), but Key documents
// the intended hashing surface for collections keyed on obligations.
func (o Obligation) Key() Obligation { return o }
