package annotation

import (
	"strconv"
	"strings"
)

// Adapt performs the viewpoint-adaptation the oracle explicitly does not
// do (§4.2): it binds "this" to receiverExpr and positional placeholders
// "#1".."#N" to argExprs[0:], rewriting an annotation-supplied expression
// string into one meaningful at a specific call site. Expressions that
// don't reference "this" or a "#N" placeholder pass through unchanged
// (e.g. a literal field-qualified expression already resolved against
// the declaring type).
func Adapt(expression, receiverExpr string, argExprs []string) string {
	out := strings.ReplaceAll(expression, "this", receiverExpr)
	// Highest index first, so "#1" never matches the prefix of "#10".
	for i := len(argExprs) - 1; i >= 0; i-- {
		placeholder := "#" + strconv.Itoa(i+1)
		out = strings.ReplaceAll(out, placeholder, argExprs[i])
	}
	return out
}
