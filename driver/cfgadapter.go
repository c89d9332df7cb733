package driver

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/ssa"

	"github.com/cockroachdb/rlcheck/config"
	"github.com/cockroachdb/rlcheck/consistency"
	"github.com/cockroachdb/rlcheck/diagnostic"
)

// ssaElement anchors a diagnostic to an SSA instruction's source
// position.
type ssaElement struct {
	fset *token.FileSet
	pos  token.Pos
	desc string
}

func (e ssaElement) DiagString() string {
	if e.fset == nil || e.pos == token.NoPos {
		return e.desc
	}
	return fmt.Sprintf("%s: %s", e.fset.Position(e.pos), e.desc)
}

// buildCFG translates fn's SSA basic-block graph into the collaborator
// CFG shape of §6, one consistency.Block per ssa.BasicBlock. Call sites
// are carried through as bare MethodCall instructions with no
// owning/requires/ensures information attached: populating that
// requires resolving the callee against the annotation oracle, which in
// turn requires a magic-comment (or similar) annotation source this
// core does not parse (§1 scopes the annotation source itself out -
// C2's Oracle only consumes already-extracted Facts). A driver wanting
// full end-to-end checking supplies that resolution by post-processing
// the MethodCall/CallTerm values this function returns before handing
// the CFG to consistency.Analyzer.
func buildCFG(fn *ssa.Function, cfg *config.Config) *consistency.CFG {
	if cfg == nil {
		cfg = config.Default()
	}
	fset := fn.Prog.Fset
	blocks := make(map[*ssa.BasicBlock]*consistency.Block, len(fn.Blocks))
	for _, b := range fn.Blocks {
		blocks[b] = &consistency.Block{ID: b.Index}
	}

	for _, b := range fn.Blocks {
		out := blocks[b]
		out.Instrs, out.Term = translateBlock(fset, b, blocks, cfg)
	}

	return &consistency.CFG{Entry: blocks[fn.Blocks[0]], Blocks: blockSlice(blocks, fn.Blocks)}
}

func blockSlice(m map[*ssa.BasicBlock]*consistency.Block, order []*ssa.BasicBlock) []*consistency.Block {
	out := make([]*consistency.Block, len(order))
	for i, b := range order {
		out[i] = m[b]
	}
	return out
}

func translateBlock(fset *token.FileSet, b *ssa.BasicBlock, blocks map[*ssa.BasicBlock]*consistency.Block, cfg *config.Config) ([]consistency.Instr, consistency.Terminator) {
	var instrs []consistency.Instr

	for _, raw := range b.Instrs {
		switch v := raw.(type) {
		case *ssa.Store:
			if addr, ok := v.Addr.(*ssa.FieldAddr); ok {
				field := fieldName(addr)
				instrs = append(instrs, consistency.FieldStore{
					Element: elementOf(fset, v.Pos(), "store "+field),
					Field:   field,
					RHS:     exprName(v.Val),
				})
				continue
			}
			instrs = append(instrs, consistency.Assign{
				Element:    elementOf(fset, v.Pos(), "store"),
				LHS:        exprName(v.Addr),
				RHS:        exprName(v.Val),
				RHSTracked: true,
			})
		case *ssa.Call:
			instrs = append(instrs, consistency.MethodCall{Call: consistency.Call{
				Element:  elementOf(fset, v.Pos(), "call "+calleeName(v)),
				Receiver: receiverName(v),
				Method:   calleeName(v),
			}})
		}
	}

	term := blockTerminator(b)
	switch t := term.(type) {
	case *ssa.Return:
		rt := consistency.ReturnTerm{Element: elementOf(fset, t.Pos(), "return")}
		if len(t.Results) == 1 {
			rt.Expr = exprName(t.Results[0])
			rt.HasExpr = true
		}
		return instrs, rt
	case *ssa.Panic:
		return instrs, consistency.ThrowTerm{Ignored: cfg.ExceptionIgnored(panicTypeName(t))}
	case *ssa.If:
		succs := make([]*consistency.Block, 0, len(b.Succs))
		for _, s := range b.Succs {
			succs = append(succs, blocks[s])
		}
		return instrs, consistency.Branch{Succs: succs}
	case *ssa.Jump:
		if len(b.Succs) == 1 {
			return instrs, consistency.Goto{Next: blocks[b.Succs[0]]}
		}
	}
	// A block with no recognized terminator (e.g. unreachable, or the
	// synthetic exit block ssa produces for a function with no explicit
	// return) is treated as an implicit normal return.
	return instrs, consistency.ReturnTerm{}
}

// panicTypeName resolves the static type name to match against the
// configured ignored-exceptions patterns (§4.4). If the panicked value
// is boxed through an explicit interface conversion its concrete operand
// type is used; otherwise the value's own (possibly interface) static
// type is the best this adapter can do without the dynamic type
// information a real runtime exception carries.
func panicTypeName(p *ssa.Panic) string {
	v := p.X
	if mi, ok := v.(*ssa.MakeInterface); ok {
		return mi.X.Type().String()
	}
	return v.Type().String()
}

// blockTerminator returns b's final instruction, which ssa guarantees
// is always a control-flow instruction (Return, Panic, If, Jump).
func blockTerminator(b *ssa.BasicBlock) ssa.Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

func elementOf(fset *token.FileSet, pos token.Pos, desc string) diagnostic.Element {
	return ssaElement{fset: fset, pos: pos, desc: desc}
}

func exprName(v ssa.Value) string {
	if v == nil {
		return ""
	}
	if v.Name() != "" {
		return v.Name()
	}
	return v.String()
}

// fieldName identifies a struct field by index rather than resolving
// its *types.Var: the declaration checker resolves field identity from
// the original type declaration (§4.3(a)), not from this adapter, so a
// stable positional name is enough to correlate a store with the
// alias-set member the oracle-facing side creates for it.
func fieldName(addr *ssa.FieldAddr) string {
	return fmt.Sprintf("field%d", addr.Field)
}

func receiverName(c *ssa.Call) string {
	if c.Call.IsInvoke() {
		return exprName(c.Call.Value)
	}
	if len(c.Call.Args) > 0 {
		return exprName(c.Call.Args[0])
	}
	return ""
}

func calleeName(c *ssa.Call) string {
	if c.Call.IsInvoke() {
		return c.Call.Method.Name()
	}
	if fn, ok := c.Call.Value.(*ssa.Function); ok {
		return fn.Name()
	}
	return exprName(c.Call.Value)
}
