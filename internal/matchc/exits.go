package matchc

import "tern/internal/ir"

// clauseExit is the jump target compiled for one clause: every leaf that
// selects the clause exits to label, passing the clause's bound variables
// in params order.
type clauseExit struct {
	label  ir.LabelID
	params []string
}

// failureLabel lazily allocates the shared no-match label. An exhaustive
// match never asks for it, and then the failure expression is never built.
func (cp *compilation) failureLabel() ir.LabelID {
	if !cp.failLabel.IsValid() {
		cp.failLabel = cp.ctx.freshLabel()
		cp.failIR = cp.onFail()
	}
	return cp.failLabel
}

// wireExits resolves every static jump in the materialized tree. A clause
// body referenced from exactly one leaf is inlined at that leaf; a body
// referenced from several leaves becomes a labeled handler wrapping the
// tree, evaluated once per selection. Unreferenced clauses are dead rows
// and their bodies are dropped.
func (cp *compilation) wireExits(tree *ir.Expr) *ir.Expr {
	for i := len(cp.exits) - 1; i >= 0; i-- {
		ce := cp.exits[i]
		body := cp.clauses[i].Body
		switch ir.CountExits(tree, ce.label) {
		case 0:
		case 1:
			tree = ir.RewriteExits(tree, ce.label, func(args []*ir.Expr) *ir.Expr {
				return letWrap(ce.params, args, body)
			})
		default:
			tree = catchExpr(tree, ce.label, ce.params, body)
		}
	}

	if cp.failLabel.IsValid() {
		switch ir.CountExits(tree, cp.failLabel) {
		case 0:
		case 1:
			tree = ir.RewriteExits(tree, cp.failLabel, func([]*ir.Expr) *ir.Expr {
				return cp.failIR
			})
		default:
			tree = catchExpr(tree, cp.failLabel, nil, cp.failIR)
		}
	}
	return tree
}

// letWrap binds params to args around body, leftmost outermost.
func letWrap(params []string, args []*ir.Expr, body *ir.Expr) *ir.Expr {
	out := body
	for i := len(params) - 1; i >= 0; i-- {
		out = letExpr(params[i], args[i], out)
	}
	return out
}
