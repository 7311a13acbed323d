package matchc

import "tern/internal/ir"

// Out is the opaque handle an emitter returns for a constructed fragment.
// The direct backend wraps IR nodes one-to-one; the shared backend returns
// hash-consed node ids.
type Out interface {
	isOut()
}

// OutCase pairs a switch head test with its branch fragment.
type OutCase struct {
	Test ir.CaseTest
	Body Out
}

// Emitter abstracts decision-tree construction so the builder is independent
// of the output strategy.
type Emitter interface {
	// Exit emits a static jump to a clause or failure label.
	Exit(label ir.LabelID, args []*ir.Expr) Out
	// Let binds a local around a fragment.
	Let(name string, value *ir.Expr, body Out) Out
	// If emits a guard test with a fallthrough branch.
	If(cond *ir.Expr, then, els Out) Out
	// Switch emits a multi-way dispatch; def is nil when cases are exhaustive.
	Switch(scrut *ir.Expr, cases []OutCase, def Out) Out
	// ToIR materializes the fragment as IR, resolving any sharing.
	ToIR(o Out) *ir.Expr
}

func newEmitter(b Backend, ctx *Ctx) Emitter {
	if b == BackendShared {
		return newSharedEmitter(ctx)
	}
	return directEmitter{}
}

// directOut wraps an IR expression with no indirection.
type directOut struct {
	expr *ir.Expr
}

func (directOut) isOut() {}

// directEmitter materializes IR eagerly. Identical continuations reached from
// several branches are emitted once per branch.
type directEmitter struct{}

func (directEmitter) Exit(label ir.LabelID, args []*ir.Expr) Out {
	return directOut{expr: exitExpr(label, args)}
}

func (directEmitter) Let(name string, value *ir.Expr, body Out) Out {
	return directOut{expr: letExpr(name, value, body.(directOut).expr)}
}

func (directEmitter) If(cond *ir.Expr, then, els Out) Out {
	return directOut{expr: &ir.Expr{Kind: ir.ExprIf, Data: ir.IfData{
		Cond: cond,
		Then: then.(directOut).expr,
		Else: els.(directOut).expr,
	}}}
}

func (directEmitter) Switch(scrut *ir.Expr, cases []OutCase, def Out) Out {
	irCases := make([]ir.SwitchCase, len(cases))
	for i, c := range cases {
		irCases[i] = ir.SwitchCase{Test: c.Test, Body: c.Body.(directOut).expr}
	}
	data := ir.SwitchData{Value: scrut, Cases: irCases}
	if def != nil {
		data.Default = def.(directOut).expr
	}
	return directOut{expr: &ir.Expr{Kind: ir.ExprSwitch, Data: data}}
}

func (directEmitter) ToIR(o Out) *ir.Expr {
	return o.(directOut).expr
}
