package matchc

import (
	"errors"

	"tern/internal/diag"
	"tern/internal/ir"
	"tern/internal/pat"
)

// FailureFn produces the IR evaluated when no clause matches. It is called
// at most once per compilation, and only when the clauses are not
// exhaustive.
type FailureFn func() *ir.Expr

// compilation carries the per-job state of one entry-point invocation.
type compilation struct {
	ctx       *Ctx
	em        Emitter
	clauses   []pat.Clause
	exits     []*clauseExit
	failLabel ir.LabelID
	failIR    *ir.Expr
	onFail    FailureFn
}

func (c *Ctx) newCompilation(clauses []pat.Clause, fail FailureFn) *compilation {
	return &compilation{
		ctx:     c,
		em:      newEmitter(c.opts.Backend, c),
		clauses: clauses,
		onFail:  fail,
	}
}

// Match compiles a match over a single scrutinee expression. The scrutinee
// is evaluated exactly once; if it is not already a local it is bound to a
// fresh one before any test runs.
func (c *Ctx) Match(arg *ir.Expr, clauses []pat.Clause, fail FailureFn) (*ir.Expr, error) {
	if len(clauses) == 0 {
		return fail(), nil
	}
	cp := c.newCompilation(clauses, fail)

	var lets []bind
	c0 := cp.argColumn(arg, &lets)
	rows := make([]row, len(clauses))
	for i := range clauses {
		if len(clauses[i].Pats) != 1 {
			return nil, internalErr(diag.MatchArityMismatch,
				"clause %d carries %d patterns, match scrutinizes one value", i, len(clauses[i].Pats))
		}
		rows[i] = row{pats: []*pat.Pattern{clauses[i].Pats[0]}, clause: i}
	}
	return cp.run(matrix{cols: []col{c0}, rows: rows}, lets)
}

// MatchAll compiles a simultaneous match of several argument expressions
// against clauses whose single pattern covers the whole argument tuple.
// When every clause pattern decomposes into one sub-pattern per argument,
// the tuple is never materialized; otherwise (a clause binds or aliases the
// tuple as a whole) compilation falls back to matching a constructed tuple.
func (c *Ctx) MatchAll(args []*ir.Expr, clauses []pat.Clause, fail FailureFn) (*ir.Expr, error) {
	if len(clauses) == 0 {
		return fail(), nil
	}
	n := len(args)

	var rows []row
	for i := range clauses {
		if len(clauses[i].Pats) != 1 {
			return nil, internalErr(diag.MatchArityMismatch,
				"clause %d carries %d patterns, simultaneous match takes one tuple pattern", i, len(clauses[i].Pats))
		}
		flat, err := flattenPat(clauses[i].Pats[0], n)
		if errors.Is(err, errCannotFlatten) {
			tuple := &ir.Expr{Kind: ir.ExprTuple, Data: ir.TupleData{Elems: args}}
			return c.Match(tuple, clauses, fail)
		}
		if err != nil {
			return nil, err
		}
		for _, pr := range flat {
			rows = append(rows, row{pats: pr, clause: i})
		}
	}

	cp := c.newCompilation(clauses, fail)
	var lets []bind
	cols := make([]col, n)
	for j, a := range args {
		cols[j] = cp.argColumn(a, &lets)
	}
	return cp.run(matrix{cols: cols, rows: rows}, lets)
}

// MatchFun compiles the clause dispatch of a function whose formal
// parameters are already bound: one pattern per parameter, no argument
// evaluation at all.
func (c *Ctx) MatchFun(params []string, clauses []pat.Clause, fail FailureFn) (*ir.Expr, error) {
	if len(clauses) == 0 {
		return fail(), nil
	}
	cp := c.newCompilation(clauses, fail)

	cols := make([]col, len(params))
	for j, name := range params {
		cols[j] = col{strict: isAlias, name: name}
	}
	rows := make([]row, len(clauses))
	for i := range clauses {
		if len(clauses[i].Pats) != len(params) {
			return nil, internalErr(diag.MatchArityMismatch,
				"clause %d carries %d patterns for %d parameters", i, len(clauses[i].Pats), len(params))
		}
		rows[i] = row{pats: clauses[i].Pats, clause: i}
	}
	return cp.run(matrix{cols: cols, rows: rows}, nil)
}

// argColumn prepares a column for one argument expression. Locals are
// referenced in place; anything else is evaluated strictly into a fresh
// local so side effects and cost are not duplicated or reordered.
func (cp *compilation) argColumn(arg *ir.Expr, lets *[]bind) col {
	if arg.Kind == ir.ExprLocal {
		return col{strict: isAlias, name: arg.Data.(ir.LocalData).Name, src: arg}
	}
	name := cp.ctx.freshLocal("a")
	*lets = append(*lets, bind{name: name, value: arg})
	return col{strict: strictEval, name: name, src: arg}
}

// flattenPat decomposes one clause pattern into rows of n per-argument
// patterns. Or-alternatives contribute one row each; a pattern that binds
// or constrains the tuple as a whole cannot be decomposed.
func flattenPat(p *pat.Pattern, n int) ([][]*pat.Pattern, error) {
	switch p.Kind {
	case pat.Wildcard:
		return [][]*pat.Pattern{wildcards(n)}, nil
	case pat.Tuple:
		if len(p.Elems) != n {
			return nil, errCannotFlatten
		}
		return [][]*pat.Pattern{p.Elems}, nil
	case pat.Or:
		left, err := flattenPat(p.Left, n)
		if err != nil {
			return nil, err
		}
		right, err := flattenPat(p.Right, n)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	default:
		return nil, errCannotFlatten
	}
}

// run compiles the prepared matrix, resolves static jumps, and wraps the
// strict argument bindings around the finished tree.
func (cp *compilation) run(m matrix, lets []bind) (*ir.Expr, error) {
	cp.exits = make([]*clauseExit, len(cp.clauses))
	for i := range cp.clauses {
		cp.exits[i] = &clauseExit{label: cp.ctx.freshLabel(), params: cp.clauses[i].BoundVars()}
	}
	out, err := cp.compileMatrix(m)
	if err != nil {
		return nil, err
	}
	tree := cp.wireExits(cp.em.ToIR(out))
	for i := len(lets) - 1; i >= 0; i-- {
		tree = letExpr(lets[i].name, lets[i].value, tree)
	}
	return tree, nil
}
