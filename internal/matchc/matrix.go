package matchc

import (
	"tern/internal/ir"
	"tern/internal/pat"
	"tern/internal/source"
)

// strictness classifies how a column's value binding must be treated.
type strictness uint8

const (
	// strictEval values carry argument expressions that must be evaluated
	// (once, in order) before any test runs.
	strictEval strictness = iota
	// mayDefer values are pure projections that are bound lazily, at the
	// point of their first test.
	mayDefer
	// isAlias values are already-bound identifiers (formal parameters) and
	// are referenced directly.
	isAlias
)

// col describes one undetermined column: its binding strictness, the local
// name holding its value once bound, and the source expression producing it.
type col struct {
	strict strictness
	name   string
	src    *ir.Expr
}

// expr returns an IR expression reading the column's value.
func (c col) expr() *ir.Expr {
	if c.name != "" {
		return localExpr(c.name)
	}
	return c.src
}

func colSpan(c col) source.Span {
	if c.src != nil {
		return c.src.Span
	}
	return source.Span{}
}

// bind is one pending variable binding accumulated while preprocessing.
type bind struct {
	name  string
	value *ir.Expr
}

// row is one matrix row: a pattern per column, the bindings accumulated so
// far, and the index of the originating clause (several rows can share one
// clause after or-expansion).
type row struct {
	pats   []*pat.Pattern
	binds  []bind
	clause int
}

// withHead returns a copy of the row whose leading pattern is replaced.
// The pattern and binding slices are cloned so sibling rows stay intact.
func (r row) withHead(p *pat.Pattern) row {
	pats := make([]*pat.Pattern, len(r.pats))
	copy(pats, r.pats)
	pats[0] = p
	binds := make([]bind, len(r.binds), len(r.binds)+1)
	copy(binds, r.binds)
	return row{pats: pats, binds: binds, clause: r.clause}
}

// matrix is an ordered clause matrix; row order encodes clause priority.
type matrix struct {
	cols []col
	rows []row
}

func localExpr(name string) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprLocal, Data: ir.LocalData{Name: name}}
}

func letExpr(name string, value, body *ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprLet, Data: ir.LetData{Name: name, Value: value, Body: body}}
}

func exitExpr(label ir.LabelID, args []*ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprExit, Data: ir.ExitData{Label: label, Args: args}}
}

func catchExpr(body *ir.Expr, label ir.LabelID, params []string, handler *ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprCatch, Data: ir.CatchData{Body: body, Label: label, Params: params, Handler: handler}}
}

func fieldExpr(base *ir.Expr, tag string, index int, name string, span source.Span) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprField, Span: span, Data: ir.FieldData{Base: base, Tag: tag, Index: index, Name: name}}
}

// rotateColumn moves column j to the front of the matrix, preserving the
// relative order of the remaining columns. Fresh slices are allocated so the
// caller's matrix view is untouched.
func rotateColumn(m matrix, j int) matrix {
	if j == 0 {
		return m
	}
	cols := make([]col, 0, len(m.cols))
	cols = append(cols, m.cols[j])
	cols = append(cols, m.cols[:j]...)
	cols = append(cols, m.cols[j+1:]...)

	rows := make([]row, len(m.rows))
	for i, r := range m.rows {
		pats := make([]*pat.Pattern, 0, len(r.pats))
		pats = append(pats, r.pats[j])
		pats = append(pats, r.pats[:j]...)
		pats = append(pats, r.pats[j+1:]...)
		rows[i] = row{pats: pats, binds: r.binds, clause: r.clause}
	}
	return matrix{cols: cols, rows: rows}
}
