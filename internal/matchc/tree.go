package matchc

import (
	"tern/internal/ir"
	"tern/internal/pat"
)

// compileMatrix lowers one clause matrix into an output fragment. Row order
// encodes clause priority throughout: the first row that matches wins.
func (cp *compilation) compileMatrix(m matrix) (Out, error) {
	if len(m.rows) == 0 {
		return cp.em.Exit(cp.failureLabel(), nil), nil
	}
	if rowIrrefutable(m.rows[0]) {
		return cp.emitLeaf(m)
	}

	m = rotateColumn(m, pickColumn(m, cp.ctx.opts.Heuristic))

	// The tested value must live in a local: branch bodies and deferred
	// bindings may read it more than once.
	letName := ""
	var letValue *ir.Expr
	if m.cols[0].name == "" {
		letName = cp.ctx.freshLocal("v")
		letValue = m.cols[0].src
		cols := make([]col, len(m.cols))
		copy(cols, m.cols)
		cols[0] = col{strict: isAlias, name: letName, src: m.cols[0].src}
		m.cols = cols
	}

	m, err := preprocess(m)
	if err != nil {
		return nil, err
	}
	discs, err := collectDiscs(m)
	if err != nil {
		return nil, err
	}

	var out Out
	if len(discs) == 0 {
		// Or-expansion can leave only wildcard heads; there is nothing left
		// to test in this column.
		out, err = cp.compileMatrix(defaultMatrix(m))
		if err != nil {
			return nil, err
		}
	} else {
		cases := make([]OutCase, len(discs))
		for i, d := range discs {
			sub, err := specialize(m, d)
			if err != nil {
				return nil, err
			}
			body, err := cp.compileMatrix(sub)
			if err != nil {
				return nil, err
			}
			cases[i] = OutCase{Test: d.test(), Body: body}
		}
		var def Out
		if needsDefault(discs) {
			def, err = cp.compileMatrix(defaultMatrix(m))
			if err != nil {
				return nil, err
			}
		}
		out = cp.em.Switch(m.cols[0].expr(), cases, def)
	}

	if letName != "" {
		out = cp.em.Let(letName, letValue, out)
	}
	return out, nil
}

// emitLeaf handles a matrix whose first row matches unconditionally: gather
// the row's remaining variable bindings and jump to the clause. A guarded
// row falls through to the rows below it when the guard is false, without
// re-testing anything already established.
func (cp *compilation) emitLeaf(m matrix) (Out, error) {
	r := m.rows[0]
	binds := make([]bind, 0, len(r.binds)+len(m.cols))
	binds = append(binds, r.binds...)
	for j := range m.cols {
		collectLeafBinds(r.pats[j], m.cols[j].expr(), &binds)
	}

	ce := cp.exits[r.clause]
	args := make([]*ir.Expr, len(ce.params))
	for i, name := range ce.params {
		args[i] = localExpr(name)
	}
	out := cp.em.Exit(ce.label, args)

	if g := cp.clauses[r.clause].Guard; g != nil {
		rest, err := cp.compileMatrix(matrix{cols: m.cols, rows: m.rows[1:]})
		if err != nil {
			return nil, err
		}
		out = cp.em.If(g, out, rest)
	}

	for i := len(binds) - 1; i >= 0; i-- {
		out = cp.em.Let(binds[i].name, binds[i].value, out)
	}
	return out, nil
}

func rowIrrefutable(r row) bool {
	for _, p := range r.pats {
		if !irrefutable(p) {
			return false
		}
	}
	return true
}

// collectLeafBinds records the bindings an irrefutable pattern introduces
// for its column value.
func collectLeafBinds(p *pat.Pattern, value *ir.Expr, binds *[]bind) {
	for p != nil {
		switch p.Kind {
		case pat.Var:
			*binds = append(*binds, bind{name: p.Name, value: value})
			return
		case pat.Alias:
			*binds = append(*binds, bind{name: p.Name, value: value})
			p = p.Sub
		default:
			return
		}
	}
}
