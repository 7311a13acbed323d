package matchc

import (
	"fmt"

	"tern/internal/diag"
	"tern/internal/ir"
	"tern/internal/pat"
)

// disc is one discriminator observed in the leading column: a constructor
// tag, a constant, a tuple arity, or a record shape.
type disc struct {
	kind  pat.Kind // Ctor, Const, Tuple, or Record
	tag   string
	arity int
	tags  *pat.TagSet
	val   ir.ConstVal
	shape *pat.RecordShape
}

// key returns a string identifying the discriminator within its column.
func (d disc) key() string {
	switch d.kind {
	case pat.Ctor:
		return "t:" + d.tag
	case pat.Const:
		return "c:" + d.val.String()
	case pat.Tuple:
		return fmt.Sprintf("n:%d", d.arity)
	case pat.Record:
		return "r:" + d.shape.Name
	default:
		return "?"
	}
}

// test builds the switch-case head test for the discriminator.
func (d disc) test() ir.CaseTest {
	switch d.kind {
	case pat.Ctor:
		return ir.CaseTest{Kind: ir.CaseTag, Tag: d.tag, Arity: d.arity}
	case pat.Const:
		return ir.CaseTest{Kind: ir.CaseConst, Const: d.val}
	case pat.Tuple:
		return ir.CaseTest{Kind: ir.CaseTuple, Arity: d.arity}
	default:
		return ir.CaseTest{Kind: ir.CaseRecord, Tag: d.shape.Name, Arity: len(d.shape.Fields), Fields: d.shape.Fields}
	}
}

// collectDiscs scans the (preprocessed) leading column and returns its
// distinct discriminators in first-occurrence order. Wildcard heads are
// skipped; all refutable heads must share one kind.
func collectDiscs(m matrix) ([]disc, error) {
	var out []disc
	seen := map[string]struct{}{}
	kind := pat.Wildcard
	for _, r := range m.rows {
		p := r.pats[0]
		if p.Kind == pat.Wildcard {
			continue
		}
		if kind == pat.Wildcard {
			kind = p.Kind
		} else if p.Kind != kind {
			return nil, internalErr(diag.MatchBadHead,
				"mixed head kinds %v and %v in one column (clause %d)", kind, p.Kind, r.clause)
		}
		d, err := discOf(p, r.clause)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[d.key()]; dup {
			continue
		}
		seen[d.key()] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}

func discOf(p *pat.Pattern, clause int) (disc, error) {
	switch p.Kind {
	case pat.Ctor:
		d := disc{kind: pat.Ctor, tag: p.Tag, arity: len(p.Elems), tags: p.Tags}
		if p.Tags != nil {
			def, ok := p.Tags.Lookup(p.Tag)
			if ok && def.Arity != len(p.Elems) {
				return disc{}, internalErr(diag.MatchArityMismatch,
					"constructor %s has arity %d, pattern supplies %d (clause %d)",
					p.Tag, def.Arity, len(p.Elems), clause)
			}
		}
		return d, nil
	case pat.Const:
		return disc{kind: pat.Const, val: p.Val}, nil
	case pat.Tuple:
		return disc{kind: pat.Tuple, arity: len(p.Elems)}, nil
	case pat.Record:
		return disc{kind: pat.Record, shape: p.Shape}, nil
	default:
		return disc{}, internalErr(diag.MatchBadHead, "pattern kind %v survived preprocessing (clause %d)", p.Kind, clause)
	}
}

// needsDefault reports whether the collected discriminators leave values
// uncovered. Tuple and record heads have exactly one shape each; a closed
// tag universe may be exhausted; booleans admit only two constants; all
// other constant domains are effectively unbounded.
func needsDefault(discs []disc) bool {
	switch discs[0].kind {
	case pat.Tuple, pat.Record:
		return false
	case pat.Ctor:
		tags := discs[0].tags
		if tags == nil || tags.Open {
			return true
		}
		return len(discs) < len(tags.Tags)
	default:
		if discs[0].val.Kind == ir.ConstBool {
			return len(discs) < 2
		}
		return true
	}
}

// specialize builds the submatrix for one discriminator: rows whose head
// carries it (with sub-patterns exposed as new leading columns) plus rows
// with a wildcard head. Sub-columns project out of the already-bound column
// local, so they are bound lazily.
func specialize(m matrix, d disc) (matrix, error) {
	base := m.cols[0].expr()
	span := colSpan(m.cols[0])
	var subCols []col
	switch d.kind {
	case pat.Ctor:
		subCols = make([]col, d.arity)
		for i := range subCols {
			subCols[i] = col{strict: mayDefer, src: fieldExpr(base, d.tag, i, "", span)}
		}
	case pat.Tuple:
		subCols = make([]col, d.arity)
		for i := range subCols {
			subCols[i] = col{strict: mayDefer, src: fieldExpr(base, "", i, "", span)}
		}
	case pat.Record:
		subCols = make([]col, len(d.shape.Fields))
		for i, name := range d.shape.Fields {
			subCols[i] = col{strict: mayDefer, src: fieldExpr(base, "", i, name, span)}
		}
	}

	cols := make([]col, 0, len(subCols)+len(m.cols)-1)
	cols = append(cols, subCols...)
	cols = append(cols, m.cols[1:]...)

	var rows []row
	for _, r := range m.rows {
		p := r.pats[0]
		var subs []*pat.Pattern
		switch {
		case p.Kind == pat.Wildcard:
			subs = wildcards(len(subCols))
		case d.kind == pat.Ctor && p.Kind == pat.Ctor && p.Tag == d.tag:
			if len(p.Elems) != d.arity {
				return matrix{}, internalErr(diag.MatchArityMismatch,
					"constructor %s used with arities %d and %d (clause %d)", d.tag, d.arity, len(p.Elems), r.clause)
			}
			subs = p.Elems
		case d.kind == pat.Tuple && p.Kind == pat.Tuple && len(p.Elems) == d.arity:
			subs = p.Elems
		case d.kind == pat.Record && p.Kind == pat.Record && p.Shape.Name == d.shape.Name:
			subs = make([]*pat.Pattern, len(p.Fields))
			for i, f := range p.Fields {
				subs[i] = f.Pat
			}
		case d.kind == pat.Const && p.Kind == pat.Const && p.Val.Equal(d.val):
			subs = nil
		default:
			continue
		}
		pats := make([]*pat.Pattern, 0, len(cols))
		pats = append(pats, subs...)
		pats = append(pats, r.pats[1:]...)
		rows = append(rows, row{pats: pats, binds: r.binds, clause: r.clause})
	}
	return matrix{cols: cols, rows: rows}, nil
}

// defaultMatrix keeps only rows with a wildcard head and drops the leading
// column.
func defaultMatrix(m matrix) matrix {
	cols := m.cols[1:]
	var rows []row
	for _, r := range m.rows {
		if r.pats[0].Kind != pat.Wildcard {
			continue
		}
		rows = append(rows, row{pats: r.pats[1:], binds: r.binds, clause: r.clause})
	}
	return matrix{cols: cols, rows: rows}
}

func wildcards(n int) []*pat.Pattern {
	out := make([]*pat.Pattern, n)
	for i := range out {
		out[i] = pat.Wild()
	}
	return out
}
