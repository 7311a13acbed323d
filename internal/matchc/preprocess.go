package matchc

import (
	"tern/internal/diag"
	"tern/internal/pat"
)

// preprocess rewrites every row's leading pattern until it is either a
// wildcard or genuinely discriminating (constructor, constant, tuple, or
// full record). Variables and aliases become pending bindings of the
// column's value; or-patterns split the row in two; partial record patterns
// are completed with wildcards for unmentioned fields. The tested column
// must already be bound to a local so the produced bindings stay valid in
// any branch.
func preprocess(m matrix) (matrix, error) {
	out := make([]row, 0, len(m.rows))
	for _, r := range m.rows {
		expanded, err := simplifyHead(r, m.cols[0])
		if err != nil {
			return m, err
		}
		out = append(out, expanded...)
	}
	m.rows = out
	return m, nil
}

func simplifyHead(r row, c col) ([]row, error) {
	p := r.pats[0]
	if p == nil {
		return nil, internalErr(diag.MatchEmptyColumn, "row for clause %d has a nil leading pattern", r.clause)
	}
	switch p.Kind {
	case pat.Wildcard, pat.Tuple, pat.Ctor, pat.Const:
		return []row{r}, nil

	case pat.Var:
		r2 := r.withHead(pat.Wild())
		r2.binds = append(r2.binds, bind{name: p.Name, value: c.expr()})
		return []row{r2}, nil

	case pat.Alias:
		r2 := r.withHead(p.Sub)
		r2.binds = append(r2.binds, bind{name: p.Name, value: c.expr()})
		return simplifyHead(r2, c)

	case pat.Or:
		// No renaming is needed: the two produced rows are never jointly in
		// scope, and both alternatives bind the same logical names.
		left, err := simplifyHead(r.withHead(p.Left), c)
		if err != nil {
			return nil, err
		}
		right, err := simplifyHead(r.withHead(p.Right), c)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil

	case pat.Record:
		if p.Shape == nil {
			if len(p.Fields) > 0 {
				return nil, internalErr(diag.MatchBadHead, "record pattern with fields but no shape in clause %d", r.clause)
			}
			// An empty record pattern matches any record.
			return []row{r.withHead(pat.Wild())}, nil
		}
		full := completeRecord(p)
		return []row{r.withHead(full)}, nil

	default:
		return nil, internalErr(diag.MatchBadHead, "unknown pattern kind %v in clause %d", p.Kind, r.clause)
	}
}

// completeRecord materializes the full field list of a record pattern,
// substituting wildcards for unmentioned fields, so specialization exposes
// one sub-pattern per field uniformly.
func completeRecord(p *pat.Pattern) *pat.Pattern {
	fields := make([]pat.FieldPat, len(p.Shape.Fields))
	for i, name := range p.Shape.Fields {
		fields[i] = pat.FieldPat{Name: name, Pat: pat.Wild()}
	}
	for _, f := range p.Fields {
		if idx := p.Shape.Index(f.Name); idx >= 0 {
			fields[idx] = f
		}
	}
	out := pat.RecordPat(p.Shape, fields...)
	out.Span = p.Span
	return out
}
