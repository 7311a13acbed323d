package pat

import (
	"errors"

	"tern/internal/ir"
)

// ErrNoMatch reports that no clause accepted the input.
var ErrNoMatch = errors.New("pat: no clause matched")

// MatchClauses is the naive reference interpreter: it tests clauses strictly
// in order, using structural matching and left-to-right guard evaluation, and
// returns the index and evaluated body of the first clause whose patterns
// match and whose guard (if any) is true. Or-patterns behave as if expanded
// into one row per alternative: every alternative's binding environment is
// tried in order, so a guard that fails under the left alternative retries
// under the right before the next clause is considered. It exists to pin
// down the semantics the compiled decision procedure must preserve.
func MatchClauses(clauses []Clause, args []ir.Value) (int, ir.Value, error) {
	for i := range clauses {
		for _, env := range matchRow(clauses[i].Pats, args) {
			if clauses[i].Guard != nil {
				g, err := ir.Eval(clauses[i].Guard, env)
				if err != nil {
					return -1, ir.Value{}, err
				}
				if g.Kind != ir.ValBool {
					return -1, ir.Value{}, errors.New("pat: guard did not evaluate to bool")
				}
				if !g.Bool {
					continue
				}
			}
			v, err := ir.Eval(clauses[i].Body, env)
			if err != nil {
				return -1, ir.Value{}, err
			}
			return i, v, nil
		}
	}
	return -1, ir.Value{}, ErrNoMatch
}

func matchRow(pats []*Pattern, args []ir.Value) []*ir.Env {
	if len(pats) != len(args) {
		return nil
	}
	return matchSeq(pats, args, nil)
}

// matchSeq returns every environment under which pats structurally match
// vals, in alternative-priority order: earlier positions vary slowest, and
// within an or-pattern the left alternative comes first. An empty result
// means no alternative matches.
func matchSeq(pats []*Pattern, vals []ir.Value, env *ir.Env) []*ir.Env {
	if len(pats) == 0 {
		return []*ir.Env{env}
	}
	var out []*ir.Env
	for _, head := range matchOne(pats[0], vals[0], env) {
		out = append(out, matchSeq(pats[1:], vals[1:], head)...)
	}
	return out
}

func matchOne(p *Pattern, v ir.Value, env *ir.Env) []*ir.Env {
	switch p.Kind {
	case Wildcard:
		return []*ir.Env{env}
	case Var:
		return []*ir.Env{env.Bind(p.Name, v)}
	case Alias:
		var out []*ir.Env
		for _, sub := range matchOne(p.Sub, v, env) {
			out = append(out, sub.Bind(p.Name, v))
		}
		return out
	case Or:
		return append(matchOne(p.Left, v, env), matchOne(p.Right, v, env)...)
	case Tuple:
		if v.Kind != ir.ValTuple || len(v.Elems) != len(p.Elems) {
			return nil
		}
		return matchSeq(p.Elems, v.Elems, env)
	case Record:
		if v.Kind != ir.ValRecord {
			return nil
		}
		envs := []*ir.Env{env}
		for _, f := range p.Fields {
			fv, ok := v.FieldByName(f.Name)
			if !ok {
				return nil
			}
			var next []*ir.Env
			for _, e := range envs {
				next = append(next, matchOne(f.Pat, fv, e)...)
			}
			envs = next
		}
		return envs
	case Ctor:
		if v.Kind != ir.ValTag || v.Tag != p.Tag || len(v.Elems) != len(p.Elems) {
			return nil
		}
		return matchSeq(p.Elems, v.Elems, env)
	case Const:
		if v.Equal(ir.ConstValue(p.Val)) {
			return []*ir.Env{env}
		}
		return nil
	default:
		return nil
	}
}
