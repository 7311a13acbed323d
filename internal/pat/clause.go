package pat

import (
	"tern/internal/ir"
	"tern/internal/source"
)

// Clause is one prioritized row of a match: a pattern per argument column, an
// optional boolean guard over the row's bound variables, and the action body.
type Clause struct {
	Pats  []*Pattern
	Guard *ir.Expr // nil when unguarded
	Body  *ir.Expr
	Span  source.Span
}

// BoundVars returns the names bound by all of the clause's patterns, in
// first-occurrence order across columns.
func (c *Clause) BoundVars() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range c.Pats {
		collectVars(p, &out, seen)
	}
	return out
}
