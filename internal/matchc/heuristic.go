package matchc

import "tern/internal/pat"

// irrefutable reports whether the pattern matches every value: a wildcard, a
// variable, or an alias chain bottoming out in one. Tuples and records are
// refutable here even when their sub-patterns are irrefutable; they still
// force a head test before their components become addressable.
func irrefutable(p *pat.Pattern) bool {
	for p != nil {
		switch p.Kind {
		case pat.Wildcard, pat.Var:
			return true
		case pat.Alias:
			p = p.Sub
		default:
			return false
		}
	}
	return true
}

// refutableHead reports whether the pattern demands a head test, possibly
// after sugar elimination: or-patterns count as refutable if either
// alternative does.
func refutableHead(p *pat.Pattern) bool {
	if p == nil {
		return false
	}
	if p.Kind == pat.Or {
		return refutableHead(p.Left) || refutableHead(p.Right)
	}
	return !irrefutable(p)
}

// pickColumn chooses the next column to test. Candidates are columns whose
// first-row pattern is not plainly irrefutable; the first row is the
// highest-priority clause, so any other column's test would be wasted work
// for it. The caller guarantees at least one candidate exists.
func pickColumn(m matrix, h Heuristic) int {
	if h == HeurLeft {
		for j := range m.cols {
			if !irrefutable(m.rows[0].pats[j]) {
				return j
			}
		}
		return 0
	}

	// HeurPrefix: among the candidates, prefer the column with the longest
	// prefix of rows whose head is refutable. A long prefix means the single
	// switch resolves many consecutive clauses at once.
	best, bestLen := -1, -1
	for j := range m.cols {
		if irrefutable(m.rows[0].pats[j]) {
			continue
		}
		n := 0
		for _, r := range m.rows {
			if !refutableHead(r.pats[j]) {
				break
			}
			n++
		}
		if n > bestLen {
			best, bestLen = j, n
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
