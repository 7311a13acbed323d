package ir

import (
	"sort"
)

// CountExits returns how many exit sites target label.
func CountExits(e *Expr, label LabelID) int {
	n := 0
	walk(e, func(x *Expr) {
		if x.Kind == ExprExit && x.Data.(ExitData).Label == label {
			n++
		}
	})
	return n
}

// RewriteExits replaces every exit site targeting label with the expression
// returned by build, which receives the site's argument list. The tree is
// rewritten in place and returned. Exits nested inside the replacement are
// not revisited.
func RewriteExits(e *Expr, label LabelID, build func(args []*Expr) *Expr) *Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ExprExit {
		if d := e.Data.(ExitData); d.Label == label {
			return build(d.Args)
		}
		return e
	}
	switch d := e.Data.(type) {
	case LetData:
		d.Value = RewriteExits(d.Value, label, build)
		d.Body = RewriteExits(d.Body, label, build)
		e.Data = d
	case FieldData:
		d.Base = RewriteExits(d.Base, label, build)
		e.Data = d
	case TupleData:
		for i := range d.Elems {
			d.Elems[i] = RewriteExits(d.Elems[i], label, build)
		}
	case TagData:
		for i := range d.Args {
			d.Args[i] = RewriteExits(d.Args[i], label, build)
		}
	case IfData:
		d.Cond = RewriteExits(d.Cond, label, build)
		d.Then = RewriteExits(d.Then, label, build)
		d.Else = RewriteExits(d.Else, label, build)
		e.Data = d
	case BinaryData:
		d.Left = RewriteExits(d.Left, label, build)
		d.Right = RewriteExits(d.Right, label, build)
		e.Data = d
	case SwitchData:
		d.Value = RewriteExits(d.Value, label, build)
		for i := range d.Cases {
			d.Cases[i].Body = RewriteExits(d.Cases[i].Body, label, build)
		}
		if d.Default != nil {
			d.Default = RewriteExits(d.Default, label, build)
		}
		e.Data = d
	case CatchData:
		d.Body = RewriteExits(d.Body, label, build)
		d.Handler = RewriteExits(d.Handler, label, build)
		e.Data = d
	}
	return e
}

// FreeLocals returns the sorted set of local names referenced but not bound
// within e. Let binds its name in the body only; Catch params are bound in
// the handler only.
func FreeLocals(e *Expr) []string {
	free := map[string]struct{}{}
	collectFree(e, map[string]int{}, free)
	out := make([]string, 0, len(free))
	for name := range free {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectFree(e *Expr, bound map[string]int, free map[string]struct{}) {
	if e == nil {
		return
	}
	switch d := e.Data.(type) {
	case ConstData, RaiseData:
	case LocalData:
		if bound[d.Name] == 0 {
			free[d.Name] = struct{}{}
		}
	case LetData:
		collectFree(d.Value, bound, free)
		bound[d.Name]++
		collectFree(d.Body, bound, free)
		bound[d.Name]--
	case FieldData:
		collectFree(d.Base, bound, free)
	case TupleData:
		for _, el := range d.Elems {
			collectFree(el, bound, free)
		}
	case TagData:
		for _, a := range d.Args {
			collectFree(a, bound, free)
		}
	case IfData:
		collectFree(d.Cond, bound, free)
		collectFree(d.Then, bound, free)
		collectFree(d.Else, bound, free)
	case BinaryData:
		collectFree(d.Left, bound, free)
		collectFree(d.Right, bound, free)
	case SwitchData:
		collectFree(d.Value, bound, free)
		for i := range d.Cases {
			collectFree(d.Cases[i].Body, bound, free)
		}
		collectFree(d.Default, bound, free)
	case CatchData:
		collectFree(d.Body, bound, free)
		for _, p := range d.Params {
			bound[p]++
		}
		collectFree(d.Handler, bound, free)
		for _, p := range d.Params {
			bound[p]--
		}
	case ExitData:
		for _, a := range d.Args {
			collectFree(a, bound, free)
		}
	}
}

// CountNodes returns the number of expression nodes reachable from e,
// visiting shared nodes once per path. Used by tests comparing backend
// output sizes.
func CountNodes(e *Expr) int {
	n := 0
	walk(e, func(*Expr) { n++ })
	return n
}

func walk(e *Expr, visit func(*Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch d := e.Data.(type) {
	case LetData:
		walk(d.Value, visit)
		walk(d.Body, visit)
	case FieldData:
		walk(d.Base, visit)
	case TupleData:
		for _, el := range d.Elems {
			walk(el, visit)
		}
	case TagData:
		for _, a := range d.Args {
			walk(a, visit)
		}
	case IfData:
		walk(d.Cond, visit)
		walk(d.Then, visit)
		walk(d.Else, visit)
	case BinaryData:
		walk(d.Left, visit)
		walk(d.Right, visit)
	case SwitchData:
		walk(d.Value, visit)
		for i := range d.Cases {
			walk(d.Cases[i].Body, visit)
		}
		walk(d.Default, visit)
	case CatchData:
		walk(d.Body, visit)
		walk(d.Handler, visit)
	case ExitData:
		for _, a := range d.Args {
			walk(a, visit)
		}
	}
}
