package ir

import (
	"errors"
	"fmt"
)

// Env is an immutable binding environment for evaluation.
type Env struct {
	name string
	val  Value
	next *Env
}

// Bind returns an environment extending env with one binding.
func (e *Env) Bind(name string, val Value) *Env {
	return &Env{name: name, val: val, next: e}
}

// Lookup resolves a local by name.
func (e *Env) Lookup(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.next {
		if cur.name == name {
			return cur.val, true
		}
	}
	return Value{}, false
}

// MatchError is the runtime non-exhaustive-match failure. It is the
// user-visible failure class and is produced only by ExprRaise nodes built
// from the caller-supplied failure handler.
type MatchError struct {
	Msg string
}

func (e *MatchError) Error() string { return e.Msg }

// exitSignal unwinds evaluation up to the matching catch. It never escapes
// Eval on well-formed IR.
type exitSignal struct {
	label LabelID
	args  []Value
}

func (s *exitSignal) Error() string {
	return fmt.Sprintf("ir: unhandled exit to label %d", s.label)
}

// Eval evaluates an IR expression under env. Evaluation is deterministic and
// total up to match failure (returned as *MatchError).
func Eval(e *Expr, env *Env) (Value, error) {
	if e == nil {
		return Value{}, errors.New("ir: eval of nil expression")
	}
	switch e.Kind {
	case ExprConst:
		return ConstValue(e.Data.(ConstData).Val), nil

	case ExprLocal:
		d := e.Data.(LocalData)
		v, ok := env.Lookup(d.Name)
		if !ok {
			return Value{}, fmt.Errorf("ir: unbound local %q", d.Name)
		}
		return v, nil

	case ExprLet:
		d := e.Data.(LetData)
		v, err := Eval(d.Value, env)
		if err != nil {
			return Value{}, err
		}
		return Eval(d.Body, env.Bind(d.Name, v))

	case ExprField:
		d := e.Data.(FieldData)
		base, err := Eval(d.Base, env)
		if err != nil {
			return Value{}, err
		}
		return projectField(base, d)

	case ExprTuple:
		d := e.Data.(TupleData)
		elems, err := evalAll(d.Elems, env)
		if err != nil {
			return Value{}, err
		}
		return TupleValue(elems...), nil

	case ExprTag:
		d := e.Data.(TagData)
		elems, err := evalAll(d.Args, env)
		if err != nil {
			return Value{}, err
		}
		return TagValue(d.Tag, elems...), nil

	case ExprIf:
		d := e.Data.(IfData)
		cond, err := Eval(d.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if cond.Kind != ValBool {
			return Value{}, fmt.Errorf("ir: if condition is %v, want bool", cond.Kind)
		}
		if cond.Bool {
			return Eval(d.Then, env)
		}
		return Eval(d.Else, env)

	case ExprBinary:
		return evalBinary(e.Data.(BinaryData), env)

	case ExprSwitch:
		return evalSwitch(e.Data.(SwitchData), env)

	case ExprCatch:
		d := e.Data.(CatchData)
		v, err := Eval(d.Body, env)
		var sig *exitSignal
		if errors.As(err, &sig) && sig.label == d.Label {
			if len(sig.args) != len(d.Params) {
				return Value{}, fmt.Errorf("ir: exit to label %d carries %d values, handler wants %d",
					d.Label, len(sig.args), len(d.Params))
			}
			henv := env
			for i, p := range d.Params {
				henv = henv.Bind(p, sig.args[i])
			}
			return Eval(d.Handler, henv)
		}
		return v, err

	case ExprExit:
		d := e.Data.(ExitData)
		args, err := evalAll(d.Args, env)
		if err != nil {
			return Value{}, err
		}
		return Value{}, &exitSignal{label: d.Label, args: args}

	case ExprRaise:
		return Value{}, &MatchError{Msg: e.Data.(RaiseData).Msg}

	default:
		return Value{}, fmt.Errorf("ir: eval of unknown kind %v", e.Kind)
	}
}

func evalAll(exprs []*Expr, env *Env) ([]Value, error) {
	vals := make([]Value, len(exprs))
	for i, ex := range exprs {
		v, err := Eval(ex, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func projectField(base Value, d FieldData) (Value, error) {
	switch base.Kind {
	case ValTag:
		if d.Tag != "" && base.Tag != d.Tag {
			return Value{}, fmt.Errorf("ir: projection expects tag %s, value carries %s", d.Tag, base.Tag)
		}
	case ValRecord:
		if d.Name != "" {
			v, ok := base.FieldByName(d.Name)
			if !ok {
				return Value{}, fmt.Errorf("ir: record has no field %q", d.Name)
			}
			return v, nil
		}
	case ValTuple:
	default:
		return Value{}, fmt.Errorf("ir: projection from non-structured value %v", base.Kind)
	}
	if d.Index < 0 || d.Index >= len(base.Elems) {
		return Value{}, fmt.Errorf("ir: projection index %d out of range %d", d.Index, len(base.Elems))
	}
	return base.Elems[d.Index], nil
}

func evalBinary(d BinaryData, env *Env) (Value, error) {
	left, err := Eval(d.Left, env)
	if err != nil {
		return Value{}, err
	}

	// Short-circuit forms first.
	if d.Op == OpAnd || d.Op == OpOr {
		if left.Kind != ValBool {
			return Value{}, fmt.Errorf("ir: %v operand is %v, want bool", d.Op, left.Kind)
		}
		if (d.Op == OpAnd && !left.Bool) || (d.Op == OpOr && left.Bool) {
			return left, nil
		}
		return Eval(d.Right, env)
	}

	right, err := Eval(d.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch d.Op {
	case OpEq:
		return BoolValue(left.Equal(right)), nil
	case OpNe:
		return BoolValue(!left.Equal(right)), nil
	}

	if left.Kind == ValInt && right.Kind == ValInt {
		switch d.Op {
		case OpAdd:
			return IntValue(left.Int + right.Int), nil
		case OpSub:
			return IntValue(left.Int - right.Int), nil
		case OpMul:
			return IntValue(left.Int * right.Int), nil
		case OpLt:
			return BoolValue(left.Int < right.Int), nil
		case OpLe:
			return BoolValue(left.Int <= right.Int), nil
		case OpGt:
			return BoolValue(left.Int > right.Int), nil
		case OpGe:
			return BoolValue(left.Int >= right.Int), nil
		}
	}
	if left.Kind == ValString && right.Kind == ValString {
		switch d.Op {
		case OpAdd:
			return StringValue(left.Str + right.Str), nil
		case OpLt:
			return BoolValue(left.Str < right.Str), nil
		case OpLe:
			return BoolValue(left.Str <= right.Str), nil
		case OpGt:
			return BoolValue(left.Str > right.Str), nil
		case OpGe:
			return BoolValue(left.Str >= right.Str), nil
		}
	}
	return Value{}, fmt.Errorf("ir: operator %v not defined on %v and %v", d.Op, left.Kind, right.Kind)
}

func evalSwitch(d SwitchData, env *Env) (Value, error) {
	v, err := Eval(d.Value, env)
	if err != nil {
		return Value{}, err
	}
	for i := range d.Cases {
		ok, err := testCase(v, d.Cases[i].Test)
		if err != nil {
			return Value{}, err
		}
		if ok {
			return Eval(d.Cases[i].Body, env)
		}
	}
	if d.Default == nil {
		return Value{}, fmt.Errorf("ir: switch without default matched no case on %s", v)
	}
	return Eval(d.Default, env)
}

func testCase(v Value, t CaseTest) (bool, error) {
	switch t.Kind {
	case CaseTag:
		if v.Kind != ValTag {
			return false, fmt.Errorf("ir: tag test on %v value", v.Kind)
		}
		return v.Tag == t.Tag, nil
	case CaseConst:
		return v.Equal(ConstValue(t.Const)), nil
	case CaseTuple:
		if v.Kind != ValTuple {
			return false, fmt.Errorf("ir: tuple test on %v value", v.Kind)
		}
		return len(v.Elems) == t.Arity, nil
	case CaseRecord:
		if v.Kind != ValRecord {
			return false, fmt.Errorf("ir: record test on %v value", v.Kind)
		}
		return true, nil
	default:
		return false, fmt.Errorf("ir: unknown case test %d", t.Kind)
	}
}
