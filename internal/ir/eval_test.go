package ir_test

import (
	"errors"
	"testing"

	"tern/internal/ir"
)

func intE(v int64) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprConst, Data: ir.ConstData{Val: ir.IntConst(v)}}
}

func boolE(v bool) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprConst, Data: ir.ConstData{Val: ir.BoolConst(v)}}
}

func strE(s string) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprConst, Data: ir.ConstData{Val: ir.StringConst(s)}}
}

func localE(name string) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprLocal, Data: ir.LocalData{Name: name}}
}

func letE(name string, value, body *ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprLet, Data: ir.LetData{Name: name, Value: value, Body: body}}
}

func binE(op ir.BinOp, left, right *ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprBinary, Data: ir.BinaryData{Op: op, Left: left, Right: right}}
}

func exitE(label ir.LabelID, args ...*ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprExit, Data: ir.ExitData{Label: label, Args: args}}
}

func catchE(body *ir.Expr, label ir.LabelID, params []string, handler *ir.Expr) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprCatch, Data: ir.CatchData{Body: body, Label: label, Params: params, Handler: handler}}
}

func mustEval(t *testing.T, e *ir.Expr, env *ir.Env) ir.Value {
	t.Helper()
	v, err := ir.Eval(e, env)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	return v
}

func TestEval_LetScoping(t *testing.T) {
	// let x = 1 in let x = 2 in x
	e := letE("x", intE(1), letE("x", intE(2), localE("x")))
	if got := mustEval(t, e, nil); !got.Equal(ir.IntValue(2)) {
		t.Fatalf("inner binding should shadow: got %s", got)
	}

	if _, err := ir.Eval(localE("nope"), nil); err == nil {
		t.Fatal("unbound local should error")
	}
}

func TestEval_CatchHandlesMatchingExit(t *testing.T) {
	// catch (let a = 10 in exit L1(a, 32)) with L1(x, y) -> x + y
	e := catchE(
		letE("a", intE(10), exitE(1, localE("a"), intE(32))),
		1,
		[]string{"x", "y"},
		binE(ir.OpAdd, localE("x"), localE("y")),
	)
	if got := mustEval(t, e, nil); !got.Equal(ir.IntValue(42)) {
		t.Fatalf("got %s, want 42", got)
	}
}

func TestEval_ExitPassesThroughForeignCatch(t *testing.T) {
	// The inner catch listens on a different label; the exit must reach the
	// outer one.
	inner := catchE(exitE(7, intE(5)), 9, nil, strE("wrong handler"))
	e := catchE(inner, 7, []string{"n"}, localE("n"))
	if got := mustEval(t, e, nil); !got.Equal(ir.IntValue(5)) {
		t.Fatalf("got %s, want 5", got)
	}
}

func TestEval_CatchBodyValueWhenNoExit(t *testing.T) {
	e := catchE(intE(3), 1, nil, intE(99))
	if got := mustEval(t, e, nil); !got.Equal(ir.IntValue(3)) {
		t.Fatalf("got %s, want body value 3", got)
	}
}

func TestEval_BinaryShortCircuit(t *testing.T) {
	// The right operand references an unbound local, so any evaluation of it
	// fails loudly.
	poison := localE("poison")

	if got := mustEval(t, binE(ir.OpAnd, boolE(false), poison), nil); !got.Equal(ir.BoolValue(false)) {
		t.Fatalf("false && _ = %s", got)
	}
	if got := mustEval(t, binE(ir.OpOr, boolE(true), poison), nil); !got.Equal(ir.BoolValue(true)) {
		t.Fatalf("true || _ = %s", got)
	}
	if _, err := ir.Eval(binE(ir.OpAnd, boolE(true), poison), nil); err == nil {
		t.Fatal("true && poison should evaluate the right operand")
	}
}

func TestEval_BinaryOperators(t *testing.T) {
	cases := []struct {
		expr *ir.Expr
		want ir.Value
	}{
		{binE(ir.OpAdd, intE(2), intE(3)), ir.IntValue(5)},
		{binE(ir.OpSub, intE(2), intE(3)), ir.IntValue(-1)},
		{binE(ir.OpMul, intE(4), intE(3)), ir.IntValue(12)},
		{binE(ir.OpLt, intE(2), intE(3)), ir.BoolValue(true)},
		{binE(ir.OpGe, intE(2), intE(3)), ir.BoolValue(false)},
		{binE(ir.OpEq, strE("a"), strE("a")), ir.BoolValue(true)},
		{binE(ir.OpNe, strE("a"), strE("b")), ir.BoolValue(true)},
		{binE(ir.OpAdd, strE("ab"), strE("cd")), ir.StringValue("abcd")},
		{binE(ir.OpLt, strE("ab"), strE("b")), ir.BoolValue(true)},
	}
	for _, c := range cases {
		if got := mustEval(t, c.expr, nil); !got.Equal(c.want) {
			t.Errorf("%s: got %s, want %s", ir.Fingerprint(c.expr), got, c.want)
		}
	}

	if _, err := ir.Eval(binE(ir.OpMul, strE("a"), strE("b")), nil); err == nil {
		t.Fatal("string multiplication should error")
	}
}

func TestEval_SwitchDispatch(t *testing.T) {
	sw := &ir.Expr{Kind: ir.ExprSwitch, Data: ir.SwitchData{
		Value: localE("v"),
		Cases: []ir.SwitchCase{
			{Test: ir.CaseTest{Kind: ir.CaseTag, Tag: "Nil"}, Body: strE("empty")},
			{Test: ir.CaseTest{Kind: ir.CaseTag, Tag: "Cons", Arity: 2}, Body: strE("cons")},
		},
		Default: strE("other"),
	}}

	env := (*ir.Env)(nil).Bind("v", ir.TagValue("Cons", ir.IntValue(1), ir.TagValue("Nil")))
	if got := mustEval(t, sw, env); !got.Equal(ir.StringValue("cons")) {
		t.Fatalf("got %s", got)
	}

	env = (*ir.Env)(nil).Bind("v", ir.TagValue("Leaf"))
	if got := mustEval(t, sw, env); !got.Equal(ir.StringValue("other")) {
		t.Fatalf("default branch: got %s", got)
	}
}

func TestEval_SwitchWithoutDefaultDemandsCoverage(t *testing.T) {
	sw := &ir.Expr{Kind: ir.ExprSwitch, Data: ir.SwitchData{
		Value: localE("v"),
		Cases: []ir.SwitchCase{
			{Test: ir.CaseTest{Kind: ir.CaseConst, Const: ir.IntConst(1)}, Body: strE("one")},
		},
	}}
	env := (*ir.Env)(nil).Bind("v", ir.IntValue(2))
	if _, err := ir.Eval(sw, env); err == nil {
		t.Fatal("uncovered switch without default should error")
	}
}

func TestEval_FieldProjection(t *testing.T) {
	field := func(base *ir.Expr, tag string, index int, name string) *ir.Expr {
		return &ir.Expr{Kind: ir.ExprField, Data: ir.FieldData{Base: base, Tag: tag, Index: index, Name: name}}
	}

	env := (*ir.Env)(nil).
		Bind("xs", ir.TagValue("Cons", ir.IntValue(7), ir.TagValue("Nil"))).
		Bind("p", ir.RecordValue([]string{"x", "y"}, []ir.Value{ir.IntValue(1), ir.IntValue(2)}))

	if got := mustEval(t, field(localE("xs"), "Cons", 0, ""), env); !got.Equal(ir.IntValue(7)) {
		t.Fatalf("Cons//0 = %s", got)
	}
	if got := mustEval(t, field(localE("p"), "", 0, "y"), env); !got.Equal(ir.IntValue(2)) {
		t.Fatalf("p.y = %s", got)
	}
	if _, err := ir.Eval(field(localE("xs"), "Nil", 0, ""), env); err == nil {
		t.Fatal("projection with the wrong tag should error")
	}
	if _, err := ir.Eval(field(localE("p"), "", 0, "z"), env); err == nil {
		t.Fatal("unknown record field should error")
	}
}

func TestEval_RaiseIsMatchError(t *testing.T) {
	e := &ir.Expr{Kind: ir.ExprRaise, Data: ir.RaiseData{Msg: "no clause matched"}}
	_, err := ir.Eval(e, nil)
	var me *ir.MatchError
	if !errors.As(err, &me) {
		t.Fatalf("got %v, want *MatchError", err)
	}
	if me.Msg != "no clause matched" {
		t.Fatalf("message = %q", me.Msg)
	}
}

func TestStringConst_Normalization(t *testing.T) {
	composed := ir.StringConst("caf\u00e9")
	decomposed := ir.StringConst("cafe\u0301")
	if !composed.Equal(decomposed) {
		t.Fatal("NFC-equivalent string constants should compare equal")
	}
}
