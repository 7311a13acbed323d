package ir_test

import (
	"testing"

	"tern/internal/ir"
)

// sampleTree exercises every node kind the wire format has to carry.
func sampleTree() *ir.Expr {
	sw := &ir.Expr{Kind: ir.ExprSwitch, Data: ir.SwitchData{
		Value: localE("subject"),
		Cases: []ir.SwitchCase{
			{Test: ir.CaseTest{Kind: ir.CaseTag, Tag: "Cons", Arity: 2}, Body: exitE(1, &ir.Expr{
				Kind: ir.ExprField,
				Data: ir.FieldData{Base: localE("subject"), Tag: "Cons", Index: 0},
			})},
			{Test: ir.CaseTest{Kind: ir.CaseConst, Const: ir.IntConst(0)}, Body: exitE(2)},
			{Test: ir.CaseTest{Kind: ir.CaseRecord, Fields: []string{"x", "y"}}, Body: exitE(2)},
		},
		Default: &ir.Expr{Kind: ir.ExprRaise, Data: ir.RaiseData{Msg: "no clause matched"}},
	}}
	body := catchE(sw, 1, []string{"h"},
		&ir.Expr{Kind: ir.ExprIf, Data: ir.IfData{
			Cond: binE(ir.OpGt, localE("h"), intE(0)),
			Then: &ir.Expr{Kind: ir.ExprTag, Data: ir.TagData{Tag: "Some", Args: []*ir.Expr{localE("h")}}},
			Else: &ir.Expr{Kind: ir.ExprTuple, Data: ir.TupleData{Elems: []*ir.Expr{strE("neg"), localE("h")}}},
		}},
	)
	return letE("subject", localE("input"), catchE(body, 2, nil, strE("fallback")))
}

func TestArtifact_RoundTrip(t *testing.T) {
	tree := sampleTree()
	data, err := ir.EncodeArtifact("classify", "direct", tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	name, decoded, err := ir.DecodeArtifact(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name != "classify" {
		t.Fatalf("name = %q", name)
	}
	if got, want := ir.Print(decoded), ir.Print(tree); got != want {
		t.Fatalf("round trip changed the tree:\ngot  %s\nwant %s", got, want)
	}
}

func TestArtifact_RoundTripPreservesSemantics(t *testing.T) {
	tree := sampleTree()
	data, err := ir.EncodeArtifact("classify", "direct", tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, decoded, err := ir.DecodeArtifact(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, input := range []ir.Value{
		ir.TagValue("Cons", ir.IntValue(4), ir.TagValue("Nil")),
		ir.TagValue("Cons", ir.IntValue(-4), ir.TagValue("Nil")),
		ir.IntValue(0),
	} {
		env := (*ir.Env)(nil).Bind("input", input)
		want, werr := ir.Eval(tree, env)
		got, gerr := ir.Eval(decoded, env)
		if (werr == nil) != (gerr == nil) {
			t.Fatalf("input %s: errors diverge: %v vs %v", input, werr, gerr)
		}
		if werr == nil && !got.Equal(want) {
			t.Fatalf("input %s: %s vs %s", input, got, want)
		}
	}
}

func TestArtifacts_BundlePreservesOrder(t *testing.T) {
	specs := []ir.ArtifactSpec{
		{Name: "first", Backend: "direct", Expr: intE(1)},
		{Name: "second", Backend: "shared", Expr: sampleTree()},
	}
	data, err := ir.EncodeArtifacts(specs)
	if err != nil {
		t.Fatalf("encode bundle: %v", err)
	}
	decoded, err := ir.DecodeArtifacts(data)
	if err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d artifacts", len(decoded))
	}
	for i := range specs {
		if decoded[i].Name != specs[i].Name || decoded[i].Backend != specs[i].Backend {
			t.Fatalf("artifact %d: %s/%s", i, decoded[i].Name, decoded[i].Backend)
		}
		if ir.Print(decoded[i].Expr) != ir.Print(specs[i].Expr) {
			t.Fatalf("artifact %d changed in transit", i)
		}
	}
}

func TestDecodeArtifact_RejectsGarbage(t *testing.T) {
	if _, _, err := ir.DecodeArtifact([]byte("not msgpack at all")); err == nil {
		t.Fatal("garbage input should not decode")
	}
}
