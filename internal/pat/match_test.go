package pat_test

import (
	"errors"
	"reflect"
	"testing"

	"tern/internal/ir"
	"tern/internal/pat"
)

var listTags = &pat.TagSet{
	Name: "List",
	Tags: []pat.TagDef{{Name: "Nil"}, {Name: "Cons", Arity: 2}},
}

func localE(name string) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprLocal, Data: ir.LocalData{Name: name}}
}

func intE(v int64) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprConst, Data: ir.ConstData{Val: ir.IntConst(v)}}
}

func TestMatchClauses_FirstMatchWins(t *testing.T) {
	clauses := []pat.Clause{
		{Pats: []*pat.Pattern{pat.CtorPat(listTags, "Cons", pat.VarPat("h"), pat.Wild())}, Body: localE("h")},
		{Pats: []*pat.Pattern{pat.Wild()}, Body: intE(-1)},
	}

	idx, v, err := pat.MatchClauses(clauses, []ir.Value{ir.TagValue("Cons", ir.IntValue(9), ir.TagValue("Nil"))})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if idx != 0 || !v.Equal(ir.IntValue(9)) {
		t.Fatalf("got clause %d value %s", idx, v)
	}

	idx, v, err = pat.MatchClauses(clauses, []ir.Value{ir.TagValue("Nil")})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if idx != 1 || !v.Equal(ir.IntValue(-1)) {
		t.Fatalf("got clause %d value %s", idx, v)
	}
}

func TestMatchClauses_GuardFallsThrough(t *testing.T) {
	positive := &ir.Expr{Kind: ir.ExprBinary, Data: ir.BinaryData{
		Op: ir.OpGt, Left: localE("h"), Right: intE(0),
	}}
	clauses := []pat.Clause{
		{
			Pats:  []*pat.Pattern{pat.CtorPat(listTags, "Cons", pat.VarPat("h"), pat.Wild())},
			Guard: positive,
			Body:  localE("h"),
		},
		{Pats: []*pat.Pattern{pat.Wild()}, Body: intE(0)},
	}

	idx, _, err := pat.MatchClauses(clauses, []ir.Value{ir.TagValue("Cons", ir.IntValue(-3), ir.TagValue("Nil"))})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if idx != 1 {
		t.Fatalf("false guard should fall through, got clause %d", idx)
	}
}

func TestMatchClauses_OrBindsEitherSide(t *testing.T) {
	p := pat.OrPat(
		pat.CtorPat(listTags, "Cons", pat.VarPat("x"), pat.Wild()),
		pat.VarPat("x"),
	)
	clauses := []pat.Clause{{Pats: []*pat.Pattern{p}, Body: localE("x")}}

	_, v, err := pat.MatchClauses(clauses, []ir.Value{ir.TagValue("Cons", ir.IntValue(1), ir.TagValue("Nil"))})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !v.Equal(ir.IntValue(1)) {
		t.Fatalf("left alternative: got %s", v)
	}

	_, v, err = pat.MatchClauses(clauses, []ir.Value{ir.IntValue(5)})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !v.Equal(ir.IntValue(5)) {
		t.Fatalf("right alternative: got %s", v)
	}
}

func TestMatchClauses_GuardRetriesOrAlternatives(t *testing.T) {
	// (Cons(x, _) | Cons(_, Cons(x, _))) when x > 0 -> x
	// _                                             -> -1
	positive := &ir.Expr{Kind: ir.ExprBinary, Data: ir.BinaryData{
		Op: ir.OpGt, Left: localE("x"), Right: intE(0),
	}}
	clauses := []pat.Clause{
		{
			Pats: []*pat.Pattern{pat.OrPat(
				pat.CtorPat(listTags, "Cons", pat.VarPat("x"), pat.Wild()),
				pat.CtorPat(listTags, "Cons", pat.Wild(),
					pat.CtorPat(listTags, "Cons", pat.VarPat("x"), pat.Wild())),
			)},
			Guard: positive,
			Body:  localE("x"),
		},
		{Pats: []*pat.Pattern{pat.Wild()}, Body: intE(-1)},
	}

	// x=-1 under the left alternative fails the guard; x=1 under the right
	// succeeds, so the clause must still win.
	input := ir.TagValue("Cons", ir.IntValue(-1),
		ir.TagValue("Cons", ir.IntValue(1), ir.TagValue("Nil")))
	idx, v, err := pat.MatchClauses(clauses, []ir.Value{input})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if idx != 0 || !v.Equal(ir.IntValue(1)) {
		t.Fatalf("got clause %d value %s, want clause 0 value 1", idx, v)
	}

	// Both alternatives rejected by the guard falls through to the wildcard.
	allNeg := ir.TagValue("Cons", ir.IntValue(-1),
		ir.TagValue("Cons", ir.IntValue(-2), ir.TagValue("Nil")))
	idx, v, err = pat.MatchClauses(clauses, []ir.Value{allNeg})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if idx != 1 || !v.Equal(ir.IntValue(-1)) {
		t.Fatalf("got clause %d value %s, want the fallback clause", idx, v)
	}
}

func TestMatchClauses_RecordIgnoresExtraFields(t *testing.T) {
	shape := &pat.RecordShape{Name: "Point", Fields: []string{"x", "y"}}
	clauses := []pat.Clause{{
		Pats: []*pat.Pattern{pat.RecordPat(shape, pat.FieldPat{Name: "x", Pat: pat.VarPat("x")})},
		Body: localE("x"),
	}}
	val := ir.RecordValue([]string{"x", "y"}, []ir.Value{ir.IntValue(3), ir.IntValue(4)})
	_, v, err := pat.MatchClauses(clauses, []ir.Value{val})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !v.Equal(ir.IntValue(3)) {
		t.Fatalf("got %s", v)
	}
}

func TestMatchClauses_NoMatch(t *testing.T) {
	clauses := []pat.Clause{
		{Pats: []*pat.Pattern{pat.ConstPat(ir.IntConst(1))}, Body: intE(1)},
	}
	_, _, err := pat.MatchClauses(clauses, []ir.Value{ir.IntValue(2)})
	if !errors.Is(err, pat.ErrNoMatch) {
		t.Fatalf("got %v, want ErrNoMatch", err)
	}
}

func TestBoundVars_OrderAndDedup(t *testing.T) {
	// The alias name comes first, then the subpattern's names depth-first.
	p := pat.AliasPat(
		pat.CtorPat(listTags, "Cons", pat.VarPat("h"), pat.VarPat("t")),
		"whole",
	)
	got := p.BoundVars()
	want := []string{"whole", "h", "t"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BoundVars = %v, want %v", got, want)
	}
}

func TestBoundVars_OrCountsEachNameOnce(t *testing.T) {
	p := pat.OrPat(
		pat.CtorPat(listTags, "Cons", pat.VarPat("x"), pat.Wild()),
		pat.VarPat("x"),
	)
	if got := p.BoundVars(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("BoundVars = %v, want [x]", got)
	}
}

func TestTagSet_Lookup(t *testing.T) {
	def, ok := listTags.Lookup("Cons")
	if !ok || def.Arity != 2 {
		t.Fatalf("Lookup(Cons) = %+v, %t", def, ok)
	}
	if _, ok := listTags.Lookup("Leaf"); ok {
		t.Fatal("Lookup of a foreign tag should fail")
	}
}

func TestRecordShape_Index(t *testing.T) {
	shape := &pat.RecordShape{Name: "Point", Fields: []string{"x", "y"}}
	if got := shape.Index("y"); got != 1 {
		t.Fatalf("Index(y) = %d", got)
	}
	if got := shape.Index("z"); got != -1 {
		t.Fatalf("Index(z) = %d", got)
	}
}

func TestPattern_String(t *testing.T) {
	p := pat.CtorPat(listTags, "Cons",
		pat.OrPat(pat.ConstPat(ir.IntConst(0)), pat.VarPat("h")),
		pat.Wild(),
	)
	if got := p.String(); got != "Cons(0 | h, _)" {
		t.Fatalf("String() = %q", got)
	}
}
