package matchc

import (
	"errors"
	"testing"

	"tern/internal/ir"
	"tern/internal/pat"
)

var testTags = &pat.TagSet{
	Name: "List",
	Tags: []pat.TagDef{
		{Name: "Nil", Arity: 0},
		{Name: "Cons", Arity: 2},
	},
}

func oneColMatrix(heads ...*pat.Pattern) matrix {
	rows := make([]row, len(heads))
	for i, p := range heads {
		rows[i] = row{pats: []*pat.Pattern{p}, clause: i}
	}
	return matrix{cols: []col{{strict: isAlias, name: "v"}}, rows: rows}
}

func TestPreprocess_VarBecomesWildcardWithBinding(t *testing.T) {
	m, err := preprocess(oneColMatrix(pat.VarPat("x")))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	r := m.rows[0]
	if r.pats[0].Kind != pat.Wildcard {
		t.Fatalf("head is %v, want Wildcard", r.pats[0].Kind)
	}
	if len(r.binds) != 1 || r.binds[0].name != "x" {
		t.Fatalf("binds = %+v, want one binding of x", r.binds)
	}
	if ir.Fingerprint(r.binds[0].value) != "v" {
		t.Fatalf("x bound to %s, want the column local", ir.Fingerprint(r.binds[0].value))
	}
}

func TestPreprocess_AliasChainAccumulatesBindings(t *testing.T) {
	p := pat.AliasPat(pat.AliasPat(pat.CtorPat(testTags, "Nil"), "inner"), "outer")
	m, err := preprocess(oneColMatrix(p))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	r := m.rows[0]
	if r.pats[0].Kind != pat.Ctor {
		t.Fatalf("head is %v, want the underlying Ctor", r.pats[0].Kind)
	}
	if len(r.binds) != 2 || r.binds[0].name != "outer" || r.binds[1].name != "inner" {
		t.Fatalf("binds = %+v, want outer then inner", r.binds)
	}
}

func TestPreprocess_OrSplitsRowInPriorityOrder(t *testing.T) {
	p := pat.OrPat(pat.CtorPat(testTags, "Nil"), pat.VarPat("y"))
	m, err := preprocess(oneColMatrix(p, pat.Wild()))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(m.rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(m.rows))
	}
	if m.rows[0].pats[0].Kind != pat.Ctor || m.rows[0].clause != 0 {
		t.Fatalf("row 0 = %v (clause %d), want left alternative of clause 0", m.rows[0].pats[0].Kind, m.rows[0].clause)
	}
	if m.rows[1].pats[0].Kind != pat.Wildcard || m.rows[1].clause != 0 {
		t.Fatalf("row 1 = %v (clause %d), want right alternative of clause 0", m.rows[1].pats[0].Kind, m.rows[1].clause)
	}
	if len(m.rows[1].binds) != 1 || m.rows[1].binds[0].name != "y" {
		t.Fatalf("right alternative binds = %+v, want y", m.rows[1].binds)
	}
	if m.rows[2].clause != 1 {
		t.Fatalf("row 2 belongs to clause %d, want 1", m.rows[2].clause)
	}
}

func TestPreprocess_PartialRecordCompleted(t *testing.T) {
	shape := &pat.RecordShape{Name: "Point", Fields: []string{"x", "y", "z"}}
	p := pat.RecordPat(shape, pat.FieldPat{Name: "y", Pat: pat.VarPat("n")})
	m, err := preprocess(oneColMatrix(p))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	head := m.rows[0].pats[0]
	if head.Kind != pat.Record || len(head.Fields) != 3 {
		t.Fatalf("head = %s, want full three-field record", head)
	}
	for i, want := range []pat.Kind{pat.Wildcard, pat.Var, pat.Wildcard} {
		if head.Fields[i].Pat.Kind != want {
			t.Fatalf("field %d is %v, want %v", i, head.Fields[i].Pat.Kind, want)
		}
	}
	if head.Fields[1].Name != "y" {
		t.Fatalf("field 1 named %q, want y", head.Fields[1].Name)
	}
}

func TestCollectDiscs_FirstOccurrenceOrder(t *testing.T) {
	m, err := preprocess(oneColMatrix(
		pat.CtorPat(testTags, "Cons", pat.Wild(), pat.Wild()),
		pat.Wild(),
		pat.CtorPat(testTags, "Nil"),
		pat.CtorPat(testTags, "Cons", pat.Wild(), pat.Wild()),
	))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	discs, err := collectDiscs(m)
	if err != nil {
		t.Fatalf("collectDiscs: %v", err)
	}
	if len(discs) != 2 || discs[0].tag != "Cons" || discs[1].tag != "Nil" {
		t.Fatalf("discs = %+v, want Cons then Nil", discs)
	}
}

func TestCollectDiscs_MixedHeadsRejected(t *testing.T) {
	m := oneColMatrix(
		pat.CtorPat(testTags, "Nil"),
		pat.ConstPat(ir.IntConst(3)),
	)
	_, err := collectDiscs(m)
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("want InternalError for mixed heads, got %v", err)
	}
}

func TestNeedsDefault(t *testing.T) {
	open := &pat.TagSet{Name: "Open", Open: true, Tags: []pat.TagDef{{Name: "A"}}}
	cases := []struct {
		name  string
		discs []disc
		want  bool
	}{
		{"tuple", []disc{{kind: pat.Tuple, arity: 2}}, false},
		{"record", []disc{{kind: pat.Record, shape: &pat.RecordShape{Name: "R"}}}, false},
		{"closed tags partial", []disc{{kind: pat.Ctor, tag: "Nil", tags: testTags}}, true},
		{"closed tags full", []disc{
			{kind: pat.Ctor, tag: "Nil", tags: testTags},
			{kind: pat.Ctor, tag: "Cons", arity: 2, tags: testTags},
		}, false},
		{"open tags", []disc{{kind: pat.Ctor, tag: "A", tags: open}}, true},
		{"bool partial", []disc{{kind: pat.Const, val: ir.BoolConst(true)}}, true},
		{"bool full", []disc{
			{kind: pat.Const, val: ir.BoolConst(true)},
			{kind: pat.Const, val: ir.BoolConst(false)},
		}, false},
		{"ints", []disc{
			{kind: pat.Const, val: ir.IntConst(1)},
			{kind: pat.Const, val: ir.IntConst(2)},
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := needsDefault(tc.discs); got != tc.want {
				t.Fatalf("needsDefault = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpecialize_ExposesSubPatternsAndKeepsWildcardRows(t *testing.T) {
	m := oneColMatrix(
		pat.CtorPat(testTags, "Cons", pat.VarPat("h"), pat.VarPat("t")),
		pat.CtorPat(testTags, "Nil"),
		pat.Wild(),
	)
	d := disc{kind: pat.Ctor, tag: "Cons", arity: 2, tags: testTags}
	sub, err := specialize(m, d)
	if err != nil {
		t.Fatalf("specialize: %v", err)
	}
	if len(sub.cols) != 2 {
		t.Fatalf("got %d columns, want 2", len(sub.cols))
	}
	if got := ir.Fingerprint(sub.cols[0].src); got != "(fld Cons//0 v)" {
		t.Fatalf("column 0 projects %s", got)
	}
	if len(sub.rows) != 2 {
		t.Fatalf("got %d rows, want Cons row and wildcard row", len(sub.rows))
	}
	if sub.rows[0].clause != 0 || sub.rows[0].pats[0].Kind != pat.Var {
		t.Fatalf("row 0 = clause %d head %v", sub.rows[0].clause, sub.rows[0].pats[0].Kind)
	}
	if sub.rows[1].clause != 2 || sub.rows[1].pats[0].Kind != pat.Wildcard {
		t.Fatalf("row 1 = clause %d head %v, want widened wildcard row of clause 2", sub.rows[1].clause, sub.rows[1].pats[0].Kind)
	}
}

func TestSpecialize_ArityMismatchRejected(t *testing.T) {
	m := oneColMatrix(
		pat.CtorPat(testTags, "Cons", pat.Wild(), pat.Wild()),
		pat.CtorPat(testTags, "Cons", pat.Wild()),
	)
	d := disc{kind: pat.Ctor, tag: "Cons", arity: 2, tags: testTags}
	_, err := specialize(m, d)
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("want InternalError for arity mismatch, got %v", err)
	}
}

func TestPickColumn_Heuristics(t *testing.T) {
	// Column 0: refutable in row 0 only. Column 1: refutable in both rows.
	m := matrix{
		cols: []col{
			{strict: isAlias, name: "a"},
			{strict: isAlias, name: "b"},
		},
		rows: []row{
			{pats: []*pat.Pattern{pat.CtorPat(testTags, "Nil"), pat.CtorPat(testTags, "Nil")}, clause: 0},
			{pats: []*pat.Pattern{pat.Wild(), pat.CtorPat(testTags, "Cons", pat.Wild(), pat.Wild())}, clause: 1},
		},
	}
	if got := pickColumn(m, HeurLeft); got != 0 {
		t.Fatalf("HeurLeft picked %d, want 0", got)
	}
	if got := pickColumn(m, HeurPrefix); got != 1 {
		t.Fatalf("HeurPrefix picked %d, want 1", got)
	}
}

func TestRotateColumn_PreservesRelativeOrder(t *testing.T) {
	m := matrix{
		cols: []col{
			{name: "a"}, {name: "b"}, {name: "c"},
		},
		rows: []row{{pats: []*pat.Pattern{pat.VarPat("pa"), pat.VarPat("pb"), pat.VarPat("pc")}}},
	}
	out := rotateColumn(m, 2)
	if out.cols[0].name != "c" || out.cols[1].name != "a" || out.cols[2].name != "b" {
		t.Fatalf("cols = %s %s %s, want c a b", out.cols[0].name, out.cols[1].name, out.cols[2].name)
	}
	got := out.rows[0].pats
	if got[0].Name != "pc" || got[1].Name != "pa" || got[2].Name != "pb" {
		t.Fatalf("pats = %s %s %s, want pc pa pb", got[0].Name, got[1].Name, got[2].Name)
	}
	if m.cols[0].name != "a" {
		t.Fatalf("input matrix mutated")
	}
}
