package driver_test

import (
	"context"
	"testing"

	"tern/internal/diag"
	"tern/internal/driver"
	"tern/internal/ir"
	"tern/internal/matchc"
	"tern/internal/matchfile"
	"tern/internal/source"
)

const batchDoc = `
[[tagset]]
name = "List"

[[tagset.tag]]
name = "Nil"

[[tagset.tag]]
name = "Cons"
arity = 2

[[match]]
name = "is_empty"
args = ["xs"]

[[match.clause]]
pattern = "Nil"
result = "true"

[[match.clause]]
pattern = "_"
result = "false"

[[match]]
name = "head_or"
mode = "all"
args = ["xs", "dflt"]
backend = "shared"

[[match.clause]]
pattern = "(Cons(h, _), _)"
result = "h"

[[match.clause]]
pattern = "(Nil, d)"
result = "d"

[[match]]
name = "step"
mode = "fun"
args = ["xs", "acc"]

[[match.clause]]
pattern = "(Nil, acc)"
result = "acc"

[[match.clause]]
pattern = "(Cons(h, _), acc)"
result = "acc + h"
`

func compileBatch(t *testing.T, jobs int) []driver.Result {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(32)
	f, err := matchfile.Parse(fs, "batch.toml", []byte(batchDoc), bag)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("diagnostics: %+v", bag.Items())
	}
	results, err := driver.CompileFile(context.Background(), f, driver.Options{Jobs: jobs})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return results
}

func TestCompileFile_DocumentOrderAndOverrides(t *testing.T) {
	results := compileBatch(t, 4)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantNames := []string{"is_empty", "head_or", "step"}
	for i, want := range wantNames {
		if results[i].Name != want {
			t.Fatalf("result %d is %s, want %s", i, results[i].Name, want)
		}
	}
	if results[0].Backend != matchc.BackendDirect {
		t.Fatalf("is_empty backend = %v, want batch default direct", results[0].Backend)
	}
	if results[1].Backend != matchc.BackendShared {
		t.Fatalf("head_or backend = %v, want per-match shared override", results[1].Backend)
	}
}

func TestCompileFile_CompiledTreesEvaluate(t *testing.T) {
	results := compileBatch(t, 2)

	list := ir.TagValue("Cons", ir.IntValue(7), ir.TagValue("Nil"))

	env := (*ir.Env)(nil).Bind("xs", list)
	v, err := ir.Eval(results[0].Tree, env)
	if err != nil {
		t.Fatalf("is_empty: %v", err)
	}
	if !v.Equal(ir.BoolValue(false)) {
		t.Fatalf("is_empty(Cons..) = %s, want false", v)
	}

	env = (*ir.Env)(nil).Bind("xs", ir.TagValue("Nil")).Bind("dflt", ir.IntValue(9))
	v, err = ir.Eval(results[1].Tree, env)
	if err != nil {
		t.Fatalf("head_or: %v", err)
	}
	if !v.Equal(ir.IntValue(9)) {
		t.Fatalf("head_or(Nil, 9) = %s, want 9", v)
	}

	env = (*ir.Env)(nil).Bind("xs", list).Bind("acc", ir.IntValue(10))
	v, err = ir.Eval(results[2].Tree, env)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !v.Equal(ir.IntValue(17)) {
		t.Fatalf("step(Cons(7,..), 10) = %s, want 17", v)
	}
}

func TestCompileFile_Deterministic(t *testing.T) {
	first := compileBatch(t, 8)
	second := compileBatch(t, 1)
	for i := range first {
		a, b := ir.Print(first[i].Tree), ir.Print(second[i].Tree)
		if a != b {
			t.Fatalf("match %s differs between runs:\n%s\n---\n%s", first[i].Name, a, b)
		}
	}
}
