package diag_test

import (
	"testing"

	"tern/internal/diag"
	"tern/internal/source"
)

func span(file source.FileID, start uint32) source.Span {
	return source.Span{File: file, Start: start, End: start + 1}
}

func TestBag_CapDropsOverflow(t *testing.T) {
	bag := diag.NewBag(2)
	if !bag.AddError(diag.SynUnexpectedToken, span(1, 0), "one") {
		t.Fatal("first add rejected")
	}
	if !bag.AddError(diag.SynUnexpectedToken, span(1, 1), "two") {
		t.Fatal("second add rejected")
	}
	if bag.AddError(diag.SynUnexpectedToken, span(1, 2), "three") {
		t.Fatal("add past the cap should report the drop")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestBag_HasErrors(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.SynInfo, Message: "meh"})
	if bag.HasErrors() {
		t.Fatal("warning alone should not count as an error")
	}
	bag.AddError(diag.FileBadSchema, span(1, 0), "boom")
	if !bag.HasErrors() {
		t.Fatal("error not seen")
	}
}

func TestBag_SortStable(t *testing.T) {
	bag := diag.NewBag(8)
	bag.AddError(diag.SynTagArity, span(2, 5), "late file")
	bag.AddError(diag.SynUnknownTag, span(1, 9), "late offset")
	bag.AddError(diag.SynUnexpectedToken, span(1, 3), "early offset")
	bag.SortStable()

	items := bag.Items()
	want := []string{"early offset", "late offset", "late file"}
	for i, msg := range want {
		if items[i].Message != msg {
			t.Fatalf("items[%d] = %q, want %q", i, items[i].Message, msg)
		}
	}
}

func TestCode_String(t *testing.T) {
	if got := diag.SynUnknownTag.String(); got != "TERN2004" {
		t.Fatalf("Code.String() = %q", got)
	}
}

func TestSeverity_String(t *testing.T) {
	if got := diag.SevWarning.String(); got != "warning" {
		t.Fatalf("SevWarning = %q", got)
	}
	if got := diag.Severity(200).String(); got != "unknown" {
		t.Fatalf("out-of-range severity = %q", got)
	}
}
