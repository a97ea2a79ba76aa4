package lsp

import (
	"testing"

	"ripple/internal/diag"
	"ripple/internal/source"
)

func errorBag(f *source.File) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     "E0001",
		Message:  "something broke",
		Primary:  source.NewSpan(f.ID, 0, f.Len()),
	})
	return bag
}

func TestPushDiagnosticsPublishesErrors(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("boom"), source.KindNormal)
	f := files.Get(id)

	params, accepted := r.PushDiagnostics(0, id, errorBag(f))
	if !accepted {
		t.Fatal("push rejected")
	}
	if params == nil || len(params.Diagnostics) != 1 {
		t.Fatalf("params = %+v", params)
	}
	if params.Diagnostics[0].Message != "something broke" {
		t.Fatalf("message = %q", params.Diagnostics[0].Message)
	}
}

func TestPushDiagnosticsSuppressesRepeatedClean(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("fine"), source.KindNormal)

	params, accepted := r.PushDiagnostics(0, id, nil)
	if !accepted || params != nil {
		t.Fatalf("clean file should accept silently, got %+v", params)
	}
	files.Update("a.rpl", []byte("still fine"), source.KindNormal)
	params, accepted = r.PushDiagnostics(1, id, nil)
	if !accepted || params != nil {
		t.Fatalf("repeat clean should stay silent, got %+v", params)
	}
}

func TestPushDiagnosticsRetractsAfterFix(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("boom"), source.KindNormal)
	f := files.Get(id)

	if _, accepted := r.PushDiagnostics(0, id, errorBag(f)); !accepted {
		t.Fatal("initial push rejected")
	}
	files.Update("a.rpl", []byte("calm"), source.KindNormal)
	params, accepted := r.PushDiagnostics(1, id, nil)
	if !accepted {
		t.Fatal("fix push rejected")
	}
	if params == nil || len(params.Diagnostics) != 0 {
		t.Fatalf("expected empty retraction, got %+v", params)
	}
}

func TestPushDiagnosticsRejectsStaleEpoch(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("v0"), source.KindNormal)
	files.Update("a.rpl", []byte("v1"), source.KindNormal)
	files.Update("a.rpl", []byte("v2"), source.KindNormal)

	f := files.Get(id)
	params, accepted := r.PushDiagnostics(1, id, errorBag(f))
	if accepted || params != nil {
		t.Fatal("push against epoch 1 must be rejected once the file is at epoch 2")
	}
	if r.LastReportedEpoch(id) != 0 {
		t.Fatalf("rejected push must not advance the ledger, got %d", r.LastReportedEpoch(id))
	}
}

func TestPushDiagnosticsRejectsOlderThanReported(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("x"), source.KindNormal)
	files.Update("a.rpl", []byte("y"), source.KindNormal)
	files.Update("a.rpl", []byte("z"), source.KindNormal)

	f := files.Get(id)
	if _, accepted := r.PushDiagnostics(2, id, errorBag(f)); !accepted {
		t.Fatal("push at epoch 2 rejected")
	}
	// A straggler computed against the earlier snapshot arrives late.
	if _, accepted := r.PushDiagnostics(1, id, nil); accepted {
		t.Fatal("straggler older than the reported epoch must be rejected")
	}
	if r.LastReportedEpoch(id) != 2 {
		t.Fatalf("ledger regressed to %d", r.LastReportedEpoch(id))
	}
}

func TestPushDiagnosticsAlwaysAdvancesOnAccept(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("fine"), source.KindNormal)
	for epoch := uint64(1); epoch <= 3; epoch++ {
		files.Update("a.rpl", []byte("fine"), source.KindNormal)
		if _, accepted := r.PushDiagnostics(epoch, id, nil); !accepted {
			t.Fatalf("clean push at epoch %d rejected", epoch)
		}
		if got := r.LastReportedEpoch(id); got != epoch {
			t.Fatalf("epoch %d: ledger at %d", epoch, got)
		}
	}
}

func TestFilesUpdatedSince(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	a := files.Add("a.rpl", []byte("boom"), source.KindNormal)
	b := files.Add("b.rpl", []byte("fine"), source.KindNormal)
	for i := 0; i < 10; i++ {
		files.Update("a.rpl", []byte("boom"), source.KindNormal)
	}
	for i := 0; i < 5; i++ {
		files.Update("b.rpl", []byte("fine"), source.KindNormal)
	}

	if _, accepted := r.PushDiagnostics(10, a, errorBag(files.Get(a))); !accepted {
		t.Fatal("push for a rejected")
	}
	if _, accepted := r.PushDiagnostics(5, b, nil); !accepted {
		t.Fatal("push for b rejected")
	}

	got := r.FilesUpdatedSince(6)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("FilesUpdatedSince(6) = %v, want [%d]", got, a)
	}
	if got := r.FilesUpdatedSince(11); len(got) != 0 {
		t.Fatalf("FilesUpdatedSince(11) = %v, want empty", got)
	}
}

func TestFilesUpdatedSinceExcludesCleanFiles(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	a := files.Add("a.rpl", []byte("boom"), source.KindNormal)
	b := files.Add("b.rpl", []byte("fine"), source.KindNormal)
	if _, accepted := r.PushDiagnostics(0, a, errorBag(files.Get(a))); !accepted {
		t.Fatal("push for a at epoch 0 rejected")
	}
	for i := 0; i < 3; i++ {
		files.Update("a.rpl", []byte("boom"), source.KindNormal)
		files.Update("b.rpl", []byte("fine"), source.KindNormal)
	}
	if _, accepted := r.PushDiagnostics(3, a, errorBag(files.Get(a))); !accepted {
		t.Fatal("push for a at epoch 3 rejected")
	}
	if _, accepted := r.PushDiagnostics(3, b, nil); !accepted {
		t.Fatal("push for b at epoch 3 rejected")
	}
	got := r.FilesUpdatedSince(3)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("FilesUpdatedSince(3) = %v, want [%d]", got, a)
	}
}

func TestPushDiagnosticsRepeatedEpochLeavesLedgerUnchanged(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("boom"), source.KindNormal)
	f := files.Get(id)

	if _, accepted := r.PushDiagnostics(0, id, errorBag(f)); !accepted {
		t.Fatal("first push rejected")
	}
	if _, accepted := r.PushDiagnostics(0, id, errorBag(f)); !accepted {
		t.Fatal("equal-epoch push rejected")
	}
	if got := r.LastReportedEpoch(id); got != 0 {
		t.Fatalf("ledger at %d, want 0", got)
	}
}

func TestPushDiagnosticsOmitsUnlocatedFromWire(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("boom"), source.KindNormal)

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     "E0002",
		Message:  "global failure",
		Primary:  source.None(),
	})
	params, accepted := r.PushDiagnostics(0, id, bag)
	if !accepted {
		t.Fatal("push rejected")
	}
	// The unlocated diagnostic still marks the file dirty but cannot be
	// rendered as a range.
	if params == nil || len(params.Diagnostics) != 0 {
		t.Fatalf("params = %+v", params)
	}
	files.Update("a.rpl", []byte("calm"), source.KindNormal)
	params, accepted = r.PushDiagnostics(1, id, nil)
	if !accepted || params == nil {
		t.Fatal("expected retraction after unlocated diagnostics")
	}
}

func TestPushDiagnosticsRangeIsZeroBased(t *testing.T) {
	files := source.NewFileSet()
	r := NewErrorReporter(files)
	id := files.Add("a.rpl", []byte("hello\nworld"), source.KindNormal)
	f := files.Get(id)

	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     "W0001",
		Message:  "second line",
		Primary:  source.NewSpan(f.ID, 6, 11),
	})
	params, _ := r.PushDiagnostics(0, id, bag)
	if params == nil || len(params.Diagnostics) != 1 {
		t.Fatalf("params = %+v", params)
	}
	got := params.Diagnostics[0].Range
	want := lspRange{Start: position{Line: 1, Character: 0}, End: position{Line: 1, Character: 5}}
	if got != want {
		t.Fatalf("range = %+v, want %+v", got, want)
	}
	if params.Diagnostics[0].Severity != 2 {
		t.Fatalf("severity = %d, want 2", params.Diagnostics[0].Severity)
	}
}
