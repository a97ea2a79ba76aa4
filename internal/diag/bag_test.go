package diag

import (
	"testing"

	"ripple/internal/source"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Code: "R1"}) || !b.Add(Diagnostic{Code: "R2"}) {
		t.Fatal("first two adds should succeed")
	}
	if b.Add(Diagnostic{Code: "R3"}) {
		t.Error("add past cap should fail")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevWarning, Code: "R1"})
	if b.HasErrors() {
		t.Error("warnings are not errors")
	}
	b.Add(Diagnostic{Severity: SevError, Code: "R2"})
	if !b.HasErrors() {
		t.Error("expected HasErrors after adding an error")
	}
	var nilBag *Bag
	if nilBag.HasErrors() || nilBag.Len() != 0 {
		t.Error("nil bag should behave as empty")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevWarning, Code: "R2", Primary: source.NewSpan(1, 5, 6)})
	b.Add(Diagnostic{Severity: SevError, Code: "R1", Primary: source.NewSpan(1, 5, 6)})
	b.Add(Diagnostic{Severity: SevError, Code: "R3", Primary: source.NewSpan(1, 0, 2)})
	b.Sort()
	got := b.Items()
	if got[0].Code != "R3" {
		t.Errorf("expected earliest span first, got %s", got[0].Code)
	}
	if got[1].Code != "R1" || got[2].Code != "R2" {
		t.Errorf("expected severity desc at same span: %s, %s", got[1].Code, got[2].Code)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	span := source.NewSpan(1, 3, 7)
	b.Add(Diagnostic{Code: "R1", Primary: span})
	b.Add(Diagnostic{Code: "R1", Primary: span})
	b.Add(Diagnostic{Code: "R2", Primary: span})
	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("expected 2 after dedup, got %d", b.Len())
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Code: "R1"})
	other := NewBag(2)
	other.Add(Diagnostic{Code: "R2"})
	other.Add(Diagnostic{Code: "R3"})
	a.Merge(other)
	if a.Len() != 3 {
		t.Errorf("expected 3 after merge, got %d", a.Len())
	}
	if a.Cap() < 3 {
		t.Errorf("cap should grow to fit, got %d", a.Cap())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.NewSpan(1, 0, 4)
	r.Report("R1", SevError, span, "boom", nil)
	r.Report("R1", SevError, span, "boom", nil)
	r.Report("R1", SevError, span, "different message", nil)
	if bag.Len() != 2 {
		t.Errorf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}
