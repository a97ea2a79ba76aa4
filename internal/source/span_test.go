package source

import "testing"

func TestSpanJoinCovers(t *testing.T) {
	a := NewSpan(1, 4, 8)
	b := NewSpan(1, 6, 12)
	got := a.Join(b)
	want := Span{File: 1, Start: 4, End: 12}
	if got != want {
		t.Errorf("Join = %+v, want %+v", got, want)
	}
	// join is symmetric
	if b.Join(a) != want {
		t.Errorf("Join not symmetric: %+v", b.Join(a))
	}
}

func TestSpanJoinNone(t *testing.T) {
	a := NewSpan(2, 1, 3)
	if got := None().Join(a); got != a {
		t.Errorf("None.Join(a) = %+v, want %+v", got, a)
	}
	if got := a.Join(None()); got != a {
		t.Errorf("a.Join(None) = %+v, want %+v", got, a)
	}
	if !None().Join(None()).IsNone() {
		t.Error("None.Join(None) should stay none")
	}
}

func TestSpanJoinDifferentFilesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic joining spans from different files")
		}
	}()
	NewSpan(1, 0, 1).Join(NewSpan(2, 0, 1))
}

func TestSpanBasics(t *testing.T) {
	s := NewSpan(1, 3, 3)
	if !s.Empty() {
		t.Error("expected empty span")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
	if None().String() != "<none>" {
		t.Errorf("None string = %q", None().String())
	}
	if NewSpan(1, 2, 5).String() != "1:2-5" {
		t.Errorf("String = %q", NewSpan(1, 2, 5).String())
	}
}

func TestNewSpanInvertedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for inverted span")
		}
	}()
	NewSpan(1, 5, 2)
}
