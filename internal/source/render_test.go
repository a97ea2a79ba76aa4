package source

import "testing"

func TestRenderSpanSingleLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("r.rpl", []byte("let x = foo(1)\nnext\n"), KindSynthetic)
	f := fs.Get(id)

	got := RenderSpan(f, NewSpan(id, 8, 11), RenderOpts{})
	want := "let x = foo(1)\n        ^^^"
	if got != want {
		t.Errorf("RenderSpan =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderSpanMultiLineHasNoUnderline(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("m.rpl", []byte("one\ntwo\n"), KindSynthetic)
	f := fs.Get(id)

	got := RenderSpan(f, NewSpan(id, 2, 5), RenderOpts{})
	want := "one\ntwo"
	if got != want {
		t.Errorf("RenderSpan = %q, want %q", got, want)
	}
}

func TestRenderSpanEmptySpanStillMarks(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("e.rpl", []byte("abc\n"), KindSynthetic)
	f := fs.Get(id)

	got := RenderSpan(f, NewSpan(id, 1, 1), RenderOpts{})
	want := "abc\n ^"
	if got != want {
		t.Errorf("RenderSpan = %q, want %q", got, want)
	}
}

func TestRenderSpanNone(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("n.rpl", []byte("abc"), KindSynthetic)
	if got := RenderSpan(fs.Get(id), None(), RenderOpts{}); got != "" {
		t.Errorf("expected empty render for none span, got %q", got)
	}
}
