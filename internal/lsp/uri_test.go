package lsp

import (
	"path/filepath"
	"testing"
)

func TestURIPathRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "main.rpl")
	uri := pathToURI(path)
	if got := uriToPath(uri); got != path {
		t.Fatalf("round trip: %q -> %q -> %q", path, uri, got)
	}
}

func TestURIToPathDecodesEscapes(t *testing.T) {
	got := uriToPath("file:///tmp/has%20space/a.rpl")
	want := filepath.FromSlash("/tmp/has space/a.rpl")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestURIToPathRejectsOtherSchemes(t *testing.T) {
	if got := uriToPath("https://example.com/a.rpl"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestPathWithinRoot(t *testing.T) {
	cases := []struct {
		root, path string
		want       bool
	}{
		{"/ws", "/ws/a.rpl", true},
		{"/ws", "/ws/sub/deep/b.rpl", true},
		{"/ws", "/ws", true},
		{"/ws", "/other/a.rpl", false},
		{"/ws", "/ws-sibling/a.rpl", false},
		{"/ws", "/", false},
		{"", "/ws/a.rpl", false},
	}
	for _, tc := range cases {
		if got := pathWithinRoot(tc.root, tc.path); got != tc.want {
			t.Errorf("pathWithinRoot(%q, %q) = %v, want %v", tc.root, tc.path, got, tc.want)
		}
	}
}
