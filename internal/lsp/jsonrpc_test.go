package lsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q", got)
	}
}

func TestReadMessageIgnoresExtraHeaders(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n\r\n{}"
	got, err := readMessage(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{}" {
		t.Fatalf("got %q", got)
	}
}

func TestReadMessageMissingContentLength(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\n{}"
	if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestReadMessageBadContentLength(t *testing.T) {
	raw := "Content-Length: many\r\n\r\n{}"
	if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
		t.Fatal("expected error for non-numeric Content-Length")
	}
}

func TestReadMessageConsecutiveFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, payload := range []string{`{"id":1}`, `{"id":22}`} {
		if err := writeMessage(&buf, []byte(payload)); err != nil {
			t.Fatal(err)
		}
	}
	reader := bufio.NewReader(&buf)
	first, err := readMessage(reader)
	if err != nil {
		t.Fatal(err)
	}
	second, err := readMessage(reader)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != `{"id":1}` || string(second) != `{"id":22}` {
		t.Fatalf("frames = %q, %q", first, second)
	}
}
