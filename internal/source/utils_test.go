package source

import (
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\n"))
	if !changed {
		t.Fatalf("expected change flag")
	}
	if string(out) != "a\nb\rc\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, changed = normalizeCRLF([]byte("plain\n"))
	if changed {
		t.Fatalf("unexpected change flag")
	}
	if string(out) != "plain\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("ab\ncd\n\nx")
	idx := buildLineIndex(content)

	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1}, // a
		{1, 1, 2}, // b
		{2, 1, 3}, // first newline
		{3, 2, 1}, // c
		{5, 2, 3}, // second newline
		{6, 3, 1}, // empty line's newline
		{7, 4, 1}, // x
	}
	for _, tc := range cases {
		got := toLineCol(idx, tc.off)
		if got.Line != tc.line || got.Col != tc.col {
			t.Fatalf("off %d: got %d:%d, want %d:%d", tc.off, got.Line, got.Col, tc.line, tc.col)
		}
	}
}

func TestToLineColNoNewlines(t *testing.T) {
	got := toLineCol(nil, 7)
	if got.Line != 1 || got.Col != 8 {
		t.Fatalf("got %d:%d, want 1:8", got.Line, got.Col)
	}
}
