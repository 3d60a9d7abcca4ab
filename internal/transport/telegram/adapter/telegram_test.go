package adapter

import (
	"strings"
	"testing"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()

	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %#v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 60) + "\n" + strings.Repeat("y", 60)
	got := splitText(text, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(got), got)
	}
	if !strings.HasSuffix(got[0], "x") || !strings.HasPrefix(got[1], "y") {
		t.Fatalf("split did not land on the newline: %#v", got)
	}
}

func TestSplitTextNoEmptyChunks(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 50) + "\n\n\n" + strings.Repeat("b", 50)
	for _, chunk := range splitText(text, 52) {
		if chunk == "" {
			t.Fatal("empty chunk emitted")
		}
	}
}
