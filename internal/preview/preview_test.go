package preview

import (
	"strings"
	"testing"
)

func TestRenderIncludesTextAndStatus(t *testing.T) {
	out := Render(Message{Kind: "news", ChatID: "@chan", ParseMode: "HTML", Text: "<b>#News</b>"})
	for _, want := range []string{"dry run · news", "<b>#News</b>", "12 chars", "HTML", "@chan", "nothing was sent"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderDefaults(t *testing.T) {
	out := Render(Message{Kind: "daily", Text: "x"})
	if !strings.Contains(out, "plain") {
		t.Errorf("expected plain parse mode label:\n%s", out)
	}
	if !strings.Contains(out, "(no chat configured)") {
		t.Errorf("expected missing chat label:\n%s", out)
	}
}

func TestRenderWarnsOverLimit(t *testing.T) {
	out := Render(Message{Kind: "news", Text: strings.Repeat("a", MaxMessageLen+1)})
	if !strings.Contains(out, "over 4096 limit") {
		t.Errorf("expected over-limit warning")
	}
}
