package highlight

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscape(t *testing.T) {
	got := Escape("a & b <c> d")
	want := "a &amp; b &lt;c&gt; d"
	if got != want {
		t.Errorf("Escape = %q, want %q", got, want)
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SEC approves Bitcoin ETF", "<b>SEC</b> approves <b>Bitcoin</b> <b>ETF</b>"},
		{"BTC & ETH <rally>", "<b>BTC</b> &amp; <b>ETH</b> &lt;rally&gt;"},
		{"Exchange hacked after breach", "Exchange <b>hacked</b> after <b>breach</b>"},
		{"bitcoin and ethereum", "<b>bitcoin</b> and <b>ethereum</b>"},
		{"Lawsuit over exploit", "<b>Lawsuit</b> over <b>exploit</b>"},
		{"Second approval round", "Second <b>approval</b> round"},
		{"Nothing salient here", "Nothing salient here"},
	}
	for _, tt := range tests {
		got := Highlight(tt.input)
		if got != tt.want {
			t.Errorf("Highlight(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHighlightEscapesBeforeMarkup(t *testing.T) {
	got := Highlight("<b>BTC</b>")
	want := "&lt;b&gt;<b>BTC</b>&lt;/b&gt;"
	if got != want {
		t.Errorf("Highlight = %q, want %q", got, want)
	}
}

func TestTitleWithinBoundUnchanged(t *testing.T) {
	in := strings.Repeat("a", MaxTitleLen)
	if got := Title(in); got != in {
		t.Errorf("expected title at bound to be unchanged, got %d chars", utf8.RuneCountInString(got))
	}
}

func TestTitleTruncatedToBound(t *testing.T) {
	in := strings.Repeat("a", 200)
	got := Title(in)
	want := strings.Repeat("a", MaxTitleLen) + "…"
	if got != want {
		t.Errorf("expected %d chars plus ellipsis, got %q", MaxTitleLen, got)
	}
}

func TestTruncateClosesOpenBold(t *testing.T) {
	in := strings.Repeat("x", 158) + " Bitcoin rises"
	got := Title(in)
	want := strings.Repeat("x", 158) + " <b>B</b>…"
	if got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestTruncateKeepsEntitiesWhole(t *testing.T) {
	in := strings.Repeat("x", 159) + "&more text"
	got := Title(in)
	want := strings.Repeat("x", 159) + "&amp;…"
	if got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	in := strings.Repeat("é", 170)
	got := Truncate(in, 10)
	want := strings.Repeat("é", 10) + "…"
	if got != want {
		t.Errorf("Truncate = %q, want %q", got, want)
	}
}

func TestVisibleLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"<b>ab</b>&amp;", 3},
		{"&lt;b&gt;", 3},
		{"ünï", 3},
	}
	for _, tt := range tests {
		if got := visibleLen(tt.input); got != tt.want {
			t.Errorf("visibleLen(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
