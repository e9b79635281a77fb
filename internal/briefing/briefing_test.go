package briefing

import (
	"strings"
	"testing"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/feed"
	"github.com/cryptodigest/cryptodigest/internal/market"
	"github.com/cryptodigest/cryptodigest/internal/sentiment"
)

var prague, _ = time.LoadLocation("Europe/Prague")

func localTime(hour int) time.Time {
	return time.Date(2025, 3, 3, hour, 30, 0, 0, prague)
}

func sampleItems() []feed.Item {
	return []feed.Item{
		{
			Title:     "SEC sues exchange over ETF filing",
			Link:      "https://www.coindesk.com/a?id=1&b=2",
			Published: time.Date(2025, 3, 3, 7, 5, 0, 0, time.UTC),
			Domain:    "coindesk.com",
		},
		{
			Title:  "Quiet day for <markets>",
			Link:   "https://decrypt.co/b",
			Domain: "decrypt.co",
		},
	}
}

func TestDayPart(t *testing.T) {
	tests := []struct {
		hour     int
		expected string
	}{
		{0, "this morning"},
		{8, "this morning"},
		{11, "this morning"},
		{12, "this afternoon"},
		{17, "this afternoon"},
		{18, "this evening"},
		{23, "this evening"},
	}

	for _, tt := range tests {
		now := time.Date(2026, 1, 1, tt.hour, 0, 0, 0, time.Local)
		got := dayPart(now)
		if got != tt.expected {
			t.Errorf("hour %d: expected %q, got %q", tt.hour, tt.expected, got)
		}
	}
}

func TestNewsHeader(t *testing.T) {
	got := News(NewsInput{Items: sampleItems(), Now: localTime(9), EveningHour: 18})
	if !strings.HasPrefix(got, "<b>#News</b>\n<i>Top crypto headlines</i> <code>09:30</code>\n<code>Mon, 03 Mar 2025</code>\n\n") {
		t.Errorf("unexpected header:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n<i>—\n"+Disclaimer+"</i>") {
		t.Errorf("expected disclaimer footer, got:\n%s", got)
	}
}

func TestNewsHeadlineBlocks(t *testing.T) {
	got := News(NewsInput{Items: sampleItems(), Now: localTime(9), EveningHour: 18})

	// 07:05 UTC is 08:05 in Prague (CET)
	first := "⚖️ <b><a href=\"https://www.coindesk.com/a?id=1&amp;b=2\"><b>SEC</b> sues exchange over <b>ETF</b> filing</a></b>\n    <code>coindesk.com • 08:05</code>\n"
	if !strings.Contains(got, first) {
		t.Errorf("missing first block, got:\n%s", got)
	}

	second := "🆕 <b><a href=\"https://decrypt.co/b\">Quiet day for &lt;markets&gt;</a></b>\n    <code>decrypt.co</code>\n"
	if !strings.Contains(got, second) {
		t.Errorf("missing second block without time, got:\n%s", got)
	}
	if !strings.Contains(got, first+"\n"+second) {
		t.Error("expected blocks separated by a blank line")
	}
}

func TestNewsEmpty(t *testing.T) {
	mood := sentiment.Bullish
	movers := &market.Movers{Window: market.Day, Gainer: market.Mover{Name: "A", Symbol: "A", Percent: 1}}
	got := News(NewsInput{Now: localTime(20), EveningHour: 18, Mood: &mood, Movers: movers})

	want := "<b>#News</b>\n<i>Top crypto headlines</i> <code>20:30</code>\n<code>Mon, 03 Mar 2025</code>\n\n" +
		"• No fresh headlines right now. Check back later.\n" +
		"\n<i>—\n" + Disclaimer + "</i>"
	if got != want {
		t.Errorf("unexpected empty digest:\n%q\nwant:\n%q", got, want)
	}
}

func TestNewsEveningSections(t *testing.T) {
	mood := sentiment.Neutral
	movers := &market.Movers{
		Window: market.Day,
		Gainer: market.Mover{Name: "Pepe", Symbol: "PEPE", Percent: 18.2},
		Loser:  market.Mover{Name: "XRP", Symbol: "XRP", Percent: -7.1},
	}
	got := News(NewsInput{Items: sampleItems(), Now: localTime(18), EveningHour: 18, Mood: &mood, Movers: movers})

	if !strings.Contains(got, "<b>Market mood:</b> ⚪ Neutral") {
		t.Errorf("expected mood section, got:\n%s", got)
	}
	if !strings.Contains(got, "<b>Top movers (24h)</b>\n📈 Pepe (PEPE) <code>+18.20%</code>\n📉 XRP (XRP) <code>-7.10%</code>") {
		t.Errorf("expected movers section, got:\n%s", got)
	}
	if strings.Index(got, "Market mood") > strings.Index(got, Disclaimer) {
		t.Error("expected evening sections before the footer")
	}
}

func TestNewsEveningWithoutMovers(t *testing.T) {
	mood := sentiment.Bearish
	got := News(NewsInput{Items: sampleItems(), Now: localTime(21), EveningHour: 18, Mood: &mood})
	if !strings.Contains(got, "🔴 Bearish") {
		t.Errorf("expected mood section, got:\n%s", got)
	}
	if strings.Contains(got, "Top movers") {
		t.Error("expected movers section omitted when no data")
	}
}

func TestNewsMorningHasNoEveningSections(t *testing.T) {
	mood := sentiment.Bullish
	movers := &market.Movers{Window: market.Day}
	got := News(NewsInput{Items: sampleItems(), Now: localTime(17), EveningHour: 18, Mood: &mood, Movers: movers})
	if strings.Contains(got, "Market mood") || strings.Contains(got, "Top movers") {
		t.Errorf("expected no evening sections before 18:00, got:\n%s", got)
	}
}

func TestNewsLongTitleTruncated(t *testing.T) {
	items := []feed.Item{{Title: strings.Repeat("a", 300), Link: "https://x.com", Domain: "x.com"}}
	got := News(NewsInput{Items: items, Now: localTime(9), EveningHour: 18})
	if !strings.Contains(got, ">"+strings.Repeat("a", 160)+"…</a>") {
		t.Errorf("expected title truncated to 160 chars plus ellipsis, got:\n%s", got)
	}
}

func TestIsEvening(t *testing.T) {
	if IsEvening(localTime(17), 18) {
		t.Error("17:30 should not be evening")
	}
	if !IsEvening(localTime(18), 18) {
		t.Error("18:30 should be evening")
	}
}
