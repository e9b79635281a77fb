package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/classify"
	"github.com/cryptodigest/cryptodigest/internal/feed"
	"github.com/cryptodigest/cryptodigest/internal/highlight"
	"github.com/cryptodigest/cryptodigest/internal/market"
	"github.com/cryptodigest/cryptodigest/internal/sentiment"
)

// Disclaimer closes every digest.
const Disclaimer = "Disclaimer: Not financial advice. Our analytics only."

const emptyNews = "• No fresh headlines right now. Check back later."

// NewsInput holds everything the news digest renders. Now must already be
// in the channel's local time zone.
type NewsInput struct {
	Items       []feed.Item
	Now         time.Time
	EveningHour int
	// Mood and Movers are only rendered in the evening. Either may be nil.
	Mood   *sentiment.Label
	Movers *market.Movers
}

// IsEvening reports whether now falls at or after the evening hour.
func IsEvening(now time.Time, eveningHour int) bool {
	return now.Hour() >= eveningHour
}

// News composes the Telegram HTML headline digest.
func News(in NewsInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>#News</b>\n<i>Top crypto headlines</i> <code>%s</code>\n<code>%s</code>\n\n",
		in.Now.Format("15:04"), in.Now.Format("Mon, 02 Jan 2006"))

	if len(in.Items) == 0 {
		b.WriteString(emptyNews)
		b.WriteString("\n")
		b.WriteString(htmlFooter())
		return b.String()
	}

	blocks := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		blocks = append(blocks, headlineBlock(it, in.Now.Location()))
	}
	b.WriteString(strings.Join(blocks, "\n"))

	if IsEvening(in.Now, in.EveningHour) {
		if in.Mood != nil {
			fmt.Fprintf(&b, "\n<b>Market mood:</b> %s %s\n", in.Mood.Glyph(), *in.Mood)
		}
		if in.Movers != nil {
			b.WriteString("\n")
			b.WriteString(moversBlock(in.Movers))
		}
	}

	b.WriteString(htmlFooter())
	return b.String()
}

func headlineBlock(it feed.Item, loc *time.Location) string {
	meta := highlight.Escape(it.Domain)
	if it.HasTime() {
		meta += " • " + it.Published.In(loc).Format("15:04")
	}
	return fmt.Sprintf("%s <b><a href=\"%s\">%s</a></b>\n    <code>%s</code>\n",
		classify.Emoji(it.Title), escapeAttr(it.Link), highlight.Title(it.Title), meta)
}

func moversBlock(m *market.Movers) string {
	return fmt.Sprintf("<b>Top movers (%s)</b>\n📈 %s (%s) <code>%s</code>\n📉 %s (%s) <code>%s</code>\n",
		m.Window,
		highlight.Escape(m.Gainer.Name), highlight.Escape(m.Gainer.Symbol), signedPct(m.Gainer.Percent),
		highlight.Escape(m.Loser.Name), highlight.Escape(m.Loser.Symbol), signedPct(m.Loser.Percent))
}

func htmlFooter() string {
	return "\n<i>—\n" + Disclaimer + "</i>"
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(highlight.Escape(s), `"`, "&quot;")
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// dayPart names the part of the day used in greetings.
func dayPart(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour < 12:
		return "this morning"
	case hour < 18:
		return "this afternoon"
	default:
		return "this evening"
	}
}
