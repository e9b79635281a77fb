package briefing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/highlight"
	"github.com/cryptodigest/cryptodigest/internal/market"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Major is a coin listed in the price digests.
type Major struct {
	ID     string
	Symbol string
	Label  string
	Emoji  string
}

// DailyMajors are listed in USD. Tether is shown in EUR.
var DailyMajors = []Major{
	{"bitcoin", "BTC", "Bitcoin (BTC)", "🥇"},
	{"ethereum", "ETH", "Ethereum (ETH)", "🥈"},
	{"ripple", "XRP", "XRP (XRP)", "🐬"},
	{"binancecoin", "BNB", "BNB (BNB)", "🥉"},
	{"solana", "SOL", "Solana (SOL)", "🌚"},
}

var tether = Major{"tether", "USDT", "Tether (USDT)", "💲"}

// WeeklyMajors are listed with their 7d change.
var WeeklyMajors = DailyMajors

// DailyIDs returns the CoinGecko ids the daily digest needs prices for.
func DailyIDs() []string {
	ids := make([]string, 0, len(DailyMajors)+1)
	for _, m := range DailyMajors {
		ids = append(ids, m.ID)
	}
	return append(ids, tether.ID)
}

// WeeklyIDs returns the CoinGecko ids the weekly digest lists.
func WeeklyIDs() []string {
	ids := make([]string, 0, len(WeeklyMajors))
	for _, m := range WeeklyMajors {
		ids = append(ids, m.ID)
	}
	return ids
}

// formatUSD renders whole dollars from 1000 up and cents below.
func formatUSD(x *float64) string {
	if x == nil {
		return "—"
	}
	if *x >= 1000 {
		return printer.Sprintf("$%.0f", *x)
	}
	return printer.Sprintf("$%.2f", *x)
}

func formatArrowPct(x *float64) string {
	if x == nil {
		return "—"
	}
	arrow := "⬆️"
	if *x < 0 {
		arrow = "⬇️"
	}
	return fmt.Sprintf("%s %.2f%%", arrow, math.Abs(*x))
}

// DailyInput holds the data for the plain-text daily price digest.
type DailyInput struct {
	Now       time.Time
	Prices    map[string]map[string]float64
	Global    market.Global
	FearGreed *market.FearGreed
	Movers    *market.Movers
}

func price(prices map[string]map[string]float64, id, currency string) *float64 {
	if v, ok := prices[id][currency]; ok {
		return &v
	}
	return nil
}

// Daily composes the plain-text daily price digest.
func Daily(in DailyInput) string {
	lines := []string{
		"#Daily",
		fmt.Sprintf("Cryptocurrency prices %s:\n", dayPart(in.Now)),
	}
	for _, m := range DailyMajors {
		lines = append(lines, fmt.Sprintf("%s %s: %s", m.Emoji, m.Label, formatUSD(price(in.Prices, m.ID, "usd"))))
	}
	if eur := price(in.Prices, tether.ID, "eur"); eur != nil {
		lines = append(lines, fmt.Sprintf("%s %s: %.2f EUR", tether.Emoji, tether.Label, *eur))
	} else {
		lines = append(lines, fmt.Sprintf("%s %s: —", tether.Emoji, tether.Label))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("▫️ Total crypto market capitalization: %s", formatUSD(&in.Global.MarketCapUSD)),
		fmt.Sprintf("▫️ Bitcoin dominance: %.2f%%", in.Global.BTCDominance),
	)
	if in.FearGreed != nil {
		lines = append(lines, fmt.Sprintf("▫️ Fear & Greed Index: %d (“%s”)", in.FearGreed.Value, in.FearGreed.Classification))
	}

	if in.Movers != nil {
		lines = append(lines,
			"",
			fmt.Sprintf("📈 Top gainer (%s): %s (%s) %.2f%%", in.Movers.Window, in.Movers.Gainer.Name, in.Movers.Gainer.Symbol, in.Movers.Gainer.Percent),
			fmt.Sprintf("📉 Top loser (%s): %s (%s) %.2f%%", in.Movers.Window, in.Movers.Loser.Name, in.Movers.Loser.Symbol, in.Movers.Loser.Percent),
		)
	}

	lines = append(lines, "\n—", Disclaimer)
	return strings.Join(lines, "\n")
}

// WeeklyInput holds the data for the HTML weekly summary.
type WeeklyInput struct {
	Now       time.Time
	Majors    []market.Coin
	Global    market.Global
	FearGreed *market.FearGreed
	Movers    *market.Movers
	// PrevMarketCapUSD is last week's market cap, zero when unknown.
	PrevMarketCapUSD float64
}

// Weekly composes the HTML weekly summary.
func Weekly(in WeeklyInput) string {
	start := in.Now.AddDate(0, 0, -7).Format("02 Jan")
	end := in.Now.Format("02 Jan 2006")

	mcChange := ""
	if in.PrevMarketCapUSD > 0 {
		pct := (in.Global.MarketCapUSD - in.PrevMarketCapUSD) / in.PrevMarketCapUSD * 100
		mcChange = fmt.Sprintf(" (%s)", formatArrowPct(&pct))
	}

	bySymbol := make(map[string]market.Coin, len(in.Majors))
	for _, c := range in.Majors {
		bySymbol[strings.ToUpper(c.Symbol)] = c
	}

	lines := []string{
		"<b>#Weekly Summary</b>",
		fmt.Sprintf("<code>%s → %s</code>", start, end),
		"",
		"<b>Market</b>",
		fmt.Sprintf("🌍 Total market cap: <b>%s</b>%s", formatUSD(&in.Global.MarketCapUSD), mcChange),
		fmt.Sprintf("🟠 BTC dominance: <b>%.2f%%</b>", in.Global.BTCDominance),
		"",
		"<b>Majors (7d)</b>",
	}
	for _, m := range WeeklyMajors {
		var p, chg *float64
		if c, ok := bySymbol[m.Symbol]; ok {
			cp := c.CurrentPrice
			p, chg = &cp, c.Change7d
		}
		lines = append(lines, fmt.Sprintf("%s %s: <b>%s</b> (%s)", m.Emoji, m.Label, formatUSD(p), formatArrowPct(chg)))
	}

	lines = append(lines, "")
	if in.FearGreed != nil {
		lines = append(lines, fmt.Sprintf("🧠 Fear &amp; Greed Index: <b>%d</b> (“%s”)",
			in.FearGreed.Value, highlight.Escape(in.FearGreed.Classification)))
	} else {
		lines = append(lines, "🧠 Fear &amp; Greed Index: —")
	}

	if in.Movers != nil {
		lines = append(lines,
			"",
			"<b>Top movers this week</b>",
			fmt.Sprintf("🟢 %s (%s) <b>%.2f%%</b>", highlight.Escape(in.Movers.Gainer.Name), highlight.Escape(in.Movers.Gainer.Symbol), in.Movers.Gainer.Percent),
			fmt.Sprintf("🔴 %s (%s) <b>%.2f%%</b>", highlight.Escape(in.Movers.Loser.Name), highlight.Escape(in.Movers.Loser.Symbol), in.Movers.Loser.Percent),
		)
	}

	lines = append(lines, "", "<i>—", Disclaimer+"</i>")
	return strings.Join(lines, "\n")
}

// PollQuestion is the weekly direction poll asked on now's date.
func PollQuestion(now time.Time) string {
	return fmt.Sprintf("📊 Weekly poll (%s): Is next week going to be bullish or bearish?", now.Format("02 Jan 2006"))
}

// PollOptions are the answers offered by the weekly poll.
var PollOptions = []string{"Bullish ✅", "Bearish ❌", "Sideways 🤷"}
