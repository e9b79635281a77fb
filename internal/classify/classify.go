package classify

import (
	"regexp"
)

// Category represents a headline topic.
type Category string

const (
	Regulation    Category = "Regulation"
	Security      Category = "Security"
	Market        Category = "Market"
	Partnership   Category = "Partnership"
	Institutional Category = "Institutional"
	DeFi          Category = "DeFi"
	General       Category = "General"
)

// DefaultEmoji marks headlines that match no rule.
const DefaultEmoji = "🆕"

// Rule maps a whole-word, case-insensitive pattern to a category.
type Rule struct {
	Category Category
	Emoji    string
	Pattern  *regexp.Regexp
}

func wholeWord(alternation string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternation + `)\b`)
}

// Rules are evaluated in order and the first match wins, so a title that
// fits several categories lands in the earliest one. The order is part of
// the contract.
var Rules = []Rule{
	{Regulation, "⚖️", wholeWord(`sec|cftc|regulat(?:or|ors|ion|ions|ory|e|ed|es)|lawsuits?|sues?|sued|court|judge|bans?|banned|legislation|bill|senate|congress|compliance|mica|sanctions?|tax(?:es)?`)},
	{Security, "🚨", wholeWord(`hacks?|hacked|hackers?|exploits?|exploited|breach(?:es|ed)?|stolen|theft|scams?|phishing|drain(?:s|ed)?|vulnerabilit(?:y|ies)|attack(?:s|er|ers)?`)},
	{Market, "📈", wholeWord(`price|prices|rall(?:y|ies|ied)|surge[sd]?|crash(?:es|ed)?|dump(?:s|ed)?|pump(?:s|ed)?|soar(?:s|ed)?|plunge[sd]?|tumble[sd]?|slump(?:s|ed)?|jumps?|ath|all-time high|record high|bull(?:s|ish)?|bear(?:s|ish)?|liquidations?`)},
	{Partnership, "🤝", wholeWord(`partners?|partnership|partnerships|partnered|collaborat(?:e|es|ion|ions)|integrat(?:e|es|ion|ions)|teams? up|joins?|acquires?|acquisition|merger`)},
	{Institutional, "🏦", wholeWord(`etfs?|blackrock|fidelity|grayscale|institutions?|institutional|banks?|banking|treasury|funds?|asset managers?|microstrategy`)},
	{DeFi, "🧩", wholeWord(`defi|dex|dexes|staking|stake[sd]?|yield|liquidity|lending|uniswap|aave|airdrops?|tvl|restaking`)},
}

// Classify returns the category of the first rule matching title.
func Classify(title string) Category {
	if r, ok := match(title); ok {
		return r.Category
	}
	return General
}

// Emoji returns the emoji of the first rule matching title.
func Emoji(title string) string {
	if r, ok := match(title); ok {
		return r.Emoji
	}
	return DefaultEmoji
}

func match(title string) (Rule, bool) {
	for _, r := range Rules {
		if r.Pattern.MatchString(title) {
			return r, true
		}
	}
	return Rule{}, false
}
