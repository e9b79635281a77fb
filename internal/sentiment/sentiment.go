package sentiment

import (
	"regexp"
)

// Label is the coarse market mood derived from a set of headlines.
type Label string

const (
	Bullish Label = "Bullish"
	Bearish Label = "Bearish"
	Neutral Label = "Neutral"
)

// Glyph returns the indicator shown next to the label.
func (l Label) Glyph() string {
	switch l {
	case Bullish:
		return "🟢"
	case Bearish:
		return "🔴"
	default:
		return "⚪"
	}
}

var (
	bullish = regexp.MustCompile(`(?i)\b(?:pump(?:s|ed|ing)?|rall(?:y|ies|ied|ying)|surg(?:e|es|ed|ing)|ath|all[- ]time[- ]highs?|approv(?:al|als|ed|es)|wins?|won|bull(?:s|ish)?|breakouts?)\b`)
	bearish = regexp.MustCompile(`(?i)\b(?:dump(?:s|ed|ing)?|crash(?:es|ed|ing)?|fall(?:s|ing)?|fell|hack(?:s|ed)?|bans?|banned|lawsuits?|bear(?:s|ish)?)\b`)
)

// threshold is the dead zone half-width: a total within [-threshold, threshold] is Neutral.
const threshold = 1

// Breakdown shows how the headlines contributed to the label.
type Breakdown struct {
	Bullish int
	Bearish int
	Score   int
	Label   Label
}

// ItemScore scores one title: +1 for a bullish match, -1 for a bearish match.
// A title matching both nets to zero.
func ItemScore(title string) int {
	bull, bear := matches(title)
	return itemScore(bull, bear)
}

func matches(title string) (bull, bear bool) {
	return bullish.MatchString(title), bearish.MatchString(title)
}

func itemScore(bull, bear bool) int {
	score := 0
	if bull {
		score++
	}
	if bear {
		score--
	}
	return score
}

// Score sums ItemScore over titles and maps the total to a label.
func Score(titles []string) Label {
	return ScoreWithBreakdown(titles).Label
}

func ScoreWithBreakdown(titles []string) Breakdown {
	var b Breakdown
	for _, t := range titles {
		bull, bear := matches(t)
		if bull {
			b.Bullish++
		}
		if bear {
			b.Bearish++
		}
		b.Score += itemScore(bull, bear)
	}
	b.Label = labelFor(b.Score)
	return b
}

func labelFor(score int) Label {
	switch {
	case score > threshold:
		return Bullish
	case score < -threshold:
		return Bearish
	default:
		return Neutral
	}
}
