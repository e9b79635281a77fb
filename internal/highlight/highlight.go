// Package highlight renders headline titles as Telegram HTML: escaped text
// with salient terms in bold, bounded to a display length.
package highlight

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTitleLen is the display bound for a title, in visible characters.
const MaxTitleLen = 160

const ellipsis = "…"

// Terms are applied in order over the progressively marked string.
var Terms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:BTC|Bitcoin)\b`),
	regexp.MustCompile(`(?i)\b(?:ETH|Ethereum|Ether)\b`),
	regexp.MustCompile(`(?i)\bETFs?\b`),
	regexp.MustCompile(`(?i)\bapprovals?\b`),
	regexp.MustCompile(`(?i)\bSEC\b`),
	regexp.MustCompile(`(?i)\blawsuits?\b`),
	regexp.MustCompile(`(?i)\bhack(?:s|ed)?\b`),
	regexp.MustCompile(`(?i)\bexploits?\b`),
	regexp.MustCompile(`(?i)\bbreach(?:es)?\b`),
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces the characters Telegram HTML treats as markup.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Highlight escapes title and wraps every salient term in <b> tags.
func Highlight(title string) string {
	s := Escape(title)
	for _, re := range Terms {
		s = re.ReplaceAllString(s, "<b>$0</b>")
	}
	return s
}

// Title highlights title and bounds it to MaxTitleLen visible characters.
func Title(title string) string {
	return Truncate(Highlight(title), MaxTitleLen)
}

// Truncate cuts marked-up text after max visible characters and appends an
// ellipsis. Tags take no space and an entity counts as one character.
// Neither is ever split, and a <b> left open by the cut is closed.
func Truncate(s string, max int) string {
	if visibleLen(s) <= max {
		return s
	}

	var b strings.Builder
	visible := 0
	open := 0
	for i := 0; i < len(s) && visible < max; {
		switch s[i] {
		case '<':
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				i = len(s)
				continue
			}
			tag := s[i : i+end+1]
			if strings.HasPrefix(tag, "</") {
				open--
			} else {
				open++
			}
			b.WriteString(tag)
			i += end + 1
		case '&':
			end := strings.IndexByte(s[i:], ';')
			if end < 0 {
				end = 0
			}
			b.WriteString(s[i : i+end+1])
			i += end + 1
			visible++
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
			visible++
		}
	}
	for ; open > 0; open-- {
		b.WriteString("</b>")
	}
	b.WriteString(ellipsis)
	return b.String()
}

func visibleLen(s string) int {
	n := 0
	inTag := false
	inEntity := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		case inEntity:
			if r == ';' {
				inEntity = false
			}
		case r == '&':
			inEntity = true
			n++
		default:
			n++
		}
	}
	return n
}
