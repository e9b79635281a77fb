// Package preview renders a composed message for the terminal instead of
// sending it, used by --dry-run.
package preview

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// MaxMessageLen is Telegram's limit for a single message text.
const MaxMessageLen = 4096

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorStatBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatBg).
			Foreground(colorStatFg).
			PaddingLeft(1).
			PaddingRight(1)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Message describes what would have been sent.
type Message struct {
	Kind      string
	ChatID    string
	ParseMode string
	Text      string
}

// Render frames the message text with a header and a status bar.
func Render(m Message) string {
	header := headerStyle.Render(fmt.Sprintf("dry run · %s", m.Kind))
	body := paneStyle.Render(m.Text)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar(m, lipgloss.Width(body)))
}

func statusBar(m Message, width int) string {
	n := utf8.RuneCountInString(m.Text)
	mode := m.ParseMode
	if mode == "" {
		mode = "plain"
	}
	chat := m.ChatID
	if chat == "" {
		chat = "(no chat configured)"
	}

	left := fmt.Sprintf("%d chars · %s · %s", n, mode, chat)
	if n > MaxMessageLen {
		left += " · " + warnStyle.Render(fmt.Sprintf("over %d limit", MaxMessageLen))
	}
	if w := lipgloss.Width(left) + 2; w > width {
		width = w
	}
	return statusBarStyle.Width(width).Render(left) + "\n" + dimStyle.Render(" nothing was sent")
}
