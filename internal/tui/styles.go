package tui

import (
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/charmbracelet/lipgloss"
)

// WhatsApp-ish palette: green for people, teal for chat titles.
var (
	colorAccent    = lipgloss.Color("35")  // green
	colorChat      = lipgloss.Color("37")  // teal
	colorDim       = lipgloss.Color("242") // gray
	colorSelection = lipgloss.Color("220") // amber
	colorFrame     = lipgloss.Color("236") // near black
	colorSystem    = lipgloss.Color("133") // muted magenta

	styleInputPrompt = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleInput       = styleInputPrompt

	styleListSelected = lipgloss.NewStyle().Foreground(colorSelection).Bold(true)
	styleTitle        = lipgloss.NewStyle().Foreground(colorChat)
	styleSender       = lipgloss.NewStyle().Foreground(colorAccent)
	styleSystem       = lipgloss.NewStyle().Foreground(colorSystem).Italic(true)
	styleSnippet      = lipgloss.NewStyle().Foreground(colorDim)

	stylePanelBorder  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFrame)
	styleActiveBorder = stylePanelBorder.BorderForeground(colorAccent)

	styleStatusBar = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
)

// senderStyle keeps group notifications visually apart from people.
func senderStyle(sender string) lipgloss.Style {
	if sender == chatlog.GroupNotification {
		return styleSystem
	}
	return styleSender
}
