package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

const (
	AgentName = "Narrator"

	hpBarWidth  = 20
	lowHPPct    = 30
	chipPadding = 1
)

var (
	statLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // grey

	hpHealthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // green

	hpLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	chipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, chipPadding)

	selectedChipStyle = chipStyle.
				BorderForeground(lipgloss.Color("205")).
				Foreground(lipgloss.Color("205")).
				Bold(true)
)

// newMarkdownRenderer builds a glamour renderer that wraps at width.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// titleCase formats values like "female" or "WARRIOR" for display.
func titleCase(s string) string {
	if s == "" {
		return "-"
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// writeStats renders the character panel.
func writeStats(cs state.CharacterState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	content.WriteString(statLabelStyle.Render("Name:") + "\n")
	content.WriteString(cs.Name + "\n")
	identity := titleCase(cs.Gender)
	if cs.Class != "" {
		identity += " " + titleCase(cs.Class)
	}
	content.WriteString(identity + "\n\n")

	content.WriteString(statLabelStyle.Render("Location:") + "\n")
	content.WriteString(cs.Location + "\n\n")

	content.WriteString(fmt.Sprintf("%s %d   %s %d\n",
		statLabelStyle.Render("Level"), cs.Level,
		statLabelStyle.Render("XP"), cs.XP))
	content.WriteString(fmt.Sprintf("%s %d/%d\n", statLabelStyle.Render("HP"), cs.HP, cs.MaxHP))
	content.WriteString(hpBar(cs) + "\n\n")

	content.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d\n\n",
		statLabelStyle.Render("STR"), cs.Strength,
		statLabelStyle.Render("AGI"), cs.Agility,
		statLabelStyle.Render("INT"), cs.Intelligence))

	content.WriteString(statLabelStyle.Render("Inventory:") + "\n")
	if len(cs.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range cs.Inventory {
		content.WriteString("• " + item + "\n")
	}
	content.WriteString("\n")

	if len(cs.StatusEffects) > 0 {
		content.WriteString(statLabelStyle.Render("Effects:") + "\n")
		for _, effect := range cs.StatusEffects {
			content.WriteString("• " + effect + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(statLabelStyle.Render("Phase:") + "\n")
	content.WriteString(cs.Phase.Label() + "\n\n")

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+R: New game\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// hpBar draws the health bar. Fill is clamped so bad data never overflows the panel.
func hpBar(cs state.CharacterState) string {
	pct := cs.HPPercent()
	filled := pct * hpBarWidth / 100

	bar := strings.Repeat("█", filled) + strings.Repeat("░", hpBarWidth-filled)
	if pct < lowHPPct {
		return hpLowStyle.Render(bar)
	}
	return hpHealthyStyle.Render(bar)
}

// formatMessage renders one conversation entry for the chat pane.
func formatMessage(msg chat.Message, renderer *glamour.TermRenderer, width int) string {
	switch msg.Role {
	case chat.ChatRoleAgent:
		if renderer != nil {
			if out, err := renderer.Render(msg.Content); err == nil {
				return strings.TrimRight(out, "\n")
			}
		}
		return narratorStyle.Render(AgentName+": ") + wordwrap.String(msg.Content, width-len(AgentName)-2)
	case chat.ChatRoleUser:
		return userStyle.Render("You: ") + wordwrap.String(msg.Content, width-5)
	default:
		style := systemStyle
		if msg.Ephemeral {
			style = style.Italic(true)
		}
		return style.Render(wordwrap.String(msg.Content, width))
	}
}

// renderChips lays out the suggestions. The selected chip is highlighted
// only when the choice is closed and driven by the arrow keys.
func renderChips(suggestions chat.Suggestions, selected int, highlight bool, width int) string {
	if len(suggestions) == 0 {
		return ""
	}

	var rows []string
	var row []string
	rowWidth := 0
	for i, s := range suggestions {
		style := chipStyle
		if highlight && i == selected {
			style = selectedChipStyle
		}
		chip := style.Render(fmt.Sprintf("%d. %s", i+1, s))
		w := lipgloss.Width(chip)
		if rowWidth > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, chip)
		rowWidth += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// transcript is the plain-text conversation used by /copy.
func transcript(messages []chat.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case chat.ChatRoleAgent:
			b.WriteString(AgentName + ": ")
		case chat.ChatRoleUser:
			b.WriteString("You: ")
		default:
			b.WriteString("System: ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}

// formatState pretty-prints the character state for /state.
func formatState(cs state.CharacterState) string {
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to format state: %v", err)
	}
	return string(data)
}
