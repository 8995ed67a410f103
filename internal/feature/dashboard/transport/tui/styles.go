package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#10B981") // Emerald
	GainColor    = lipgloss.Color("#10B981")
	LossColor    = lipgloss.Color("#F43F5E") // Rose
	BorderColor  = lipgloss.Color("#334155")

	TextColor          = lipgloss.Color("#F8FAFC")
	TextSecondaryColor = lipgloss.Color("#94A3B8")
	TextMutedColor     = lipgloss.Color("#64748B")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	AccentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	TaglineStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	HeaderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(BorderColor).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	GainStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(GainColor)

	LossStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LossColor)

	ErrorTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LossColor)

	FooterStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)
)

// GainTreatment returns the style for a card's gain label.
func GainTreatment(positive bool) lipgloss.Style {
	if positive {
		return GainStyle
	}
	return LossStyle
}
