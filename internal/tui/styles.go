package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // bright blue
			Padding(1, 0, 0, 2)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 0, 1, 2)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(18).
			Padding(0, 0, 0, 2)

	activeLabelStyle = labelStyle.
				Foreground(lipgloss.Color("39"))

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedOptionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24")). // dark blue bg
				Padding(0, 1)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")).
			Background(lipgloss.Color("250")). // light gray, like the web chips
			Padding(0, 1).
			MarginRight(1)

	selectedChipStyle = chipStyle.
				Background(lipgloss.Color("39"))

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")). // dim gray
			Padding(0, 2).
			MarginLeft(2)

	activeButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("39")).
				Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Padding(0, 0, 0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // soft red
			Padding(0, 0, 0, 2)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Padding(1, 0, 0, 2)

	outputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				MarginLeft(2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			Padding(0, 0, 0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
)
