package ui

import "github.com/charmbracelet/lipgloss"

const (
	keyEsc   = "esc"
	keyEnter = "enter"
)

// Colors.
var (
	normalDim      = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray           = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	brightGray     = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	cream          = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	yellowGreen    = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	fuchsia        = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	dullFuchsia    = lipgloss.AdaptiveColor{Dark: "#AD58B4", Light: "#F793FF"}
	green          = lipgloss.Color("#04B575")
	red            = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	orange         = lipgloss.AdaptiveColor{Light: "#E07B00", Dark: "#FF8800"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})

	selectedTitleStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				Bold(true).
				Render

	selectedMetaStyle = lipgloss.NewStyle().
				Foreground(dullFuchsia).
				Render

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
			Render

	metaStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	descriptionStyle = lipgloss.NewStyle().
				Foreground(normalDim).
				Render

	sectionActiveStyle = lipgloss.NewStyle().
				Foreground(yellowGreen).
				Bold(true).
				Render

	sectionStyle = lipgloss.NewStyle().
			Foreground(brightGray).
			Render

	staleStyle = lipgloss.NewStyle().
			Foreground(orange).
			Render

	narrationCounterStyle = lipgloss.NewStyle().
				Foreground(green).
				Render

	narrationErrorStyle = lipgloss.NewStyle().
				Foreground(red).
				Render
)

func logoView() string {
	return logoStyle.Render(" Newsreel ")
}
