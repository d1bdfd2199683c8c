package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a textinput view on a filled background bodyW wide.
// focused inputs get the accent gutter.
func renderInputLine(bodyW int, inputView string, focused bool) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// Always one visual line; a stray newline would wrap the modal body.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	gutter := " "
	if focused {
		gutter = lipgloss.NewStyle().Foreground(colorAccent).Render("▌")
	}
	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		gutter+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}
