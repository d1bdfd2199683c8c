package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	modalMinWidth = 36
	modalMaxWidth = 72
	modalPadX     = 2
)

// modalWidth picks a box width for a terminal width.
func modalWidth(termW int) int {
	w := termW - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < modalMinWidth {
		w = modalMinWidth
	}
	return w
}

// modalBodyWidth is the usable content width inside a modal box of width w.
func modalBodyWidth(w int) int {
	bw := w - 2*modalPadX
	if bw < 10 {
		bw = 10
	}
	return bw
}

func renderModalBox(w int, title, content string) string {
	bodyW := modalBodyWidth(w)
	header := lipgloss.NewStyle().
		Width(w).
		Padding(0, modalPadX).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Render(truncateText(title, bodyW))

	lines := strings.Split(content, "\n")
	for i, ln := range lines {
		lines[i] = fitWidth(ln, bodyW)
	}
	body := lipgloss.NewStyle().
		Width(w).
		Padding(1, modalPadX).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// placeModal centers box over a blank screen of the given size.
func placeModal(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func truncateText(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, w-1) + "…"
}

// fitWidth pads or cuts s to exactly w columns.
func fitWidth(s string, w int) string {
	s = truncateText(s, w)
	if sw := xansi.StringWidth(s); sw < w {
		s += strings.Repeat(" ", w-sw)
	}
	return s
}
