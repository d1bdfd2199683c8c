package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const hugeLineBytes = 8192

// normalizePane forces s to exactly width columns (ANSI-aware) by height
// lines. height <= 0 keeps the line count.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		// Bound StringWidth on huge lines.
		if width > 0 && len(ln) > hugeLineBytes {
			ln = xansi.Cut(ln, 0, width+1)
		}
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}
