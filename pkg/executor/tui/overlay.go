package tui

import "strings"

// renderToastOverlay draws the toast over the bottom of the base view
// without changing its height.
func renderToastOverlay(baseView string, toastContent string) string {
	if toastContent == "" {
		return baseView
	}

	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(strings.TrimRight(toastContent, "\n"), "\n")

	// Keep the status bar visible below the toast.
	startLine := len(baseLines) - 1 - len(toastLines)
	if startLine < 0 {
		startLine = 0
	}

	var result strings.Builder
	for i, line := range baseLines {
		idx := i - startLine
		if idx >= 0 && idx < len(toastLines) {
			result.WriteString("  ")
			result.WriteString(toastLines[idx])
		} else {
			result.WriteString(line)
		}
		if i < len(baseLines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
