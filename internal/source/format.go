package source

import "strings"

// LineWithCursor renders line directly above a cursor line pointing at
// column col (1-indexed), the way the teacher's SyntaxError.SourceLineWithCursor
// renders a tunascript parse error.
func LineWithCursor(line string, col int) string {
	if line == "" {
		return ""
	}
	cursor := strings.Repeat(" ", maxInt(col-1, 0)) + "^"
	return line + "\n" + cursor
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
