package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Truncation defaults for descriptions and comments in `show`.
const (
	DefaultMaxLines     = 15
	DefaultContextLines = 5
	DefaultMaxChars     = 500
	DefaultContextChars = 200
)

// TruncateLines keeps contextLines from each end of text once it runs past
// maxLines, with a muted marker counting what was dropped.
func TruncateLines(text string, maxLines, contextLines int) string {
	lines := strings.Split(text, "\n")
	total := len(lines)
	if text == "" || total <= maxLines {
		return text
	}
	if contextLines < 1 {
		contextLines = DefaultContextLines
	}
	if maxLines < contextLines*2+1 {
		return strings.Join(lines[:maxLines], "\n") + "\n..."
	}

	hidden := total - 2*contextLines
	var b strings.Builder
	b.WriteString(strings.Join(lines[:contextLines], "\n"))
	b.WriteString("\n")
	b.WriteString(RenderMuted("... [" + strconv.Itoa(hidden) + " lines hidden, use --full] ..."))
	b.WriteString("\n")
	b.WriteString(strings.Join(lines[total-contextLines:], "\n"))
	return b.String()
}

// TruncateChars truncates text to maxChars, showing context from beginning and end.
// Uses word-boundary truncation to avoid cutting words in half.
func TruncateChars(text string, maxChars, contextChars int) string {
	runeCount := utf8.RuneCountInString(text)
	if text == "" || runeCount <= maxChars {
		return text
	}
	if contextChars < 50 {
		contextChars = DefaultContextChars
	}
	const markerLen = 50

	if maxChars < contextChars*2+markerLen {
		return truncateAtWordBoundary(text, maxChars-3) + "..."
	}

	runes := []rune(text)
	begin := truncateAtWordBoundary(string(runes[:contextChars]), contextChars)
	end := truncateFromWordBoundary(string(runes[runeCount-contextChars:]), contextChars)
	hidden := runeCount - utf8.RuneCountInString(begin) - utf8.RuneCountInString(end)

	return begin + "\n" + RenderMuted("... ["+strconv.Itoa(hidden)+" chars hidden] ...") + "\n" + end
}

// TruncateSimple performs simple end truncation with "..." suffix.
// UTF-8 safe.
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// WrapText wraps text at word boundaries to fit within maxWidth.
// Preserves existing line breaks.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = defaultWidth
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, maxWidth)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(line) {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case lineLen == 0:
			// a word longer than the line still goes on it
		case lineLen+1+wordLen <= maxWidth:
			b.WriteString(" ")
			lineLen++
		default:
			b.WriteString("\n")
			lineLen = 0
		}
		b.WriteString(word)
		lineLen += wordLen
	}
	return b.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

// truncateAtWordBoundary cuts text to about maxLen runes, preferring the last
// whitespace within 50 runes of the limit.
func truncateAtWordBoundary(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen < 0 {
		maxLen = 0
	}
	for i := maxLen - 1; i >= maxLen-50 && i > 0; i-- {
		if isSpace(runes[i]) {
			return strings.TrimRight(string(runes[:i]), " \t")
		}
	}
	return string(runes[:maxLen])
}

// truncateFromWordBoundary drops runes from the front so about maxLen remain,
// starting after the first whitespace when one is near.
func truncateFromWordBoundary(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	start := len(runes) - maxLen
	for i := start; i < start+50 && i < len(runes); i++ {
		if isSpace(runes[i]) {
			return strings.TrimLeft(string(runes[i+1:]), " \t")
		}
	}
	return string(runes[start:])
}

// ShouldTruncate returns true if text exceeds the given thresholds.
func ShouldTruncate(text string, maxLines, maxChars int) bool {
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		return true
	}
	return maxLines > 0 && strings.Count(text, "\n")+1 > maxLines
}

// FormatDuration renders whole seconds as "1h 02m 03s", "4m 05s" or "7s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
