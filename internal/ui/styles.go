// Package ui provides terminal styling for chainlink CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorFail)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// Tree characters for hierarchical display
const (
	TreeChild  = "├─ "
	TreeLast   = "└─ "
	TreeIndent = "  "
)

const SeparatorLight = "──────────────────────────────────────────"

// DisableColor forces plain output regardless of the terminal.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Setup picks the color profile for this process. noColor comes from the
// --no-color flag or the no-color config key.
func Setup(noColor bool) {
	if noColor || !ShouldUseColor() {
		DisableColor()
	}
}

func RenderPass(s string) string {
	return PassStyle.Render(s)
}

func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

func RenderFail(s string) string {
	return FailStyle.Render(s)
}

func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderID renders an issue id the way every command prints it.
func RenderID(id int64) string {
	return AccentStyle.Render(fmt.Sprintf("#%d", id))
}

// RenderStatus colors an issue status.
func RenderStatus(s types.Status) string {
	label := "[" + string(s) + "]"
	switch s {
	case types.StatusOpen:
		return PassStyle.Render(label)
	default:
		return MutedStyle.Render(label)
	}
}

// RenderPriority colors a priority by urgency.
func RenderPriority(p types.Priority) string {
	switch p {
	case types.PriorityCritical:
		return CriticalStyle.Render(string(p))
	case types.PriorityHigh:
		return FailStyle.Render(string(p))
	case types.PriorityMedium:
		return WarnStyle.Render(string(p))
	default:
		return MutedStyle.Render(string(p))
	}
}

// RenderProgress renders "done/total" green once everything is done.
func RenderProgress(p types.Progress) string {
	if p.Total > 0 && p.Done == p.Total {
		return PassStyle.Render(p.String())
	}
	return p.String()
}
