package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-rupset/pkg/rupset"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2)
)

func row(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

// renderSummary formats a rupture set for a terminal.
func renderSummary(rs *rupset.RuptureSet) string {
	lines := []string{
		titleStyle.Render("Rupture set " + rs.RunID.String()),
		"",
		row("parents", rs.Stats.Parents),
		row("subsections", rs.Stats.Subsections),
		row("connections", rs.Stats.Connections),
		row("fault systems", rs.Stats.Systems),
		row("candidates", rs.Stats.Candidates),
		row("ruptures", rs.NumRuptures()),
	}
	if rs.NumRuptures() > 0 {
		lo, hi := rs.MagnitudeRange()
		lines = append(lines, row("magnitude range", fmt.Sprintf("%.2f - %.2f", lo, hi)))
	}
	if len(rs.Failures) > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d ruptures failed attribute assembly", len(rs.Failures))))
	}

	if len(rs.Stats.Rejections) > 0 {
		lines = append(lines, "", titleStyle.Render("Rejections"))
		for _, name := range sortedKeys(rs.Stats.Rejections) {
			lines = append(lines, row(name, rs.Stats.Rejections[name]))
		}
	}

	lines = append(lines, "", titleStyle.Render("Stages"))
	for _, name := range sortedKeys(rs.Stats.Durations) {
		lines = append(lines, row(name, rs.Stats.Durations[name].Round(time.Microsecond)))
	}
	return statsBoxStyle.Render(strings.Join(lines, "\n"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
