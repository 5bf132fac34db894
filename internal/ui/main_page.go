package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/acpanel/internal/derive"
)

// progressBarWidth caps the progress bar on wide terminals.
const progressBarWidth = 60

// renderMainPage renders printer progress and the monitored stats.
func (m Model) renderMainPage() string {
	height := m.contentHeight()
	pc, in := m.printerContext()
	percent, lines := m.board.Update(in, pc, m.statKinds(), m.statOptions())

	bgColor := m.theme.SurfaceAlt
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	inner := maxInt(m.width-4, 10)

	var b strings.Builder
	b.WriteString("\n")
	if m.prefs.ShowPercent {
		b.WriteString(bg.Space())
		b.WriteString(m.renderProgressBar(percent, minInt(inner-8, progressBarWidth), bg))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(derive.FormatPercent(percent, m.prefs.Round), styles.AccentText.Bold(true)))
		b.WriteString("\n\n")
	}

	nameWidth := 0
	for _, line := range lines {
		nameWidth = maxInt(nameWidth, len([]rune(line.Name)))
	}
	nameWidth += 2

	if m.width >= LayoutWideWidth && len(lines) > 1 {
		half := (len(lines) + 1) / 2
		colWidth := inner / 2
		for i := 0; i < half; i++ {
			left := m.formatStatLine(lines[i], nameWidth, bg, styles)
			row := lipgloss.NewStyle().Width(colWidth).Background(lipgloss.Color(bgColor)).Render(left)
			if j := i + half; j < len(lines) {
				row += m.formatStatLine(lines[j], nameWidth, bg, styles)
			}
			b.WriteString(row)
			b.WriteString("\n")
		}
	} else {
		for _, line := range lines {
			b.WriteString(m.formatStatLine(line, nameWidth, bg, styles))
			b.WriteString("\n")
		}
	}

	title := "Main"
	if pc.Device != nil {
		title = pc.Device.DisplayName()
		if pc.Device.Model != "" {
			title = fmt.Sprintf("%s (%s)", title, pc.Device.Model)
		}
	}
	return m.renderTitledBox(title, b.String(), m.width, height, false)
}

// formatStatLine renders "Name   Value" with status-aware coloring.
func (m Model) formatStatLine(line derive.Line, nameWidth int, bg BgStyle, styles Styles) string {
	valueStyle := styles.Text
	if line.Name == string(derive.KindStatus) {
		color := m.theme.StatusColor(strings.ReplaceAll(strings.ToLower(line.Value), " ", "_"))
		valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	}
	if strings.HasPrefix(line.Value, "--") || line.Value == "<unknown>" {
		valueStyle = styles.FaintText
	}
	return bg.Spaces(2) + bg.Render(padRight(line.Name, nameWidth), styles.MutedText) + bg.Render(line.Value, valueStyle)
}

// renderProgressBar draws a bar for percent; unknown progress renders empty.
func (m Model) renderProgressBar(percent float64, width int, bg BgStyle) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if percent > 0 {
		filled = int(float64(width) * minFloat(percent, 100) / 100)
	}
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border))
	return bg.Render(strings.Repeat("█", filled), fill) + bg.Render(strings.Repeat("░", width-filled), empty)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
