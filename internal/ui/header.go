package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/printer"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.Loaded || !m.snapshot.Connected {
		return m.renderConnectingHeader(styles, bg)
	}

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// renderConnectingHeader shows the connecting/error state.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	if m.snapshot.LastError != nil {
		last := "soon"
		if !m.lastUpdated.IsZero() {
			last = m.lastUpdated.Format("15:04:05")
		}
		errorMsg := classifyConnectionError(m.snapshot.LastError)

		parts := []string{
			bg.Render("acpanel", styles.Logo),
			bg.Render("HOME ASSISTANT "+errorMsg, styles.DangerText.Bold(true)),
		}
		if !errors.Is(m.snapshot.LastError, hass.ErrAuthInvalid) {
			parts = append(parts, bg.Render("Retrying...", styles.WarningText.Bold(true)))
		}
		parts = append(parts, bg.Render(last, styles.MutedText))

		if m.config != nil {
			if logPath := m.config.LogPath(); logPath != "" {
				parts = append(parts,
					bg.Render("logs", styles.FaintText)+bg.Space()+
						bg.Render(truncateMiddle(logPath, 50), styles.MutedText))
			}
		}

		return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
	}

	return styles.Header.Width(m.width).Render(
		bg.Render("acpanel", styles.Logo) + sep +
			bg.Render("Connecting to Home Assistant...", styles.WarningText.Bold(true)),
	)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth

	var parts []string
	parts = append(parts, bg.Render("acpanel", styles.Logo))
	parts = append(parts, bg.Render("● HA", styles.SuccessText))

	sel := m.selection()
	if sel.Device != nil {
		pc, in := m.printerContext()
		name := truncate(sel.Device.DisplayName(), ternaryInt(compact, 16, 32))
		parts = append(parts, bg.Render(name, styles.Text.Bold(true)))

		status := pc.Sensor(printer.SensorPrintState, "unknown").State
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(status)))
		parts = append(parts, bg.Render(derive.TitleCase(status), statusStyle))

		if m.prefs.ShowPercent {
			percent, _ := m.board.Update(in, pc, m.statKinds(), m.statOptions())
			parts = append(parts, bg.Render(derive.FormatPercent(percent, m.prefs.Round), styles.AccentText))
		}
	} else {
		count := len(printer.Printers(m.snapshot.Devices))
		parts = append(parts,
			bg.Render("Printers:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", count), styles.Text))
	}

	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	return bg.Join(parts, "  ")
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	ts := m.snapshot.LastUpdated
	if ts.IsZero() {
		return ""
	}

	timeSince := time.Since(ts)
	timeStr := ts.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, hass.ErrAuthInvalid) {
		return "AUTH REJECTED"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the page tabs and the key hints for the current
// view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd = struct{ key, desc string }
	var commands []cmd
	var segments []string

	sel := m.selection()
	switch {
	case !sel.Selected():
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"?", "More"},
		}
	case sel.NotFound():
		commands = []cmd{
			{"P", "Printers"},
			{"esc", "Back"},
		}
	default:
		for i, tab := range pageTabs {
			label := fmt.Sprintf("%d %s", i+1, tab.title)
			if tab.page == sel.Page {
				segments = append(segments, bg.Render("["+label+"]", styles.AccentText.Bold(true)))
			} else {
				segments = append(segments, bg.Render(label, styles.MutedText))
			}
		}
		commands = m.pageCommands(sel.Page)
	}

	colon := bg.Sep(":")
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// pageCommands lists the hints shown for page.
func (m Model) pageCommands(page string) []struct{ key, desc string } {
	type cmd = struct{ key, desc string }
	switch page {
	case pageMain:
		return []cmd{{"u", "°" + string(derive.ParseUnit(m.prefs.TemperatureUnit))}, {"?", "More"}}
	case pageLocalFiles, pageUdiskFiles:
		return []cmd{{"r", "Refresh"}, {"d", "Delete"}, {"?", "More"}}
	case pageCloudFiles:
		return []cmd{{"r", "Refresh"}, {"d", "Delete"}, {"D", "Download"}, {"?", "More"}}
	case pagePrintNoCloudSave, pagePrintSaveInCloud:
		return []cmd{{"e", "Edit"}, {"enter", "Print"}, {"?", "More"}}
	case pageDebug:
		return []cmd{{"j/k", "Scroll"}, {"?", "More"}}
	}
	return []cmd{{"?", "More"}}
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderColor := lipgloss.Color(borderColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := maxInt(width-2, 0)
	title = truncate(title, maxInt(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := maxInt((innerWidth-titleLen-2)/2, 0)
	rightPad := maxInt(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bgColor)

	contentLines := strings.Split(content, "\n")
	boxHeight := maxInt(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

// renderPlaceholder fills the content area with a centered message.
func (m Model) renderPlaceholder(title, message string) string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	body := lipgloss.Place(maxInt(m.width-2, 0), maxInt(height-2, 0), lipgloss.Center, lipgloss.Center,
		styles.MutedText.Background(lipgloss.Color(m.theme.SurfaceAlt)).Render(message),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.SurfaceAlt)))
	return m.renderTitledBox(title, body, m.width, height, false)
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
