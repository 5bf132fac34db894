package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/printer"
)

// handlePrinterSelectKey moves the cursor over the printer list and opens
// the selected printer.
func (m Model) handlePrinterSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	printers := printer.Printers(m.snapshot.Devices)
	count := len(printers)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.printerRow < count-1 {
			m.printerRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.printerRow > 0 {
			m.printerRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.printerRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.printerRow = count - 1
	case key.Matches(msg, m.keys.Confirm):
		row := minInt(m.printerRow, count-1)
		m.navigate(printer.PrinterPath(printers[row].ID))
	}

	return m, nil
}

// renderPrinterSelect renders the list of Anycubic printers.
func (m Model) renderPrinterSelect() string {
	height := m.contentHeight()
	if !m.snapshot.Loaded {
		return m.renderPlaceholder(printerSelectTitle, "Waiting for Home Assistant...")
	}

	printers := printer.Printers(m.snapshot.Devices)
	if len(printers) == 0 {
		return m.renderPlaceholder(printerSelectTitle, noPrintersPlaceholder)
	}

	width := m.width - 2
	lines := make([]string, 0, len(printers))
	for i, device := range printers {
		selected := i == m.printerRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		content := m.formatPrinterRow(device, width, bgColor, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(bgColor)).
			Width(width).
			Render(content))
	}

	return m.renderTitledBox(printerSelectTitle, strings.Join(lines, "\n"), m.width, height, true)
}

// formatPrinterRow formats one printer as "Name · Model · State".
// When selected is true, uses SelectionText color for all text to ensure contrast.
func (m Model) formatPrinterRow(device hass.Device, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	sel := printer.Selection{PrinterID: device.ID, Device: &device, Page: printer.DefaultPage}
	pc := printer.Bind(sel, m.snapshot.States, m.snapshot.Entities)
	status := pc.Sensor(printer.SensorPrintState, "unknown").State

	var nameStyle, mutedStyle, statusStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle = selText.Bold(true)
		mutedStyle = selText
		statusStyle = selText
	} else {
		styles := m.theme.Styles()
		nameStyle = styles.Text.Bold(true)
		mutedStyle = styles.MutedText
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(status)))
	}

	statusStr := derive.TitleCase(status)
	if p := derive.Percent(pc); p >= 0 {
		statusStr += " " + derive.FormatPercent(p, true)
	}

	parts := []string{bg.Render(truncate(device.DisplayName(), width/2), nameStyle)}
	if device.Model != "" && width >= LayoutCompactWidth/2 {
		parts = append(parts, bg.Render(device.Model, mutedStyle))
	}
	parts = append(parts, bg.Render(statusStr, statusStyle))

	return bg.Space() + bg.Join(parts, " · ")
}
