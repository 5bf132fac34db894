package ui

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/logtail"
)

// initDebugViewport initializes the debug viewport.
func (m *Model) initDebugViewport() {
	m.debugViewport = viewport.New(maxInt(m.width-4, 1), maxInt(m.height-4, 1))
	m.debugViewport.Style = lipgloss.NewStyle()
}

// updateDebugViewport refreshes the debug content when the debug page is
// showing. The log file is re-read on every snapshot.
func (m *Model) updateDebugViewport() {
	if !m.ready {
		return
	}
	sel := m.selection()
	if sel.Page != pageDebug || sel.Device == nil {
		return
	}

	// Box inner = content height - 2 (top and bottom borders)
	m.debugViewport.Width = maxInt(m.width-2, 1)
	m.debugViewport.Height = maxInt(m.contentHeight()-2, 1)
	m.debugViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	atBottom := m.debugViewport.AtBottom()
	m.debugViewport.SetContent(m.renderDebugContent())
	if atBottom {
		m.debugViewport.GotoBottom()
	}
}

// handleDebugKey scrolls the debug viewport.
func (m Model) handleDebugKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.debugViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.debugViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.debugViewport, cmd = m.debugViewport.Update(msg)
	return m, cmd
}

// renderDebugPage renders the entity dump and log tail.
func (m Model) renderDebugPage() string {
	return m.renderTitledBox("Debug", m.debugViewport.View(), m.width, m.contentHeight(), true)
}

// renderDebugContent lists the printer's entities and the tail of the log.
func (m *Model) renderDebugContent() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.FocusBg)
	width := m.debugViewport.Width
	pc, _ := m.printerContext()

	var lines []string
	section := func(title string) {
		lines = append(lines, bg.FillLine(bg.Render(title, styles.AccentText.Bold(true)), width))
	}

	section("Printer")
	if pc.Device != nil {
		for _, kv := range [][2]string{
			{"device_id", pc.Device.ID},
			{"name", pc.Device.DisplayName()},
			{"model", pc.Device.Model},
			{"config_entry", pc.Device.ConfigEntry()},
			{"entity prefix", pc.Part},
		} {
			lines = append(lines, bg.FillLine(bg.Spaces(2)+bg.Render(padRight(kv[0], 16), styles.MutedText)+bg.Render(kv[1], styles.Text), width))
		}
	}
	lines = append(lines, bg.FillLine("", width))

	section(fmt.Sprintf("Entities (%d)", len(pc.Entities)))
	lines = append(lines, m.formatEntities(pc.Entities, width, styles, bg)...)
	lines = append(lines, bg.FillLine("", width))

	section("Log")
	lines = append(lines, m.formatLogTail(width, styles, bg)...)

	return strings.Join(lines, "\n")
}

// formatEntities renders one line per entity, sorted by ID.
func (m *Model) formatEntities(states hass.States, width int, styles Styles, bg BgStyle) []string {
	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	idWidth := minInt(maxInt(width/2, 20), 56)
	for _, id := range ids {
		st := states[id]
		valueStyle := styles.Text
		if !st.Available() {
			valueStyle = styles.FaintText
		}
		value := st.State
		if unit := st.AttrString("unit_of_measurement"); unit != "" {
			value += " " + unit
		}
		lines = append(lines, bg.FillLine(
			bg.Spaces(2)+bg.Render(padRight(truncateMiddle(id, idWidth), idWidth), styles.MutedText)+bg.Space()+
				bg.Render(truncate(value, maxInt(width-idWidth-4, 8)), valueStyle),
			width))
	}
	return lines
}

// formatLogTail reads the log file and colors each line by level.
func (m *Model) formatLogTail(width int, styles Styles, bg BgStyle) []string {
	if m.config == nil {
		return []string{bg.FillLine(bg.Spaces(2)+bg.Render("No log file configured", styles.MutedText), width)}
	}
	raw, err := logtail.Read(m.config.LogPath(), LogTailLines)
	if err != nil {
		log.Printf("read log failed: %v", err)
		return []string{bg.FillLine(bg.Spaces(2)+bg.Render(err.Error(), styles.DangerText), width)}
	}
	if len(raw) == 0 {
		return []string{bg.FillLine(bg.Spaces(2)+bg.Render("No log entries", styles.MutedText), width)}
	}

	entries := logtail.ParseAll(raw)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		b.WriteString(bg.Spaces(2))
		if !e.Time.IsZero() {
			b.WriteString(bg.Render(e.Time.Format("15:04:05"), styles.FaintText))
			b.WriteString(bg.Space())
		}
		b.WriteString(bg.Render(padRight(e.Level.String(), 5), levelStyle(e.Level, styles).Bold(true)))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(e.Message, styles.Text))
		lines = append(lines, bg.FillLine(b.String(), width))
	}
	return lines
}

// levelStyle returns the style for a log level.
func levelStyle(level logtail.Level, styles Styles) lipgloss.Style {
	switch level {
	case logtail.LevelWarn:
		return styles.WarningText
	case logtail.LevelError:
		return styles.DangerText
	default:
		return styles.SuccessText
	}
}
