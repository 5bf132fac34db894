package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/hass"
)

// defaultPayload seeds the print form with the field every print service
// needs.
const defaultPayload = "uploaded_gcode_file="

// printForm is the editable payload of one print page.
type printForm struct {
	input   textinput.Model
	editing bool

	// device caches the device context merged into every request.
	device *derive.Memo[map[string]any]
}

func newPrintForm() *printForm {
	ti := textinput.New()
	ti.Placeholder = "key=value key2=value2"
	ti.CharLimit = 512
	ti.Prompt = "› "
	ti.SetValue(defaultPayload)
	return &printForm{
		input:  ti,
		device: derive.NewMemo[map[string]any](derive.PrintInputs...),
	}
}

func (f *printForm) focus() tea.Cmd {
	f.editing = true
	return f.input.Focus()
}

func (f *printForm) blur() {
	f.editing = false
	f.input.Blur()
}

// form returns the print form of page, creating it on first use.
func (m Model) form(page string) *printForm {
	f, ok := m.printForms[page]
	if !ok {
		f = newPrintForm()
		m.printForms[page] = f
	}
	return f
}

// activeForm returns the form of the current page, or nil off print pages.
func (m Model) activeForm() *printForm {
	sel := m.selection()
	if _, ok := printServices[sel.Page]; !ok || sel.Device == nil {
		return nil
	}
	return m.form(sel.Page)
}

func printControl(page string) string {
	return "print:" + page
}

// handlePrintKey edits the payload and submits it.
func (m Model) handlePrintKey(msg tea.KeyMsg, form *printForm) (tea.Model, tea.Cmd) {
	page := m.selection().Page

	if form.editing {
		switch msg.Type {
		case tea.KeyEsc:
			form.blur()
			return m, nil
		case tea.KeyEnter:
			form.blur()
			return m, m.submitPrint(page, form)
		}
		before := form.input.Value()
		var cmd tea.Cmd
		form.input, cmd = form.input.Update(msg)
		if form.input.Value() != before {
			m.control(printControl(page)).Edit()
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		return m, form.focus()
	case key.Matches(msg, m.keys.Confirm):
		return m, m.submitPrint(page, form)
	}
	return m, nil
}

// submitPrint runs the page's print service with the form payload.
func (m Model) submitPrint(page string, form *printForm) tea.Cmd {
	service, ok := printServices[page]
	if !ok {
		return nil
	}
	payload, err := action.ParsePayload(form.input.Value())
	if err != nil {
		c := m.control(printControl(page))
		gen := c.Begin()
		c.Finish(gen, action.Outcome{Err: err})
		return nil
	}
	device := m.selection().Device
	d := m.dispatcher
	return m.startAction(printControl(page), func(ctx context.Context) action.Outcome {
		return d.Run(ctx, device, service, payload)
	})
}

// deviceContext returns the fields merged from the selected device, recomputed
// only when the device changes.
func (m Model) deviceContext(form *printForm) map[string]any {
	_, in := m.printerContext()
	device := m.selection().Device
	return form.device.Get(in, func() map[string]any {
		return deviceFields(device)
	})
}

func deviceFields(device *hass.Device) map[string]any {
	if device == nil {
		return nil
	}
	req, err := action.BuildRequest(device, "preview", nil)
	if err != nil {
		return nil
	}
	return req.Data
}

// renderPrintPage renders the payload editor, the merged request and the
// control state.
func (m Model) renderPrintPage(page string) string {
	height := m.contentHeight()
	form := m.form(page)
	styles := m.theme.Styles()
	bgColor := m.theme.SurfaceAlt
	if form.editing {
		bgColor = m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	width := m.width - 2

	var lines []string
	lines = append(lines, "")
	lines = append(lines, bg.Space()+bg.Render("Service", styles.MutedText)+bg.Spaces(2)+
		bg.Render(m.dispatcher.Domain+"."+printServices[page], styles.AccentText))
	lines = append(lines, "")
	lines = append(lines, bg.Space()+bg.Render("Payload", styles.MutedText))
	lines = append(lines, bg.Space()+form.input.View())
	lines = append(lines, "")

	lines = append(lines, bg.Space()+bg.Render("Request data", styles.MutedText))
	data := map[string]any{}
	for k, v := range m.deviceContext(form) {
		data[k] = v
	}
	if payload, err := action.ParsePayload(form.input.Value()); err == nil {
		for k, v := range payload {
			data[k] = v
		}
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, bg.Spaces(3)+bg.Render(padRight(k, 22), styles.FaintText)+
			bg.Render(fmt.Sprint(data[k]), styles.Text))
	}
	lines = append(lines, "")

	status := m.statusLabel(printControl(page), styles, bg)
	if status == "" {
		hint := "e edit · enter print"
		if form.editing {
			hint = "enter print · esc stop editing"
		}
		status = bg.Render(hint, styles.FaintText)
	}
	lines = append(lines, bg.Space()+status)

	for i, line := range lines {
		lines[i] = bg.FillLine(line, width)
	}
	return m.renderTitledBox(pageTitle(page), strings.Join(lines, "\n"), m.width, height, form.editing)
}
