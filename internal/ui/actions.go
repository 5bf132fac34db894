package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/acpanel/internal/action"
)

// actionTimeout bounds a single service call.
const actionTimeout = 30 * time.Second

// actionResultMsg reports the outcome of one control attempt.
type actionResultMsg struct {
	control string
	gen     uint64
	outcome action.Outcome
}

// control returns the control registered under name, creating it idle.
func (m Model) control(name string) *action.Control {
	c, ok := m.controls[name]
	if !ok {
		c = &action.Control{}
		m.controls[name] = c
	}
	return c
}

// controlStatus reports a control's state without creating it.
func (m Model) controlStatus(name string) (action.Status, string) {
	c, ok := m.controls[name]
	if !ok {
		return action.Idle, ""
	}
	return c.Status, c.Err
}

// startAction begins an attempt on the named control and returns the command
// that performs it. send runs off the UI goroutine. A control that is already
// pending ignores the trigger.
func (m Model) startAction(name string, send func(ctx context.Context) action.Outcome) tea.Cmd {
	c := m.control(name)
	if c.Busy() {
		return nil
	}
	gen := c.Begin()
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		return actionResultMsg{control: name, gen: gen, outcome: send(ctx)}
	}
}

// sendRequest dispatches a prepared request on the named control.
func (m Model) sendRequest(name string, req action.Request) tea.Cmd {
	d := m.dispatcher
	return m.startAction(name, func(ctx context.Context) action.Outcome {
		return d.Send(ctx, req)
	})
}

// handleActionResult applies a result unless its control was unmounted or
// re-triggered since.
func (m *Model) handleActionResult(msg actionResultMsg) {
	c, ok := m.controls[msg.control]
	if !ok {
		return
	}
	c.Finish(msg.gen, msg.outcome)
}

// statusLabel renders a control state for the command bar and forms.
func (m Model) statusLabel(name string, styles Styles, bg BgStyle) string {
	status, errText := m.controlStatus(name)
	switch status {
	case action.Pending:
		return bg.Render("… working", styles.WarningText)
	case action.Succeeded:
		return bg.Render("✓ done", styles.SuccessText)
	case action.Failed:
		return bg.Render("✗ "+truncate(errText, 60), styles.DangerText)
	default:
		return ""
	}
}
