package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Back       key.Binding
	Printers   key.Binding

	// Page switching
	PageMain    key.Binding
	PageLocal   key.Binding
	PageUdisk   key.Binding
	PageCloud   key.Binding
	PagePrint   key.Binding
	PagePrintUp key.Binding
	PageDebug   key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// File actions
	Refresh  key.Binding
	Delete   key.Binding
	Download key.Binding

	// Display toggles
	ToggleUnit    key.Binding
	Toggle24h     key.Binding
	ToggleRound   key.Binding
	TogglePercent key.Binding

	// Forms and dialogs
	Confirm key.Binding
	Edit    key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next page"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "Back"),
		),
		Printers: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Printer list"),
		),

		// Page switching
		PageMain: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Main"),
		),
		PageLocal: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Local files"),
		),
		PageUdisk: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "USB files"),
		),
		PageCloud: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Cloud files"),
		),
		PagePrint: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Print (no cloud save)"),
		),
		PagePrintUp: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "Print (save in cloud)"),
		),
		PageDebug: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "Debug"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		// File actions
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh list"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete file"),
		),
		Download: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Download file"),
		),

		// Display toggles
		ToggleUnit: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Toggle °C/°F"),
		),
		Toggle24h: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Toggle 24h clock"),
		),
		ToggleRound: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Toggle rounding"),
		),
		TogglePercent: key.NewBinding(
			key.WithKeys("%"),
			key.WithHelp("%", "Toggle percent"),
		),

		// Forms and dialogs
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit payload"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Back, k.Printers},
		{k.PageMain, k.PageLocal, k.PageUdisk, k.PageCloud, k.PagePrint, k.PagePrintUp, k.PageDebug},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Refresh, k.Delete, k.Download},
		{k.ToggleUnit, k.Toggle24h, k.ToggleRound, k.TogglePercent},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
