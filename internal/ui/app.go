package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/config"
	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/files"
	"github.com/five82/acpanel/internal/prefs"
	"github.com/five82/acpanel/internal/printer"
	"github.com/five82/acpanel/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Caller    action.Caller
	Store     *state.Store
	Config    *config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Route     string
	PollTick  time.Duration

	// Feedback runs when an action starts. Nil rings the terminal bell.
	Feedback func()
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *state.Store
	config     *config.Config
	prefs      prefs.Prefs
	prefsPath  string
	pollTick   time.Duration
	dispatcher *action.Dispatcher
	keys       keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Routing
	nav *printer.Navigator

	// Derived values, recomputed only when their inputs change
	board   *derive.Board
	listers map[string]*files.Lister

	// Action buttons by control key
	controls map[string]*action.Control

	// Per-view selection
	printerRow int
	fileRows   map[string]int

	// Print pages
	printForms map[string]*printForm

	// Debug page
	debugViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs.Theme = prefs.Defaults().Theme
	}

	domain := action.DefaultDomain
	if opts.Config != nil && opts.Config.Domain != "" {
		domain = opts.Config.Domain
	}
	feedback := opts.Feedback
	if feedback == nil {
		feedback = ringBell
	}

	listers := make(map[string]*files.Lister, len(files.Backends))
	for _, b := range files.Backends {
		listers[b.Page] = files.NewLister(b)
	}

	route := opts.Route
	if route == "" {
		route = "/"
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		config:    opts.Config,
		prefs:     userPrefs,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		dispatcher: &action.Dispatcher{
			Caller:   opts.Caller,
			Domain:   domain,
			Feedback: feedback,
		},
		keys:       DefaultKeyMap(),
		theme:      GetTheme(userPrefs.Theme),
		nav:        printer.NewNavigator(route),
		board:      derive.NewBoard(),
		listers:    listers,
		controls:   make(map[string]*action.Control),
		fileRows:   make(map[string]int),
		printForms: make(map[string]*printForm),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDebugViewport()
		}
		m.ready = true
		m.updateDebugViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampSelections()
		m.updateDebugViewport()
		return m, nil

	case actionResultMsg:
		m.handleActionResult(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		if confirm, ok := modal.(*confirmModal); ok && closed && confirm.confirmed {
			return m, m.runConfirmed(confirm)
		}
		return m, cmd
	}

	// An active payload editor owns the keyboard.
	if form := m.activeForm(); form != nil && form.editing {
		return m.handlePrintKey(msg, form)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateDebugViewport()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.leavePage()
		m.nav.Back()
		m.updateDebugViewport()
		return m, nil

	case key.Matches(msg, m.keys.Printers):
		m.navigate("/")
		return m, nil
	}

	sel := m.selection()
	if !sel.Selected() {
		return m.handlePrinterSelectKey(msg)
	}
	if sel.NotFound() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.navigatePage(nextPage(sel.Page, 1))
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.navigatePage(nextPage(sel.Page, -1))
		return m, nil
	}
	if page, ok := m.pageForKey(msg); ok {
		m.navigatePage(page)
		return m, nil
	}

	switch sel.Page {
	case pageMain:
		return m.handleMainKey(msg)
	case pageLocalFiles, pageUdiskFiles, pageCloudFiles:
		return m.handleFilesKey(msg, sel.Page)
	case pagePrintNoCloudSave, pagePrintSaveInCloud:
		return m.handlePrintKey(msg, m.form(sel.Page))
	case pageDebug:
		return m.handleDebugKey(msg)
	}
	return m, nil
}

// pageForKey maps the numeric page shortcuts.
func (m Model) pageForKey(msg tea.KeyMsg) (string, bool) {
	bindings := []key.Binding{
		m.keys.PageMain,
		m.keys.PageLocal,
		m.keys.PageUdisk,
		m.keys.PageCloud,
		m.keys.PagePrint,
		m.keys.PagePrintUp,
		m.keys.PageDebug,
	}
	for i, b := range bindings {
		if key.Matches(msg, b) {
			return pageTabs[i].page, true
		}
	}
	return "", false
}

// selection resolves the current route against the latest device list.
func (m Model) selection() printer.Selection {
	return printer.Resolve(m.nav.Current(), m.snapshot.Devices)
}

// printerContext binds the selected printer to the snapshot and returns the
// derivation inputs that identify it.
func (m Model) printerContext() (printer.Context, derive.Inputs) {
	sel := m.selection()
	pc := printer.Bind(sel, m.snapshot.States, m.snapshot.Entities)
	return pc, derive.PrinterInputs(m.snapshot.Version, sel.PrinterID, pc.Part)
}

// navigate pushes path, unmounting the controls of the page being left.
func (m *Model) navigate(path string) {
	if printer.ParseRoute(path).Path == m.nav.Current().Path {
		return
	}
	m.leavePage()
	m.nav.Push(path)
	m.updateDebugViewport()
}

// navigatePage switches page on the current printer.
func (m *Model) navigatePage(page string) {
	m.navigate(printer.PagePath(m.nav.Current(), page))
}

// leavePage unmounts every control so outstanding results are dropped and
// stops any payload edit in progress.
func (m *Model) leavePage() {
	for _, c := range m.controls {
		c.Unmount()
	}
	for _, f := range m.printForms {
		f.blur()
	}
	m.modal = nil
}

// clampSelections keeps row cursors inside their lists after an update.
func (m *Model) clampSelections() {
	if n := len(printer.Printers(m.snapshot.Devices)); m.printerRow >= n {
		m.printerRow = maxInt(n-1, 0)
	}
}

// handleMainKey toggles display preferences on the main page.
func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleUnit):
		if derive.ParseUnit(m.prefs.TemperatureUnit) == derive.Fahrenheit {
			m.prefs.TemperatureUnit = string(derive.Celsius)
		} else {
			m.prefs.TemperatureUnit = string(derive.Fahrenheit)
		}
	case key.Matches(msg, m.keys.Toggle24h):
		m.prefs.Use24Hr = !m.prefs.Use24Hr
	case key.Matches(msg, m.keys.ToggleRound):
		m.prefs.Round = !m.prefs.Round
	case key.Matches(msg, m.keys.TogglePercent):
		m.prefs.ShowPercent = !m.prefs.ShowPercent
	default:
		return m, nil
	}
	m.savePrefs()
	return m, nil
}

// statOptions returns the stat formatting options from preferences.
func (m Model) statOptions() derive.Options {
	return derive.Options{
		TemperatureUnit: derive.ParseUnit(m.prefs.TemperatureUnit),
		Round:           m.prefs.Round,
		Use24Hr:         m.prefs.Use24Hr,
	}
}

// statKinds returns the monitored stats from preferences, or the defaults.
func (m Model) statKinds() []derive.Kind {
	if len(m.prefs.MonitoredStats) == 0 {
		return derive.DefaultKinds
	}
	kinds := make([]derive.Kind, len(m.prefs.MonitoredStats))
	for i, name := range m.prefs.MonitoredStats {
		kinds[i] = derive.Kind(name)
	}
	return kinds
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		log.Printf("save prefs failed: %v", err)
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: page tabs or command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area for the current route.
func (m Model) renderContent() string {
	sel := m.selection()
	switch {
	case !sel.Selected():
		return m.renderPrinterSelect()
	case !m.snapshot.Loaded:
		return m.renderPlaceholder("Home Assistant", "Waiting for Home Assistant...")
	case sel.NotFound():
		return m.renderPlaceholder(printerNotFoundTitle, fmt.Sprintf("No printer with ID %q", sel.PrinterID))
	}

	switch sel.Page {
	case pageMain:
		return m.renderMainPage()
	case pageLocalFiles, pageUdiskFiles, pageCloudFiles:
		return m.renderFilesPage(sel.Page)
	case pagePrintNoCloudSave, pagePrintSaveInCloud:
		return m.renderPrintPage(sel.Page)
	case pageDebug:
		return m.renderDebugPage()
	default:
		return m.renderPlaceholder(pageNotFoundTitle, fmt.Sprintf("Unknown page %q", sel.Page))
	}
}

// contentHeight is the height below the two header lines.
func (m Model) contentHeight() int {
	return maxInt(m.height-2, 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// ringBell writes BEL to stderr so it does not race the renderer on stdout.
func ringBell() {
	_, _ = os.Stderr.WriteString("\a")
}

// Run starts the Bubble Tea program. The standard logger is redirected to
// the configured log file for the lifetime of the program.
func Run(opts Options) error {
	if opts.Config != nil {
		if path := opts.Config.LogPath(); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
				if f, err := tea.LogToFile(path, ""); err == nil {
					defer f.Close()
				}
			}
		}
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
