package ui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/prefs"
	"github.com/five82/acpanel/internal/state"
)

type recordedCall struct {
	domain  string
	service string
	data    map[string]any
}

type fakeCaller struct {
	mu    sync.Mutex
	calls []recordedCall
	err   error
}

func (f *fakeCaller) CallService(_ context.Context, domain, service string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{domain: domain, service: service, data: data})
	return f.err
}

func (f *fakeCaller) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func testStore() *state.Store {
	now := time.Now()
	st := func(id, value string, attrs map[string]any) hass.EntityState {
		return hass.EntityState{EntityID: id, State: value, Attributes: attrs, LastUpdated: now}
	}
	store := &state.Store{}
	store.Load(
		[]hass.EntityState{
			st("sensor.kobra_3_project_progress", "42", nil),
			st("sensor.kobra_3_print_state", "printing", nil),
			st("sensor.kobra_3_nozzle_temperature", "210", map[string]any{"unit_of_measurement": "°C"}),
			st("sensor.kobra_3_file_list_local", "2", map[string]any{
				"file_info": []any{
					map[string]any{"name": "benchy.gcode", "size": 2048},
					map[string]any{"name": "calibration_cube.gcode", "size": 4096},
				},
			}),
			st("button.kobra_3_request_file_list_local", "unknown", nil),
			st("sensor.ender_print_state", "idle", nil),
		},
		[]hass.Device{
			{ID: "dev1", Name: "Kobra 3", Manufacturer: "Anycubic", Model: "Kobra 3 Combo", PrimaryConfigEntry: "entry1"},
			{ID: "other", Name: "Ender", Manufacturer: "Creality"},
		},
		nil,
	)
	return store
}

func newTestModel(t *testing.T, caller action.Caller, route string) Model {
	t.Helper()
	store := testStore()
	m := New(Options{
		Store:     store,
		Caller:    caller,
		Route:     route,
		Prefs:     prefs.Defaults(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Feedback:  func() {},
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runAction executes an action command and feeds its result back.
func runAction(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected an action command")
	}
	msg, ok := cmd().(actionResultMsg)
	if !ok {
		t.Fatal("command did not produce an action result")
	}
	m, _ = update(t, m, msg)
	return m
}

func TestPrinterSelect_ListsOnlyAnycubicAndOpens(t *testing.T) {
	m := newTestModel(t, &fakeCaller{}, "/")

	view := m.View()
	if !strings.Contains(view, "Kobra 3") {
		t.Fatalf("printer list missing Kobra 3:\n%s", view)
	}
	if strings.Contains(view, "Ender") {
		t.Fatalf("printer list shows a non-Anycubic device:\n%s", view)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.nav.Current().Path; got != "/dev1" {
		t.Fatalf("route after enter = %q, want /dev1", got)
	}
	if sel := m.selection(); sel.Device == nil || sel.Page != pageMain {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestRoutes_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		route string
		want  string
	}{
		{"unknown printer", "/missing/main", printerNotFoundTitle},
		{"unknown page", "/dev1/bogus", pageNotFoundTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, &fakeCaller{}, tt.route)
			if view := m.View(); !strings.Contains(view, tt.want) {
				t.Fatalf("view missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestMainPage_ShowsProgressAndStats(t *testing.T) {
	m := newTestModel(t, &fakeCaller{}, "/dev1/main")
	view := m.View()
	for _, want := range []string{"42%", "Printing", "210°C"} {
		if !strings.Contains(view, want) {
			t.Errorf("main page missing %q", want)
		}
	}

	// Redrawing the same snapshot reuses the derived stats.
	_ = m.View()
	if _, lines := m.board.Recomputes(); lines != 1 {
		t.Fatalf("stat lines recomputed %d times, want 1", lines)
	}
}

func TestTab_CyclesPages(t *testing.T) {
	m := newTestModel(t, &fakeCaller{}, "/dev1/main")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.selection().Page; got != pageLocalFiles {
		t.Fatalf("page after tab = %q, want %q", got, pageLocalFiles)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.selection().Page; got != pageDebug {
		t.Fatalf("page after two shift+tab = %q, want %q", got, pageDebug)
	}

	m, _ = update(t, m, runes("4"))
	if got := m.selection().Page; got != pageCloudFiles {
		t.Fatalf("page after 4 = %q, want %q", got, pageCloudFiles)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.selection().Page; got != pageDebug {
		t.Fatalf("page after esc = %q, want %q", got, pageDebug)
	}
}

func TestFilesPage_DeleteAfterConfirm(t *testing.T) {
	caller := &fakeCaller{}
	m := newTestModel(t, caller, "/dev1/local-files")

	if view := m.View(); !strings.Contains(view, "benchy.gcode") || !strings.Contains(view, "2.0 kB") {
		t.Fatalf("file table missing entry:\n%s", view)
	}

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("d"))
	if m.modal == nil {
		t.Fatal("delete did not ask for confirmation")
	}
	if len(caller.recorded()) != 0 {
		t.Fatal("request sent before confirmation")
	}

	m, cmd := update(t, m, runes("y"))
	if m.modal != nil {
		t.Fatal("modal still open after confirm")
	}
	m = runAction(t, m, cmd)

	calls := caller.recorded()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	call := calls[0]
	if call.domain != "anycubic_cloud" || call.service != "delete_file_local" {
		t.Fatalf("call = %s.%s", call.domain, call.service)
	}
	if call.data["filename"] != "calibration_cube.gcode" || call.data["device_id"] != "dev1" || call.data["config_entry"] != "entry1" {
		t.Fatalf("call data = %v", call.data)
	}
	if status, _ := m.controlStatus(fileControl(m.listers[pageLocalFiles].Backend, "delete")); status != action.Succeeded {
		t.Fatalf("delete status = %v, want success", status)
	}
}

func TestFilesPage_CancelSendsNothing(t *testing.T) {
	caller := &fakeCaller{}
	m := newTestModel(t, caller, "/dev1/local-files")

	m, _ = update(t, m, runes("d"))
	m, cmd := update(t, m, runes("n"))
	if cmd != nil || m.modal != nil || len(caller.recorded()) != 0 {
		t.Fatalf("cancel: cmd=%v modal=%v calls=%d", cmd != nil, m.modal != nil, len(caller.recorded()))
	}
}

func TestFilesPage_RefreshPressesButton(t *testing.T) {
	caller := &fakeCaller{}
	m := newTestModel(t, caller, "/dev1/local-files")

	_, cmd := update(t, m, runes("r"))
	runAction(t, m, cmd)

	calls := caller.recorded()
	if len(calls) != 1 || calls[0].domain != "button" || calls[0].service != "press" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].data["entity_id"] != "button.kobra_3_request_file_list_local" {
		t.Fatalf("entity_id = %v", calls[0].data["entity_id"])
	}
}

func TestFilesPage_DownloadOnlyOnCloud(t *testing.T) {
	caller := &fakeCaller{}
	m := newTestModel(t, caller, "/dev1/local-files")

	_, cmd := update(t, m, runes("D"))
	if cmd != nil {
		t.Fatal("local backend started a download")
	}
}

func TestPrintPage_SubmitAndEditClearsError(t *testing.T) {
	caller := &fakeCaller{err: &hass.ServiceError{Code: "home_assistant_error", Message: "device offline"}}
	m := newTestModel(t, caller, "/dev1/print-no_cloud_save")

	m, _ = update(t, m, runes("e"))
	for _, r := range "benchy.gcode" {
		m, _ = update(t, m, runes(string(r)))
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runAction(t, m, cmd)

	calls := caller.recorded()
	if len(calls) != 1 || calls[0].service != action.ServicePrintNoCloudSave {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].data["uploaded_gcode_file"] != "benchy.gcode" {
		t.Fatalf("payload = %v", calls[0].data)
	}

	status, errText := m.controlStatus(printControl(pagePrintNoCloudSave))
	if status != action.Failed || errText != "device offline" {
		t.Fatalf("control = %v %q, want error \"device offline\"", status, errText)
	}

	m, _ = update(t, m, runes("e"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if status, errText := m.controlStatus(printControl(pagePrintNoCloudSave)); status != action.Idle || errText != "" {
		t.Fatalf("after edit control = %v %q, want idle with no error", status, errText)
	}
}

func TestPrintPage_ResultDroppedAfterLeaving(t *testing.T) {
	caller := &fakeCaller{}
	m := newTestModel(t, caller, "/dev1/print-save_in_cloud")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter did not start a print")
	}
	m, _ = update(t, m, runes("1"))

	m = runAction(t, m, cmd)
	if status, _ := m.controlStatus(printControl(pagePrintSaveInCloud)); status != action.Idle {
		t.Fatalf("status after unmount = %v, want idle", status)
	}
}

func TestThemeCycle_SavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeCaller{}, "/dev1/main")

	m, _ = update(t, m, runes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestMainPage_ToggleUnit(t *testing.T) {
	m := newTestModel(t, &fakeCaller{}, "/dev1/main")

	m, _ = update(t, m, runes("u"))
	if m.prefs.TemperatureUnit != "F" {
		t.Fatalf("unit = %q, want F", m.prefs.TemperatureUnit)
	}
	if view := m.View(); !strings.Contains(view, "410°F") {
		t.Fatalf("main page missing 410°F:\n%s", view)
	}
}
