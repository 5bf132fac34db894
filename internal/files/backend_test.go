package files

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/printer"
)

type recorder struct {
	calls []action.Request
}

func (r *recorder) CallService(_ context.Context, domain, service string, data map[string]any) error {
	r.calls = append(r.calls, action.Request{Domain: domain, Service: service, Data: data})
	return nil
}

func snapshot() hass.States {
	return hass.States{
		"sensor.kobra_file_list_local": {
			EntityID: "sensor.kobra_file_list_local",
			State:    "2",
			Attributes: map[string]any{
				"file_info": []any{
					map[string]any{"name": "cube.gcode", "size_mb": 1.5, "timestamp": float64(1714557600)},
					map[string]any{"name": "benchy.gcode", "size": float64(2048), "timestamp": float64(1714557600000), "path": "/usr/data"},
				},
			},
		},
		"sensor.kobra_file_list_cloud": {
			EntityID: "sensor.kobra_file_list_cloud",
			State:    "1",
			Attributes: map[string]any{
				"file_info": []any{
					map[string]any{"id": float64(991), "old_filename": "vase.gcode", "gcode_id": float64(55)},
				},
			},
		},
		"sensor.kobra_file_list_udisk": {EntityID: "sensor.kobra_file_list_udisk", State: "0"},
		"button.kobra_request_file_list_local": {EntityID: "button.kobra_request_file_list_local", State: "unknown"},
	}
}

func TestListFiles(t *testing.T) {
	states := snapshot()

	local := Local.ListFiles(states, "kobra")
	if len(local) != 2 {
		t.Fatalf("local entries = %d, want 2", len(local))
	}
	if local[0].Name != "cube.gcode" || local[0].Size != 1572864 {
		t.Errorf("entry 0 = %#v", local[0])
	}
	if !local[0].Modified.Equal(time.Unix(1714557600, 0)) || !local[1].Modified.Equal(local[0].Modified) {
		t.Errorf("timestamps = %v / %v", local[0].Modified, local[1].Modified)
	}
	if local[1].Size != 2048 || local[1].Extra["path"] != "/usr/data" {
		t.Errorf("entry 1 = %#v", local[1])
	}

	cloud := Cloud.ListFiles(states, "kobra")
	if len(cloud) != 1 || cloud[0].Name != "vase.gcode" || cloud[0].ID != "991" || cloud[0].Extra["gcode_id"] != "55" {
		t.Errorf("cloud = %#v", cloud)
	}

	if got := Udisk.ListFiles(states, "kobra"); len(got) != 0 {
		t.Errorf("udisk without file_info = %#v, want empty", got)
	}
	if got := Local.ListFiles(states, "other"); len(got) != 0 {
		t.Errorf("unknown printer = %#v, want empty", got)
	}
	if got := Local.ListFiles(nil, ""); got != nil {
		t.Errorf("nil subset = %#v, want nil", got)
	}
}

func TestListFilesIdempotent(t *testing.T) {
	states := snapshot()
	a := Local.ListFiles(states, "kobra")
	b := Local.ListFiles(states, "kobra")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("ListFiles not idempotent:\n%#v\n%#v", a, b)
	}
}

func TestRefreshTrigger(t *testing.T) {
	states := snapshot()
	if got := Local.RefreshTrigger(states, "kobra"); got != "button.kobra_request_file_list_local" {
		t.Errorf("local refresh = %q", got)
	}
	if got := Cloud.RefreshTrigger(states, "kobra"); got != "" {
		t.Errorf("missing cloud refresh = %q, want empty", got)
	}
}

func TestCapabilities(t *testing.T) {
	device := &hass.Device{ID: "dev1", PrimaryConfigEntry: "cfg1"}
	entry := Entry{Name: "x.gcode"}

	for _, b := range []Backend{Local, Udisk} {
		if b.Caps.Has(CapDownload) {
			t.Errorf("%s advertises download", b.Kind)
		}
		if _, err := b.DownloadRequest(device, entry); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s DownloadRequest err = %v, want ErrUnsupported", b.Kind, err)
		}
	}

	if !Cloud.Caps.Has(CapDownload | CapDelete) {
		t.Fatalf("cloud caps = %s", Cloud.Caps)
	}
	req, err := Cloud.DownloadRequest(device, Entry{Name: "x.gcode", ID: "7"})
	if err != nil {
		t.Fatalf("cloud DownloadRequest: %v", err)
	}
	want := map[string]any{"config_entry": "cfg1", "device_id": "dev1", "filename": "x.gcode", "file_id": "7"}
	if req.Service != "download_file_cloud" || !reflect.DeepEqual(req.Data, want) {
		t.Fatalf("download request = %#v", req)
	}
	if got := Cloud.Caps.String(); got != "list,delete,refresh,download" {
		t.Fatalf("Caps.String = %q", got)
	}
}

func TestDeleteRequest(t *testing.T) {
	device := &hass.Device{ID: "dev1", PrimaryConfigEntry: "cfg1"}

	for _, b := range Backends {
		req, ok := b.DeleteRequest(device, Entry{Name: "x.gcode"})
		if !ok {
			t.Fatalf("%s DeleteRequest not built", b.Kind)
		}
		want := map[string]any{"config_entry": "cfg1", "device_id": "dev1", "filename": "x.gcode"}
		if req.Service != "delete_file_"+string(b.Kind) || !reflect.DeepEqual(req.Data, want) {
			t.Errorf("%s request = %#v", b.Kind, req)
		}
	}
}

func TestDeleteFileWithMissingContext(t *testing.T) {
	rec := &recorder{}
	d := &action.Dispatcher{Caller: rec}
	device := &hass.Device{ID: "dev1"}

	if _, sent := Udisk.DeleteFile(context.Background(), d, nil, Entry{Name: "x.gcode"}); sent {
		t.Fatalf("DeleteFile sent without a device")
	}
	if _, sent := Udisk.DeleteFile(context.Background(), d, device, Entry{Name: " "}); sent {
		t.Fatalf("DeleteFile sent without a file name")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("requests = %d, want 0", len(rec.calls))
	}

	out, sent := Udisk.DeleteFile(context.Background(), d, device, Entry{Name: "x.gcode"})
	if !sent || !out.OK() || len(rec.calls) != 1 || rec.calls[0].Domain != action.DefaultDomain {
		t.Fatalf("DeleteFile = %v %v, calls %#v", out, sent, rec.calls)
	}
}

func TestRefresh(t *testing.T) {
	rec := &recorder{}
	d := &action.Dispatcher{Caller: rec}
	states := snapshot()

	if _, err := Local.Refresh(context.Background(), d, states, "kobra"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0].Service != "press" {
		t.Fatalf("calls = %#v", rec.calls)
	}
	if _, err := Cloud.Refresh(context.Background(), d, states, "kobra"); err == nil {
		t.Fatalf("Refresh without a button should fail")
	}
}

func TestByPageAndKind(t *testing.T) {
	if b, ok := ByPage("udisk-files"); !ok || b.Kind != KindUdisk {
		t.Errorf("ByPage(udisk-files) = %v, %v", b.Kind, ok)
	}
	if _, ok := ByPage("main"); ok {
		t.Errorf("ByPage(main) found a backend")
	}
	if b, ok := ByKind(" Cloud "); !ok || b.Kind != KindCloud {
		t.Errorf("ByKind(Cloud) = %v, %v", b.Kind, ok)
	}
}

func TestListerRecomputesOnWatchedInputs(t *testing.T) {
	states := snapshot()
	device := hass.Device{ID: "dev1", Name: "Kobra"}
	pc := printer.Bind(printer.Selection{PrinterID: "dev1", Device: &device}, states, nil)
	l := NewLister(Local)

	in := derive.PrinterInputs(1, "dev1", pc.Part)
	first := l.Get(in, pc)
	in[derive.InputPage] = "local-files"
	second := l.Get(in, pc)
	if l.Recomputes() != 1 {
		t.Fatalf("Recomputes = %d, want 1", l.Recomputes())
	}
	if !reflect.DeepEqual(first, second) || first.Refresh != "button.kobra_request_file_list_local" {
		t.Fatalf("listing = %#v", first)
	}

	l.Get(derive.PrinterInputs(2, "dev1", pc.Part), pc)
	l.Get(derive.PrinterInputs(2, "dev2", pc.Part), pc)
	if l.Recomputes() != 3 {
		t.Fatalf("Recomputes = %d, want 3", l.Recomputes())
	}
}
