package files

import (
	"context"
	"errors"
	"strings"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/printer"
)

// Kind names a storage backend.
type Kind string

const (
	KindLocal Kind = "local"
	KindUdisk Kind = "udisk"
	KindCloud Kind = "cloud"
)

// Caps is the set of operations a backend supports.
type Caps uint8

const (
	CapList Caps = 1 << iota
	CapDelete
	CapRefresh
	CapDownload
)

// Has reports whether every capability in want is present.
func (c Caps) Has(want Caps) bool {
	return c&want == want
}

func (c Caps) String() string {
	var names []string
	for _, f := range []struct {
		bit  Caps
		name string
	}{{CapList, "list"}, {CapDelete, "delete"}, {CapRefresh, "refresh"}, {CapDownload, "download"}} {
		if c.Has(f.bit) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}

// ErrUnsupported is returned for operations outside a backend's Caps.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Backend describes one storage surface: where its listing lives, which
// entity refreshes it, and what it can do.
type Backend struct {
	Kind            Kind
	Title           string
	Page            string
	FileListSuffix  string
	RefreshSuffix   string
	DeleteService   string
	DownloadService string
	Caps            Caps
}

var (
	Local = Backend{
		Kind:           KindLocal,
		Title:          "Local Files",
		Page:           "local-files",
		FileListSuffix: printer.SensorFileListLocal,
		RefreshSuffix:  printer.ButtonRequestFileListBase + "_local",
		DeleteService:  "delete_file_local",
		Caps:           CapList | CapDelete | CapRefresh,
	}
	Udisk = Backend{
		Kind:           KindUdisk,
		Title:          "USB Files",
		Page:           "udisk-files",
		FileListSuffix: printer.SensorFileListUdisk,
		RefreshSuffix:  printer.ButtonRequestFileListBase + "_udisk",
		DeleteService:  "delete_file_udisk",
		Caps:           CapList | CapDelete | CapRefresh,
	}
	Cloud = Backend{
		Kind:            KindCloud,
		Title:           "Cloud Files",
		Page:            "cloud-files",
		FileListSuffix:  printer.SensorFileListCloud,
		RefreshSuffix:   printer.ButtonRequestFileListBase + "_cloud",
		DeleteService:   "delete_file_cloud",
		DownloadService: "download_file_cloud",
		Caps:            CapList | CapDelete | CapRefresh | CapDownload,
	}
)

// Backends lists every backend in display order.
var Backends = []Backend{Local, Udisk, Cloud}

// ByPage returns the backend whose file page is page.
func ByPage(page string) (Backend, bool) {
	for _, b := range Backends {
		if b.Page == page {
			return b, true
		}
	}
	return Backend{}, false
}

// ByKind returns the backend named kind.
func ByKind(kind string) (Backend, bool) {
	for _, b := range Backends {
		if string(b.Kind) == strings.ToLower(strings.TrimSpace(kind)) {
			return b, true
		}
	}
	return Backend{}, false
}

// FileListEntity is sensor.<part>_file_list_<kind>.
func (b Backend) FileListEntity(part string) string {
	if part == "" {
		return ""
	}
	return printer.EntityID("sensor", part, b.FileListSuffix)
}

// ListFiles reads the file_info attribute of the backend's list entity.
// Missing entities or attributes give an empty list.
func (b Backend) ListFiles(subset hass.States, part string) []Entry {
	st, ok := subset.Get(b.FileListEntity(part))
	if !ok {
		return nil
	}
	raw, ok := st.Attr(fileInfoAttr)
	if !ok {
		return nil
	}
	return parseEntries(raw)
}

// RefreshTrigger returns the button entity that requests a new listing, or
// "" when it does not exist in subset.
func (b Backend) RefreshTrigger(subset hass.States, part string) string {
	if part == "" {
		return ""
	}
	id := printer.EntityID("button", part, b.RefreshSuffix)
	if _, ok := subset.Get(id); !ok {
		return ""
	}
	return id
}

// DeleteRequest builds the delete call for entry. ok is false when the
// device or file name is missing.
func (b Backend) DeleteRequest(device *hass.Device, entry Entry) (action.Request, bool) {
	if !b.Caps.Has(CapDelete) || strings.TrimSpace(entry.Name) == "" {
		return action.Request{}, false
	}
	req, err := action.BuildRequest(device, b.DeleteService, map[string]any{"filename": entry.Name})
	if err != nil {
		return action.Request{}, false
	}
	return req, true
}

// DownloadRequest builds the download call for entry. Backends without
// CapDownload return ErrUnsupported.
func (b Backend) DownloadRequest(device *hass.Device, entry Entry) (action.Request, error) {
	if !b.Caps.Has(CapDownload) {
		return action.Request{}, ErrUnsupported
	}
	if strings.TrimSpace(entry.Name) == "" {
		return action.Request{}, errors.New("file name required")
	}
	payload := map[string]any{"filename": entry.Name}
	if entry.ID != "" {
		payload["file_id"] = entry.ID
	}
	return action.BuildRequest(device, b.DownloadService, payload)
}

// DeleteFile sends the delete request through d. It is a no-op, reporting
// false, when the request cannot be built.
func (b Backend) DeleteFile(ctx context.Context, d *action.Dispatcher, device *hass.Device, entry Entry) (action.Outcome, bool) {
	req, ok := b.DeleteRequest(device, entry)
	if !ok {
		return action.Outcome{}, false
	}
	return d.Send(ctx, req), true
}

// Refresh presses the backend's refresh button.
func (b Backend) Refresh(ctx context.Context, d *action.Dispatcher, subset hass.States, part string) (action.Outcome, error) {
	id := b.RefreshTrigger(subset, part)
	if id == "" {
		return action.Outcome{}, errors.New("no refresh entity for " + string(b.Kind) + " files")
	}
	return d.Send(ctx, action.PressButton(id)), nil
}
