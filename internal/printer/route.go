package printer

import (
	"regexp"
	"strings"

	"github.com/five82/acpanel/internal/hass"
)

// DefaultPage is shown when the route names a printer but no page.
const DefaultPage = "main"

var printerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Route is a panel path of the form /<printer-id>/<page-name>.
type Route struct {
	Path     string
	Segments []string
}

// ParseRoute splits path into non-empty segments.
func ParseRoute(path string) Route {
	trimmed := strings.TrimSpace(path)
	var segments []string
	for _, part := range strings.Split(trimmed, "/") {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return Route{Path: "/" + strings.Join(segments, "/"), Segments: segments}
}

// PrinterID returns the first segment when it looks like a device ID.
func (r Route) PrinterID() string {
	if len(r.Segments) == 0 {
		return ""
	}
	if !printerIDPattern.MatchString(r.Segments[0]) {
		return ""
	}
	return r.Segments[0]
}

// Page returns the second segment, or DefaultPage.
func (r Route) Page() string {
	if len(r.Segments) < 2 {
		return DefaultPage
	}
	return r.Segments[1]
}

// Selection is the result of resolving a route against the device list.
// Device is nil when PrinterID is empty or unknown.
type Selection struct {
	PrinterID string
	Device    *hass.Device
	Page      string
}

// Selected reports whether the route named a printer at all.
func (s Selection) Selected() bool {
	return s.PrinterID != ""
}

// NotFound reports a route naming a printer that does not exist.
func (s Selection) NotFound() bool {
	return s.PrinterID != "" && s.Device == nil
}

// DeviceID returns the selected device's ID or "".
func (s Selection) DeviceID() string {
	if s.Device == nil {
		return ""
	}
	return s.Device.ID
}

// Resolve maps route to a device from devices. It has no side effects.
func Resolve(route Route, devices []hass.Device) Selection {
	sel := Selection{PrinterID: route.PrinterID(), Page: route.Page()}
	if sel.PrinterID == "" {
		return sel
	}
	for i := range devices {
		if devices[i].ID == sel.PrinterID {
			device := devices[i]
			sel.Device = &device
			break
		}
	}
	return sel
}

// PrinterPath is the route for a printer's default page.
func PrinterPath(printerID string) string {
	return "/" + printerID
}

// PagePath is the route for page on the printer named by route.
func PagePath(route Route, page string) string {
	id := route.PrinterID()
	if id == "" {
		return "/"
	}
	if page == "" || page == DefaultPage {
		return PrinterPath(id) + "/" + DefaultPage
	}
	return PrinterPath(id) + "/" + page
}

// Navigator is the in-memory routing primitive: a history stack with push and
// replace semantics.
type Navigator struct {
	history []string
}

// NewNavigator starts at path.
func NewNavigator(path string) *Navigator {
	return &Navigator{history: []string{ParseRoute(path).Path}}
}

// Current returns the active route.
func (n *Navigator) Current() Route {
	if len(n.history) == 0 {
		return ParseRoute("/")
	}
	return ParseRoute(n.history[len(n.history)-1])
}

// Push navigates to path, keeping the current route in history. Pushing the
// current route again is a no-op.
func (n *Navigator) Push(path string) {
	next := ParseRoute(path).Path
	if len(n.history) > 0 && n.history[len(n.history)-1] == next {
		return
	}
	n.history = append(n.history, next)
}

// Replace swaps the current route for path.
func (n *Navigator) Replace(path string) {
	next := ParseRoute(path).Path
	if len(n.history) == 0 {
		n.history = []string{next}
		return
	}
	n.history[len(n.history)-1] = next
}

// Back pops one route. It reports false at the start of history.
func (n *Navigator) Back() bool {
	if len(n.history) <= 1 {
		return false
	}
	n.history = n.history[:len(n.history)-1]
	return true
}
