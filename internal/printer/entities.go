package printer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/five82/acpanel/internal/hass"
)

// Manufacturer identifies devices created by the anycubic_cloud integration.
const Manufacturer = "Anycubic"

// Sensor suffixes published for every printer.
const (
	SensorProjectProgress     = "project_progress"
	SensorPrintState          = "print_state"
	SensorTimeRemaining       = "project_time_remaining"
	SensorTimeElapsed         = "project_time_elapsed"
	SensorHotbedTemperature   = "hotbed_temperature"
	SensorNozzleTemperature   = "nozzle_temperature"
	SensorTargetHotbedTemp    = "target_hotbed_temperature"
	SensorTargetNozzleTemp    = "target_nozzle_temperature"
	SensorFileListLocal       = "file_list_local"
	SensorFileListUdisk       = "file_list_udisk"
	SensorFileListCloud       = "file_list_cloud"
	ButtonRequestFileListBase = "request_file_list"
)

// knownSuffixes are stripped from an entity's object ID to recover the
// printer prefix.
var knownSuffixes = []string{
	SensorProjectProgress,
	SensorPrintState,
	SensorTimeRemaining,
	SensorTimeElapsed,
	SensorTargetHotbedTemp,
	SensorTargetNozzleTemp,
	SensorHotbedTemperature,
	SensorNozzleTemperature,
	SensorFileListLocal,
	SensorFileListUdisk,
	SensorFileListCloud,
}

// Printers returns the devices belonging to the integration, sorted by name.
func Printers(devices []hass.Device) []hass.Device {
	var out []hass.Device
	for _, d := range devices {
		if strings.EqualFold(strings.TrimSpace(d.Manufacturer), Manufacturer) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

// EntityIDPart returns the object-ID prefix shared by a printer's entities,
// e.g. "kobra_3" for sensor.kobra_3_project_progress. The entity registry is
// authoritative; the slugified device name is the fallback.
func EntityIDPart(device *hass.Device, registry []hass.EntityEntry) string {
	if device == nil {
		return ""
	}
	for _, entry := range registry {
		if entry.DeviceID != device.ID {
			continue
		}
		objectID := hass.ObjectID(entry.EntityID)
		for _, suffix := range knownSuffixes {
			if part, ok := strings.CutSuffix(objectID, "_"+suffix); ok && part != "" {
				return part
			}
		}
	}
	return Slugify(device.Name)
}

// Subset returns the states whose object ID starts with part + "_". It
// returns nil for an empty part.
func Subset(states hass.States, part string) hass.States {
	if part == "" {
		return nil
	}
	prefix := part + "_"
	out := make(hass.States)
	for id, st := range states {
		if strings.HasPrefix(hass.ObjectID(id), prefix) {
			out[id] = st
		}
	}
	return out
}

// DeviceSubset returns the states the registry assigns to device. When the
// registry lists none of the device's entities it falls back to Subset by
// part, so a printer whose slug prefixes another's only sees its own
// entities once the registry is loaded.
func DeviceSubset(states hass.States, device *hass.Device, registry []hass.EntityEntry, part string) hass.States {
	if device == nil {
		return nil
	}
	var out hass.States
	for _, entry := range registry {
		if entry.DeviceID != device.ID {
			continue
		}
		if out == nil {
			out = make(hass.States)
		}
		if st, ok := states.Get(entry.EntityID); ok {
			out[entry.EntityID] = st
		}
	}
	if out == nil {
		return Subset(states, part)
	}
	return out
}

// EntityID builds "<domain>.<part>_<suffix>".
func EntityID(domain, part, suffix string) string {
	return domain + "." + part + "_" + suffix
}

// SensorState looks up sensor.<part>_<suffix>. A missing or unavailable
// entity yields a synthetic state holding fallback.
func SensorState(subset hass.States, part, suffix, fallback string) hass.EntityState {
	id := EntityID("sensor", part, suffix)
	st, ok := subset.Get(id)
	if !ok || !st.Available() {
		return hass.EntityState{EntityID: id, State: fallback, Attributes: st.Attributes}
	}
	return st
}

// Slugify mirrors Home Assistant's object ID generation closely enough for
// device names: lower case, runs of other characters collapsed to "_".
func Slugify(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				continue
			}
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Context bundles everything a view needs about the selected printer.
type Context struct {
	Selection
	Part     string
	Entities hass.States
}

// Bind derives the printer context for sel from a snapshot.
func Bind(sel Selection, states hass.States, registry []hass.EntityEntry) Context {
	ctx := Context{Selection: sel}
	if sel.Device == nil {
		return ctx
	}
	ctx.Part = EntityIDPart(sel.Device, registry)
	ctx.Entities = DeviceSubset(states, sel.Device, registry, ctx.Part)
	return ctx
}

// Sensor is SensorState bound to the context.
func (c Context) Sensor(suffix, fallback string) hass.EntityState {
	return SensorState(c.Entities, c.Part, suffix, fallback)
}
