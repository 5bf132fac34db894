package derive

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/five82/acpanel/internal/hass"
)

// Direction selects how a time sensor is presented.
type Direction int

const (
	Countdown   Direction = -1
	PointInTime Direction = 0
	Elapsed     Direction = 1
)

// SensorDuration reads a time sensor. The unit comes from
// unit_of_measurement and defaults to seconds.
func SensorDuration(st hass.EntityState) (time.Duration, bool) {
	v, ok := st.Float()
	if !ok || v < 0 || math.IsNaN(v) {
		return 0, false
	}
	scale := time.Second
	switch strings.ToLower(strings.TrimSpace(st.AttrString("unit_of_measurement"))) {
	case "min", "m", "minutes":
		scale = time.Minute
	case "h", "hours":
		scale = time.Hour
	case "d", "days":
		scale = 24 * time.Hour
	}
	ns := v * float64(scale)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(ns), true
}

// FormatTime renders a time sensor. Countdown and Elapsed show a duration;
// PointInTime shows the clock time the duration ends, counted from the
// sensor's last update (now when unset). A day prefix is added when that
// clock time is not today.
func FormatTime(st hass.EntityState, dir Direction, use24h, round bool, now time.Time) string {
	d, ok := SensorDuration(st)
	if !ok {
		return "--"
	}

	if dir != PointInTime {
		return FormatDuration(d, round)
	}

	anchor := st.LastUpdated
	if anchor.IsZero() {
		anchor = now
	}
	eta := anchor.Add(d).In(now.Location())

	layout := "3:04:05 PM"
	switch {
	case use24h && round:
		layout = "15:04"
	case use24h:
		layout = "15:04:05"
	case round:
		layout = "3:04 PM"
	}
	y1, m1, d1 := eta.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		layout = "Mon " + layout
	}
	return eta.Format(layout)
}

// FormatDuration renders d as "1d 02:03:04"/"02:03:04", or, when round is
// set, as a coarse "2h 5m"/"5m" to the nearest minute.
func FormatDuration(d time.Duration, round bool) string {
	if d < 0 {
		d = -d
		if d < 0 {
			d = time.Duration(math.MaxInt64)
		}
	}
	if round {
		d = d.Round(time.Minute)
		h := int(d / time.Hour)
		m := int(d % time.Hour / time.Minute)
		if h > 0 {
			return fmt.Sprintf("%dh %dm", h, m)
		}
		return fmt.Sprintf("%dm", m)
	}

	d = d.Round(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	clock := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, clock)
	}
	return clock
}
