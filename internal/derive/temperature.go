package derive

import (
	"math"
	"strconv"
	"strings"

	"github.com/five82/acpanel/internal/hass"
)

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// ParseUnit accepts "C", "F", "°F", "fahrenheit" and similar. Anything
// unrecognized is Celsius.
func ParseUnit(s string) Unit {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "°")))
	if s == "f" || s == "fahrenheit" {
		return Fahrenheit
	}
	return Celsius
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Convert converts v from one unit to another.
func Convert(v float64, from, to Unit) float64 {
	switch {
	case from == to:
		return v
	case to == Fahrenheit:
		return CelsiusToFahrenheit(v)
	default:
		return FahrenheitToCelsius(v)
	}
}

// FormatTemperature renders a temperature sensor in unit. The sensor's own
// unit_of_measurement is honoured; Celsius is assumed when it has none.
func FormatTemperature(st hass.EntityState, unit Unit, round bool) string {
	if unit == "" {
		unit = Celsius
	}
	v, ok := st.Float()
	if !ok {
		return "--°" + string(unit)
	}
	v = Convert(v, ParseUnit(st.AttrString("unit_of_measurement")), unit)
	return formatNumber(v, round) + "°" + string(unit)
}

// formatNumber rounds to an integer, or to one decimal place otherwise.
func formatNumber(v float64, round bool) string {
	if round {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
