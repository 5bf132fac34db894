package derive

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/five82/acpanel/internal/printer"
)

// Kind names a monitored stat.
type Kind string

const (
	KindStatus        Kind = "Status"
	KindETA           Kind = "ETA"
	KindElapsed       Kind = "Elapsed"
	KindRemaining     Kind = "Remaining"
	KindBedCurrent    Kind = "Bed Current"
	KindHotendCurrent Kind = "Hotend Current"
	KindBedTarget     Kind = "Bed Target"
	KindHotendTarget  Kind = "Hotend Target"
)

// DefaultKinds is the stat list shown when none is configured.
var DefaultKinds = []Kind{
	KindStatus,
	KindETA,
	KindElapsed,
	KindRemaining,
	KindHotendCurrent,
	KindBedCurrent,
	KindHotendTarget,
	KindBedTarget,
}

// UnknownPercent is returned when progress is not reported.
const UnknownPercent = -1.0

// Line is one rendered stat.
type Line struct {
	Name  string
	Value string
}

// Options are the display preferences that affect stat formatting.
type Options struct {
	TemperatureUnit Unit
	Round           bool
	Use24Hr         bool
}

// Percent returns the project_progress sensor value, or UnknownPercent when
// the sensor is missing or not a number.
func Percent(pc printer.Context) float64 {
	st := pc.Sensor(printer.SensorProjectProgress, "")
	v, ok := st.Float()
	if !ok {
		return UnknownPercent
	}
	return v
}

// FormatPercent renders a progress value. UnknownPercent renders as "--%".
func FormatPercent(p float64, round bool) string {
	if p < 0 {
		return "--%"
	}
	if round {
		return strconv.FormatFloat(math.Round(p), 'f', 0, 64) + "%"
	}
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// Stat derives one stat line. Unrecognized kinds render the fixed
// "Unknown"/"<unknown>" pair.
func Stat(kind Kind, pc printer.Context, opts Options, now time.Time) Line {
	name := string(kind)
	switch kind {
	case KindStatus:
		return Line{Name: name, Value: TitleCase(pc.Sensor(printer.SensorPrintState, "unknown").State)}
	case KindETA:
		return Line{Name: name, Value: FormatTime(pc.Sensor(printer.SensorTimeRemaining, ""), PointInTime, opts.Use24Hr, opts.Round, now)}
	case KindElapsed:
		return Line{Name: name, Value: FormatTime(pc.Sensor(printer.SensorTimeElapsed, ""), Elapsed, opts.Use24Hr, opts.Round, now)}
	case KindRemaining:
		return Line{Name: name, Value: FormatTime(pc.Sensor(printer.SensorTimeRemaining, ""), Countdown, opts.Use24Hr, opts.Round, now)}
	case KindBedCurrent:
		return Line{Name: name, Value: FormatTemperature(pc.Sensor(printer.SensorHotbedTemperature, ""), opts.TemperatureUnit, opts.Round)}
	case KindHotendCurrent:
		return Line{Name: name, Value: FormatTemperature(pc.Sensor(printer.SensorNozzleTemperature, ""), opts.TemperatureUnit, opts.Round)}
	case KindBedTarget:
		return Line{Name: name, Value: FormatTemperature(pc.Sensor(printer.SensorTargetHotbedTemp, ""), opts.TemperatureUnit, opts.Round)}
	case KindHotendTarget:
		return Line{Name: name, Value: FormatTemperature(pc.Sensor(printer.SensorTargetNozzleTemp, ""), opts.TemperatureUnit, opts.Round)}
	default:
		return Line{Name: "Unknown", Value: "<unknown>"}
	}
}

// TitleCase turns "printing_paused" into "Printing Paused".
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Board holds the derived values of a printer's main page.
type Board struct {
	percent *Memo[float64]
	lines   *Memo[[]Line]
}

// NewBoard returns an empty Board.
func NewBoard() *Board {
	return &Board{
		percent: NewMemo[float64](StatInputs...),
		lines:   NewMemo[[]Line](append(append([]string(nil), StatInputs...), InputOptions)...),
	}
}

// boardOptions is the comparable identity of the stat options.
type boardOptions struct {
	Options
	Kinds string
}

// Update returns the progress and stat lines for pc, recomputing only when
// in reports a change to the entity inputs or when options differ from the
// previous call.
func (b *Board) Update(in Inputs, pc printer.Context, kinds []Kind, opts Options) (float64, []Line) {
	keyed := make(Inputs, len(in)+1)
	for k, v := range in {
		keyed[k] = v
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	keyed[InputOptions] = boardOptions{Options: opts, Kinds: strings.Join(names, "\x00")}

	p := b.percent.Get(keyed, func() float64 { return Percent(pc) })
	lines := b.lines.Get(keyed, func() []Line {
		now := time.Now()
		out := make([]Line, len(kinds))
		for i, k := range kinds {
			out[i] = Stat(k, pc, opts, now)
		}
		return out
	})
	return p, lines
}

// Recomputes reports how many times each value was derived.
func (b *Board) Recomputes() (percent, lines int) {
	return b.percent.Recomputes, b.lines.Recomputes
}
