package derive

import "reflect"

// Input names reported to a Tracker.
const (
	InputHass                  = "hass"
	InputPrinterEntities       = "printerEntities"
	InputPrinterEntityIDPart   = "printerEntityIdPart"
	InputSelectedPrinterDevice = "selectedPrinterDevice"
	InputSelectedPrinterID     = "selectedPrinterID"
	InputPage                  = "page"
	InputOptions               = "options"
)

// Watch sets for the panel's derived values.
var (
	StatInputs  = []string{InputHass, InputPrinterEntities, InputPrinterEntityIDPart}
	PrintInputs = []string{InputSelectedPrinterDevice}
	FileInputs  = []string{InputHass, InputSelectedPrinterID}
)

// Inputs maps an input name to its identity. Identities should be comparable
// values (versions, IDs, small structs); anything else is treated as changed
// on every observation.
type Inputs map[string]any

// EntitiesKey identifies a printer entity subset: the snapshot version it was
// filtered from and the prefix used.
type EntitiesKey struct {
	Version uint64
	Part    string
}

// PrinterInputs builds the standard inputs for a printer view.
func PrinterInputs(version uint64, printerID, part string) Inputs {
	return Inputs{
		InputHass:                  version,
		InputPrinterEntities:       EntitiesKey{Version: version, Part: part},
		InputPrinterEntityIDPart:   part,
		InputSelectedPrinterDevice: printerID,
		InputSelectedPrinterID:     printerID,
	}
}

// Changes is the set of input names that differ from the previous
// observation.
type Changes map[string]struct{}

// Has reports whether name changed.
func (c Changes) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Intersects reports whether any of names changed.
func (c Changes) Intersects(names ...string) bool {
	for _, name := range names {
		if c.Has(name) {
			return true
		}
	}
	return false
}

// Tracker remembers the last-seen identity of every input.
type Tracker struct {
	seen map[string]any
}

// Observe records in and returns the names whose identity changed. Names
// missing from in compared to the previous call are reported as changed.
func (t *Tracker) Observe(in Inputs) Changes {
	changes := make(Changes)
	if t.seen == nil {
		t.seen = make(map[string]any, len(in))
	}
	for name, value := range in {
		prev, ok := t.seen[name]
		if !ok || !same(prev, value) {
			changes[name] = struct{}{}
		}
		t.seen[name] = value
	}
	for name := range t.seen {
		if _, ok := in[name]; !ok {
			changes[name] = struct{}{}
			delete(t.seen, name)
		}
	}
	return changes
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Memo caches a value and recomputes it only when one of its watched inputs
// changes.
type Memo[T any] struct {
	watch   []string
	tracker Tracker
	value   T
	valid   bool

	// Recomputes counts compute calls.
	Recomputes int
}

// NewMemo returns a Memo watching the named inputs.
func NewMemo[T any](watch ...string) *Memo[T] {
	return &Memo[T]{watch: append([]string(nil), watch...)}
}

// Get returns the cached value, calling compute first when the value has
// never been computed or a watched input changed.
func (m *Memo[T]) Get(in Inputs, compute func() T) T {
	changes := m.tracker.Observe(in)
	if m.valid && !changes.Intersects(m.watch...) {
		return m.value
	}
	m.value = compute()
	m.valid = true
	m.Recomputes++
	return m.value
}

// Reset drops the cached value.
func (m *Memo[T]) Reset() {
	var zero T
	m.value = zero
	m.valid = false
	m.tracker = Tracker{}
}
