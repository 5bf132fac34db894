package action

// Status is the visual state of an action control.
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Control is the local state of one button that dispatches requests.
// Every attempt gets a generation; Finish ignores outcomes from older
// attempts and from controls that have been unmounted since.
type Control struct {
	Status Status
	Err    string

	gen       uint64
	unmounted bool
}

// Begin starts an attempt and clears the previous error.
func (c *Control) Begin() uint64 {
	c.gen++
	c.unmounted = false
	c.Status = Pending
	c.Err = ""
	return c.gen
}

// Edit clears a displayed error after the user changes the payload.
func (c *Control) Edit() {
	c.Err = ""
	if c.Status == Failed || c.Status == Succeeded {
		c.Status = Idle
	}
}

// Finish applies the outcome of attempt gen. It reports false when the
// outcome was dropped.
func (c *Control) Finish(gen uint64, o Outcome) bool {
	if c.unmounted || gen != c.gen {
		return false
	}
	if o.OK() {
		c.Status = Succeeded
		c.Err = ""
		return true
	}
	c.Status = Failed
	c.Err = o.Message()
	return true
}

// Unmount detaches the control; outstanding attempts finish as no-ops.
func (c *Control) Unmount() {
	c.unmounted = true
	c.gen++
	c.Status = Idle
	c.Err = ""
}

// Busy reports an attempt in flight.
func (c *Control) Busy() bool {
	return c.Status == Pending
}
