package derive

import "testing"

func TestTrackerObserve(t *testing.T) {
	var tr Tracker

	first := tr.Observe(Inputs{InputHass: uint64(1), InputSelectedPrinterID: "dev1"})
	if !first.Has(InputHass) || !first.Has(InputSelectedPrinterID) {
		t.Fatalf("first observation should report every input, got %v", first)
	}

	same := tr.Observe(Inputs{InputHass: uint64(1), InputSelectedPrinterID: "dev1"})
	if len(same) != 0 {
		t.Fatalf("unchanged inputs reported %v", same)
	}

	next := tr.Observe(Inputs{InputHass: uint64(2), InputSelectedPrinterID: "dev1"})
	if !next.Has(InputHass) || next.Has(InputSelectedPrinterID) {
		t.Fatalf("changes = %v, want only hass", next)
	}

	dropped := tr.Observe(Inputs{InputHass: uint64(2)})
	if !dropped.Has(InputSelectedPrinterID) {
		t.Fatalf("removed input should count as changed, got %v", dropped)
	}
}

func TestTrackerNonComparable(t *testing.T) {
	var tr Tracker
	m := map[string]int{"a": 1}
	tr.Observe(Inputs{"m": m})
	if !tr.Observe(Inputs{"m": m}).Has("m") {
		t.Fatalf("non-comparable identity must always count as changed")
	}
}

func TestMemoRecomputesOnlyOnWatchedChange(t *testing.T) {
	memo := NewMemo[int](StatInputs...)
	calls := 0
	compute := func() int { calls++; return calls }

	in := PrinterInputs(1, "dev1", "kobra")
	memo.Get(in, compute)
	memo.Get(in, compute)
	if memo.Recomputes != 1 {
		t.Fatalf("Recomputes = %d after unchanged render, want 1", memo.Recomputes)
	}

	// Page changes are unrelated to stats.
	in2 := PrinterInputs(1, "dev1", "kobra")
	in2[InputPage] = "debug"
	memo.Get(in2, compute)
	if memo.Recomputes != 1 {
		t.Fatalf("Recomputes = %d after unrelated change, want 1", memo.Recomputes)
	}

	if got := memo.Get(PrinterInputs(2, "dev1", "kobra"), compute); got != 2 {
		t.Fatalf("Get after new snapshot = %d, want fresh value 2", got)
	}

	memo.Reset()
	memo.Get(PrinterInputs(2, "dev1", "kobra"), compute)
	if memo.Recomputes != 3 {
		t.Fatalf("Recomputes = %d after Reset, want 3", memo.Recomputes)
	}
}

func TestChangesIntersects(t *testing.T) {
	c := Changes{InputSelectedPrinterDevice: {}}
	if !c.Intersects(PrintInputs...) {
		t.Fatalf("print inputs should intersect")
	}
	if c.Intersects(StatInputs...) {
		t.Fatalf("stat inputs should not intersect")
	}
}
