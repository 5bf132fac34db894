// Package derive computes display values from printer entities.
//
// # Recomputation
//
// Views do not recompute on every frame. Each derived value sits behind a
// Memo that watches a set of named inputs. The caller reports the identity of
// every input on each render; a Tracker diffs them against the previous
// render and the Memo recomputes only when a watched input changed.
//
//	board := derive.NewBoard()
//	in := derive.PrinterInputs(snap.Version, sel.PrinterID, pc.Part)
//	pct, lines := board.Update(in, pc, kinds, opts) // computed
//	pct, lines = board.Update(in, pc, kinds, opts)  // cached
//
// Identities are cheap comparable values. The entity snapshot is identified
// by its version number, so a new snapshot always compares as changed and
// derived values are never computed from an older one.
//
// # Formatting
//
//   - Percent: project_progress, UnknownPercent (-1) when missing, shown as --%
//   - Temperature: Celsius or Fahrenheit, optional rounding
//   - Time: countdown, elapsed, or ETA clock time in 12 or 24 hour format
//   - Stat: one labelled line per monitored stat kind
package derive
