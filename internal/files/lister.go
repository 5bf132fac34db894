package files

import (
	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/printer"
)

// Listing is the derived state of a file page.
type Listing struct {
	Entries []Entry
	Refresh string // refresh button entity, "" when absent
}

// Lister derives a backend's listing, recomputing only when the snapshot or
// the selected printer changes.
type Lister struct {
	Backend Backend
	memo    *derive.Memo[Listing]
}

// NewLister returns a Lister for b.
func NewLister(b Backend) *Lister {
	return &Lister{Backend: b, memo: derive.NewMemo[Listing](derive.FileInputs...)}
}

// Get returns the listing for pc.
func (l *Lister) Get(in derive.Inputs, pc printer.Context) Listing {
	return l.memo.Get(in, func() Listing {
		return Listing{
			Entries: l.Backend.ListFiles(pc.Entities, pc.Part),
			Refresh: l.Backend.RefreshTrigger(pc.Entities, pc.Part),
		}
	})
}

// Recomputes reports how many times the listing was derived.
func (l *Lister) Recomputes() int {
	return l.memo.Recomputes
}
