package reward

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hokarena/reward/internal/util"
)

var (
	// ErrNonFiniteWeight is returned when a configured weight is NaN or infinite.
	ErrNonFiniteWeight = errors.New("non-finite reward weight")
	// ErrDuplicateTerm is returned when two configured names resolve to the same term.
	ErrDuplicateTerm = errors.New("duplicate reward term")
)

// Entry is the accumulator of one term within a table.
type Entry struct {
	Kind     Kind
	Weight   float64
	Current  float64
	Previous float64
	Resolved float64
}

// Table maps term kinds to accumulators. Only configured kinds are present,
// iterated in kind order.
type Table struct {
	entries []Entry
	index   [numKinds]int
}

// NewTable builds a table from a name to weight mapping. Names outside the
// known term set are skipped; see UnknownTerms.
func NewTable(weights map[string]float64) (*Table, error) {
	t := &Table{}
	for i := range t.index {
		t.index[i] = -1
	}

	seen := make(map[Kind]string, len(weights))
	for name, w := range weights {
		k, ok := LookupKind(name)
		if !ok {
			continue
		}
		if !util.IsFinite(w) {
			return nil, fmt.Errorf("%w: %s=%v", ErrNonFiniteWeight, name, w)
		}
		if prev, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: %q and %q both name %s", ErrDuplicateTerm, prev, name, k)
		}
		seen[k] = name
		t.entries = append(t.entries, Entry{Kind: k, Weight: w})
	}

	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Kind < t.entries[j].Kind })
	for i, e := range t.entries {
		t.index[e.Kind] = i
	}
	return t, nil
}

// UnknownTerms lists the configured names that do not resolve to a term, sorted.
func UnknownTerms(weights map[string]float64) []string {
	var out []string
	for name := range weights {
		if _, ok := LookupKind(name); !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a table with the same kinds and weights and zeroed values.
func (t *Table) Clone() *Table {
	c := &Table{
		entries: make([]Entry, len(t.entries)),
		index:   t.index,
	}
	for i, e := range t.entries {
		c.entries[i] = Entry{Kind: e.Kind, Weight: e.Weight}
	}
	return c
}

// Len returns the number of configured terms.
func (t *Table) Len() int {
	return len(t.entries)
}

// Has reports whether kind k is configured.
func (t *Table) Has(k Kind) bool {
	return k.Valid() && t.index[k] >= 0
}

// Entry returns the accumulator for k, or nil when k is not configured.
func (t *Table) Entry(k Kind) *Entry {
	if !t.Has(k) {
		return nil
	}
	return &t.entries[t.index[k]]
}

// Each calls fn for every entry in kind order. fn may mutate the entry.
func (t *Table) Each(fn func(e *Entry)) {
	for i := range t.entries {
		fn(&t.entries[i])
	}
}

// Shift captures every current value as the previous value. It must run
// before current values are overwritten for a new frame.
func (t *Table) Shift() {
	for i := range t.entries {
		t.entries[i].Previous = t.entries[i].Current
	}
}

// Clear zeroes every value, keeping weights.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i].Current = 0
		t.entries[i].Previous = 0
		t.entries[i].Resolved = 0
	}
}

// Weights returns the configured weights keyed by canonical term name.
func (t *Table) Weights() map[string]float64 {
	out := make(map[string]float64, len(t.entries))
	for _, e := range t.entries {
		out[e.Kind.String()] = e.Weight
	}
	return out
}
