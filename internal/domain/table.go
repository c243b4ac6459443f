package domain

import (
	"fmt"
	"strings"
	"sync"
)

// AssetTable is the fixed, index-addressed set of tracked assets. Entries are
// never added or removed after construction.
type AssetTable struct {
	mu      sync.RWMutex
	records []AssetRecord
	index   map[string]int // symbol -> position
}

// NewAssetTable copies recs into a new table. Symbols must be unique.
func NewAssetTable(recs []AssetRecord) (*AssetTable, error) {
	t := &AssetTable{
		records: make([]AssetRecord, len(recs)),
		index:   make(map[string]int, len(recs)),
	}
	for i, r := range recs {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if sym == "" {
			return nil, fmt.Errorf("asset %d: empty symbol", i)
		}
		if _, dup := t.index[sym]; dup {
			return nil, fmt.Errorf("asset %d: duplicate symbol %s", i, sym)
		}
		r.Symbol = sym
		t.records[i] = r
		t.index[sym] = i
	}
	return t, nil
}

// Len returns the number of assets.
func (t *AssetTable) Len() int {
	return len(t.records)
}

// Get returns a copy of the record at i.
func (t *AssetTable) Get(i int) (AssetRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.records) {
		return AssetRecord{}, false
	}
	return t.records[i], true
}

// Snapshot returns a copy of every record in table order.
func (t *AssetTable) Snapshot() []AssetRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AssetRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Symbols returns the symbols of group in table order.
func (t *AssetTable) Symbols(g Group) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for i := range t.records {
		if t.records[i].Group() == g {
			out = append(out, t.records[i].Symbol)
		}
	}
	return out
}

// ApplyQuotes applies quotes (symbol -> quote) in one critical section.
// Every symbol must belong to the table, otherwise nothing is written.
func (t *AssetTable) ApplyQuotes(quotes map[string]Quote) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sym := range quotes {
		if _, ok := t.index[sym]; !ok {
			return fmt.Errorf("unknown symbol %s", sym)
		}
	}
	for sym, q := range quotes {
		t.records[t.index[sym]].Apply(q)
	}
	return nil
}

// Restore overwrites the mutable fields of known symbols with previously
// persisted state. Unknown symbols are ignored; it returns the number restored.
func (t *AssetTable) Restore(recs []AssetRecord) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, r := range recs {
		i, ok := t.index[strings.ToUpper(r.Symbol)]
		if !ok {
			continue
		}
		cur := &t.records[i]
		cur.Price = r.Price
		cur.PreviousPrice = r.PreviousPrice
		cur.LastUpdated = r.LastUpdated
		cur.PriceIncreased = r.PriceIncreased
		cur.IsFirstUpdate = r.IsFirstUpdate
		n++
	}
	return n
}
