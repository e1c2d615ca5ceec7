package brc

import (
	"iter"
)

const DefaultBuckets = 4096

// Table is the Store and Registry of one run. It is not safe for concurrent
// use; parallel runs use one Table per worker and Merge them.
type Table struct {
	store *Store
	names *Registry
}

func NewTable(nbuckets uint64) (*Table, error) {
	if nbuckets == 0 {
		nbuckets = DefaultBuckets
	}
	store, err := NewStore(nbuckets)
	if err != nil {
		return nil, err
	}
	return &Table{store: store, names: NewRegistry()}, nil
}

// Record folds one measurement into the table.
func (t *Table) Record(key Key, name []byte, m int64) error {
	slot, created, err := t.store.Update(key, name, m)
	if err != nil {
		return err
	}
	if created {
		return t.names.Register(slot, t.store.Name(slot))
	}
	return nil
}

// Merge folds every station of other into t.
func (t *Table) Merge(other *Table) error {
	for i := range other.store.Len() {
		slot := Slot(i)
		name := other.store.Name(slot)
		s, created, err := t.store.merge(other.store.Key(slot), name, other.store.Summary(slot))
		if err != nil {
			return err
		}
		if created {
			if err := t.names.Register(s, t.store.Name(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

// All yields every station and its summary, sorted by name.
func (t *Table) All() iter.Seq2[string, Summary] {
	return func(yield func(string, Summary) bool) {
		for slot, name := range t.names.All() {
			if !yield(name, t.store.Summary(slot)) {
				return
			}
		}
	}
}

func (t *Table) Lookup(name string) (Summary, bool) {
	slot, ok := t.names.Lookup(name)
	if !ok {
		return Summary{}, false
	}
	return t.store.Summary(slot), true
}

func (t *Table) Len() int        { return t.store.Len() }
func (t *Table) Collisions() int { return t.store.Collisions() }
