package brc

import (
	"fmt"
	"iter"

	art "github.com/plar/go-adaptive-radix-tree/v2"
)

// Registry keeps the first seen name of every slot, and an index of the names
// in byte order for reporting.
type Registry struct {
	names []string
	index art.Tree
}

func NewRegistry() *Registry {
	return &Registry{
		names: make([]string, 0, 512),
		index: art.New(),
	}
}

// Register records name for slot. Slots are handed out densely by the Store,
// so they must be registered in order and only once.
func (r *Registry) Register(slot Slot, name string) error {
	if int(slot) != len(r.names) {
		return fmt.Errorf("register slot %d: expected slot %d", slot, len(r.names))
	}
	if _, found := r.index.Search(art.Key(name)); found {
		return fmt.Errorf("register slot %d: name %q already registered", slot, name)
	}
	r.names = append(r.names, name)
	r.index.Insert(art.Key(name), slot)
	return nil
}

func (r *Registry) Name(slot Slot) (string, bool) {
	if slot < 0 || int(slot) >= len(r.names) {
		return "", false
	}
	return r.names[slot], true
}

func (r *Registry) Lookup(name string) (Slot, bool) {
	v, found := r.index.Search(art.Key(name))
	if !found {
		return noSlot, false
	}
	return v.(Slot), true
}

func (r *Registry) Len() int { return len(r.names) }

// All yields every slot and its name, sorted by name.
func (r *Registry) All() iter.Seq2[Slot, string] {
	return func(yield func(Slot, string) bool) {
		r.index.ForEach(func(node art.Node) bool {
			slot := node.Value().(Slot)
			return yield(slot, r.names[slot])
		})
	}
}
