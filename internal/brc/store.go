package brc

import (
	"fmt"
	"math"
	"math/bits"
)

// Summary holds the running statistics of one station, in tenths.
type Summary struct {
	Sum   int64
	Count int64
	Min   int64
	Max   int64
}

func newSummary(m int64) Summary {
	return Summary{Sum: m, Count: 1, Min: m, Max: m}
}

func (s *Summary) add(m int64) error {
	sum, ok := addInt64(s.Sum, m)
	if !ok || s.Count == math.MaxInt64 {
		return ErrNumericOverflow
	}
	s.Sum = sum
	s.Count++
	s.Min = min(s.Min, m)
	s.Max = max(s.Max, m)
	return nil
}

func (s *Summary) merge(o Summary) error {
	sum, ok := addInt64(s.Sum, o.Sum)
	if !ok {
		return ErrNumericOverflow
	}
	count, ok := addInt64(s.Count, o.Count)
	if !ok {
		return ErrNumericOverflow
	}
	s.Sum = sum
	s.Count = count
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
	return nil
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	// overflow iff both operands share a sign that the result doesn't
	if (a >= 0) == (b >= 0) && (c >= 0) != (a >= 0) {
		return 0, false
	}
	return c, true
}

// Slot is the dense index of a Store entry.
type Slot int32

const noSlot Slot = -1

type entry struct {
	key     Key
	name    string
	next    Slot
	summary Summary
}

// Store maps (key, name) pairs to summaries. Buckets are selected by key and
// chained; a key hit is only a match if the name is equal too.
type Store struct {
	buckets    []Slot
	entries    []entry
	shift      uint
	collisions int
}

func NewStore(nbuckets uint64) (*Store, error) {
	// http://www.graphics.stanford.edu/~seander/bithacks.html#DetermineIfPowerOf2
	if nbuckets == 0 || (nbuckets&(nbuckets-1)) != 0 {
		return nil, fmt.Errorf("nbuckets must be a power of 2: %d", nbuckets)
	}
	if nbuckets > math.MaxInt32 {
		return nil, fmt.Errorf("nbuckets too large: %d", nbuckets)
	}
	s := &Store{}
	s.resize(int(nbuckets))
	return s, nil
}

// fibonacci hashing, keeps the rolling hash's weak low bits out of the index.
// A shift of 64 yields 0, which is right for a single bucket.
func (s *Store) bucket(k Key) uint64 {
	return (uint64(k) * 0x9E3779B97F4A7C15) >> s.shift
}

func (s *Store) resize(nbuckets int) {
	s.buckets = make([]Slot, nbuckets)
	for i := range s.buckets {
		s.buckets[i] = noSlot
	}
	s.shift = uint(64 - bits.TrailingZeros64(uint64(nbuckets)))
	for i := range s.entries {
		e := &s.entries[i]
		h := s.bucket(e.key)
		e.next = s.buckets[h]
		s.buckets[h] = Slot(i)
	}
}

func (s *Store) find(key Key, name []byte) (Slot, uint64) {
	h := s.bucket(key)
	for i := s.buckets[h]; i != noSlot; i = s.entries[i].next {
		e := &s.entries[i]
		if e.key == key && e.name == string(name) {
			return i, h
		}
	}
	return noSlot, h
}

func (s *Store) insert(key Key, name []byte, sum Summary, h uint64) (Slot, error) {
	if len(s.entries) >= math.MaxInt32 {
		return noSlot, fmt.Errorf("too many stations: %w", ErrNumericOverflow)
	}
	for i := s.buckets[h]; i != noSlot; i = s.entries[i].next {
		if s.entries[i].key == key {
			s.collisions++
			break
		}
	}

	slot := Slot(len(s.entries))
	s.entries = append(s.entries, entry{
		key:     key,
		name:    string(name),
		next:    s.buckets[h],
		summary: sum,
	})
	s.buckets[h] = slot

	if len(s.entries) > len(s.buckets)/4*3 {
		s.resize(len(s.buckets) * 2)
	}
	return slot, nil
}

// Update folds m into the summary for (key, name), creating it if needed.
// created reports whether a new slot was allocated.
func (s *Store) Update(key Key, name []byte, m int64) (slot Slot, created bool, err error) {
	slot, h := s.find(key, name)
	if slot != noSlot {
		return slot, false, s.entries[slot].summary.add(m)
	}

	slot, err = s.insert(key, name, newSummary(m), h)
	if err != nil {
		return noSlot, false, err
	}
	return slot, true, nil
}

// merge folds sum into (key, name), creating the slot if needed.
func (s *Store) merge(key Key, name string, sum Summary) (slot Slot, created bool, err error) {
	slot, h := s.find(key, []byte(name))
	if slot != noSlot {
		return slot, false, s.entries[slot].summary.merge(sum)
	}

	slot, err = s.insert(key, []byte(name), sum, h)
	if err != nil {
		return noSlot, false, err
	}
	return slot, true, nil
}

func (s *Store) Summary(slot Slot) Summary { return s.entries[slot].summary }
func (s *Store) Name(slot Slot) string     { return s.entries[slot].name }
func (s *Store) Key(slot Slot) Key         { return s.entries[slot].key }
func (s *Store) Len() int                  { return len(s.entries) }

// Collisions is the number of entries created with a key already used by a
// different name.
func (s *Store) Collisions() int { return s.collisions }
